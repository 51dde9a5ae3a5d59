/**
 * @description
 * This package handles configuration for the field client. It uses the Viper
 * library to read configuration from environment variables (with an optional
 * .env file), providing a centralized way to manage settings.
 *
 * @dependencies
 * - github.com/spf13/viper: Environment/config binding.
 */

package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the client. Values are loaded from
// environment variables.
type Config struct {
	APIBaseURL             string  `mapstructure:"API_BASE_URL"`
	HTTPTimeoutSeconds     int     `mapstructure:"HTTP_TIMEOUT_SECONDS"`
	DataDir                string  `mapstructure:"DATA_DIR"`
	TokenRefreshLeewaySec  int     `mapstructure:"TOKEN_REFRESH_LEEWAY_SECONDS"`
	TokenRefreshSchedule   string  `mapstructure:"TOKEN_REFRESH_SCHEDULE"`
	HeartbeatSchedule      string  `mapstructure:"HEARTBEAT_SCHEDULE"`
	AssignmentPollSchedule string  `mapstructure:"ASSIGNMENT_POLL_SCHEDULE"`
	PriceDeviationLimitPct float64 `mapstructure:"PRICE_DEVIATION_LIMIT_PERCENT"`
}

// LoadConfig reads configuration from environment variables and an optional
// .env file in the given path.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("API_BASE_URL", "https://api.flipcash.in/api/v1")
	viper.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	viper.SetDefault("TOKEN_REFRESH_LEEWAY_SECONDS", 120)
	viper.SetDefault("TOKEN_REFRESH_SCHEDULE", "@every 30s")
	viper.SetDefault("HEARTBEAT_SCHEDULE", "@every 2m")
	viper.SetDefault("ASSIGNMENT_POLL_SCHEDULE", "@every 1m")
	viper.SetDefault("PRICE_DEVIATION_LIMIT_PERCENT", 10.0)

	_ = viper.BindEnv("API_BASE_URL", "API_BASE_URL", "FIELDOPS_API_BASE_URL")
	_ = viper.BindEnv("HTTP_TIMEOUT_SECONDS")
	_ = viper.BindEnv("DATA_DIR", "DATA_DIR", "FIELDOPS_DATA_DIR")
	_ = viper.BindEnv("TOKEN_REFRESH_LEEWAY_SECONDS")
	_ = viper.BindEnv("TOKEN_REFRESH_SCHEDULE")
	_ = viper.BindEnv("HEARTBEAT_SCHEDULE")
	_ = viper.BindEnv("ASSIGNMENT_POLL_SCHEDULE")
	_ = viper.BindEnv("PRICE_DEVIATION_LIMIT_PERCENT")

	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	config.APIBaseURL = strings.TrimRight(strings.TrimSpace(config.APIBaseURL), "/")
	if config.HTTPTimeoutSeconds <= 0 {
		config.HTTPTimeoutSeconds = 30
	}
	if config.TokenRefreshLeewaySec <= 0 {
		config.TokenRefreshLeewaySec = 120
	}
	if config.PriceDeviationLimitPct < 0 {
		log.Printf("level=warn component=config msg=\"negative deviation limit configured; coercing to zero\" limit=%f", config.PriceDeviationLimitPct)
		config.PriceDeviationLimitPct = 0
	}
	if config.DataDir == "" {
		config.DataDir = defaultDataDir()
	}

	return
}

// defaultDataDir resolves the per-user data directory for the credential
// store.
func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "fieldops")
}
