/**
 * @description
 * Entry point for the fieldops CLI, the terminal client for FlipCash partner
 * and agent operations. The root command wires configuration, the credential
 * store, the API client and the session manager together; subcommands expose
 * the login flow, lead claiming, the visit workflow and profile management.
 *
 * @dependencies
 * - github.com/spf13/cobra: Command tree.
 * - github.com/joho/godotenv: Optional .env loading before viper binds.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/flipcashindia/fieldops/internal/app"
	"github.com/flipcashindia/fieldops/internal/config"
	"github.com/flipcashindia/fieldops/internal/session"
	"github.com/flipcashindia/fieldops/internal/store"
	"github.com/flipcashindia/fieldops/pkg/marketclient"
)

var (
	verbose bool

	cfg             config.Config
	logger          *slog.Logger
	creds           store.CredentialStore
	client          *marketclient.Client
	sessions        *session.Manager
	views           *app.Invalidator
	svc             *app.Service
	partnerProfiles *app.PartnerProfileStore
	agentProfiles   *app.AgentProfileStore

	closeStore func() error
)

var rootCmd = &cobra.Command{
	Use:   "fieldops",
	Short: "FlipCash field operations client",
	Long: `fieldops is the terminal client for FlipCash partners and field agents.

Partners browse and claim trade-in leads; agents work claimed leads through
the visit workflow: accept, travel, check in, verify the visit code, inspect
the device, price it and close the deal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initEnv(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeStore != nil {
			_ = closeStore()
		}
	},
}

func initEnv(ctx context.Context) error {
	_ = godotenv.Load()

	var err error
	cfg, err = config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	sqliteStore, err := store.OpenSQLite(filepath.Join(cfg.DataDir, "fieldops.db"))
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	creds = sqliteStore
	closeStore = sqliteStore.Close

	client = marketclient.NewClient(cfg.APIBaseURL,
		marketclient.WithTimeout(time.Duration(cfg.HTTPTimeoutSeconds)*time.Second))

	sessions, err = session.NewManager(ctx, client, creds, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize session: %w", err)
	}

	views = app.NewInvalidator()
	svc = app.NewService(client, sessions, views, cfg.PriceDeviationLimitPct, logger)
	partnerProfiles = app.NewPartnerProfileStore(client, creds, sessions, views, logger)
	agentProfiles = app.NewAgentProfileStore(client, creds, sessions, views, logger)
	return nil
}

// requireSession guards commands that only make sense while logged in.
func requireSession() error {
	if !sessions.IsAuthenticated() {
		return fmt.Errorf("not logged in; run 'fieldops login' first")
	}
	return nil
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(leadsCmd)
	rootCmd.AddCommand(assignmentsCmd)
	rootCmd.AddCommand(assignmentCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(availabilityCmd)
	rootCmd.AddCommand(walletCmd)
	rootCmd.AddCommand(watchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", marketclient.FormatErrorPayload(err))
		os.Exit(1)
	}
}
