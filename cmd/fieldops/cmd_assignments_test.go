package main

import (
	"testing"

	"github.com/spf13/pflag"
)

func newPositionFlags() *pflag.FlagSet {
	var lat, lng, accuracy float64
	flags := pflag.NewFlagSet("checkin", pflag.ContinueOnError)
	flags.Float64Var(&lat, "lat", 0, "")
	flags.Float64Var(&lng, "lng", 0, "")
	flags.Float64Var(&accuracy, "accuracy", 0, "")
	return flags
}

func TestPositionProvided(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{name: "no flags", args: nil, want: false},
		{name: "lat only", args: []string{"--lat=12.97"}, want: false},
		{name: "lng only", args: []string{"--lng=77.59"}, want: false},
		{name: "both set", args: []string{"--lat=12.97", "--lng=77.59"}, want: true},
		{name: "zero coordinate is still a position", args: []string{"--lat=0", "--lng=0"}, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			flags := newPositionFlags()
			if err := flags.Parse(tc.args); err != nil {
				t.Fatalf("failed to parse %v: %v", tc.args, err)
			}
			if got := positionProvided(flags); got != tc.want {
				t.Fatalf("positionProvided(%v) = %v, want %v", tc.args, got, tc.want)
			}
		})
	}
}
