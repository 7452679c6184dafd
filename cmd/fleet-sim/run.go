package main

import (
	"fmt"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/okian/fieldforce/internal/simulate"
	"github.com/okian/fieldforce/pkg/logger"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Post simulated samples and print the fleet summary",
	Long: `Run generates a random walk for every member around a center point and
submits the samples concurrently. Each member posts as itself through the
X-User-ID header; the summary is read as --caller.`,
	RunE: runSimulation,
}

func init() {
	defaults := simulate.DefaultConfig()
	f := runCmd.Flags()
	f.String("url", defaults.BaseURL, "base URL of the tracker")
	f.StringSlice("members", defaults.Members, "user ids that post samples")
	f.Int("samples", defaults.Samples, "samples per member")
	f.Int("workers", runtime.NumCPU()*2, "concurrent submitters")
	f.Duration("timeout", defaults.Timeout, "HTTP request timeout")
	f.String("caller", defaults.Caller, "user id that reads the fleet summary")
	f.Float64("center-lat", defaults.Center.Lat, "latitude every walk starts at")
	f.Float64("center-lng", defaults.Center.Lng, "longitude every walk starts at")
	f.Float64("step-km", defaults.StepKm, "largest leg of the walk in km")
	f.Duration("interval", defaults.Interval, "spacing between a member's samples")
	f.Uint64("seed", defaults.Seed, "random walk seed")
	f.Duration("settle", defaults.Settle, "longest wait for the tracker to store samples")
	f.Bool("verbose", false, "log every rejected sample")

	rootCmd.AddCommand(runCmd)
}

func configFromFlags(cmd *cobra.Command) (simulate.Config, error) {
	f := cmd.Flags()
	cfg := simulate.DefaultConfig()
	var err error
	if cfg.BaseURL, err = f.GetString("url"); err != nil {
		return cfg, err
	}
	if cfg.Members, err = f.GetStringSlice("members"); err != nil {
		return cfg, err
	}
	if cfg.Samples, err = f.GetInt("samples"); err != nil {
		return cfg, err
	}
	if cfg.Workers, err = f.GetInt("workers"); err != nil {
		return cfg, err
	}
	if cfg.Timeout, err = f.GetDuration("timeout"); err != nil {
		return cfg, err
	}
	if cfg.Caller, err = f.GetString("caller"); err != nil {
		return cfg, err
	}
	if cfg.Center.Lat, err = f.GetFloat64("center-lat"); err != nil {
		return cfg, err
	}
	if cfg.Center.Lng, err = f.GetFloat64("center-lng"); err != nil {
		return cfg, err
	}
	if cfg.StepKm, err = f.GetFloat64("step-km"); err != nil {
		return cfg, err
	}
	if cfg.Interval, err = f.GetDuration("interval"); err != nil {
		return cfg, err
	}
	if cfg.Seed, err = f.GetUint64("seed"); err != nil {
		return cfg, err
	}
	if cfg.Settle, err = f.GetDuration("settle"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")

	if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := simulate.Run(ctx, cfg, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	return nil
}
