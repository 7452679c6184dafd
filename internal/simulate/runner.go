// Package simulate drives a tracker instance with random-walk location
// samples and reports the resulting fleet view.
package simulate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fieldforce/internal/domain/model"
	"github.com/okian/fieldforce/pkg/logger"
)

const settlePoll = 100 * time.Millisecond

// Run executes a complete simulation and writes a summary to out.
func Run(ctx context.Context, cfg Config, out io.Writer) (Report, error) {
	if len(cfg.Members) == 0 || cfg.Samples < 1 {
		return Report{}, ErrNoMembers
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	log := logger.Get().Named("simulate")
	start := time.Now()
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting fleet simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("members", len(cfg.Members)),
		logger.Int("samples", cfg.Samples),
		logger.Int("workers", cfg.Workers),
	)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return Report{}, err
	}
	before, err := client.Stored(ctx)
	if err != nil {
		return Report{}, err
	}

	// Step 2: Generate the walks
	samples := NewGenerator(cfg.Center, cfg.StepKm, cfg.Interval, cfg.Seed).Generate(cfg.Members, cfg.Samples, time.Now())
	report := Report{Generated: len(samples)}

	// Step 3: Submit concurrently
	accepted, duplicate, rejected := submit(ctx, client, cfg.Workers, samples, log)
	report.Accepted, report.Duplicate, report.Rejected = accepted, duplicate, rejected

	// Step 4: Wait for the workers to store what was accepted
	if err := settle(ctx, client, before+accepted, cfg.Settle); err != nil {
		log.Warn(ctx, "service did not settle", logger.Error(err))
	}

	// Step 5: Read the fleet
	fleet, err := client.Fleet(ctx, cfg.Caller)
	if err != nil {
		return report, err
	}
	report.Fleet = fleet
	report.Duration = time.Since(start)

	printReport(out, report)
	return report, nil
}

// submit posts samples with a pool of workers and counts the outcomes.
func submit(ctx context.Context, client *Client, workers int, samples []model.LocationSample, log logger.Logger) (int64, int64, int64) {
	var accepted, duplicate, rejected atomic.Int64
	jobs := make(chan model.LocationSample, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				code, _, err := client.PostSample(ctx, s)
				switch {
				case err != nil:
					rejected.Add(1)
					log.Debug(ctx, "post failed", logger.String("sample_id", s.ID), logger.Error(err))
				case code == http.StatusAccepted:
					accepted.Add(1)
				case code == http.StatusOK:
					duplicate.Add(1)
				default:
					rejected.Add(1)
					log.Debug(ctx, "sample rejected", logger.String("sample_id", s.ID), logger.Int("status", code))
				}
			}
		}()
	}

feed:
	for _, s := range samples {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- s:
		}
	}
	close(jobs)
	wg.Wait()
	return accepted.Load(), duplicate.Load(), rejected.Load()
}

// settle polls until the service reports at least want stored samples.
func settle(ctx context.Context, client *Client, want int64, limit time.Duration) error {
	deadline := time.Now().Add(limit)
	for {
		stored, err := client.Stored(ctx)
		if err == nil && stored >= want {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %d of %d stored", ErrNotSettled, stored, want)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settlePoll):
		}
	}
}

func printReport(out io.Writer, r Report) {
	fmt.Fprintf(out, "Samples:   %d generated, %d accepted, %d duplicate, %d rejected\n",
		r.Generated, r.Accepted, r.Duplicate, r.Rejected)
	fmt.Fprintf(out, "Fleet:     %d members, %d tracked\n", r.Fleet.TeamSize, r.Fleet.Tracked)
	fmt.Fprintf(out, "Activity:  %d active, %d idle, %d offline\n", r.Fleet.Active, r.Fleet.Idle, r.Fleet.Offline)
	fmt.Fprintf(out, "In field:  %d (%d%%)\n", r.Fleet.InField, r.Fleet.InFieldPercent)
	fmt.Fprintf(out, "Duration:  %s\n", r.Duration.Round(time.Millisecond))
}
