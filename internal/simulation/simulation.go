// Package simulation drives concurrent arrivals and departures through an
// Attendant to exercise the facility under contention.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"

	"parking-facility/internal/logging"
	"parking-facility/internal/parking"
)

var colors = []string{"White", "Black", "Red", "Blue", "Silver", "Green"}

var kinds = []parking.VehicleKind{parking.Motorcycle, parking.Car, parking.Truck}

type Report struct {
	Admitted     int64         `json:"admitted"`
	GaveUp       int64         `json:"gave_up"`
	Departed     int64         `json:"departed"`
	Inconsistent int64         `json:"inconsistent"`
	Failed       int64         `json:"failed"`
	Revenue      float64       `json:"revenue"`
	Elapsed      time.Duration `json:"elapsed"`
}

type counters struct {
	admitted     atomic.Int64
	gaveUp       atomic.Int64
	departed     atomic.Int64
	inconsistent atomic.Int64
	failed       atomic.Int64
	revenueCents atomic.Int64
}

// Run parks cfg.Vehicles vehicles across cfg.Workers goroutines. A vehicle
// that finds no spot retries with exponential backoff and gives up after
// cfg.MaxTries attempts. Admitted vehicles stay for a random dwell up to
// cfg.MaxDwell and then leave.
func Run(ctx context.Context, cfg Config, attendant *parking.Attendant) (Report, error) {
	if cfg.Workers <= 0 {
		return Report{}, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.MaxTries <= 0 {
		cfg.MaxTries = 1
	}

	logging.Info(ctx, "starting simulation",
		slog.Int("workers", cfg.Workers),
		slog.Int("vehicles", cfg.Vehicles),
		slog.Duration("max_dwell", cfg.MaxDwell),
		slog.Int("max_tries", cfg.MaxTries),
	)

	var (
		c     counters
		start = time.Now()
		jobs  = make(chan int, cfg.Workers*2)
		wg    sync.WaitGroup
	)

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for n := range jobs {
				visit(ctx, cfg, attendant, &c, workerID, n)
			}
		}(i)
	}

feed:
	for n := 0; n < cfg.Vehicles; n++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- n:
		}
	}
	close(jobs)
	wg.Wait()

	report := Report{
		Admitted:     c.admitted.Load(),
		GaveUp:       c.gaveUp.Load(),
		Departed:     c.departed.Load(),
		Inconsistent: c.inconsistent.Load(),
		Failed:       c.failed.Load(),
		Revenue:      float64(c.revenueCents.Load()) / 100,
		Elapsed:      time.Since(start),
	}

	logging.Info(ctx, "simulation complete",
		slog.Int64("admitted", report.Admitted),
		slog.Int64("gave_up", report.GaveUp),
		slog.Int64("departed", report.Departed),
		slog.Float64("revenue", report.Revenue),
		slog.Duration("elapsed", report.Elapsed),
	)
	return report, ctx.Err()
}

func visit(ctx context.Context, cfg Config, attendant *parking.Attendant, c *counters, workerID, n int) {
	vehicle := parking.NewVehicle(fmt.Sprintf("SIM-%02d-%05d", workerID, n), RandomChoice(colors), RandomChoice(kinds))

	ticket, err := admit(ctx, cfg, attendant, vehicle)
	if err != nil {
		if parking.IsUnavailable(err) {
			c.gaveUp.Add(1)
			logging.Debug(ctx, "vehicle gave up",
				slog.String("registration", vehicle.RegistrationNumber),
				slog.String("kind", vehicle.Kind.String()),
			)
		} else {
			c.failed.Add(1)
		}
		return
	}
	c.admitted.Add(1)

	select {
	case <-time.After(RandomDuration(cfg.MaxDwell)):
	case <-ctx.Done():
	}

	// leave even when cancelled so the run does not strand claimed spots
	ticket, err = attendant.Leave(context.WithoutCancel(ctx), ticket.ID())
	switch {
	case err == nil:
		c.departed.Add(1)
	case errors.Is(err, parking.ErrInconsistent):
		c.inconsistent.Add(1)
	default:
		c.failed.Add(1)
		return
	}
	if price, ok := ticket.Price(); ok {
		c.revenueCents.Add(int64(math.Round(price * 100)))
	}
}

func admit(ctx context.Context, cfg Config, attendant *parking.Attendant, vehicle *parking.Vehicle) (*parking.Ticket, error) {
	bo := backoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		bo.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		bo.MaxInterval = cfg.MaxInterval
	}

	return backoff.Retry(ctx, func() (*parking.Ticket, error) {
		ticket, err := attendant.Park(ctx, vehicle)
		if err != nil && !parking.IsUnavailable(err) {
			return nil, backoff.Permanent(err)
		}
		return ticket, err
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(cfg.MaxTries)),
	)
}
