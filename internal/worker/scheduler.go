package worker

import (
	"context"
	"log/slog"
	"time"

	"tutor-booking/internal/pkg/config"
	"tutor-booking/internal/pkg/errs"
	"tutor-booking/internal/usecase/commands"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 30 * time.Second

// Scheduler runs the periodic jobs. Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(cfg config.JobsConfig, relay *OutboxRelay, reservations commands.ReservationCommands) (*Scheduler, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	if _, err := c.AddFunc(cfg.OutboxRelaySpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if _, err := relay.RunOnce(ctx); err != nil {
			slog.Error("outbox relay run failed", "error", err.Error())
		}
	}); err != nil {
		return nil, errs.Wrapf(err, "schedule outbox relay %q", cfg.OutboxRelaySpec)
	}

	if _, err := c.AddFunc(cfg.CheckoutSweepSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		n, err := reservations.ExpireLapsed(ctx)
		if err != nil {
			slog.Error("checkout sweep failed", "error", err.Error())
			return
		}
		if n > 0 {
			slog.Info("expired lapsed checkouts", "count", n)
		}
	}); err != nil {
		return nil, errs.Wrapf(err, "schedule checkout sweep %q", cfg.CheckoutSweepSpec)
	}

	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs or until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
