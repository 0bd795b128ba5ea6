package bootstrap

import (
	"context"
	"log/slog"

	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/pkg/clock"
	"tutor-booking/internal/pkg/config"
	"tutor-booking/internal/usecase/commands"
	"tutor-booking/internal/usecase/shared"
	"tutor-booking/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewOutboxRelay,
		NewScheduler,
		worker.NewPaymentConsumer,
	),
	fx.Invoke(startWorkers),
)

func NewOutboxRelay(
	uow shared.UnitOfWork,
	publisher worker.EventPublisher,
	refunder payment.Refunder,
	clk clock.Clock,
	cfg config.Config,
) *worker.OutboxRelay {
	return worker.NewOutboxRelay(uow, publisher, refunder, clk, cfg.Jobs.OutboxBatchSize)
}

func NewScheduler(cfg config.Config, relay *worker.OutboxRelay, reservations commands.ReservationCommands) (*worker.Scheduler, error) {
	return worker.NewScheduler(cfg.Jobs, relay, reservations)
}

func startWorkers(lc fx.Lifecycle, scheduler *worker.Scheduler, consumer *worker.PaymentConsumer, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if err := consumer.Run(ctx); err != nil {
				cancel()
				return err
			}
			scheduler.Start()
			logger.Info("workers started", "jobs", scheduler.Entries())
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			return scheduler.Stop(stopCtx)
		},
	})
}
