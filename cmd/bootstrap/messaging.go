package bootstrap

import (
	"context"

	"tutor-booking/internal/infra/mq"
	"tutor-booking/internal/pkg/config"
	"tutor-booking/internal/worker"

	"go.uber.org/fx"
)

var MessagingModule = fx.Module("messaging",
	fx.Provide(
		fx.Annotate(
			NewPublisher,
			fx.As(new(worker.EventPublisher)),
		),
		fx.Annotate(
			NewConsumer,
			fx.As(new(worker.DeliverySource)),
		),
	),
)

func NewPublisher(lc fx.Lifecycle, cfg config.Config) (*mq.Publisher, error) {
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.BookingExchange)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})

	return publisher, nil
}

func NewConsumer(lc fx.Lifecycle, cfg config.Config) (*mq.Consumer, error) {
	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.PaymentExchange, cfg.MQ.PaymentQueue, cfg.MQ.PaymentRoutingKey)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return consumer.Close()
		},
	})

	return consumer, nil
}
