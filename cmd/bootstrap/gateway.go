package bootstrap

import (
	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/handler/api"
	"tutor-booking/internal/infra/gateway"
	"tutor-booking/internal/pkg/config"

	"github.com/omise/omise-go"
	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		func(cfg config.Config) (*omise.Client, error) {
			return gateway.NewOmiseClient(cfg.Payment)
		},
		fx.Annotate(
			func(client *omise.Client, cfg config.Config) *gateway.OmiseGateway {
				return gateway.NewOmiseGateway(client, cfg.Payment)
			},
			fx.As(new(payment.Gateway)),
			fx.As(new(payment.Refunder)),
			fx.As(new(api.EventVerifier)),
		),
	),
)
