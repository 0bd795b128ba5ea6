package components

import (
	"tutor-booking/internal/domain/booking"
	"tutor-booking/internal/pkg/clock"
	"tutor-booking/internal/pkg/config"
	"tutor-booking/internal/usecase"
	"tutor-booking/internal/usecase/commands"
	"tutor-booking/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		func(cfg config.Config) *booking.HourlyPriceCalculator {
			return booking.NewHourlyPriceCalculator(cfg.Pricing.HourlyRateCents, cfg.Pricing.Currency)
		},
		fx.As(new(booking.PriceCalculator)),
	),
	func(cfg config.Config) commands.LeaseTTL {
		return commands.LeaseTTL(cfg.Lease.TTL)
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewLeaseManager,
		commands.NewReservationUseCase,
		commands.NewBookingUseCase,
		commands.NewSlotUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewAvailabilityQueries,
		queries.NewBookingQueries,
		queries.NewCheckoutQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
