package components

import (
	"tutor-booking/internal/handler"
	"tutor-booking/internal/handler/api"
	"tutor-booking/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAvailabilityHandler,
		api.NewReservationHandler,
		api.NewBookingHandler,
		api.NewWebhookHandler,
		api.NewSlotHandler,
		NewHandlers,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	availability *api.AvailabilityHandler,
	reservation *api.ReservationHandler,
	booking *api.BookingHandler,
	webhook *api.WebhookHandler,
	slot *api.SlotHandler,
) handler.Handlers {
	return handler.Handlers{
		Availability: availability,
		Reservation:  reservation,
		Booking:      booking,
		Webhook:      webhook,
		Slot:         slot,
	}
}
