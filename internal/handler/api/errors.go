package api

import (
	"net/http"

	"tutor-booking/internal/handler/httperr"
	"tutor-booking/internal/pkg/errs"
	"tutor-booking/internal/usecase/commands"
	"tutor-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

var (
	errMissingUser  = errs.New("authenticated user missing from context")
	errInvalidParam = errs.New("invalid request parameter")
)

type errorMapping struct {
	target error
	status int
	msg    string
}

// checked in order; the first match wins
var useCaseErrors = []errorMapping{
	{commands.ErrInvalidSelection, http.StatusUnprocessableEntity, "Slots must be distinct, consecutive and from one provider on one day"},
	{commands.ErrInvalidSlot, http.StatusUnprocessableEntity, "Invalid slot"},
	{commands.ErrInvalidLease, http.StatusBadRequest, "Invalid lease request"},
	{commands.ErrSlotNotFound, http.StatusNotFound, "Slot not found"},
	{commands.ErrSlotUnavailable, http.StatusConflict, "Slot unavailable"},
	{commands.ErrLeaseNotHeld, http.StatusConflict, "Lease not held"},
	{commands.ErrCheckoutNotFound, http.StatusNotFound, "Checkout not found"},
	{commands.ErrInvalidNotification, http.StatusBadRequest, "Invalid payment notification"},
	{commands.ErrGatewayFailure, http.StatusBadGateway, "Payment gateway unavailable"},
	{commands.ErrBookingNotFound, http.StatusNotFound, "Booking not found"},
	{commands.ErrBookingNotOwned, http.StatusForbidden, "Booking belongs to another student"},
	{commands.ErrBookingAlreadyCanceled, http.StatusConflict, "Booking already canceled"},
	{queries.ErrNotFound, http.StatusNotFound, "Not found"},
	{queries.ErrNotVisible, http.StatusNotFound, "Not found"},
	{queries.ErrInvalidCursor, http.StatusBadRequest, "Invalid cursor"},
}

func abortWithUseCaseError(c *gin.Context, err error) {
	for _, m := range useCaseErrors {
		if errs.Is(err, m.target) {
			httperr.AbortWithError(c, m.status, err, m.msg, nil)
			return
		}
	}
	httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
}
