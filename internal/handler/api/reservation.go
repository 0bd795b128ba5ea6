package api

import (
	"net/http"

	reqdto "tutor-booking/internal/handler/dto/request"
	resdto "tutor-booking/internal/handler/dto/response"
	"tutor-booking/internal/handler/httperr"
	"tutor-booking/internal/handler/middleware"
	"tutor-booking/internal/usecase/commands"
	"tutor-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	cmds      commands.ReservationCommands
	leases    commands.LeaseCommands
	checkouts queries.CheckoutQueries
	bookings  queries.BookingQueries
}

func NewReservationHandler(
	cmds commands.ReservationCommands,
	leases commands.LeaseCommands,
	checkouts queries.CheckoutQueries,
	bookings queries.BookingQueries,
) *ReservationHandler {
	return &ReservationHandler{
		cmds:      cmds,
		leases:    leases,
		checkouts: checkouts,
		bookings:  bookings,
	}
}

// @Summary Reserve slots
// @Description Lease a consecutive selection. Leases are advisory; another holder's lease is replaced.
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body reqdto.ReserveRequest true "Selection"
// @Success 200 {object} resdto.LeaseResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /reservations/reserve [post]
func (h *ReservationHandler) Reserve(c *gin.Context) {
	var req reqdto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	res, err := h.cmds.Reserve(c.Request.Context(), req.ToInput())
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReserveResult(res))
}

// @Summary Extend lease
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body reqdto.LeaseRequest true "Lease"
// @Success 200 {object} resdto.LeaseResponse
// @Failure 409 {object} httperr.Response
// @Router /reservations/lease/extend [post]
func (h *ReservationHandler) ExtendLease(c *gin.Context) {
	var req reqdto.LeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	lease, err := h.leases.Extend(c.Request.Context(), req.LeaseToken, req.SlotIDs)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.LeaseResponse{
		SlotIDs:        req.SlotIDs,
		LeaseToken:     lease.Token(),
		LeaseExpiresAt: lease.ExpiresAt(),
	})
}

// @Summary Release lease
// @Tags reservations
// @Accept json
// @Param request body reqdto.LeaseRequest true "Lease"
// @Success 204 "No Content"
// @Failure 409 {object} httperr.Response
// @Router /reservations/lease/release [post]
func (h *ReservationHandler) ReleaseLease(c *gin.Context) {
	var req reqdto.LeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	if err := h.leases.Release(c.Request.Context(), req.LeaseToken, req.SlotIDs); err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Checkout
// @Description Price the selection, lease it and open a payment intent
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CheckoutRequest true "Selection"
// @Success 201 {object} resdto.CheckoutResponse
// @Failure 401 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /reservations/checkout [post]
func (h *ReservationHandler) Checkout(c *gin.Context) {
	studentID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingUser, "Unauthorized", nil)
		return
	}
	var req reqdto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	res, err := h.cmds.Checkout(c.Request.Context(), req.ToInput(studentID))
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromCheckoutResult(res))
}

// @Summary Confirm payment
// @Description Ask the gateway for the intent's outcome and settle the checkout. 202 while payment is pending.
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ConfirmRequest true "Intent"
// @Success 200 {object} resdto.SettlementResponse
// @Success 202 {object} resdto.SettlementResponse
// @Failure 404 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /reservations/confirm [post]
func (h *ReservationHandler) Confirm(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingUser, "Unauthorized", nil)
		return
	}
	var req reqdto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	// ownership check before touching the gateway
	if _, err := h.checkouts.GetByIntentID(c.Request.Context(), actorID, req.IntentID); err != nil {
		abortWithUseCaseError(c, err)
		return
	}

	res, err := h.cmds.Confirm(c.Request.Context(), req.IntentID)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	if !res.IsFinal() {
		c.JSON(http.StatusAccepted, resdto.FromSettlement(res, nil))
		return
	}

	var view *queries.BookingView
	if res.BookingID != nil {
		view, err = h.bookings.GetByID(c.Request.Context(), actorID, *res.BookingID)
		if err != nil {
			abortWithUseCaseError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, resdto.FromSettlement(res, view))
}

// @Summary Get checkout
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param intentId path string true "Payment intent ID"
// @Success 200 {object} queries.CheckoutView
// @Failure 404 {object} httperr.Response
// @Router /reservations/checkouts/{intentId} [get]
func (h *ReservationHandler) GetCheckout(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingUser, "Unauthorized", nil)
		return
	}
	view, err := h.checkouts.GetByIntentID(c.Request.Context(), actorID, c.Param("intentId"))
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
