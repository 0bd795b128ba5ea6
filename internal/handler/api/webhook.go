package api

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-booking/internal/domain/payment"
	reqdto "tutor-booking/internal/handler/dto/request"
	"tutor-booking/internal/handler/httperr"
	"tutor-booking/internal/pkg/errs"
	"tutor-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// EventVerifier confirms a webhook event with the gateway. ok is false for
// events that carry no payment outcome.
type EventVerifier interface {
	VerifyEvent(ctx context.Context, eventID string) (n payment.Notification, ok bool, err error)
}

type WebhookHandler struct {
	verifier EventVerifier
	cmds     commands.ReservationCommands
}

func NewWebhookHandler(verifier EventVerifier, cmds commands.ReservationCommands) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, cmds: cmds}
}

// @Summary Omise webhook
// @Description Settles a checkout from a verified charge.complete event
// @Tags webhooks
// @Accept json
// @Param request body reqdto.OmiseWebhookRequest true "Event"
// @Success 200 "OK"
// @Failure 401 {object} httperr.Response
// @Router /webhooks/omise [post]
func (h *WebhookHandler) Omise(c *gin.Context) {
	var req reqdto.OmiseWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	ctx := c.Request.Context()
	n, ok, err := h.verifier.VerifyEvent(ctx, req.ID)
	if err != nil {
		slog.WarnContext(ctx, "webhook event rejected", "event_id", req.ID, "error", err.Error())
		httperr.AbortWithError(c, http.StatusUnauthorized, err, "Event could not be verified", nil)
		return
	}
	if !ok {
		c.Status(http.StatusOK)
		return
	}

	res, err := h.cmds.HandlePaymentNotification(ctx, n)
	switch {
	case err == nil:
		slog.InfoContext(ctx, "webhook settled checkout",
			"event_id", req.ID,
			"intent_id", res.IntentID,
			"state", res.State.String())
		c.Status(http.StatusOK)
	case errs.Is(err, commands.ErrCheckoutNotFound):
		// charges created outside this service
		c.Status(http.StatusOK)
	default:
		abortWithUseCaseError(c, err)
	}
}
