package api

import (
	"net/http"
	"time"

	reqdto "tutor-booking/internal/handler/dto/request"
	resdto "tutor-booking/internal/handler/dto/response"
	"tutor-booking/internal/handler/httperr"
	"tutor-booking/internal/pkg/errs"
	"tutor-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AvailabilityHandler struct {
	q queries.AvailabilityQueries
}

func NewAvailabilityHandler(q queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{q: q}
}

// @Summary List availability
// @Description Bookable slots for a provider on one day, ordered by start time
// @Tags availability
// @Produce json
// @Param providerId path string true "Provider ID"
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Router /providers/{providerId}/availability [get]
func (h *AvailabilityHandler) List(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("providerId"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, errs.Mark(err, errInvalidParam), "Invalid provider id", nil)
		return
	}
	rawDate := c.Query("date")
	date, err := time.Parse(reqdto.DateLayout, rawDate)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, errs.Mark(err, errInvalidParam), "Invalid date, expected YYYY-MM-DD", nil)
		return
	}

	resp := resdto.AvailabilityResponse{
		ProviderID: providerID,
		Date:       rawDate,
		Slots:      []resdto.AvailableSlotResponse{},
	}
	for s, err := range h.q.List(c.Request.Context(), providerID, date) {
		if err != nil {
			abortWithUseCaseError(c, err)
			return
		}
		resp.Slots = append(resp.Slots, resdto.FromAvailableSlot(s))
	}
	c.JSON(http.StatusOK, resp)
}
