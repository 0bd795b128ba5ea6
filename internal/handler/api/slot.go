package api

import (
	"net/http"

	reqdto "tutor-booking/internal/handler/dto/request"
	resdto "tutor-booking/internal/handler/dto/response"
	"tutor-booking/internal/handler/httperr"
	"tutor-booking/internal/handler/middleware"
	"tutor-booking/internal/pkg/errs"
	"tutor-booking/internal/pkg/jwt"
	"tutor-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

var errForeignProvider = errs.New("tutors may only publish their own slots")

type SlotHandler struct {
	cmds commands.SlotCommands
}

func NewSlotHandler(cmds commands.SlotCommands) *SlotHandler {
	return &SlotHandler{cmds: cmds}
}

// @Summary Publish slots
// @Description Availability feed ingest. Existing windows are skipped.
// @Tags slots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.PublishSlotsRequest true "Slots"
// @Success 200 {object} resdto.PublishSlotsResponse
// @Failure 403 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /internal/slots [post]
func (h *SlotHandler) Publish(c *gin.Context) {
	var req reqdto.PublishSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, errs.Mark(err, errInvalidParam), "Invalid date, expected YYYY-MM-DD", nil)
		return
	}

	if role, _ := middleware.GetUserRole(c); role == jwt.RoleTutor {
		actorID, _ := middleware.GetUserID(c)
		for _, item := range in {
			if item.ProviderID != actorID {
				httperr.AbortWithError(c, http.StatusForbidden, errForeignProvider, "Tutors may only publish their own slots", nil)
				return
			}
		}
	}

	res, err := h.cmds.Publish(c.Request.Context(), in)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.PublishSlotsResponse{Requested: res.Requested, Inserted: res.Inserted})
}
