package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tristar/fitness-hub/internal/service"
)

type ActivityHandler struct {
	activityService service.ActivityService
	checkInService  service.CheckInService
}

func NewActivityHandler(activityService service.ActivityService, checkInService service.CheckInService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService, checkInService: checkInService}
}

type ClearResponse struct {
	Cleared int64 `json:"cleared"`
}

// ListActivities godoc
// @Summary Activity log, newest first
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param type query string false "Entry type"
// @Param memberId query string false "Member filter"
// @Success 200 {object} Response
// @Router /activities [get]
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	activities, page, err := h.activityService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, activities, page)
}

// ClearActivities godoc
// @Summary Clear the activity log
// @Tags Activities
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 403 {object} ErrorResponse "Owner only"
// @Router /activities [delete]
func (h *ActivityHandler) ClearActivities(c *gin.Context) {
	n, err := h.activityService.Clear(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Activity log cleared", ClearResponse{Cleared: n})
}

func (h *ActivityHandler) ListCheckIns(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	checkIns, page, err := h.checkInService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, checkIns, page)
}
