package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/service"
)

// FrontDeskHandler serves visitors and follow-up tasks.
type FrontDeskHandler struct {
	visitorService  service.VisitorService
	followUpService service.FollowUpService
}

func NewFrontDeskHandler(visitorService service.VisitorService, followUpService service.FollowUpService) *FrontDeskHandler {
	return &FrontDeskHandler{visitorService: visitorService, followUpService: followUpService}
}

// --- Visitors ---

func (h *FrontDeskHandler) ListVisitors(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	visitors, page, err := h.visitorService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, visitors, page)
}

func (h *FrontDeskHandler) CreateVisitor(c *gin.Context) {
	var visitor domain.Visitor
	if !bindJSON(c, &visitor) {
		return
	}
	created, err := h.visitorService.Create(c.Request.Context(), visitor)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Visitor checked in", created)
}

func (h *FrontDeskHandler) GetVisitor(c *gin.Context) {
	visitor, err := h.visitorService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, visitor)
}

func (h *FrontDeskHandler) UpdateVisitor(c *gin.Context) {
	var patch domain.VisitorPatch
	if !bindJSON(c, &patch) {
		return
	}
	visitor, err := h.visitorService.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Visitor updated", visitor)
}

func (h *FrontDeskHandler) DeleteVisitor(c *gin.Context) {
	if err := h.visitorService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Visitor deleted", nil)
}

// --- Follow-ups ---

// ListFollowUps godoc
// @Summary List follow-up tasks
// @Tags FollowUps
// @Produce json
// @Security BearerAuth
// @Param memberId query string false "Member filter"
// @Param visitorId query string false "Visitor filter"
// @Param status query string false "Status filter"
// @Param type query string false "Type filter"
// @Param priority query string false "Priority filter"
// @Success 200 {object} Response
// @Router /followups [get]
func (h *FrontDeskHandler) ListFollowUps(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	followUps, page, err := h.followUpService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, followUps, page)
}

// CreateFollowUp godoc
// @Summary Create a follow-up
// @Description Exactly one of memberId and visitorId must be set.
// @Tags FollowUps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param followUp body domain.FollowUp true "Follow-up"
// @Success 201 {object} Response
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Member or visitor not found"
// @Router /followups [post]
func (h *FrontDeskHandler) CreateFollowUp(c *gin.Context) {
	var f domain.FollowUp
	if !bindJSON(c, &f) {
		return
	}
	created, err := h.followUpService.Create(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Follow-up created", created)
}

func (h *FrontDeskHandler) GetFollowUp(c *gin.Context) {
	f, err := h.followUpService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, f)
}

func (h *FrontDeskHandler) UpdateFollowUp(c *gin.Context) {
	var patch domain.FollowUpPatch
	if !bindJSON(c, &patch) {
		return
	}
	f, err := h.followUpService.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Follow-up updated", f)
}

func (h *FrontDeskHandler) DeleteFollowUp(c *gin.Context) {
	if err := h.followUpService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Follow-up deleted", nil)
}
