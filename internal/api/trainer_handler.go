// internal/api/trainer_handler.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/service"
)

type TrainerHandler struct {
	trainerService service.TrainerService
	sessionService service.SessionService
}

func NewTrainerHandler(trainerService service.TrainerService, sessionService service.SessionService) *TrainerHandler {
	return &TrainerHandler{
		trainerService: trainerService,
		sessionService: sessionService,
	}
}

// --- Handler Methods for Trainers ---

// ListTrainers godoc
// @Summary List trainers
// @Tags Trainers
// @Produce json
// @Security BearerAuth
// @Param status query string false "available or busy"
// @Param specialization query string false "Specialization filter"
// @Success 200 {object} Response
// @Router /trainers [get]
func (h *TrainerHandler) ListTrainers(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	trainers, page, err := h.trainerService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, trainers, page)
}

// CreateTrainer godoc
// @Summary Add a trainer
// @Tags Trainers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param trainer body domain.Trainer true "Trainer"
// @Success 201 {object} Response
// @Failure 400 {object} ErrorResponse
// @Router /trainers [post]
func (h *TrainerHandler) CreateTrainer(c *gin.Context) {
	var trainer domain.Trainer
	if !bindJSON(c, &trainer) {
		return
	}
	created, err := h.trainerService.Create(c.Request.Context(), trainer)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Trainer created", created)
}

func (h *TrainerHandler) GetTrainer(c *gin.Context) {
	trainer, err := h.trainerService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, trainer)
}

func (h *TrainerHandler) UpdateTrainer(c *gin.Context) {
	var patch domain.TrainerPatch
	if !bindJSON(c, &patch) {
		return
	}
	trainer, err := h.trainerService.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Trainer updated", trainer)
}

// DeleteTrainer godoc
// @Summary Remove a trainer
// @Description Members keep their assignedTrainer reference; it is weak and may dangle.
// @Tags Trainers
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Success 200 {object} Response
// @Router /trainers/{id} [delete]
func (h *TrainerHandler) DeleteTrainer(c *gin.Context) {
	if err := h.trainerService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Trainer deleted", nil)
}

// --- Handler Methods for Sessions ---

// ListSessions godoc
// @Summary List training sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param trainerId query string false "Trainer filter"
// @Param memberId query string false "Member filter"
// @Param status query string false "Status filter"
// @Success 200 {object} Response
// @Router /sessions [get]
func (h *TrainerHandler) ListSessions(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	sessions, page, err := h.sessionService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, sessions, page)
}

// CreateSession godoc
// @Summary Book a session
// @Description Increments the trainer's total session count, and its current count when the session starts in progress.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session body domain.Session true "Session"
// @Success 201 {object} Response
// @Failure 404 {object} ErrorResponse "Trainer or member not found"
// @Router /sessions [post]
func (h *TrainerHandler) CreateSession(c *gin.Context) {
	var sess domain.Session
	if !bindJSON(c, &sess) {
		return
	}
	created, err := h.sessionService.Create(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Session created", created)
}

func (h *TrainerHandler) GetSession(c *gin.Context) {
	sess, err := h.sessionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, sess)
}

func (h *TrainerHandler) UpdateSession(c *gin.Context) {
	var patch domain.SessionPatch
	if !bindJSON(c, &patch) {
		return
	}
	sess, err := h.sessionService.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Session updated", sess)
}

func (h *TrainerHandler) DeleteSession(c *gin.Context) {
	if err := h.sessionService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Session deleted", nil)
}
