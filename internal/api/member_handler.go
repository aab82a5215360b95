package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/service"
)

type MemberHandler struct {
	memberService service.MemberService
}

func NewMemberHandler(memberService service.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// --- DTOs ---

type CreateMemberRequest struct {
	Name            string                `json:"name" binding:"required"`
	Email           string                `json:"email" binding:"required,email"`
	Phone           string                `json:"phone" binding:"required"`
	MembershipType  domain.MembershipType `json:"membershipType" binding:"required,oneof=monthly quarterly annual"`
	Status          domain.MemberStatus   `json:"status" binding:"omitempty,oneof=active inactive expired pending suspended"`
	StartDate       *time.Time            `json:"startDate"`
	ExpiryDate      *time.Time            `json:"expiryDate"`
	AssignedTrainer *string               `json:"assignedTrainer"`
}

func (r CreateMemberRequest) toDomain() domain.Member {
	m := domain.Member{
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		MembershipType:  r.MembershipType,
		Status:          r.Status,
		AssignedTrainer: r.AssignedTrainer,
	}
	if r.StartDate != nil {
		m.StartDate = r.StartDate.UTC()
	}
	if r.ExpiryDate != nil {
		m.ExpiryDate = r.ExpiryDate.UTC()
	}
	return m
}

type CheckInResponse struct {
	Member  *domain.Member  `json:"member"`
	CheckIn *domain.CheckIn `json:"checkIn"`
}

type ExpireResponse struct {
	Expired int             `json:"expired"`
	Members []domain.Member `json:"members"`
}

// --- Handler Methods ---

// ListMembers godoc
// @Summary List members
// @Description Filters (status, membershipType, email, phone, trainerId) are exact matches; search matches name, email and phone.
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Param sortBy query string false "Sort field"
// @Param sortOrder query string false "asc or desc"
// @Param search query string false "Substring search"
// @Success 200 {object} Response
// @Failure 400 {object} ErrorResponse
// @Router /members [get]
func (h *MemberHandler) ListMembers(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	members, page, err := h.memberService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, members, page)
}

// CreateMember godoc
// @Summary Register a member
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param member body CreateMemberRequest true "Member details"
// @Success 201 {object} Response
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 409 {object} ErrorResponse "Email or phone already registered"
// @Router /members [post]
func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req CreateMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	member, err := h.memberService.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Member created", member)
}

// GetMember godoc
// @Summary Get a member with sessions, invoices and recent activity
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 200 {object} Response
// @Failure 404 {object} ErrorResponse
// @Router /members/{id} [get]
func (h *MemberHandler) GetMember(c *gin.Context) {
	details, err := h.memberService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, details)
}

// UpdateMember godoc
// @Summary Update a member
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Param patch body domain.MemberPatch true "Fields to change"
// @Success 200 {object} Response
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /members/{id} [put]
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	var patch domain.MemberPatch
	if !bindJSON(c, &patch) {
		return
	}
	member, err := h.memberService.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Member updated", member)
}

// DeleteMember godoc
// @Summary Delete a member and its invoices and follow-ups
// @Tags Members
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 200 {object} Response
// @Failure 403 {object} ErrorResponse "Owner only"
// @Failure 404 {object} ErrorResponse
// @Router /members/{id} [delete]
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	if err := h.memberService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Member deleted", nil)
}

// CheckIn godoc
// @Summary Record a visit
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 201 {object} Response
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Membership is not active"
// @Router /members/{id}/checkin [post]
func (h *MemberHandler) CheckIn(c *gin.Context) {
	member, checkIn, err := h.memberService.CheckIn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Check-in recorded", CheckInResponse{Member: member, CheckIn: checkIn})
}

// Renew godoc
// @Summary Renew a membership
// @Description Starts a new term at startDate (default now) and optionally issues an invoice for it.
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Param renewal body service.RenewRequest true "Renewal"
// @Success 200 {object} Response
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /members/{id}/renew [post]
func (h *MemberHandler) Renew(c *gin.Context) {
	var req service.RenewRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.memberService.Renew(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Membership renewed", result)
}

// ExpiringSoon godoc
// @Summary Active members expiring within a number of days
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (1-90, default 30)"
// @Success 200 {object} Response
// @Failure 400 {object} ErrorResponse
// @Router /members/expiring-soon [get]
func (h *MemberHandler) ExpiringSoon(c *gin.Context) {
	days := service.DefaultExpiringDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperr.Field("days", "must be an integer"))
			return
		}
		days = n
		if days == 0 {
			// Zero would select the default inside the service.
			days = -1
		}
	}
	members, err := h.memberService.ExpiringSoon(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	if members == nil {
		members = []domain.Member{}
	}
	respond(c, http.StatusOK, members)
}

// Stats godoc
// @Summary Member statistics
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 200 {object} Response
// @Failure 404 {object} ErrorResponse
// @Router /members/{id}/stats [get]
func (h *MemberHandler) Stats(c *gin.Context) {
	stats, err := h.memberService.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, stats)
}

// ExpireLapsed godoc
// @Summary Run the membership expiry sweep now
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /members/expire [post]
func (h *MemberHandler) ExpireLapsed(c *gin.Context) {
	expired, err := h.memberService.ExpireLapsed(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if expired == nil {
		expired = []domain.Member{}
	}
	respond(c, http.StatusOK, ExpireResponse{Expired: len(expired), Members: expired})
}
