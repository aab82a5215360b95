package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

// Response is the envelope of every successful reply.
type Response struct {
	Success    bool                   `json:"success"`
	Data       any                    `json:"data"`
	Message    string                 `json:"message,omitempty"`
	Pagination *repository.Pagination `json:"pagination,omitempty"`
	LastSynced *time.Time             `json:"lastSynced,omitempty"`
}

type ErrorBody struct {
	Code    apperr.Kind         `json:"code"`
	Message string              `json:"message"`
	Fields  []apperr.FieldError `json:"fields,omitempty"`
}

// ErrorResponse is the envelope of every failed reply.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Data: data, Message: message})
}

func respondPage[T any](c *gin.Context, items []T, page repository.Pagination) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: items, Pagination: &page})
}

// respondError renders err with the status of its kind. Errors outside the
// taxonomy are reported as internal without leaking their text.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal("internal server error", err)
	}
	message := e.Message
	if e.Kind == apperr.KindInternal {
		message = "internal server error"
	}
	c.AbortWithStatusJSON(e.HTTPStatus(), ErrorResponse{
		Error: ErrorBody{Code: e.Kind, Message: message, Fields: e.Fields},
	})
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, kind apperr.Kind, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Error: ErrorBody{Code: kind, Message: message}})
}

// bindJSON decodes the body into dst and runs its binding rules. On failure the
// response is already written.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, bindingError(err))
		return false
	}
	return true
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperr.Validation("validation failed", domain.FieldErrors(verrs)...)
	}
	return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
}
