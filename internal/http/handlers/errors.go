// Package handlers defines HTTP-layer error codes used across all API
// endpoints and the mapping from service errors to statuses.
//
// Codes are lowercase snake_case and stable; clients branch on them rather
// than on messages.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/support-chat-backend/internal/http/middleware"
	"github.com/tbourn/support-chat-backend/internal/services"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeValidation   = "validation_failed"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeTooLarge     = "payload_too_large"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeUnsupportedModel   = "unsupported_model"
	ErrCodeOAuthFailed        = "oauth_failed"
	ErrCodeOAuthDisabled      = "oauth_disabled"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
)

// failErr maps a service error onto the envelope. Anything unknown is a
// 500 whose cause is logged but not echoed to the client.
func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthenticated")
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid credentials")
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrAdminSecret):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, services.ErrConversationNotFound),
		errors.Is(err, services.ErrTicketNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrFileNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		failValidation(c, "email", "has already been taken")
	case errors.Is(err, services.ErrInvalidEvaluation):
		failValidation(c, "evaluation", "must be one of: jaime jenaimepas")
	case errors.Is(err, services.ErrInvalidStatus):
		failValidation(c, "status", "must be one of: open closed")
	case errors.Is(err, services.ErrInvalidRange):
		failValidation(c, "end_date", "must not be before start_date")
	case errors.Is(err, services.ErrRangeTooLong):
		failValidation(c, "start_date", fmt.Sprintf("range must not exceed %d days", services.MaxDashboardDays))
	case errors.Is(err, services.ErrEmptyPrompt):
		failValidation(c, "prompt", "is required")
	case errors.Is(err, services.ErrInvalidInput):
		fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	case errors.Is(err, services.ErrUnsupportedModel):
		fail(c, http.StatusUnprocessableEntity, ErrCodeUnsupportedModel, err.Error())
	case errors.Is(err, services.ErrFileTooLarge):
		fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, err.Error())
	case errors.Is(err, services.ErrOAuthDisabled):
		fail(c, http.StatusNotFound, ErrCodeOAuthDisabled, err.Error())
	case errors.Is(err, services.ErrOAuthState), errors.Is(err, services.ErrOAuthExchange):
		fail(c, http.StatusBadRequest, ErrCodeOAuthFailed, err.Error())
	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("unhandled service error")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}
