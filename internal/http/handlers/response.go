// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by every endpoint. Errors
// always use ErrorResponse; 422 responses also carry per-field messages
// built from validator.ValidationErrors.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "status": "error",
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "conversation not found"
//	}
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tbourn/support-chat-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Always "error"
	Status string `json:"status" example:"error"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"resource not found"`
	// Field-level messages, only on 422
	Errors map[string]string `json:"errors,omitempty"`
}

// SuccessResponse wraps the auth endpoints' payloads.
type SuccessResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"Login successful"`
	Data    any    `json:"data,omitempty"`
}

// MessageResponse is a bare confirmation, e.g. after a delete.
type MessageResponse struct {
	Message string `json:"message" example:"Ticket deleted successfully"`
}

func requestID(c *gin.Context) string {
	if rid := middleware.RequestIDFrom(c); rid != "" {
		return rid
	}
	return c.Writer.Header().Get("X-Request-ID")
}

// fail aborts the request with the error envelope. 5xx responses are logged
// with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Status:    "error",
		RequestID: requestID(c),
		Code:      code,
		Message:   msg,
	})
}

// Fail is the exported variant of fail, used by the router for 404/405.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failBind answers a binding error: 422 with per-field messages when the
// payload decoded but failed validation, 400 otherwise.
func failBind(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed request body")
		return
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldName(fe)] = fieldMessage(fe)
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{
		Status:    "error",
		RequestID: requestID(c),
		Code:      ErrCodeValidation,
		Message:   "validation failed",
		Errors:    fields,
	})
}

// failValidation answers 422 for a single field checked by hand.
func failValidation(c *gin.Context, field, msg string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{
		Status:    "error",
		RequestID: requestID(c),
		Code:      ErrCodeValidation,
		Message:   "validation failed",
		Errors:    map[string]string{field: msg},
	})
}

func init() {
	// Report fields by their JSON names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				name, _, _ = strings.Cut(f.Tag.Get("form"), ",")
			}
			return name
		})
	}
}

func fieldName(fe validator.FieldError) string {
	if fe.Field() != "" {
		return fe.Field()
	}
	return strings.ToLower(fe.StructField())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// success writes the {status, message, data} envelope.
func success(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, SuccessResponse{Status: "success", Message: msg, Data: data})
}
