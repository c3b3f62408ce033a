// Package services defines the business logic for accounts, conversations,
// feedback tickets, the LLM proxy and the admin dashboard. This file
// centralizes the service-level error values so that they can be returned
// consistently by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Authentication and authorization errors.
var (
	// ErrUnauthenticated is returned when a bearer token is missing, unknown
	// or expired.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidCredentials is returned by Login on a wrong email/password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden is returned when the requestor's roles do not grant the
	// operation.
	ErrForbidden = errors.New("forbidden")

	// ErrAdminSecret is returned when registering an admin without the
	// configured secret key.
	ErrAdminSecret = errors.New("invalid admin secret key")

	// ErrEmailTaken is returned when an email is already registered.
	ErrEmailTaken = errors.New("email already taken")

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrOAuthState is returned when the OAuth state parameter is missing,
	// forged or expired.
	ErrOAuthState = errors.New("invalid oauth state")

	// ErrOAuthExchange is returned when the provider rejects the code or the
	// profile cannot be fetched.
	ErrOAuthExchange = errors.New("oauth exchange failed")

	// ErrOAuthDisabled is returned when no OAuth client is configured.
	ErrOAuthDisabled = errors.New("oauth is not configured")
)

// Conversation and ticket errors.
var (
	// ErrConversationNotFound indicates that the conversation does not exist
	// or is not owned by the requesting user. The two cases are merged.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrTicketNotFound indicates that the requested ticket does not exist.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrInvalidEvaluation is returned when an evaluation is not one of
	// "jaime" or "jenaimepas".
	ErrInvalidEvaluation = errors.New("evaluation must be jaime or jenaimepas")

	// ErrInvalidStatus is returned when a ticket status is not "open" or
	// "closed".
	ErrInvalidStatus = errors.New("status must be open or closed")

	// ErrInvalidInput is returned for malformed input that slipped past
	// transport validation.
	ErrInvalidInput = errors.New("invalid input")
)

// Chat and file errors.
var (
	// ErrEmptyPrompt is returned when a chat request carries an empty prompt.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrUnsupportedModel is returned when the requested model is not
	// allow-listed.
	ErrUnsupportedModel = errors.New("model not supported")

	// ErrFileNotFound indicates that a referenced file does not exist or is
	// not owned by the requesting user.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// Dashboard errors.
var (
	// ErrInvalidRange is returned when a dashboard range ends before it
	// starts.
	ErrInvalidRange = errors.New("end_date must not be before start_date")

	// ErrRangeTooLong is returned when a dashboard range spans more than
	// MaxDashboardDays days.
	ErrRangeTooLong = errors.New("date range is too long")
)
