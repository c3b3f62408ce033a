// Package handlers implements the transport-thin gin handlers of the support
// API. Handlers validate input, call the services through the interfaces
// below, and translate results and sentinel errors into HTTP responses.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/http/middleware"
	"github.com/tbourn/support-chat-backend/internal/repo"
	"github.com/tbourn/support-chat-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// AuthService covers account sign-up, sign-in and token introspection.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Logout(ctx context.Context, tokenID uint) error
	TokenInfo(t *domain.AccessToken) services.TokenInfo
	Authenticate(ctx context.Context, bearer string) (*domain.User, *domain.AccessToken, error)
}

// OAuthService covers Google sign-in.
type OAuthService interface {
	AuthURL(redirect string) (string, error)
	Callback(ctx context.Context, code, state string) (*services.OAuthResult, error)
}

// ConversationService manages a user's conversations.
type ConversationService interface {
	ListForUser(ctx context.Context, userID uint, f services.ListFilter) ([]domain.Conversation, error)
	Get(ctx context.Context, id, userID uint) (*services.ConversationDetail, error)
	Create(ctx context.Context, userID uint, in services.CreateConversationInput) (*domain.Conversation, error)
	AppendMessage(ctx context.Context, id, userID uint, userMsg, botMsg string) (*services.ConversationDetail, error)
	ToggleSaved(ctx context.Context, id, userID uint) (bool, error)
	Delete(ctx context.Context, id, userID uint) error
	Stats(ctx context.Context, userID uint) (repo.ListVersion, error)
}

// TicketService manages evaluations and their admin follow-up.
type TicketService interface {
	Rate(ctx context.Context, in services.RateInput) (*domain.Ticket, bool, error)
	UpdateByAdmin(ctx context.Context, ticketID uint, requestor *domain.User, u services.AdminUpdate) (*domain.Ticket, error)
	ListAll(ctx context.Context, requestor *domain.User, f repo.TicketFilter, page, pageSize int) ([]domain.Ticket, int64, error)
	ListForUser(ctx context.Context, userID uint) ([]domain.Ticket, error)
	Get(ctx context.Context, ticketID uint, requestor *domain.User) (*domain.Ticket, error)
	StatsForConversation(ctx context.Context, conversationID uint, requestor *domain.User) (*services.ConversationTickets, error)
	EvaluationsByConversation(ctx context.Context, userID uint, requestor *domain.User) ([]repo.ConversationEvaluations, error)
	Delete(ctx context.Context, ticketID uint, requestor *domain.User) error
}

// ChatService proxies prompts to the generation runtimes.
type ChatService interface {
	Ask(ctx context.Context, userID uint, in services.AskInput) (*services.AskResult, error)
	AskFineTuned(ctx context.Context, prompt string) (*services.AskResult, error)
}

// DashboardService computes the admin statistics.
type DashboardService interface {
	Stats(ctx context.Context, r services.Range) (*services.DashboardStats, error)
}

// UserService is the admin user CRUD.
type UserService interface {
	List(ctx context.Context, requestor *domain.User) ([]repo.UserStats, error)
	Get(ctx context.Context, requestor *domain.User, id uint) (*domain.User, error)
	Create(ctx context.Context, requestor *domain.User, in services.CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, requestor *domain.User, id uint, in services.UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, requestor *domain.User, id uint) error
}

// IdempotencyStore records completed create requests and finds them again
// for replays.
type IdempotencyStore interface {
	Lookup(ctx context.Context, userID uint, scope, key string) (*domain.Idempotency, error)
	Record(ctx context.Context, userID uint, scope, key string, resourceID uint, status int) error
}

//
// Handler wiring
//

// Deps lists the services the handlers depend on. Nil services leave their
// routes answering 500, so tests only set what they exercise.
type Deps struct {
	Auth          AuthService
	OAuth         OAuthService
	Conversations ConversationService
	Tickets       TicketService
	Chat          ChatService
	Dashboard     DashboardService
	Users         UserService
	Idempotency   IdempotencyStore

	// FrontendURL receives the browser after the Google callback.
	FrontendURL string
	// UploadMaxBytes bounds a single chat upload.
	UploadMaxBytes int64
}

// Handlers groups the HTTP endpoints of the API.
type Handlers struct {
	Deps
}

// New constructs a Handlers bound to d.
func New(d Deps) *Handlers {
	return &Handlers{Deps: d}
}

// currentUser returns the authenticated user. Routes using it sit behind
// BearerAuth, so a nil user is a wiring bug and answers 401.
func currentUser(c *gin.Context) (*domain.User, bool) {
	u := middleware.UserFrom(c)
	if u == nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return nil, false
	}
	return u, true
}

// recordIdempotent stores a completion for the request's Idempotency-Key,
// if any. Failures only cost the replay, so they are logged and dropped.
func (h *Handlers) recordIdempotent(c *gin.Context, userID, resourceID uint, status int) {
	key, scope, ok := middleware.GetIdempotencyKey(c)
	if !ok || h.Idempotency == nil {
		return
	}
	if err := h.Idempotency.Record(c.Request.Context(), userID, scope, key, resourceID, status); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record failed")
	}
}

// HeaderIdempotencyReplayed is set on responses served from a recorded
// completion.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

// markReplay flags a response served from a recorded completion.
func markReplay(c *gin.Context) {
	c.Header(HeaderIdempotencyReplayed, "true")
}
