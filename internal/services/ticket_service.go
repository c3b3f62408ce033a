// Package services – TicketService
//
// This file implements TicketService, which governs how users rate a
// conversation and how admins triage the resulting tickets. A user has at
// most one ticket per conversation: rating again updates the existing row.
//
// The question/response stored on a ticket are a snapshot of the
// conversation at rating time. Later appends do not change them.
package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/authz"
	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/repo"
)

// DefaultTicketPageSize is used when ListAll gets a non-positive page size.
const DefaultTicketPageSize = 15

// TicketService implements the feedback use-cases.
type TicketService struct {
	DB *gorm.DB
}

// RateInput is a user's evaluation of a conversation. Nil Question and
// Response are snapshotted from the conversation's last turn.
type RateInput struct {
	ConversationID uint
	UserID         uint
	Evaluation     string
	Question       *string
	Response       *string
}

// AdminUpdate carries the fields an admin may change. Nil fields are left
// untouched.
type AdminUpdate struct {
	Status  *string
	Comment *string
}

// Rate upserts the (user, conversation) ticket. created reports whether a
// new row was inserted. Status is set to open on creation only.
func (s *TicketService) Rate(ctx context.Context, in RateInput) (t *domain.Ticket, created bool, err error) {
	tr := otel.Tracer("services/TicketService")
	ctx, span := tr.Start(ctx, "Rate",
		trace.WithAttributes(
			attribute.Int64("conversation.id", int64(in.ConversationID)),
			attribute.Int64("user.id", int64(in.UserID)),
			attribute.String("evaluation", in.Evaluation),
		),
	)
	defer span.End()

	if !domain.IsValidEvaluation(in.Evaluation) {
		return nil, false, ErrInvalidEvaluation
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, err := repo.GetConversation(ctx, tx, in.ConversationID, in.UserID)
		if err != nil {
			return mapConversationErr(err)
		}
		question, response := snapshot(conv, in.Question, in.Response)

		existing, err := repo.FindTicketForConversation(ctx, tx, in.UserID, in.ConversationID)
		switch {
		case err == nil:
			t, err = s.rerate(ctx, tx, existing, in.Evaluation, question, response)
			return err
		case !errors.Is(err, repo.ErrNotFound):
			return err
		}

		ev := in.Evaluation
		convID := in.ConversationID
		t = &domain.Ticket{
			UserID:         in.UserID,
			ConversationID: &convID,
			Question:       question,
			Response:       response,
			Evaluation:     &ev,
			Status:         domain.TicketOpen,
		}
		if err := repo.CreateTicket(ctx, tx, t); err != nil {
			if !errors.Is(err, repo.ErrDuplicate) {
				return err
			}
			// Lost a race with a concurrent rating; update that row instead.
			existing, ferr := repo.FindTicketForConversation(ctx, tx, in.UserID, in.ConversationID)
			if ferr != nil {
				return ferr
			}
			t, err = s.rerate(ctx, tx, existing, in.Evaluation, question, response)
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	span.SetAttributes(attribute.Bool("created", created))
	return t, created, nil
}

func (s *TicketService) rerate(ctx context.Context, tx *gorm.DB, t *domain.Ticket, evaluation, question, response string) (*domain.Ticket, error) {
	err := repo.UpdateTicketFields(ctx, tx, t.ID, map[string]any{
		"evaluation": evaluation,
		"question":   question,
		"response":   response,
	})
	if err != nil {
		return nil, err
	}
	return repo.GetTicket(ctx, tx, t.ID)
}

// snapshot picks the question/response to store: explicit values win,
// otherwise the conversation's last user and bot turns.
func snapshot(c *domain.Conversation, question, response *string) (string, string) {
	q, r := "", ""
	if n := len(c.MessageUser); n > 0 {
		q = c.MessageUser[n-1]
	}
	if n := len(c.MessageBot); n > 0 {
		r = c.MessageBot[n-1]
	}
	if question != nil && strings.TrimSpace(*question) != "" {
		q = *question
	}
	if response != nil && strings.TrimSpace(*response) != "" {
		r = *response
	}
	return q, r
}

// UpdateByAdmin applies a partial status/comment update. The requestor
// must be allowed to moderate tickets.
func (s *TicketService) UpdateByAdmin(ctx context.Context, ticketID uint, requestor *domain.User, u AdminUpdate) (*domain.Ticket, error) {
	tr := otel.Tracer("services/TicketService")
	ctx, span := tr.Start(ctx, "UpdateByAdmin",
		trace.WithAttributes(attribute.Int64("ticket.id", int64(ticketID))),
	)
	defer span.End()

	if !authz.Authorize(requestor, authz.ActionModerate, authz.ResourceTicket) {
		return nil, ErrForbidden
	}
	if u.Status != nil && !domain.IsValidStatus(*u.Status) {
		return nil, ErrInvalidStatus
	}

	fields := map[string]any{}
	if u.Status != nil {
		fields["status"] = *u.Status
	}
	if u.Comment != nil {
		fields["commentaire_admin"] = *u.Comment
	}

	if len(fields) > 0 {
		if err := repo.UpdateTicketFields(ctx, s.DB, ticketID, fields); err != nil {
			return nil, mapTicketErr(err)
		}
	}
	t, err := repo.GetTicketWithUser(ctx, s.DB, ticketID)
	if err != nil {
		return nil, mapTicketErr(err)
	}
	return t, nil
}

// ListAll returns one page of every user's tickets, newest first, with the
// total count. Admin only.
func (s *TicketService) ListAll(ctx context.Context, requestor *domain.User, f repo.TicketFilter, page, pageSize int) ([]domain.Ticket, int64, error) {
	tr := otel.Tracer("services/TicketService")
	ctx, span := tr.Start(ctx, "ListAll",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if !authz.Authorize(requestor, authz.ActionModerate, authz.ResourceTicket) {
		return nil, 0, ErrForbidden
	}
	if f.Status != "" && !domain.IsValidStatus(f.Status) {
		return nil, 0, ErrInvalidStatus
	}
	if f.Evaluation != "" && !domain.IsValidEvaluation(f.Evaluation) {
		return nil, 0, ErrInvalidEvaluation
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultTicketPageSize
	}

	total, err := repo.CountTickets(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Ticket{}, 0, nil
	}
	items, err := repo.ListTicketsPage(ctx, s.DB, f, (page-1)*pageSize, pageSize)
	return items, total, err
}

// ListForUser returns every ticket the user created, newest first.
func (s *TicketService) ListForUser(ctx context.Context, userID uint) ([]domain.Ticket, error) {
	tr := otel.Tracer("services/TicketService")
	ctx, span := tr.Start(ctx, "ListForUser",
		trace.WithAttributes(attribute.Int64("user.id", int64(userID))),
	)
	defer span.End()

	return repo.ListUserTickets(ctx, s.DB, userID)
}

// Get returns a ticket to its owner or to a moderator. Anyone else gets
// ErrTicketNotFound.
func (s *TicketService) Get(ctx context.Context, ticketID uint, requestor *domain.User) (*domain.Ticket, error) {
	t, err := repo.GetTicketWithUser(ctx, s.DB, ticketID)
	if err != nil {
		return nil, mapTicketErr(err)
	}
	if !canSeeTicket(requestor, t) {
		return nil, ErrTicketNotFound
	}
	return t, nil
}

// ConversationTickets is every ticket left on one conversation and their
// aggregate.
type ConversationTickets struct {
	Tickets []domain.Ticket  `json:"tickets"`
	Stats   repo.TicketStats `json:"stats"`
}

// StatsForConversation returns every user's tickets on a conversation and
// their aggregate. The requestor must own the conversation or moderate
// tickets.
func (s *TicketService) StatsForConversation(ctx context.Context, conversationID uint, requestor *domain.User) (*ConversationTickets, error) {
	tr := otel.Tracer("services/TicketService")
	ctx, span := tr.Start(ctx, "StatsForConversation",
		trace.WithAttributes(attribute.Int64("conversation.id", int64(conversationID))),
	)
	defer span.End()

	if requestor == nil {
		return nil, ErrConversationNotFound
	}
	var err error
	if authz.Authorize(requestor, authz.ActionModerate, authz.ResourceTicket) {
		_, err = repo.GetConversationByID(ctx, s.DB, conversationID)
	} else {
		_, err = repo.GetConversation(ctx, s.DB, conversationID, requestor.ID)
	}
	if err != nil {
		return nil, mapConversationErr(err)
	}
	tickets, err := repo.ListConversationTickets(ctx, s.DB, conversationID)
	if err != nil {
		return nil, err
	}
	stats, err := repo.ConversationTicketStats(ctx, s.DB, conversationID)
	if err != nil {
		return nil, err
	}
	return &ConversationTickets{Tickets: tickets, Stats: stats}, nil
}

// EvaluationsByConversation counts one user's evaluations per conversation.
// Users may read their own counts; moderators may read anyone's.
func (s *TicketService) EvaluationsByConversation(ctx context.Context, userID uint, requestor *domain.User) ([]repo.ConversationEvaluations, error) {
	if requestor == nil {
		return nil, ErrForbidden
	}
	if requestor.ID != userID && !authz.Authorize(requestor, authz.ActionModerate, authz.ResourceTicket) {
		return nil, ErrForbidden
	}
	return repo.EvaluationsByConversation(ctx, s.DB, userID)
}

// Delete removes a ticket. Owners and moderators may delete; anyone else
// gets ErrForbidden.
func (s *TicketService) Delete(ctx context.Context, ticketID uint, requestor *domain.User) error {
	tr := otel.Tracer("services/TicketService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int64("ticket.id", int64(ticketID))),
	)
	defer span.End()

	t, err := repo.GetTicket(ctx, s.DB, ticketID)
	if err != nil {
		return mapTicketErr(err)
	}
	if !canSeeTicket(requestor, t) {
		return ErrForbidden
	}
	return mapTicketErr(repo.DeleteTicket(ctx, s.DB, ticketID))
}

func canSeeTicket(u *domain.User, t *domain.Ticket) bool {
	if u == nil {
		return false
	}
	if u.ID == t.UserID {
		return authz.Authorize(u, authz.ActionRead, authz.ResourceTicket)
	}
	return authz.Authorize(u, authz.ActionModerate, authz.ResourceTicket)
}

func mapTicketErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrTicketNotFound
	}
	return err
}
