// Package services – ConversationService
//
// This file implements ConversationService, which owns the lifecycle of a
// conversation: creation from a first exchange, appending turns, the saved
// flag and deletion. Ownership is enforced by the repositories' filtered
// queries, so a foreign conversation and a missing one both surface as
// ErrConversationNotFound.
//
// Append and toggle are read-modify-write without locking; concurrent calls
// on the same conversation resolve last-write-wins.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/history"
	"github.com/tbourn/support-chat-backend/internal/repo"
)

// ConversationService manages conversations and their message history.
type ConversationService struct {
	DB *gorm.DB
	// Now stamps activity; defaults to time.Now in UTC.
	Now func() time.Time
}

// NewConversationService constructs a ConversationService.
func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{DB: db, Now: func() time.Time { return time.Now().UTC() }}
}

// ListFilter narrows ListForUser.
type ListFilter struct {
	SavedOnly bool
}

// CreateConversationInput is the first exchange of a new conversation.
type CreateConversationInput struct {
	UserMessage string
	BotMessage  string
	ModelType   string
	FileID      *uint
	Title       *string
	IsSaved     bool
}

// ConversationDetail is a conversation with its turns zipped into pairs.
type ConversationDetail struct {
	*domain.Conversation
	Pairs []history.Pair `json:"messages"`
}

func (s *ConversationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// ListForUser returns the user's conversations, most recent first, with
// titles resolved and tickets attached.
func (s *ConversationService) ListForUser(ctx context.Context, userID uint, f ListFilter) ([]domain.Conversation, error) {
	tr := otel.Tracer("services/ConversationService")
	ctx, span := tr.Start(ctx, "ListForUser",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(userID)),
			attribute.Bool("saved_only", f.SavedOnly),
		),
	)
	defer span.End()

	items, err := repo.ListConversations(ctx, s.DB, userID, f.SavedOnly)
	if err != nil {
		return nil, err
	}
	for i := range items {
		resolveTitle(&items[i])
	}
	return items, nil
}

// Get returns an owned conversation with its pairs and tickets.
func (s *ConversationService) Get(ctx context.Context, id, userID uint) (*ConversationDetail, error) {
	tr := otel.Tracer("services/ConversationService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(
			attribute.Int64("conversation.id", int64(id)),
			attribute.Int64("user.id", int64(userID)),
		),
	)
	defer span.End()

	c, err := repo.GetConversation(ctx, s.DB, id, userID)
	if err != nil {
		return nil, mapConversationErr(err)
	}
	resolveTitle(c)
	return &ConversationDetail{Conversation: c, Pairs: history.Pairs(c.MessageUser, c.MessageBot)}, nil
}

// Create starts a conversation with a single exchange. The model type
// defaults to "gpt2" and the title to the title rule applied to the first
// user message.
func (s *ConversationService) Create(ctx context.Context, userID uint, in CreateConversationInput) (*domain.Conversation, error) {
	tr := otel.Tracer("services/ConversationService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.Int64("user.id", int64(userID))),
	)
	defer span.End()

	if strings.TrimSpace(in.UserMessage) == "" || strings.TrimSpace(in.BotMessage) == "" {
		return nil, ErrInvalidInput
	}

	if in.FileID != nil {
		if _, err := repo.GetFile(ctx, s.DB, *in.FileID, userID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrFileNotFound
			}
			return nil, err
		}
	}

	modelType := strings.TrimSpace(in.ModelType)
	if modelType == "" {
		modelType = domain.DefaultModelType
	}
	users := history.Messages{in.UserMessage}
	title := history.Title(in.Title, users)
	now := s.now()

	c := &domain.Conversation{
		UserID:      userID,
		FileID:      in.FileID,
		Title:       &title,
		MessageUser: users,
		MessageBot:  history.Messages{in.BotMessage},
		ModelType:   modelType,
		IsSaved:     in.IsSaved,
		Timestamp:   &now,
	}
	if err := repo.CreateConversation(ctx, s.DB, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AppendMessage pushes one user turn and one bot turn and moves the
// activity timestamp. Both columns are written in a single statement.
func (s *ConversationService) AppendMessage(ctx context.Context, id, userID uint, userMsg, botMsg string) (*ConversationDetail, error) {
	tr := otel.Tracer("services/ConversationService")
	ctx, span := tr.Start(ctx, "AppendMessage",
		trace.WithAttributes(
			attribute.Int64("conversation.id", int64(id)),
			attribute.Int64("user.id", int64(userID)),
		),
	)
	defer span.End()

	if strings.TrimSpace(userMsg) == "" || strings.TrimSpace(botMsg) == "" {
		return nil, ErrInvalidInput
	}

	c, err := repo.GetConversation(ctx, s.DB, id, userID)
	if err != nil {
		return nil, mapConversationErr(err)
	}

	users, bots := history.Append(c.MessageUser, c.MessageBot, userMsg, botMsg)
	at := s.now()
	if err := repo.UpdateHistory(ctx, s.DB, id, userID, users, bots, at); err != nil {
		return nil, mapConversationErr(err)
	}

	c.MessageUser, c.MessageBot = users, bots
	c.Timestamp = &at
	c.UpdatedAt = at
	resolveTitle(c)
	span.SetAttributes(attribute.Int("turns", len(users)))
	return &ConversationDetail{Conversation: c, Pairs: history.Pairs(users, bots)}, nil
}

// ToggleSaved flips the saved flag and returns the new value.
func (s *ConversationService) ToggleSaved(ctx context.Context, id, userID uint) (bool, error) {
	tr := otel.Tracer("services/ConversationService")
	ctx, span := tr.Start(ctx, "ToggleSaved",
		trace.WithAttributes(attribute.Int64("conversation.id", int64(id))),
	)
	defer span.End()

	c, err := repo.GetConversation(ctx, s.DB, id, userID)
	if err != nil {
		return false, mapConversationErr(err)
	}
	saved := !c.IsSaved
	if err := repo.SetSaved(ctx, s.DB, id, userID, saved); err != nil {
		return false, mapConversationErr(err)
	}
	return saved, nil
}

// Delete removes the conversation's tickets, then the conversation.
func (s *ConversationService) Delete(ctx context.Context, id, userID uint) error {
	tr := otel.Tracer("services/ConversationService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int64("conversation.id", int64(id))),
	)
	defer span.End()

	return mapConversationErr(repo.DeleteConversation(ctx, s.DB, id, userID))
}

// Stats summarizes the user's conversations and their tickets, for
// conditional list responses.
func (s *ConversationService) Stats(ctx context.Context, userID uint) (repo.ListVersion, error) {
	return repo.ConversationsStats(ctx, s.DB, userID)
}

func resolveTitle(c *domain.Conversation) {
	t := history.Title(c.Title, c.MessageUser)
	c.Title = &t
}

func mapConversationErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrConversationNotFound
	}
	return err
}
