// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Conversation model.
//
// Ownership is enforced by filtering on (id, user_id) in the same query, so
// a conversation owned by someone else and a missing conversation are
// indistinguishable: both return ErrNotFound.
//
// Functions:
//
//   - CreateConversation(ctx, db, c) -> error
//   - ListConversations(ctx, db, userID, savedOnly) -> []domain.Conversation, error
//   - GetConversation(ctx, db, id, userID) -> *domain.Conversation, error
//   - UpdateHistory(ctx, db, id, userID, users, bots, at) -> error
//   - SetSaved(ctx, db, id, userID, saved) -> error
//   - DeleteConversation(ctx, db, id, userID) -> error
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/history"
)

// CreateConversation inserts c and fills its generated fields.
func CreateConversation(ctx context.Context, db *gorm.DB, c *domain.Conversation) error {
	return db.WithContext(ctx).Create(c).Error
}

// ListConversations returns the user's conversations with their tickets,
// most recent first. savedOnly restricts the list to saved conversations.
func ListConversations(ctx context.Context, db *gorm.DB, userID uint, savedOnly bool) ([]domain.Conversation, error) {
	var out []domain.Conversation
	q := db.WithContext(ctx).
		Preload("Tickets", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at desc, id desc") }).
		Where("user_id = ?", userID)
	if savedOnly {
		q = q.Where("is_saved = ?", true)
	}
	err := q.Order("created_at desc, id desc").Find(&out).Error
	return out, err
}

// GetConversation fetches a conversation with its tickets by id and owner.
func GetConversation(ctx context.Context, db *gorm.DB, id, userID uint) (*domain.Conversation, error) {
	var c domain.Conversation
	err := db.WithContext(ctx).
		Preload("Tickets", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at desc, id desc") }).
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetConversationByID fetches a conversation regardless of owner.
func GetConversationByID(ctx context.Context, db *gorm.DB, id uint) (*domain.Conversation, error) {
	var c domain.Conversation
	if err := db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateHistory writes both history columns and the activity timestamp in
// a single statement. It returns ErrNotFound when no owned row matched.
func UpdateHistory(ctx context.Context, db *gorm.DB, id, userID uint, users, bots []string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"message_user": history.Messages(users),
			"message_bot":  history.Messages(bots),
			"timestamp":    at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSaved sets the saved flag of an owned conversation.
func SetSaved(ctx context.Context, db *gorm.DB, id, userID uint, saved bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_saved", saved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteConversation removes the tickets attached to an owned conversation
// and then the conversation itself, inside one transaction.
func DeleteConversation(ctx context.Context, db *gorm.DB, id, userID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Conversation{}).Where("id = ? AND user_id = ?", id, userID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&domain.Ticket{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Conversation{}).Error
	})
}

// ListVersion summarizes what a conversation list renders: the user's
// conversations and the tickets embedded in them. Latest is the most recent
// updated_at across both, nil when there is nothing.
type ListVersion struct {
	Conversations int64
	Tickets       int64
	Latest        *time.Time
}

// ConversationsStats returns the ListVersion of userID's conversations.
func ConversationsStats(ctx context.Context, db *gorm.DB, userID uint) (ListVersion, error) {
	convs := func() *gorm.DB {
		return db.WithContext(ctx).Model(&domain.Conversation{}).Where("user_id = ?", userID)
	}
	tickets := func() *gorm.DB {
		return db.WithContext(ctx).Model(&domain.Ticket{}).
			Where("conversation_id IN (?)", convs().Select("id"))
	}

	var v ListVersion
	if err := convs().Count(&v.Conversations).Error; err != nil {
		return ListVersion{}, err
	}
	if v.Conversations == 0 {
		return v, nil
	}
	latest, err := latestUpdate(convs())
	if err != nil {
		return ListVersion{}, err
	}
	v.Latest = latest

	if err := tickets().Count(&v.Tickets).Error; err != nil {
		return ListVersion{}, err
	}
	if v.Tickets > 0 {
		t, err := latestUpdate(tickets())
		if err != nil {
			return ListVersion{}, err
		}
		if t.After(*latest) {
			v.Latest = t
		}
	}
	return v, nil
}

// latestUpdate reads the newest updated_at of q. MAX() is avoided because
// SQLite returns it as TEXT.
func latestUpdate(q *gorm.DB) (*time.Time, error) {
	var row struct {
		UpdatedAt time.Time
	}
	if err := q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return nil, err
	}
	return &row.UpdatedAt, nil
}
