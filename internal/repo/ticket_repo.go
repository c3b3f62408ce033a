// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Ticket
// model (user feedback on a conversation).
//
// The repository is thin: the upsert rule, snapshotting and authorization
// live in services.TicketService. The (user_id, conversation_id) pair is
// unique at the schema level.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/domain"
)

// TicketFilter narrows admin ticket listings. Empty fields match anything.
type TicketFilter struct {
	Status     string
	Evaluation string
}

// TicketStats aggregates the evaluations left on one conversation.
type TicketStats struct {
	Total       int64 `json:"total"`
	Jaime       int64 `json:"jaime"`
	Jenaimepas  int64 `json:"jenaimepas"`
	HasComments bool  `json:"has_comments"`
}

// ConversationEvaluations counts one user's evaluations per conversation.
type ConversationEvaluations struct {
	ConversationID uint  `json:"conversation_id"`
	Jaime          int64 `json:"jaime"`
	Jenaimepas     int64 `json:"jenaimepas"`
}

// FindTicketForConversation returns the ticket userID left on
// conversationID, or ErrNotFound.
func FindTicketForConversation(ctx context.Context, db *gorm.DB, userID, conversationID uint) (*domain.Ticket, error) {
	var t domain.Ticket
	err := db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTicket inserts t. A second ticket for the same (user, conversation)
// yields ErrDuplicate.
func CreateTicket(ctx context.Context, db *gorm.DB, t *domain.Ticket) error {
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// UpdateTicketFields applies a column map to ticket id.
func UpdateTicketFields(ctx context.Context, db *gorm.DB, id uint, fields map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.Ticket{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTicket loads a ticket by id.
func GetTicket(ctx context.Context, db *gorm.DB, id uint) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTicketWithUser loads a ticket and its author.
func GetTicketWithUser(ctx context.Context, db *gorm.DB, id uint) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := db.WithContext(ctx).Preload("User").First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func filteredTickets(ctx context.Context, db *gorm.DB, f TicketFilter) *gorm.DB {
	q := db.WithContext(ctx).Model(&domain.Ticket{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Evaluation != "" {
		q = q.Where("evaluation = ?", f.Evaluation)
	}
	return q
}

// CountTickets counts tickets matching f.
func CountTickets(ctx context.Context, db *gorm.DB, f TicketFilter) (int64, error) {
	var n int64
	err := filteredTickets(ctx, db, f).Count(&n).Error
	return n, err
}

// ListTicketsPage returns tickets matching f with their authors, newest
// first.
func ListTicketsPage(ctx context.Context, db *gorm.DB, f TicketFilter, offset, limit int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := filteredTickets(ctx, db, f).
		Preload("User").
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListUserTickets returns every ticket of userID, newest first.
func ListUserTickets(ctx context.Context, db *gorm.DB, userID uint) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&out).Error
	return out, err
}

// ConversationTicketStats aggregates all tickets tied to conversationID,
// whoever left them.
func ConversationTicketStats(ctx context.Context, db *gorm.DB, conversationID uint) (TicketStats, error) {
	var row struct {
		Total      int64
		Jaime      int64
		Jenaimepas int64
		Comments   int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Ticket{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN evaluation = ? THEN 1 ELSE 0 END), 0) AS jaime,
			COALESCE(SUM(CASE WHEN evaluation = ? THEN 1 ELSE 0 END), 0) AS jenaimepas,
			COALESCE(SUM(CASE WHEN commentaire_admin IS NOT NULL AND commentaire_admin <> '' THEN 1 ELSE 0 END), 0) AS comments`,
			domain.EvaluationLike, domain.EvaluationDislike).
		Where("conversation_id = ?", conversationID).
		Scan(&row).Error
	if err != nil {
		return TicketStats{}, err
	}
	return TicketStats{
		Total:       row.Total,
		Jaime:       row.Jaime,
		Jenaimepas:  row.Jenaimepas,
		HasComments: row.Comments > 0,
	}, nil
}

// ListConversationTickets returns every ticket on conversationID with its
// author, newest first.
func ListConversationTickets(ctx context.Context, db *gorm.DB, conversationID uint) ([]domain.Ticket, error) {
	out := []domain.Ticket{}
	err := db.WithContext(ctx).
		Preload("User").
		Where("conversation_id = ?", conversationID).
		Order("created_at desc, id desc").
		Find(&out).Error
	return out, err
}

// EvaluationsByConversation groups userID's tickets per conversation and
// counts each evaluation value.
func EvaluationsByConversation(ctx context.Context, db *gorm.DB, userID uint) ([]ConversationEvaluations, error) {
	var out []ConversationEvaluations
	err := db.WithContext(ctx).
		Model(&domain.Ticket{}).
		Select(`conversation_id,
			COALESCE(SUM(CASE WHEN evaluation = ? THEN 1 ELSE 0 END), 0) AS jaime,
			COALESCE(SUM(CASE WHEN evaluation = ? THEN 1 ELSE 0 END), 0) AS jenaimepas`,
			domain.EvaluationLike, domain.EvaluationDislike).
		Where("user_id = ? AND conversation_id IS NOT NULL", userID).
		Group("conversation_id").
		Order("conversation_id asc").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []ConversationEvaluations{}
	}
	return out, nil
}

// DeleteTicket removes ticket id.
func DeleteTicket(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.Ticket{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
