// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for users and
// their roles.
//
// Error semantics:
//   - Lookups that find nothing return ErrNotFound (gorm.ErrRecordNotFound).
//   - Unique violations on email come back as ErrDuplicate.
//   - Every other DB error is propagated unchanged.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/domain"
)

// UserStats is a user row enriched with activity counters for the admin
// user list.
type UserStats struct {
	domain.User
	ConversationsCount    int64 `json:"conversations_count"`
	TicketsCount          int64 `json:"tickets_count"`
	PositiveFeedbackCount int64 `json:"positive_feedback_count"`
	NegativeFeedbackCount int64 `json:"negative_feedback_count"`
}

// CreateUser inserts a user. passwordHash must already be hashed.
func CreateUser(ctx context.Context, db *gorm.DB, name, email, passwordHash string) (*domain.User, error) {
	u := &domain.User{
		Name:     name,
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: passwordHash,
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return u, nil
}

// GetUser loads a user and its roles by id.
func GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Preload("Roles").First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail loads a user and its roles by email (case-insensitive).
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Preload("Roles").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetRoleByName returns the role called name.
func GetRoleByName(ctx context.Context, db *gorm.DB, name string) (*domain.Role, error) {
	var r domain.Role
	if err := db.WithContext(ctx).Where("name = ?", name).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// AttachRole links the named role to u and appends it to u.Roles.
func AttachRole(ctx context.Context, db *gorm.DB, u *domain.User, name string) error {
	r, err := GetRoleByName(ctx, db, name)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Model(u).Association("Roles").Append(r); err != nil {
		return err
	}
	return nil
}

// ListUsersWithStats returns every user with conversation, ticket and
// feedback counters, newest first.
func ListUsersWithStats(ctx context.Context, db *gorm.DB) ([]UserStats, error) {
	var users []domain.User
	if err := db.WithContext(ctx).Preload("Roles").Order("created_at desc, id desc").Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []UserStats{}, nil
	}

	convCounts, err := countByUser(ctx, db, &domain.Conversation{}, "")
	if err != nil {
		return nil, err
	}
	ticketCounts, err := countByUser(ctx, db, &domain.Ticket{}, "")
	if err != nil {
		return nil, err
	}
	posCounts, err := countByUser(ctx, db, &domain.Ticket{}, domain.EvaluationLike)
	if err != nil {
		return nil, err
	}
	negCounts, err := countByUser(ctx, db, &domain.Ticket{}, domain.EvaluationDislike)
	if err != nil {
		return nil, err
	}

	out := make([]UserStats, 0, len(users))
	for _, u := range users {
		out = append(out, UserStats{
			User:                  u,
			ConversationsCount:    convCounts[u.ID],
			TicketsCount:          ticketCounts[u.ID],
			PositiveFeedbackCount: posCounts[u.ID],
			NegativeFeedbackCount: negCounts[u.ID],
		})
	}
	return out, nil
}

// countByUser groups rows of model by user_id. A non-empty evaluation
// restricts the count to tickets with that evaluation.
func countByUser(ctx context.Context, db *gorm.DB, model any, evaluation string) (map[uint]int64, error) {
	var rows []struct {
		UserID uint
		N      int64
	}
	q := db.WithContext(ctx).Model(model).Select("user_id, COUNT(*) AS n").Group("user_id")
	if evaluation != "" {
		q = q.Where("evaluation = ?", evaluation)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.UserID] = r.N
	}
	return out, nil
}

// UpdateUser applies the non-nil fields. passwordHash must already be hashed.
func UpdateUser(ctx context.Context, db *gorm.DB, id uint, name, email, passwordHash *string) (*domain.User, error) {
	updates := map[string]any{}
	if name != nil {
		updates["name"] = *name
	}
	if email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*email))
	}
	if passwordHash != nil {
		updates["password"] = *passwordHash
	}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()
		res := db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			if isUniqueViolation(res.Error) {
				return nil, ErrDuplicate
			}
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return GetUser(ctx, db, id)
}

// DeleteUser removes a user together with everything the user owns. The
// dependent rows are deleted explicitly so the result does not depend on
// the foreign_keys PRAGMA.
func DeleteUser(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.First(&u, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&u).Association("Roles").Clear(); err != nil {
			return err
		}
		owned := tx.Model(&domain.Conversation{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("conversation_id IN (?)", owned).Delete(&domain.Ticket{}).Error; err != nil {
			return err
		}
		for _, model := range []any{&domain.AccessToken{}, &domain.Ticket{}, &domain.Conversation{}, &domain.File{}, &domain.Idempotency{}} {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&u).Error
	})
}

// isUniqueViolation detects unique-constraint failures across drivers that
// do not map them to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}
