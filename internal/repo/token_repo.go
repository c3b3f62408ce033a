// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file stores opaque bearer tokens by hash.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/domain"
)

// CreateToken stores a token hash for userID. expiresAt may be nil for
// tokens that never expire.
func CreateToken(ctx context.Context, db *gorm.DB, userID uint, name, hash string, expiresAt *time.Time) (*domain.AccessToken, error) {
	t := &domain.AccessToken{
		UserID:    userID,
		Name:      name,
		TokenHash: hash,
		ExpiresAt: expiresAt,
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// FindTokenByHash loads a token and its owner (with roles).
func FindTokenByHash(ctx context.Context, db *gorm.DB, hash string) (*domain.AccessToken, error) {
	var t domain.AccessToken
	err := db.WithContext(ctx).
		Preload("User.Roles").
		Where("token_hash = ?", hash).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TouchToken records when a token was last used.
func TouchToken(ctx context.Context, db *gorm.DB, id uint, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.AccessToken{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}

// DeleteToken revokes a single token.
func DeleteToken(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.AccessToken{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUserTokens revokes every token of userID and returns how many were
// removed.
func DeleteUserTokens(ctx context.Context, db *gorm.DB, userID uint) (int64, error) {
	res := db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.AccessToken{})
	return res.RowsAffected, res.Error
}
