package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/domain"
)

// CreateFile inserts an uploaded file record.
func CreateFile(ctx context.Context, db *gorm.DB, f *domain.File) error {
	return db.WithContext(ctx).Create(f).Error
}

// GetFile loads a file owned by userID.
func GetFile(ctx context.Context, db *gorm.DB, id, userID uint) (*domain.File, error) {
	var f domain.File
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}
