package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/history"
)

// normalizeBatch bounds how many rows NormalizeHistories reads per query.
const normalizeBatch = 500

// NormalizeHistories rewrites conversation rows whose message columns are
// not JSON arrays (bare strings from older deployments) into array form.
// It returns the number of rows rewritten and is safe to run repeatedly.
func NormalizeHistories(ctx context.Context, db *gorm.DB) (int, error) {
	type row struct {
		ID          uint
		MessageUser string
		MessageBot  string
	}

	fixed := 0
	var lastID uint
	for {
		var rows []row
		err := db.WithContext(ctx).
			Model(&domain.Conversation{}).
			Select("id, message_user, message_bot").
			Where("id > ?", lastID).
			Order("id asc").
			Limit(normalizeBatch).
			Scan(&rows).Error
		if err != nil {
			return fixed, err
		}
		if len(rows) == 0 {
			return fixed, nil
		}

		for _, r := range rows {
			lastID = r.ID
			if history.IsArray(r.MessageUser) && history.IsArray(r.MessageBot) {
				continue
			}
			err := db.WithContext(ctx).
				Model(&domain.Conversation{}).
				Where("id = ?", r.ID).
				UpdateColumns(map[string]any{
					"message_user": history.Encode(history.Decode(r.MessageUser)),
					"message_bot":  history.Encode(history.Decode(r.MessageBot)),
				}).Error
			if err != nil {
				return fixed, err
			}
			fixed++
		}
	}
}
