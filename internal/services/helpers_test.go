package services

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/history"
	"github.com/tbourn/support-chat-backend/internal/repo"
)

// newTestDB opens a private in-memory database with the full schema and
// seeded roles.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := repo.SeedRoles(context.Background(), db); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	return db
}

// mustUser creates a user holding role ("" for none).
func mustUser(t *testing.T, db *gorm.DB, email, role string) *domain.User {
	t.Helper()
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u, err := repo.CreateUser(ctx, db, "User "+email, email, string(hash))
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	if role != "" {
		if err := repo.AttachRole(ctx, db, u, role); err != nil {
			t.Fatalf("AttachRole: %v", err)
		}
	}
	return u
}

func mustConversation(t *testing.T, db *gorm.DB, userID uint, users, bots []string) *domain.Conversation {
	t.Helper()
	c := &domain.Conversation{
		UserID:      userID,
		MessageUser: history.Messages(users),
		MessageBot:  history.Messages(bots),
		ModelType:   domain.DefaultModelType,
	}
	if err := repo.CreateConversation(context.Background(), db, c); err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	return c
}

func ptr[T any](v T) *T { return &v }
