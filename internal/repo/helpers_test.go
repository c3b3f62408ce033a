package repo

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/history"
)

// newRepoDB opens a private in-memory database with the full schema and
// seeded roles.
func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid schema leakage across tests.
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := SeedRoles(context.Background(), db); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	return db
}

func mustUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u, err := CreateUser(context.Background(), db, "user "+email, email, "hash")
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}

func mustConversation(t *testing.T, db *gorm.DB, userID uint, users, bots []string) *domain.Conversation {
	t.Helper()
	c := &domain.Conversation{
		UserID:      userID,
		MessageUser: history.Messages(users),
		MessageBot:  history.Messages(bots),
	}
	if err := CreateConversation(context.Background(), db, c); err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	return c
}

func mustTicket(t *testing.T, db *gorm.DB, userID uint, convID *uint, evaluation string) *domain.Ticket {
	t.Helper()
	tk := &domain.Ticket{UserID: userID, ConversationID: convID, Status: domain.TicketOpen}
	if evaluation != "" {
		ev := evaluation
		tk.Evaluation = &ev
	}
	if err := CreateTicket(context.Background(), db, tk); err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	return tk
}

func ptr[T any](v T) *T { return &v }
