package repo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/history"
)

func TestOpenSQLite_ErrorOnBadPath(t *testing.T) {
	base := t.TempDir()
	bad := filepath.Join(base, "does-not-exist", "app.db")

	db, err := OpenSQLite(bad)
	if err == nil || db != nil {
		t.Fatalf("expected error opening %q, got db=%v err=%v", bad, db, err)
	}

	// Be tolerant across platforms/drivers:
	// - Windows: *os.PathError ("CreateFile â€¦ cannot find the file specified")
	// - SQLite:  "unable to open database file" / "out of memory (14)"
	// - Unix:    "no such file or directory"
	lower := strings.ToLower(err.Error())
	if !(os.IsNotExist(err) ||
		strings.Contains(lower, "unable to open database file") ||
		strings.Contains(lower, "no such file or directory") ||
		strings.Contains(lower, "out of memory")) {
		t.Fatalf("unexpected error opening %q: %v", bad, err)
	}
}

func TestOpenSQLite_SetsPragmas_Pool_AndAutoMigrate(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "app.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	// --- Verify PRAGMAs set by OpenSQLite ---
	var (
		journalMode string
		syncVal     int
		fkOn        int
		busyMS      int
	)

	if err := db.Raw("PRAGMA journal_mode;").Row().Scan(&journalMode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if strings.ToLower(journalMode) != "wal" {
		t.Fatalf("expected journal_mode=wal, got %q", journalMode)
	}

	if err := db.Raw("PRAGMA synchronous;").Row().Scan(&syncVal); err != nil {
		t.Fatalf("PRAGMA synchronous: %v", err)
	}
	// NORMAL == 1
	if syncVal != 1 {
		t.Fatalf("expected synchronous=1 (NORMAL), got %d", syncVal)
	}

	if err := db.Raw("PRAGMA foreign_keys;").Row().Scan(&fkOn); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fkOn != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fkOn)
	}

	if err := db.Raw("PRAGMA busy_timeout;").Row().Scan(&busyMS); err != nil {
		t.Fatalf("PRAGMA busy_timeout: %v", err)
	}
	if busyMS != 5000 {
		t.Fatalf("expected busy_timeout=5000, got %d", busyMS)
	}

	// --- Verify pool tuning applied ---
	if stats := sqlDB.Stats(); stats.MaxOpenConnections != 10 {
		t.Fatalf("expected MaxOpenConnections=10, got %d", stats.MaxOpenConnections)
	}

	// --- AutoMigrate should create all tables ---
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	m := db.Migrator()
	for _, tbl := range []any{&domain.Role{}, &domain.User{}, &domain.AccessToken{}, &domain.File{}, &domain.Conversation{}, &domain.Ticket{}, &domain.Idempotency{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}

	// Quick insert round-trip to prove schema is usable.
	ctx := context.Background()
	if err := SeedRoles(ctx, db); err != nil {
		t.Fatalf("SeedRoles: %v", err)
	}
	u, err := CreateUser(ctx, db, "Alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	c := &domain.Conversation{UserID: u.ID, MessageUser: history.Messages{"hi"}, MessageBot: history.Messages{"hello"}}
	if err := CreateConversation(ctx, db, c); err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	got, err := GetConversation(ctx, db, c.ID, u.ID)
	if err != nil || got.UserID != u.ID || got.ModelType != domain.DefaultModelType {
		t.Fatalf("readback conversation failed: err=%v got=%+v", err, got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
}

func TestSeedRoles_Idempotent(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := SeedRoles(ctx, db); err != nil {
			t.Fatalf("SeedRoles #%d: %v", i, err)
		}
	}
	var n int64
	db.Model(&domain.Role{}).Count(&n)
	if n != 2 {
		t.Fatalf("expected 2 roles, got %d", n)
	}
}

func TestSeedAdmin_CreatesOnce(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	u, created, err := SeedAdmin(ctx, db, "Admin", "Admin@Example.com", "hash")
	if err != nil || !created {
		t.Fatalf("SeedAdmin first: created=%v err=%v", created, err)
	}
	if !u.HasRole(domain.RoleAdmin) {
		t.Fatalf("seeded user lacks admin role: %+v", u.Roles)
	}

	again, created, err := SeedAdmin(ctx, db, "Admin", "admin@example.com", "other")
	if err != nil || created {
		t.Fatalf("SeedAdmin second: created=%v err=%v", created, err)
	}
	if again.ID != u.ID {
		t.Fatalf("expected existing admin %d, got %d", u.ID, again.ID)
	}
}

// Compile-time guard to ensure signature stability.
var _ func(string) (*gorm.DB, error) = OpenSQLite
