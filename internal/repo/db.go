// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver), schema migrations and reference-data seeding.
package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/support-chat-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound so callers can use errors.Is with either.
var ErrNotFound = gorm.ErrRecordNotFound

// OpenSQLite opens (or creates) a SQLite database, applies PRAGMAs, and
// installs the OpenTelemetry GORM plugin so queries show up as spans.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin()); err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates every table the application uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Role{},
		&domain.User{},
		&domain.AccessToken{},
		&domain.File{},
		&domain.Conversation{},
		&domain.Ticket{},
		&domain.Idempotency{},
	)
}

// SeedRoles makes sure the admin and client roles exist.
func SeedRoles(ctx context.Context, db *gorm.DB) error {
	for _, name := range []string{domain.RoleAdmin, domain.RoleClient} {
		err := db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.Role{Name: name}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin creates an admin account with the given credentials unless a
// user with that email already exists. passwordHash must already be hashed.
func SeedAdmin(ctx context.Context, db *gorm.DB, name, email, passwordHash string) (*domain.User, bool, error) {
	existing, err := GetUserByEmail(ctx, db, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	var u *domain.User
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := CreateUser(ctx, tx, name, email, passwordHash)
		if err != nil {
			return err
		}
		if err := AttachRole(ctx, tx, created, domain.RoleAdmin); err != nil {
			return err
		}
		u = created
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}
