// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate queries behind the admin
// dashboard: scalar counts and the raw creation timestamps that the service
// buckets into daily series.
//
// Bucketing happens in Go rather than with DATE() so that the grouping does
// not depend on how the driver serializes timestamps.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/domain"
)

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// createdIn matches rows whose created_at falls in w. Bounds are compared in
// UTC, the zone timestamps are written in.
func createdIn(w Window) Cond {
	return Where("created_at BETWEEN ? AND ?", w.Start.UTC(), w.End.UTC())
}

// Cond is an optional extra WHERE clause.
type Cond struct {
	Query string
	Args  []any
}

// Where builds a Cond.
func Where(query string, args ...any) Cond { return Cond{Query: query, Args: args} }

func scoped(ctx context.Context, db *gorm.DB, model any, conds []Cond) *gorm.DB {
	q := db.WithContext(ctx).Model(model)
	for _, c := range conds {
		q = q.Where(c.Query, c.Args...)
	}
	return q
}

// Count returns how many rows of model match conds.
func Count(ctx context.Context, db *gorm.DB, model any, conds ...Cond) (int64, error) {
	var n int64
	err := scoped(ctx, db, model, conds).Count(&n).Error
	return n, err
}

// CountCreatedIn counts rows of model created inside w.
func CountCreatedIn(ctx context.Context, db *gorm.DB, model any, w Window, conds ...Cond) (int64, error) {
	conds = append(conds, createdIn(w))
	return Count(ctx, db, model, conds...)
}

// CreatedTimes returns the created_at values of rows of model inside w.
func CreatedTimes(ctx context.Context, db *gorm.DB, model any, w Window, conds ...Cond) ([]time.Time, error) {
	conds = append(conds, createdIn(w))
	var out []time.Time
	err := scoped(ctx, db, model, conds).Pluck("created_at", &out).Error
	return out, err
}

// RecentTickets returns the latest limit tickets with their authors.
func RecentTickets(ctx context.Context, db *gorm.DB, limit int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := db.WithContext(ctx).
		Preload("User").
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
