package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/support-chat-backend/internal/domain"
)

func TestGetIdempotency_BlankScopeOrKey_ReturnsNotFound(t *testing.T) {
	db := newRepoDB(t)
	now := time.Now().UTC()

	if rec, err := GetIdempotency(context.Background(), db, 1, "   ", "k1", now); rec != nil || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected (nil, ErrNotFound) for blank scope, got (%v, %v)", rec, err)
	}
	if rec, err := GetIdempotency(context.Background(), db, 1, "conversation:create", "", now); rec != nil || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected (nil, ErrNotFound) for blank key, got (%v, %v)", rec, err)
	}
}

func TestIdempotency_CreateGetExpire(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	scope := "conversation:7:message"

	rec, err := CreateIdempotency(ctx, db, 1, scope, "k1", 7, 200, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ID == 0 || rec.ResourceID != 7 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, 1, scope, "k1", time.Now().UTC())
	if err != nil || got.ResourceID != 7 || got.Status != 200 {
		t.Fatalf("GetIdempotency: got=%+v err=%v", got, err)
	}

	// Different user, scope or key do not match.
	if _, err := GetIdempotency(ctx, db, 2, scope, "k1", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user: %v", err)
	}
	if _, err := GetIdempotency(ctx, db, 1, "conversation:create", "k1", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other scope: %v", err)
	}

	// Past the TTL the record is invisible.
	if _, err := GetIdempotency(ctx, db, 1, scope, "k1", time.Now().UTC().Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired: %v", err)
	}

	if _, err := CreateIdempotency(ctx, db, 1, scope, "k1", 8, 201, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestPurgeExpiredIdempotency(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	if _, err := CreateIdempotency(ctx, db, 1, "s", "old", 1, 200, -time.Minute); err != nil {
		t.Fatalf("create old: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, 1, "s", "new", 2, 200, time.Hour); err != nil {
		t.Fatalf("create new: %v", err)
	}

	n, err := PurgeExpiredIdempotency(ctx, db, time.Now().UTC())
	if err != nil || n != 1 {
		t.Fatalf("PurgeExpiredIdempotency: n=%d err=%v", n, err)
	}
	var left int64
	db.Model(&domain.Idempotency{}).Count(&left)
	if left != 1 {
		t.Fatalf("expected 1 record left, got %d", left)
	}
}
