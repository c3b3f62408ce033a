package services

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/support-chat-backend/internal/domain"
)

func TestIdempotencyService_RecordLookupPurge(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := mustUser(t, db, "a@x.io", domain.RoleClient)

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s := &IdempotencyService{DB: db, TTL: time.Hour, Now: func() time.Time { return now }}
	scope := "POST /api/conversations"

	rec, err := s.Lookup(ctx, u.ID, scope, "k1")
	if err != nil || rec != nil {
		t.Fatalf("Lookup before record = %+v, %v", rec, err)
	}

	if err := s.Record(ctx, u.ID, scope, "k1", 42, 201); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(ctx, u.ID, scope, "k1", 43, 201); err != nil {
		t.Fatalf("duplicate Record should be ignored: %v", err)
	}

	rec, err = s.Lookup(ctx, u.ID, scope, "k1")
	if err != nil || rec == nil || rec.ResourceID != 42 || rec.Status != 201 {
		t.Fatalf("Lookup = %+v, %v", rec, err)
	}

	// Keys are scoped per user.
	other := mustUser(t, db, "b@x.io", domain.RoleClient)
	if rec, _ := s.Lookup(ctx, other.ID, scope, "k1"); rec != nil {
		t.Fatalf("key leaked across users: %+v", rec)
	}

	// Records are written with the wall clock, so move far past the TTL.
	now = time.Now().UTC().Add(2 * time.Hour)
	if rec, _ := s.Lookup(ctx, u.ID, scope, "k1"); rec != nil {
		t.Fatalf("expired record still returned: %+v", rec)
	}
	n, err := s.Purge(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Purge = %d, %v", n, err)
	}
}
