package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/repo"
)

func TestTicketService_Rate_UpsertsPerUserAndConversation(t *testing.T) {
	db := newTestDB(t)
	s := &TicketService{DB: db}
	ctx := context.Background()
	u := mustUser(t, db, "a@x.io", domain.RoleClient)
	c := mustConversation(t, db, u.ID, []string{"q1", "q2"}, []string{"a1", "a2"})

	first, created, err := s.Rate(ctx, RateInput{ConversationID: c.ID, UserID: u.ID, Evaluation: domain.EvaluationLike})
	if err != nil || !created {
		t.Fatalf("first Rate = %v, %v", created, err)
	}
	if first.Question != "q2" || first.Response != "a2" {
		t.Fatalf("snapshot = %q/%q", first.Question, first.Response)
	}
	if first.Status != domain.TicketOpen {
		t.Fatalf("status = %q", first.Status)
	}

	if _, err := s.UpdateByAdmin(ctx, first.ID, mustUser(t, db, "admin@x.io", domain.RoleAdmin),
		AdminUpdate{Status: ptr(domain.TicketClosed)}); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, created, err := s.Rate(ctx, RateInput{ConversationID: c.ID, UserID: u.ID, Evaluation: domain.EvaluationDislike})
	if err != nil || created {
		t.Fatalf("second Rate = %v, %v", created, err)
	}
	if second.ID != first.ID {
		t.Fatalf("ticket id changed: %d -> %d", first.ID, second.ID)
	}
	if second.Evaluation == nil || *second.Evaluation != domain.EvaluationDislike {
		t.Fatalf("evaluation = %v", second.Evaluation)
	}
	if second.Status != domain.TicketClosed {
		t.Fatalf("status reset on update: %q", second.Status)
	}

	n, _ := repo.CountTickets(ctx, db, repo.TicketFilter{})
	if n != 1 {
		t.Fatalf("tickets = %d, want 1", n)
	}
}

func TestTicketService_Rate_ExplicitSnapshotWins(t *testing.T) {
	db := newTestDB(t)
	s := &TicketService{DB: db}
	u := mustUser(t, db, "a@x.io", domain.RoleClient)
	c := mustConversation(t, db, u.ID, []string{"q"}, []string{"a"})

	tk, _, err := s.Rate(context.Background(), RateInput{
		ConversationID: c.ID,
		UserID:         u.ID,
		Evaluation:     domain.EvaluationLike,
		Question:       ptr("custom q"),
		Response:       ptr("custom a"),
	})
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if tk.Question != "custom q" || tk.Response != "custom a" {
		t.Fatalf("snapshot = %q/%q", tk.Question, tk.Response)
	}
}

func TestTicketService_Rate_Errors(t *testing.T) {
	db := newTestDB(t)
	s := &TicketService{DB: db}
	ctx := context.Background()
	owner := mustUser(t, db, "a@x.io", domain.RoleClient)
	other := mustUser(t, db, "b@x.io", domain.RoleClient)
	c := mustConversation(t, db, owner.ID, []string{"q"}, []string{"a"})

	tests := []struct {
		name string
		in   RateInput
		want error
	}{
		{"bad evaluation", RateInput{ConversationID: c.ID, UserID: owner.ID, Evaluation: "meh"}, ErrInvalidEvaluation},
		{"foreign conversation", RateInput{ConversationID: c.ID, UserID: other.ID, Evaluation: domain.EvaluationLike}, ErrConversationNotFound},
		{"missing conversation", RateInput{ConversationID: 9999, UserID: owner.ID, Evaluation: domain.EvaluationLike}, ErrConversationNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := s.Rate(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTicketService_UpdateByAdmin(t *testing.T) {
	db := newTestDB(t)
	s := &TicketService{DB: db}
	ctx := context.Background()
	u := mustUser(t, db, "a@x.io", domain.RoleClient)
	admin := mustUser(t, db, "admin@x.io", domain.RoleAdmin)
	c := mustConversation(t, db, u.ID, []string{"q"}, []string{"a"})
	tk, _, _ := s.Rate(ctx, RateInput{ConversationID: c.ID, UserID: u.ID, Evaluation: domain.EvaluationLike})

	if _, err := s.UpdateByAdmin(ctx, tk.ID, u, AdminUpdate{Comment: ptr("hi")}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("client update err = %v", err)
	}
	if _, err := s.UpdateByAdmin(ctx, tk.ID, admin, AdminUpdate{Status: ptr("pending")}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("bad status err = %v", err)
	}
	if _, err := s.UpdateByAdmin(ctx, 9999, admin, AdminUpdate{Comment: ptr("x")}); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("missing ticket err = %v", err)
	}

	got, err := s.UpdateByAdmin(ctx, tk.ID, admin, AdminUpdate{Comment: ptr("Merci")})
	if err != nil {
		t.Fatalf("UpdateByAdmin: %v", err)
	}
	if !got.HasAdminComment() || got.Status != domain.TicketOpen {
		t.Fatalf("ticket = %+v", got)
	}
	if got.User.ID != u.ID {
		t.Fatalf("author not loaded: %+v", got.User)
	}
}

func TestTicketService_ListAll(t *testing.T) {
	db := newTestDB(t)
	s := &TicketService{DB: db}
	ctx := context.Background()
	admin := mustUser(t, db, "admin@x.io", domain.RoleAdmin)
	u := mustUser(t, db, "a@x.io", domain.RoleClient)
	for i := 0; i < 3; i++ {
		c := mustConversation(t, db, u.ID, []string{"q"}, []string{"a"})
		ev := domain.EvaluationLike
		if i == 2 {
			ev = domain.EvaluationDislike
		}
		if _, _, err := s.Rate(ctx, RateInput{ConversationID: c.ID, UserID: u.ID, Evaluation: ev}); err != nil {
			t.Fatalf("Rate: %v", err)
		}
	}

	if _, _, err := s.ListAll(ctx, u, repo.TicketFilter{}, 1, 10); !errors.Is(err, ErrForbidden) {
		t.Fatalf("client ListAll err = %v", err)
	}
	if _, _, err := s.ListAll(ctx, admin, repo.TicketFilter{Evaluation: "nope"}, 1, 10); !errors.Is(err, ErrInvalidEvaluation) {
		t.Fatalf("bad filter err = %v", err)
	}

	items, total, err := s.ListAll(ctx, admin, repo.TicketFilter{Evaluation: domain.EvaluationLike}, 1, 1)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if total != 2 || len(items) != 1 {
		t.Fatalf("total=%d len=%d", total, len(items))
	}

	items, total, err = s.ListAll(ctx, admin, repo.TicketFilter{}, 0, 0)
	if err != nil || total != 3 || len(items) != 3 {
		t.Fatalf("defaults: total=%d len=%d err=%v", total, len(items), err)
	}
}

func TestTicketService_GetAndDelete_Access(t *testing.T) {
	db := newTestDB(t)
	s := &TicketService{DB: db}
	ctx := context.Background()
	owner := mustUser(t, db, "a@x.io", domain.RoleClient)
	other := mustUser(t, db, "b@x.io", domain.RoleClient)
	admin := mustUser(t, db, "admin@x.io", domain.RoleAdmin)
	c := mustConversation(t, db, owner.ID, []string{"q"}, []string{"a"})
	tk, _, _ := s.Rate(ctx, RateInput{ConversationID: c.ID, UserID: owner.ID, Evaluation: domain.EvaluationLike})

	if _, err := s.Get(ctx, tk.ID, other); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("foreign Get err = %v", err)
	}
	if _, err := s.Get(ctx, tk.ID, owner); err != nil {
		t.Fatalf("owner Get: %v", err)
	}
	if _, err := s.Get(ctx, tk.ID, admin); err != nil {
		t.Fatalf("admin Get: %v", err)
	}

	if err := s.Delete(ctx, tk.ID, other); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign Delete err = %v", err)
	}
	if err := s.Delete(ctx, 9999, owner); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("missing Delete err = %v", err)
	}
	if err := s.Delete(ctx, tk.ID, admin); err != nil {
		t.Fatalf("admin Delete: %v", err)
	}
}

func TestTicketService_Stats(t *testing.T) {
	db := newTestDB(t)
	s := &TicketService{DB: db}
	ctx := context.Background()
	owner := mustUser(t, db, "a@x.io", domain.RoleClient)
	other := mustUser(t, db, "b@x.io", domain.RoleClient)
	admin := mustUser(t, db, "admin@x.io", domain.RoleAdmin)
	c := mustConversation(t, db, owner.ID, []string{"q"}, []string{"a"})
	tk, _, _ := s.Rate(ctx, RateInput{ConversationID: c.ID, UserID: owner.ID, Evaluation: domain.EvaluationDislike})
	_, _ = s.UpdateByAdmin(ctx, tk.ID, admin, AdminUpdate{Comment: ptr("noted")})

	st, err := s.StatsForConversation(ctx, c.ID, owner)
	if err != nil {
		t.Fatalf("StatsForConversation: %v", err)
	}
	if st.Stats.Total != 1 || st.Stats.Jenaimepas != 1 || st.Stats.Jaime != 0 || !st.Stats.HasComments {
		t.Fatalf("stats = %+v", st.Stats)
	}
	if len(st.Tickets) != 1 || st.Tickets[0].User == nil || st.Tickets[0].User.ID != owner.ID {
		t.Fatalf("tickets = %+v", st.Tickets)
	}
	if _, err := s.StatsForConversation(ctx, c.ID, other); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("foreign stats err = %v", err)
	}
	if _, err := s.StatsForConversation(ctx, c.ID, admin); err != nil {
		t.Fatalf("admin stats: %v", err)
	}

	evals, err := s.EvaluationsByConversation(ctx, owner.ID, owner)
	if err != nil || len(evals) != 1 || evals[0].Jenaimepas != 1 {
		t.Fatalf("evaluations = %+v, %v", evals, err)
	}
	if _, err := s.EvaluationsByConversation(ctx, owner.ID, other); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign evaluations err = %v", err)
	}
	if _, err := s.EvaluationsByConversation(ctx, owner.ID, admin); err != nil {
		t.Fatalf("admin evaluations: %v", err)
	}
}
