package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/repo"
)

func newConversationService(t *testing.T) (*ConversationService, func() time.Time) {
	t.Helper()
	fixed := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return fixed }
	s := NewConversationService(newTestDB(t))
	s.Now = clock
	return s, clock
}

func TestConversationService_Create_Defaults(t *testing.T) {
	s, clock := newConversationService(t)
	ctx := context.Background()
	u := mustUser(t, s.DB, "a@x.io", domain.RoleClient)

	c, err := s.Create(ctx, u.ID, CreateConversationInput{
		UserMessage: "Comment réinitialiser mon mot de passe oublié ?",
		BotMessage:  "Cliquez sur le lien.",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ModelType != domain.DefaultModelType {
		t.Fatalf("model type = %q", c.ModelType)
	}
	if c.Title == nil || *c.Title != "Comment réinitialiser mon mot ..." {
		t.Fatalf("title = %v", c.Title)
	}
	if len(c.MessageUser) != 1 || len(c.MessageBot) != 1 {
		t.Fatalf("history lengths = %d/%d", len(c.MessageUser), len(c.MessageBot))
	}
	if c.Timestamp == nil || !c.Timestamp.Equal(clock()) {
		t.Fatalf("timestamp = %v", c.Timestamp)
	}
}

func TestConversationService_Create_Validation(t *testing.T) {
	s, _ := newConversationService(t)
	ctx := context.Background()
	u := mustUser(t, s.DB, "a@x.io", domain.RoleClient)
	other := mustUser(t, s.DB, "b@x.io", domain.RoleClient)

	if _, err := s.Create(ctx, u.ID, CreateConversationInput{UserMessage: " ", BotMessage: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank message err = %v", err)
	}

	f := &domain.File{UserID: other.ID, FilePath: "/tmp/x.txt", FileType: "txt"}
	if err := repo.CreateFile(ctx, s.DB, f); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	_, err := s.Create(ctx, u.ID, CreateConversationInput{UserMessage: "q", BotMessage: "a", FileID: &f.ID})
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("foreign file err = %v", err)
	}
}

func TestConversationService_AppendMessage(t *testing.T) {
	s, clock := newConversationService(t)
	ctx := context.Background()
	u := mustUser(t, s.DB, "a@x.io", domain.RoleClient)
	c := mustConversation(t, s.DB, u.ID, []string{"q1"}, []string{"a1"})

	d, err := s.AppendMessage(ctx, c.ID, u.ID, "q2", "a2")
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if len(d.Pairs) != 2 || d.Pairs[1].User != "q2" || d.Pairs[1].Bot != "a2" {
		t.Fatalf("pairs = %+v", d.Pairs)
	}

	got, err := s.Get(ctx, c.ID, u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.MessageUser) != 2 || len(got.MessageBot) != 2 {
		t.Fatalf("stored lengths = %d/%d", len(got.MessageUser), len(got.MessageBot))
	}
	if got.Timestamp == nil || !got.Timestamp.Equal(clock()) {
		t.Fatalf("timestamp = %v", got.Timestamp)
	}
}

func TestConversationService_AppendMessage_RepairsUnevenHistory(t *testing.T) {
	s, _ := newConversationService(t)
	ctx := context.Background()
	u := mustUser(t, s.DB, "a@x.io", domain.RoleClient)
	c := mustConversation(t, s.DB, u.ID, []string{"q1", "q2"}, []string{"a1"})

	d, err := s.AppendMessage(ctx, c.ID, u.ID, "q3", "a3")
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if len(d.MessageUser) != len(d.MessageBot) {
		t.Fatalf("lengths differ: %d/%d", len(d.MessageUser), len(d.MessageBot))
	}
}

func TestConversationService_OwnershipIsolation(t *testing.T) {
	s, _ := newConversationService(t)
	ctx := context.Background()
	owner := mustUser(t, s.DB, "a@x.io", domain.RoleClient)
	intruder := mustUser(t, s.DB, "b@x.io", domain.RoleClient)
	c := mustConversation(t, s.DB, owner.ID, []string{"q"}, []string{"a"})

	if _, err := s.Get(ctx, c.ID, intruder.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("Get err = %v", err)
	}
	if _, err := s.AppendMessage(ctx, c.ID, intruder.ID, "x", "y"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("Append err = %v", err)
	}
	if _, err := s.ToggleSaved(ctx, c.ID, intruder.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("Toggle err = %v", err)
	}
	if err := s.Delete(ctx, c.ID, intruder.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("Delete err = %v", err)
	}
	if _, err := s.Get(ctx, c.ID, owner.ID); err != nil {
		t.Fatalf("owner lost access: %v", err)
	}
}

func TestConversationService_ToggleSavedAndFilter(t *testing.T) {
	s, _ := newConversationService(t)
	ctx := context.Background()
	u := mustUser(t, s.DB, "a@x.io", domain.RoleClient)
	c1 := mustConversation(t, s.DB, u.ID, []string{"first question"}, []string{"a"})
	mustConversation(t, s.DB, u.ID, []string{"second"}, []string{"b"})

	saved, err := s.ToggleSaved(ctx, c1.ID, u.ID)
	if err != nil || !saved {
		t.Fatalf("ToggleSaved = %v, %v", saved, err)
	}

	all, err := s.ListForUser(ctx, u.ID, ListFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("ListForUser all = %d, %v", len(all), err)
	}
	only, err := s.ListForUser(ctx, u.ID, ListFilter{SavedOnly: true})
	if err != nil || len(only) != 1 || only[0].ID != c1.ID {
		t.Fatalf("ListForUser saved = %+v, %v", only, err)
	}
	if only[0].Title == nil || *only[0].Title != "first question" {
		t.Fatalf("resolved title = %v", only[0].Title)
	}

	saved, err = s.ToggleSaved(ctx, c1.ID, u.ID)
	if err != nil || saved {
		t.Fatalf("second ToggleSaved = %v, %v", saved, err)
	}
}

func TestConversationService_DeleteRemovesTickets(t *testing.T) {
	s, _ := newConversationService(t)
	ctx := context.Background()
	u := mustUser(t, s.DB, "a@x.io", domain.RoleClient)
	c := mustConversation(t, s.DB, u.ID, []string{"q"}, []string{"a"})
	tickets := &TicketService{DB: s.DB}
	if _, _, err := tickets.Rate(ctx, RateInput{ConversationID: c.ID, UserID: u.ID, Evaluation: domain.EvaluationLike}); err != nil {
		t.Fatalf("Rate: %v", err)
	}

	if err := s.Delete(ctx, c.ID, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var n int64
	s.DB.Model(&domain.Ticket{}).Where("conversation_id = ?", c.ID).Count(&n)
	if n != 0 {
		t.Fatalf("tickets left = %d", n)
	}
	if _, err := s.Get(ctx, c.ID, u.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("Get after delete err = %v", err)
	}
}

func TestConversationService_LegacyHistoryReadsAsSingleTurn(t *testing.T) {
	s, _ := newConversationService(t)
	ctx := context.Background()
	u := mustUser(t, s.DB, "a@x.io", domain.RoleClient)
	c := mustConversation(t, s.DB, u.ID, []string{"x"}, []string{"y"})
	if err := s.DB.Exec("UPDATE conversations SET message_user = ?, message_bot = ? WHERE id = ?",
		"Hello there", "Hi!", c.ID).Error; err != nil {
		t.Fatalf("raw update: %v", err)
	}

	d, err := s.Get(ctx, c.ID, u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(d.Pairs) != 1 || d.Pairs[0].User != "Hello there" || d.Pairs[0].Bot != "Hi!" {
		t.Fatalf("pairs = %+v", d.Pairs)
	}
	if !strings.HasPrefix(*d.Title, "Hello there") {
		t.Fatalf("title = %q", *d.Title)
	}
}
