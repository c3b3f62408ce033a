package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/history"
	"github.com/tbourn/support-chat-backend/internal/http/middleware"
	"github.com/tbourn/support-chat-backend/internal/repo"
	"github.com/tbourn/support-chat-backend/internal/services"
)

func conversationRoutes(h *Handlers, r *gin.Engine) {
	r.GET("/chat-history", h.ListConversations)
	r.GET("/conversation/:id", h.GetConversation)
	r.POST("/conversation", h.CreateConversation)
	r.POST("/conversation/:id/message", h.AppendMessage)
	r.POST("/conversation/:id/toggle-save", h.ToggleSave)
	r.DELETE("/conversation/:id", h.DeleteConversation)
}

func TestListConversations_ETag(t *testing.T) {
	latest := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	var tickets int64
	calls := 0
	svc := &stubConversations{
		stats: func(_ context.Context, userID uint) (repo.ListVersion, error) {
			return repo.ListVersion{Conversations: 2, Tickets: tickets, Latest: &latest}, nil
		},
		list: func(_ context.Context, userID uint, f services.ListFilter) ([]domain.Conversation, error) {
			calls++
			if userID != testClient.ID || !f.SavedOnly {
				t.Errorf("userID=%d filter=%+v", userID, f)
			}
			return []domain.Conversation{{ID: 1, UserID: userID}, {ID: 2, UserID: userID}}, nil
		},
	}
	h := New(Deps{Conversations: svc})
	r := newTestEngine(testClient)
	conversationRoutes(h, r)

	w := do(t, r, http.MethodGet, "/chat-history?saved_only=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if items := decode[[]domain.Conversation](t, w); len(items) != 2 {
		t.Fatalf("items = %+v", items)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	w = do(t, r, http.MethodGet, "/chat-history?saved_only=true", nil, "If-None-Match", etag)
	if w.Code != http.StatusNotModified || calls != 1 {
		t.Fatalf("status=%d calls=%d", w.Code, calls)
	}

	// The filter is part of the tag.
	w = do(t, r, http.MethodGet, "/chat-history", nil, "If-None-Match", etag)
	if w.Code == http.StatusNotModified {
		t.Fatal("unfiltered list matched the filtered ETag")
	}

	// Embedded tickets are part of the tag.
	tickets = 1
	w = do(t, r, http.MethodGet, "/chat-history?saved_only=true", nil, "If-None-Match", etag)
	if w.Code != http.StatusOK || w.Header().Get("ETag") == etag {
		t.Fatalf("ticket change kept the tag: status=%d", w.Code)
	}
}

func TestGetConversation(t *testing.T) {
	svc := &stubConversations{get: func(_ context.Context, id, userID uint) (*services.ConversationDetail, error) {
		if id != 42 {
			return nil, services.ErrConversationNotFound
		}
		c := &domain.Conversation{ID: 42, UserID: userID, MessageUser: history.Messages{"q"}, MessageBot: history.Messages{"a"}}
		return &services.ConversationDetail{Conversation: c, Pairs: history.Pairs(c.MessageUser, c.MessageBot)}, nil
	}}
	h := New(Deps{Conversations: svc})
	r := newTestEngine(testClient)
	conversationRoutes(h, r)

	w := do(t, r, http.MethodGet, "/conversation/42", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	body := decode[map[string]any](t, w)
	msgs := body["messages"].([]any)
	if len(msgs) != 1 || msgs[0].(map[string]any)["user"] != "q" {
		t.Fatalf("messages = %v", body["messages"])
	}
	if mu := body["message_user"].([]any); len(mu) != 1 {
		t.Fatalf("message_user = %v", body["message_user"])
	}

	if w := do(t, r, http.MethodGet, "/conversation/43", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing status=%d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/conversation/abc", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d", w.Code)
	}
}

func TestCreateConversation_RecordsAndReplays(t *testing.T) {
	stored := &domain.Conversation{ID: 9, UserID: testClient.ID, MessageUser: history.Messages{"hi"}, MessageBot: history.Messages{"hello"}}
	created := 0
	svc := &stubConversations{
		create: func(_ context.Context, userID uint, in services.CreateConversationInput) (*domain.Conversation, error) {
			created++
			if in.UserMessage != "hi" || in.BotMessage != "hello" || in.ModelType != "llama3.2" {
				t.Errorf("input = %+v", in)
			}
			return stored, nil
		},
		get: func(_ context.Context, id, userID uint) (*services.ConversationDetail, error) {
			return &services.ConversationDetail{Conversation: stored, Pairs: history.Pairs(stored.MessageUser, stored.MessageBot)}, nil
		},
	}
	idem := &stubIdem{}
	h := New(Deps{Conversations: svc, Idempotency: idem})

	var replay *middleware.Replay
	r := newTestEngine(testClient)
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, func(context.Context, uint, string, string) (*middleware.Replay, error) {
		return replay, nil
	}))
	conversationRoutes(h, r)

	body := map[string]any{"message_user": "hi", "message_bot": "hello", "model_type": "llama3.2"}
	w := do(t, r, http.MethodPost, "/conversation", body, middleware.HeaderIdempotencyKey, "k-1")
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if len(idem.records) != 1 {
		t.Fatalf("records = %+v", idem.records)
	}
	rec := idem.records[0]
	if rec.key != "k-1" || rec.scope != "POST /conversation" || rec.resourceID != 9 || rec.status != http.StatusCreated {
		t.Fatalf("record = %+v", rec)
	}

	replay = &middleware.Replay{ResourceID: 9, Status: http.StatusCreated}
	w = do(t, r, http.MethodPost, "/conversation", body, middleware.HeaderIdempotencyKey, "k-1")
	if w.Code != http.StatusCreated || w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay status=%d headers=%v", w.Code, w.Header())
	}
	if created != 1 {
		t.Fatalf("created %d times", created)
	}
}

func TestCreateConversation_Validation(t *testing.T) {
	h := New(Deps{Conversations: &stubConversations{}})
	r := newTestEngine(testClient)
	conversationRoutes(h, r)

	w := do(t, r, http.MethodPost, "/conversation", map[string]any{"message_user": "hi"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", w.Code)
	}
	if e := decode[ErrorResponse](t, w); e.Errors["message_bot"] != "is required" {
		t.Fatalf("errors = %v", e.Errors)
	}
}

func TestAppendToggleDelete(t *testing.T) {
	saved := false
	svc := &stubConversations{
		appendMsg: func(_ context.Context, id, userID uint, u, b string) (*services.ConversationDetail, error) {
			users := history.Messages{"first", u}
			bots := history.Messages{"one", b}
			c := &domain.Conversation{ID: id, UserID: userID, MessageUser: users, MessageBot: bots}
			return &services.ConversationDetail{Conversation: c, Pairs: history.Pairs(users, bots)}, nil
		},
		toggle: func(context.Context, uint, uint) (bool, error) { saved = !saved; return saved, nil },
		del: func(_ context.Context, id, _ uint) error {
			if id != 5 {
				return services.ErrConversationNotFound
			}
			return nil
		},
	}
	h := New(Deps{Conversations: svc})
	r := newTestEngine(testClient)
	conversationRoutes(h, r)

	w := do(t, r, http.MethodPost, "/conversation/5/message", map[string]any{"message_user": "second", "message_bot": "two"})
	if w.Code != http.StatusOK {
		t.Fatalf("append status=%d", w.Code)
	}
	body := decode[map[string]any](t, w)
	if len(body["messages"].([]any)) != 2 {
		t.Fatalf("messages = %v", body["messages"])
	}

	w = do(t, r, http.MethodPost, "/conversation/5/toggle-save", nil)
	if got := decode[ToggleSaveResponse](t, w); w.Code != http.StatusOK || got.ID != 5 || !got.IsSaved {
		t.Fatalf("toggle status=%d body=%+v", w.Code, got)
	}

	w = do(t, r, http.MethodDelete, "/conversation/5", nil)
	if got := decode[MessageResponse](t, w); w.Code != http.StatusOK || got.Message != "Conversation deleted successfully" {
		t.Fatalf("delete status=%d body=%+v", w.Code, got)
	}
	if w := do(t, r, http.MethodDelete, "/conversation/6", nil); w.Code != http.StatusNotFound {
		t.Fatalf("foreign delete status=%d", w.Code)
	}
}
