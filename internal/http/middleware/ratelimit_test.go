package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tbourn/support-chat-backend/internal/domain"
)

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = net.JoinHostPort("203.0.113.9", "12345")

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	if key := KeyByUserOrIP()(c); key != "ip:203.0.113.9" {
		t.Fatalf("expected ip-based key; got %q", key)
	}

	SetUser(c, &domain.User{ID: 42}, nil)
	if key := KeyByUserOrIP()(c); key != "user:42" {
		t.Fatalf("expected user-based key; got %q", key)
	}
}

func TestNewRateLimiter_DefaultsAndReuse(t *testing.T) {
	rl := NewRateLimiter(2.0, 0, nil)
	if rl.burst != 1 {
		t.Fatalf("burst coercion failed, got %d", rl.burst)
	}
	if rl.keyFn == nil {
		t.Fatal("default key func not set")
	}
	lim := rl.limiter("k1")
	if got := rl.limiter("k1"); got != lim {
		t.Fatal("expected limiter instance to be reused")
	}
}

func TestRateLimiter_SweepEvictsIdleBuckets(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1, KeyByUserOrIP())
	rl.now = func() time.Time { return now }

	rl.mu.Lock()
	rl.visitors["old"] = &visitor{limiter: rate.NewLimiter(1, 1), lastSeen: now.Add(-time.Hour)}
	rl.visitors["fresh"] = &visitor{limiter: rate.NewLimiter(1, 1), lastSeen: now.Add(-time.Minute)}
	rl.lookups = rl.sweepEvery - 1
	rl.mu.Unlock()

	_ = rl.limiter("new")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["old"]; ok {
		t.Fatal("idle bucket was not evicted")
	}
	if _, ok := rl.visitors["fresh"]; !ok {
		t.Fatal("recent bucket was evicted")
	}
	if _, ok := rl.visitors["new"]; !ok {
		t.Fatal("new bucket missing")
	}
	if rl.lookups != 0 {
		t.Fatalf("lookups not reset: %d", rl.lookups)
	}
}

func TestRateLimiter_Handler_429WithRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 1, func(c *gin.Context) string { return c.GetHeader("X-Key") })

	r := gin.New()
	r.Use(RequestID(), rl.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Key", key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := do("a"); w.Code != http.StatusOK {
		t.Fatalf("first request = %d", w.Code)
	}
	w := do("a")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Fatalf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["code"] != "rate_limited" || body["status"] != "error" || body["request_id"] == "" {
		t.Fatalf("unexpected envelope: %v", body)
	}

	// Buckets are per key.
	if w := do("b"); w.Code != http.StatusOK {
		t.Fatalf("other key = %d", w.Code)
	}
}

func TestRateLimiter_Handler_ReplayBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 1, func(*gin.Context) string { return "same" })

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/replay") {
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	})
	r.Use(rl.Handler())
	r.GET("/fresh", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/replay", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i, p := range []string{"/fresh", "/replay", "/replay"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d (%s) = %d", i, p, w.Code)
		}
	}
}
