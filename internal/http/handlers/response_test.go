package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/support-chat-backend/internal/services"
)

func Test_fail_500_LogsAndBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// capture logs from LoggerFrom(c)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-500")
		c.Set("logger", &logger)
		c.Next()
	})
	r.GET("/boom", func(c *gin.Context) {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "kaboom")
	})

	w := do(t, r, http.MethodGet, "/boom", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	resp := decode[ErrorResponse](t, w)
	if resp.Status != "error" || resp.RequestID != "rid-500" || resp.Code != ErrCodeInternal || resp.Message != "kaboom" {
		t.Fatalf("unexpected body: %+v", resp)
	}
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected error log, got: %s", buf.String())
	}
}

func Test_Fail_404_And_Success(t *testing.T) {
	r := newTestEngine(nil)
	r.GET("/missing", func(c *gin.Context) {
		Fail(c, http.StatusNotFound, ErrCodeNotFound, "nope")
	})
	r.GET("/ok", func(c *gin.Context) {
		success(c, http.StatusCreated, "done", gin.H{"n": 1})
	})

	w := do(t, r, http.MethodGet, "/missing", nil, "X-Request-ID", "rid-404")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	if er := decode[ErrorResponse](t, w); er.RequestID != "rid-404" || er.Code != ErrCodeNotFound || er.Errors != nil {
		t.Fatalf("unexpected 404 body: %+v", er)
	}

	w = do(t, r, http.MethodGet, "/ok", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d", w.Code)
	}
	body := decode[map[string]any](t, w)
	if body["status"] != "success" || body["message"] != "done" {
		t.Fatalf("unexpected body: %#v", body)
	}
}

func Test_failBind_ValidationUsesJSONNames(t *testing.T) {
	type payload struct {
		ConversationID uint   `json:"conversation_id" binding:"required"`
		Evaluation     string `json:"evaluation"      binding:"required,oneof=jaime jenaimepas"`
		Email          string `json:"email"           binding:"omitempty,email"`
	}
	r := newTestEngine(nil)
	r.POST("/p", func(c *gin.Context) {
		var p payload
		if err := c.ShouldBindJSON(&p); err != nil {
			failBind(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := do(t, r, http.MethodPost, "/p", `{"evaluation":"meh","email":"nope"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	e := decode[ErrorResponse](t, w)
	if e.Code != ErrCodeValidation {
		t.Fatalf("code=%q", e.Code)
	}
	want := map[string]string{
		"conversation_id": "is required",
		"evaluation":      "must be one of: jaime jenaimepas",
		"email":           "must be a valid email address",
	}
	for k, v := range want {
		if e.Errors[k] != v {
			t.Fatalf("errors[%q] = %q, want %q (all: %v)", k, e.Errors[k], v, e.Errors)
		}
	}

	w = do(t, r, http.MethodPost, "/p", `{"evaluation":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed status=%d", w.Code)
	}
}

func Test_failErr_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrUnauthenticated, http.StatusUnauthorized, ErrCodeUnauthorized},
		{services.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{services.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
		{services.ErrAdminSecret, http.StatusForbidden, ErrCodeForbidden},
		{services.ErrConversationNotFound, http.StatusNotFound, ErrCodeNotFound},
		{fmt.Errorf("wrapped: %w", services.ErrTicketNotFound), http.StatusNotFound, ErrCodeNotFound},
		{services.ErrUserNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrFileNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrEmailTaken, http.StatusUnprocessableEntity, ErrCodeValidation},
		{services.ErrInvalidEvaluation, http.StatusUnprocessableEntity, ErrCodeValidation},
		{services.ErrInvalidStatus, http.StatusUnprocessableEntity, ErrCodeValidation},
		{services.ErrEmptyPrompt, http.StatusUnprocessableEntity, ErrCodeValidation},
		{services.ErrInvalidInput, http.StatusUnprocessableEntity, ErrCodeValidation},
		{services.ErrUnsupportedModel, http.StatusUnprocessableEntity, ErrCodeUnsupportedModel},
		{services.ErrFileTooLarge, http.StatusRequestEntityTooLarge, ErrCodeTooLarge},
		{services.ErrOAuthDisabled, http.StatusNotFound, ErrCodeOAuthDisabled},
		{fmt.Errorf("%w: expired", services.ErrOAuthState), http.StatusBadRequest, ErrCodeOAuthFailed},
		{services.ErrOAuthExchange, http.StatusBadRequest, ErrCodeOAuthFailed},
		{errors.New("disk on fire"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			r := newTestEngine(nil)
			r.GET("/e", func(c *gin.Context) { failErr(c, tc.err) })

			w := do(t, r, http.MethodGet, "/e", nil)
			if w.Code != tc.status {
				t.Fatalf("status=%d want %d", w.Code, tc.status)
			}
			e := decode[ErrorResponse](t, w)
			if e.Code != tc.code {
				t.Fatalf("code=%q want %q", e.Code, tc.code)
			}
			if tc.status == http.StatusInternalServerError && strings.Contains(e.Message, "disk") {
				t.Fatalf("internal cause leaked: %q", e.Message)
			}
		})
	}
}

func Test_ErrorResponseJSONShape(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	failValidation(c, "email", "has already been taken")

	body := w.Body.String()
	for _, want := range []string{`"status":"error"`, `"code":"validation_failed"`, `"errors":{"email":"has already been taken"}`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body %s missing %s", body, want)
		}
	}
}
