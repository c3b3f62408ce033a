// Package middleware contains the Gin middleware shared by every route
// group of the support API.
//
// This file implements Idempotency-Key support for the create endpoints
// (conversation, message append, ticket). The middleware validates the
// header, scopes it to the caller and the request path, and looks up a
// previously completed request. Handlers serve the replay from the stored
// resource id and record new completions; the middleware never caches
// response bodies.
package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the client key.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemScope  = "idem.scope"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

var defaultIdemPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// Replay is a completed request found for the current key.
type Replay struct {
	ResourceID uint
	Status     int
}

// IdempotencyLookup returns the completion recorded for (userID, scope,
// key), if any. Errors are logged and treated as a miss.
type IdempotencyLookup func(ctx context.Context, userID uint, scope, key string) (*Replay, error)

// IdempotencyOptions configures header validation.
type IdempotencyOptions struct {
	// MaxLen caps the key length; defaults to 200.
	MaxLen int
	// Pattern restricts the key alphabet; defaults to ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

// IdempotencyValidator must run after BearerAuth. Without the header it is
// a no-op; a malformed key answers 400.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdemPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			abortJSON(c, http.StatusBadRequest, "bad_idempotency_key", "invalid Idempotency-Key")
			return
		}

		scope := IdempotencyScopeFor(c)
		c.Set(ctxKeyIdemKey, key)
		c.Set(ctxKeyIdemScope, scope)

		if u := UserFrom(c); u != nil && lookup != nil {
			rep, err := lookup(c.Request.Context(), u.ID, scope, key)
			switch {
			case err != nil:
				LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
			case rep != nil:
				c.Set(ctxKeyIdemReplay, rep)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

// IdempotencyScopeFor scopes keys to the method and concrete path, so the
// same key may be reused on different conversations.
func IdempotencyScopeFor(c *gin.Context) string {
	return c.Request.Method + " " + c.Request.URL.Path
}

// GetIdempotencyKey returns the validated key and its scope.
func GetIdempotencyKey(c *gin.Context) (key, scope string, ok bool) {
	key = c.GetString(ctxKeyIdemKey)
	scope = c.GetString(ctxKeyIdemScope)
	return key, scope, key != ""
}

// ReplayFrom returns the recorded completion when the request is a replay.
func ReplayFrom(c *gin.Context) (*Replay, bool) {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return nil, false
	}
	r, ok := v.(*Replay)
	return r, ok && r != nil
}

// IsReplay reports whether ReplayFrom would succeed.
func IsReplay(c *gin.Context) bool {
	_, ok := ReplayFrom(c)
	return ok
}
