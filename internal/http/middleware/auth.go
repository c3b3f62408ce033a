// Package middleware contains the Gin middleware shared by every route
// group of the support API.
//
// This file implements bearer-token authentication and role gates. The
// authenticated user and the token row are stored in the Gin context; the
// handlers read them with UserFrom and TokenFrom.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/support-chat-backend/internal/authz"
	"github.com/tbourn/support-chat-backend/internal/domain"
)

const (
	userKey  = "authUser"
	tokenKey = "authToken"
)

// ErrUnauthenticated is returned by Authenticator implementations for a
// missing, unknown or expired token.
var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator resolves a plain bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (*domain.User, *domain.AccessToken, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, bearer string) (*domain.User, *domain.AccessToken, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, bearer string) (*domain.User, *domain.AccessToken, error) {
	return f(ctx, bearer)
}

// BearerAuth rejects requests without a valid "Authorization: Bearer"
// token with 401. Lookup failures other than a bad token answer 500.
func BearerAuth(a Authenticator, isUnauthenticated func(error) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		u, t, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, ErrUnauthenticated) || (isUnauthenticated != nil && isUnauthenticated(err)) {
				abortJSON(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}
			LoggerFrom(c).Error().Err(err).Msg("token lookup failed")
			abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		c.Set(userKey, u)
		c.Set(tokenKey, t)
		c.Next()
	}
}

// RequireRole answers 403 unless the authenticated user holds one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := UserFrom(c)
		if u == nil {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		for _, r := range roles {
			if u.HasRole(r) {
				c.Next()
				return
			}
		}
		abortJSON(c, http.StatusForbidden, "forbidden", "insufficient role")
	}
}

// Require answers 403 unless the user may perform action on resource.
func Require(action authz.Action, resource authz.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := UserFrom(c)
		if u == nil {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if !authz.Authorize(u, action, resource) {
			abortJSON(c, http.StatusForbidden, "forbidden", "insufficient role")
			return
		}
		c.Next()
	}
}

// UserFrom returns the authenticated user, or nil.
func UserFrom(c *gin.Context) *domain.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// TokenFrom returns the token the request was authenticated with, or nil.
func TokenFrom(c *gin.Context) *domain.AccessToken {
	if v, ok := c.Get(tokenKey); ok {
		if t, ok := v.(*domain.AccessToken); ok {
			return t
		}
	}
	return nil
}

// SetUser stores u as the authenticated user. Used by tests and by
// handlers that authenticate out of band.
func SetUser(c *gin.Context, u *domain.User, t *domain.AccessToken) {
	c.Set(userKey, u)
	if t != nil {
		c.Set(tokenKey, t)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// abortJSON writes the error envelope used across the API.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":     "error",
		"request_id": RequestIDFrom(c),
		"code":       code,
		"message":    msg,
	})
}
