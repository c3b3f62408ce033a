// Google OAuth HTTP handlers.
//
//   - GET /auth/google/url
//   - GET /auth/google/callback
//
// The callback answers JSON when the client asks for it and otherwise sends
// the browser back to the frontend with the token (or an error) in the query.
package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/support-chat-backend/internal/http/middleware"
	"github.com/tbourn/support-chat-backend/internal/services"
)

const frontendCallbackPath = "/auth/google/callback"

// OAuthURLResponse carries the Google consent URL.
type OAuthURLResponse struct {
	URL string `json:"url" example:"https://accounts.google.com/o/oauth2/auth?client_id=..."`
}

// GoogleURL godoc
// @ID          googleAuthURL
// @Summary     Google consent URL
// @Description Returns the URL the browser should visit to sign in with Google. redirect is an optional frontend path handed back after the callback.
// @Tags        Auth
// @Produce     json
// @Param       redirect  query     string  false  "Frontend path to return to"  example(/chat)
// @Success     200       {object}  handlers.OAuthURLResponse
// @Failure     404       {object}  handlers.ErrorResponse  "OAuth not configured"
// @Router      /auth/google/url [get]
func (h *Handlers) GoogleURL(c *gin.Context) {
	redirect := c.Query("redirect")
	if redirect != "" && !isLocalPath(redirect) {
		failValidation(c, "redirect", "must be a path on the frontend")
		return
	}
	u, err := h.OAuth.AuthURL(redirect)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, OAuthURLResponse{URL: u})
}

// GoogleCallback godoc
// @ID          googleCallback
// @Summary     Google OAuth callback
// @Description Completes Google sign-in. With Accept: application/json the token is returned in the body; otherwise the browser is redirected to FRONTEND_URL/auth/google/callback?token=... (or ?error=google_auth_failed).
// @Tags        Auth
// @Produce     json
// @Param       code   query     string  true  "Authorization code"
// @Param       state  query     string  true  "Signed state"
// @Success     200    {object}  handlers.SuccessResponse{data=services.OAuthResult}
// @Success     302    {string}  string  "Redirect to the frontend"
// @Failure     400    {object}  handlers.ErrorResponse
// @Router      /auth/google/callback [get]
func (h *Handlers) GoogleCallback(c *gin.Context) {
	wantJSON := strings.Contains(c.GetHeader("Accept"), "application/json")

	if e := c.Query("error"); e != "" {
		middleware.LoggerFrom(c).Warn().Str("provider_error", e).Msg("google sign-in refused")
		if wantJSON {
			fail(c, http.StatusBadRequest, ErrCodeOAuthFailed, "google sign-in was refused")
			return
		}
		h.redirectFrontend(c, url.Values{"error": {"google_auth_failed"}}, "")
		return
	}

	res, err := h.OAuth.Callback(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		if wantJSON || errors.Is(err, services.ErrOAuthDisabled) {
			failErr(c, err)
			return
		}
		middleware.LoggerFrom(c).Warn().Err(err).Msg("google sign-in failed")
		h.redirectFrontend(c, url.Values{"error": {"google_auth_failed"}}, "")
		return
	}

	if wantJSON {
		success(c, http.StatusOK, "Login successful", res)
		return
	}
	h.redirectFrontend(c, url.Values{"token": {res.Token}}, res.Redirect)
}

func (h *Handlers) redirectFrontend(c *gin.Context, q url.Values, redirect string) {
	if redirect != "" {
		q.Set("redirect", redirect)
	}
	base := strings.TrimRight(h.FrontendURL, "/")
	c.Redirect(http.StatusFound, base+frontendCallbackPath+"?"+q.Encode())
}

// isLocalPath accepts absolute paths only, so the state cannot carry an
// open redirect to another host.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, `\`)
}
