// Auth HTTP handlers.
//
//   - POST /auth/register
//   - POST /auth/login
//   - POST /auth/logout      (bearer)
//   - GET  /auth/user        (bearer)
//   - GET  /auth/token-info  (bearer)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/http/middleware"
	"github.com/tbourn/support-chat-backend/internal/services"
)

// RegisterRequest is the sign-up payload. Role "admin" requires
// admin_secret_key to match the server's ADMIN_SECRET_KEY.
type RegisterRequest struct {
	Name           string `json:"name"             binding:"required,min=4,max=255" example:"Jane Doe"`
	Email          string `json:"email"            binding:"required,email,max=255" example:"jane@example.com"`
	Password       string `json:"password"         binding:"required,min=8"         example:"s3cretpass"`
	Role           string `json:"role"             binding:"omitempty,oneof=admin client" example:"client"`
	AdminSecretKey string `json:"admin_secret_key" example:""`
}

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required"       example:"s3cretpass"`
}

// Register godoc
// @ID          register
// @Summary     Create an account
// @Description Creates a client account (or an admin one when the admin secret matches) and returns a bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.RegisterRequest  true  "Sign-up payload"
// @Success     201   {object}  handlers.SuccessResponse{data=services.AuthResult}
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     403   {object}  handlers.ErrorResponse  "Bad admin secret"
// @Failure     422   {object}  handlers.ErrorResponse  "Validation failed or email taken"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c, err)
		return
	}
	res, err := h.Auth.Register(c.Request.Context(), services.RegisterInput{
		Name:        strings.TrimSpace(req.Name),
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		AdminSecret: req.AdminSecretKey,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusCreated, "Registration successful", res)
}

// Login godoc
// @ID          login
// @Summary     Sign in
// @Description Verifies credentials, revokes previous tokens and returns a fresh bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.LoginRequest  true  "Credentials"
// @Success     200   {object}  handlers.SuccessResponse{data=services.AuthResult}
// @Failure     401   {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     422   {object}  handlers.ErrorResponse
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c, err)
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failErr(c, err)
		return
	}
	if res.Soft != nil {
		middleware.LoggerFrom(c).Warn().Err(res.Soft).Uint("user_id", res.User.ID).Msg("login completed with warnings")
	}
	success(c, http.StatusOK, "Login successful", res)
}

// Logout godoc
// @ID          logout
// @Summary     Sign out
// @Description Revokes the token the request was authenticated with.
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	t := middleware.TokenFrom(c)
	if t == nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	if err := h.Auth.Logout(c.Request.Context(), t.ID); err != nil {
		failErr(c, err)
		return
	}
	success(c, http.StatusOK, "Logout successful", nil)
}

// CurrentUserResponse is the authenticated user with role names.
type CurrentUserResponse struct {
	*domain.User
	RoleNames []string `json:"role_names"`
	IsAdmin   bool     `json:"is_admin"`
}

// CurrentUser godoc
// @ID          currentUser
// @Summary     Current user
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.CurrentUserResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /auth/user [get]
func (h *Handlers) CurrentUser(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	ok(c, http.StatusOK, CurrentUserResponse{
		User:      u,
		RoleNames: u.RoleNames(),
		IsAdmin:   u.HasRole(domain.RoleAdmin),
	})
}

// TokenInfo godoc
// @ID          tokenInfo
// @Summary     Current token metadata
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  services.TokenInfo
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /auth/token-info [get]
func (h *Handlers) TokenInfo(c *gin.Context) {
	t := middleware.TokenFrom(c)
	if t == nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	ok(c, http.StatusOK, h.Auth.TokenInfo(t))
}
