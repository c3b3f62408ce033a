// User administration HTTP handlers (admin only).
//
//   - GET    /users
//   - POST   /users
//   - GET    /users/{id}
//   - PUT    /users/{id}
//   - DELETE /users/{id}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/support-chat-backend/internal/services"
)

// CreateUserRequest is an admin-created account.
type CreateUserRequest struct {
	Name     string `json:"name"     binding:"required,min=4,max=255"      example:"Support Agent"`
	Email    string `json:"email"    binding:"required,email,max=255"      example:"agent@example.com"`
	Password string `json:"password" binding:"required,min=8"              example:"s3cretpass"`
	Role     string `json:"role"     binding:"omitempty,oneof=admin client" example:"client"`
}

// UpdateUserRequest changes the given fields only.
type UpdateUserRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=4,max=255" example:"Support Lead"`
	Email    *string `json:"email"    binding:"omitempty,email,max=255" example:"lead@example.com"`
	Password *string `json:"password" binding:"omitempty,min=8"         example:"n3wpassword"`
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List users with activity counters
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}   repo.UserStats
// @Failure     403  {object}  handlers.ErrorResponse
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	items, err := h.Users.List(c.Request.Context(), u)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// CreateUser godoc
// @ID          createUser
// @Summary     Create a user
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.CreateUserRequest  true  "Account"
// @Success     201   {object}  domain.User
// @Failure     403   {object}  handlers.ErrorResponse
// @Failure     422   {object}  handlers.ErrorResponse
// @Router      /users [post]
func (h *Handlers) CreateUser(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c, err)
		return
	}
	created, err := h.Users.Create(c.Request.Context(), u, services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// GetUser godoc
// @ID          getUser
// @Summary     Get a user
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "User ID"
// @Success     200  {object}  domain.User
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	target, err := h.Users.Get(c.Request.Context(), u, id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, target)
}

// UpdateUser godoc
// @ID          updateUser
// @Summary     Update a user
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      int  true  "User ID"
// @Param       body  body      handlers.UpdateUserRequest  true  "Changes"
// @Success     200   {object}  domain.User
// @Failure     403   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Failure     422   {object}  handlers.ErrorResponse
// @Router      /users/{id} [put]
func (h *Handlers) UpdateUser(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c, err)
		return
	}
	updated, err := h.Users.Update(c.Request.Context(), u, id, services.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// DeleteUser godoc
// @ID          deleteUser
// @Summary     Delete a user
// @Description Removes the account with its tokens, conversations, tickets and files. Admins cannot delete themselves.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "User ID"
// @Success     200  {object}  handlers.MessageResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /users/{id} [delete]
func (h *Handlers) DeleteUser(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), u, id); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}
