// Conversation HTTP handlers.
//
//   - GET    /chat-history                  (list, ETag support)
//   - GET    /conversation/{id}
//   - POST   /conversation                  (idempotent)
//   - POST   /conversation/{id}/message     (idempotent)
//   - POST   /conversation/{id}/toggle-save
//   - DELETE /conversation/{id}
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/support-chat-backend/internal/history"
	"github.com/tbourn/support-chat-backend/internal/http/middleware"
	"github.com/tbourn/support-chat-backend/internal/services"
	"github.com/tbourn/support-chat-backend/internal/utils"
)

//
// DTOs
//

// CreateConversationRequest is the first exchange of a new conversation.
type CreateConversationRequest struct {
	MessageUser string  `json:"message_user" binding:"required"                example:"How do I reset my password?"`
	MessageBot  string  `json:"message_bot"  binding:"required"                example:"Open Settings, then Security."`
	ModelType   string  `json:"model_type"   binding:"omitempty,max=64"        example:"llama3.2"`
	FileID      *uint   `json:"file_id"                                        example:"3"`
	Title       *string `json:"title"        binding:"omitempty,max=255"       example:"Password reset"`
	IsSaved     bool    `json:"is_saved"`
}

// AppendMessageRequest is one more exchange on an existing conversation.
type AppendMessageRequest struct {
	MessageUser string `json:"message_user" binding:"required" example:"And if I lost my phone?"`
	MessageBot  string `json:"message_bot"  binding:"required" example:"Use one of your backup codes."`
}

// ToggleSaveResponse reports the new saved flag.
type ToggleSaveResponse struct {
	ID      uint `json:"id"       example:"42"`
	IsSaved bool `json:"is_saved" example:"true"`
}

// pathID parses the positive numeric id in param name, answering 400 when
// it is malformed.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, valid := utils.ParseID(c.Param(name))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

//
// Handlers
//

// ListConversations godoc
// @ID          listConversations
// @Summary     Conversation history
// @Description Returns the user's conversations, most recent first, with their tickets. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Conversations
// @Produce     json
// @Security    BearerAuth
// @Param       saved_only     query   bool    false "Only saved conversations"
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Success     200  {array}   domain.Conversation
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /chat-history [get]
func (h *Handlers) ListConversations(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	ctx := c.Request.Context()
	savedOnly := c.Query("saved_only") == "true" || c.Query("saved_only") == "1"

	// ETag pre-check (best effort).
	if v, err := h.Conversations.Stats(ctx, u.ID); err == nil {
		var ts int64
		if v.Latest != nil {
			ts = v.Latest.UnixNano()
		}
		etag := fmt.Sprintf(`W/"conversations:%d:%d:%d:%d:%t"`, u.ID, v.Conversations, v.Tickets, ts, savedOnly)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.Conversations.ListForUser(ctx, u.ID, services.ListFilter{SavedOnly: savedOnly})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// GetConversation godoc
// @ID          getConversation
// @Summary     Get a conversation
// @Description Returns an owned conversation with its turns zipped into messages.
// @Tags        Conversations
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Conversation ID"
// @Success     200  {object}  services.ConversationDetail
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Not found or not owned"
// @Router      /conversation/{id} [get]
func (h *Handlers) GetConversation(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	d, err := h.Conversations.Get(c.Request.Context(), id, u.ID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// CreateConversation godoc
// @ID          createConversation
// @Summary     Start a conversation
// @Description Persists the first exchange. Retries with the same Idempotency-Key return the original conversation.
// @Tags        Conversations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header  string  false  "Idempotency key"
// @Param       body  body      handlers.CreateConversationRequest  true  "First exchange"
// @Success     201   {object}  services.ConversationDetail
// @Header      201   {string}  Idempotency-Replayed  "true when served from a previous request"
// @Failure     404   {object}  handlers.ErrorResponse  "File not found"
// @Failure     422   {object}  handlers.ErrorResponse
// @Router      /conversation [post]
func (h *Handlers) CreateConversation(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	ctx := c.Request.Context()

	if rp, replay := middleware.ReplayFrom(c); replay {
		d, err := h.Conversations.Get(ctx, rp.ResourceID, u.ID)
		if err != nil {
			failErr(c, err)
			return
		}
		markReplay(c)
		ok(c, rp.Status, d)
		return
	}

	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c, err)
		return
	}
	conv, err := h.Conversations.Create(ctx, u.ID, services.CreateConversationInput{
		UserMessage: req.MessageUser,
		BotMessage:  req.MessageBot,
		ModelType:   req.ModelType,
		FileID:      req.FileID,
		Title:       req.Title,
		IsSaved:     req.IsSaved,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	h.recordIdempotent(c, u.ID, conv.ID, http.StatusCreated)
	ok(c, http.StatusCreated, services.ConversationDetail{
		Conversation: conv,
		Pairs:        history.Pairs(conv.MessageUser, conv.MessageBot),
	})
}

// AppendMessage godoc
// @ID          appendMessage
// @Summary     Append an exchange
// @Description Pushes one user turn and one bot turn. Retries with the same Idempotency-Key do not append twice.
// @Tags        Conversations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header  string  false  "Idempotency key"
// @Param       id    path      int  true  "Conversation ID"
// @Param       body  body      handlers.AppendMessageRequest  true  "Exchange"
// @Success     200   {object}  services.ConversationDetail
// @Failure     404   {object}  handlers.ErrorResponse
// @Failure     422   {object}  handlers.ErrorResponse
// @Router      /conversation/{id}/message [post]
func (h *Handlers) AppendMessage(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	ctx := c.Request.Context()

	if rp, replay := middleware.ReplayFrom(c); replay {
		d, err := h.Conversations.Get(ctx, rp.ResourceID, u.ID)
		if err != nil {
			failErr(c, err)
			return
		}
		markReplay(c)
		ok(c, rp.Status, d)
		return
	}

	var req AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c, err)
		return
	}
	d, err := h.Conversations.AppendMessage(ctx, id, u.ID, req.MessageUser, req.MessageBot)
	if err != nil {
		failErr(c, err)
		return
	}
	h.recordIdempotent(c, u.ID, id, http.StatusOK)
	ok(c, http.StatusOK, d)
}

// ToggleSave godoc
// @ID          toggleSave
// @Summary     Toggle the saved flag
// @Tags        Conversations
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Conversation ID"
// @Success     200  {object}  handlers.ToggleSaveResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /conversation/{id}/toggle-save [post]
func (h *Handlers) ToggleSave(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	saved, err := h.Conversations.ToggleSaved(c.Request.Context(), id, u.ID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ToggleSaveResponse{ID: id, IsSaved: saved})
}

// DeleteConversation godoc
// @ID          deleteConversation
// @Summary     Delete a conversation
// @Description Deletes the conversation and every ticket attached to it.
// @Tags        Conversations
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Conversation ID"
// @Success     200  {object}  handlers.MessageResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /conversation/{id} [delete]
func (h *Handlers) DeleteConversation(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.Conversations.Delete(c.Request.Context(), id, u.ID); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, MessageResponse{Message: "Conversation deleted successfully"})
}
