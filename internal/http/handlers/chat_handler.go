// Chat HTTP handlers: the LLM proxy.
//
//   - POST /llama/chat        (multipart prompt/file/model, or JSON)
//   - POST /fine-tuned/chat   (JSON)
//
// Upstream failures never fail these endpoints: the answer is the fallback
// apology and "degraded" is true.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/support-chat-backend/internal/http/middleware"
	"github.com/tbourn/support-chat-backend/internal/services"
	"github.com/tbourn/support-chat-backend/internal/utils"
)

// ChatRequest is the JSON form of a chat prompt. The multipart form uses
// the same field names plus "file".
type ChatRequest struct {
	Prompt         string `json:"prompt"          form:"prompt"          binding:"required" example:"Comment réinitialiser mon mot de passe ?"`
	Model          string `json:"model"           form:"model"                              example:"llama3.2"`
	FileID         *uint  `json:"file_id"         form:"file_id"                            example:"3"`
	ConversationID *uint  `json:"conversation_id" form:"conversation_id"                    example:"42"`
}

// FineTunedRequest is a prompt for the fine-tuned model.
type FineTunedRequest struct {
	Prompt string `json:"prompt" binding:"required" example:"Bonjour"`
}

// LlamaChat godoc
// @ID          llamaChat
// @Summary     Ask the assistant
// @Description Sends a prompt to the configured model. An uploaded file (txt, md, pdf) or a previously uploaded file_id becomes the answer's context; conversation_id adds its history.
// @Tags        Chat
// @Accept      json,mpfd
// @Produce     json
// @Security    BearerAuth
// @Param       prompt           formData  string  true   "Question"
// @Param       model            formData  string  false  "Model name from the allow-list"
// @Param       file             formData  file    false  "Document to answer from"
// @Param       file_id          formData  int     false  "Previously uploaded file"
// @Param       conversation_id  formData  int     false  "Conversation to continue"
// @Success     200  {object}  services.AskResult
// @Failure     404  {object}  handlers.ErrorResponse  "File or conversation not found"
// @Failure     413  {object}  handlers.ErrorResponse
// @Failure     422  {object}  handlers.ErrorResponse  "Empty prompt or unsupported model"
// @Router      /llama/chat [post]
func (h *Handlers) LlamaChat(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}

	var in services.AskInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		in.Prompt = c.PostForm("prompt")
		in.Model = c.PostForm("model")
		if raw := c.PostForm("file_id"); raw != "" {
			id, valid := utils.ParseID(raw)
			if !valid {
				failValidation(c, "file_id", "must be a positive integer")
				return
			}
			in.FileID = &id
		}
		if raw := c.PostForm("conversation_id"); raw != "" {
			id, valid := utils.ParseID(raw)
			if !valid {
				failValidation(c, "conversation_id", "must be a positive integer")
				return
			}
			in.ConversationID = &id
		}

		if fh, err := c.FormFile("file"); err == nil {
			if h.UploadMaxBytes > 0 && fh.Size > h.UploadMaxBytes {
				failErr(c, services.ErrFileTooLarge)
				return
			}
			f, err := fh.Open()
			if err != nil {
				fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable upload")
				return
			}
			defer f.Close()
			in.Upload = &services.Upload{Filename: fh.Filename, Body: f}
		} else if !errors.Is(err, http.ErrMissingFile) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed multipart body")
			return
		}
	} else {
		var req ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			failBind(c, err)
			return
		}
		in = services.AskInput{
			Prompt:         req.Prompt,
			Model:          req.Model,
			FileID:         req.FileID,
			ConversationID: req.ConversationID,
		}
	}

	res, err := h.Chat.Ask(c.Request.Context(), u.ID, in)
	if err != nil {
		failErr(c, err)
		return
	}
	logDegraded(c, res)
	ok(c, http.StatusOK, res)
}

// FineTunedChat godoc
// @ID          fineTunedChat
// @Summary     Ask the fine-tuned model
// @Tags        Chat
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.FineTunedRequest  true  "Prompt"
// @Success     200   {object}  services.AskResult
// @Failure     422   {object}  handlers.ErrorResponse
// @Router      /fine-tuned/chat [post]
func (h *Handlers) FineTunedChat(c *gin.Context) {
	var req FineTunedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c, err)
		return
	}
	res, err := h.Chat.AskFineTuned(c.Request.Context(), req.Prompt)
	if err != nil {
		failErr(c, err)
		return
	}
	logDegraded(c, res)
	ok(c, http.StatusOK, res)
}

func logDegraded(c *gin.Context, res *services.AskResult) {
	if res.Soft == nil {
		return
	}
	middleware.LoggerFrom(c).Warn().
		Str("backend", res.Soft.Backend).
		Str("kind", string(res.Soft.Kind)).
		Int("upstream_status", res.Soft.Status).
		Err(res.Soft.Err).
		Msg("llm answer degraded")
}
