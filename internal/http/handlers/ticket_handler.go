// Ticket HTTP handlers.
//
// Users rate conversations ("jaime" / "jenaimepas"); admins list, comment
// and close the resulting tickets.
//
//   - POST   /create-ticket                    (idempotent)
//   - PUT    /update-ticket/{id}               (admin)
//   - GET    /tickets                          (admin, paginated)
//   - GET    /ticket/{id}
//   - DELETE /ticket/{id}
//   - GET    /user-evaluations
//   - GET    /conversation/{id}/evaluations
//   - GET    /ticketchat/evaluations/{userId}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/http/middleware"
	"github.com/tbourn/support-chat-backend/internal/repo"
	"github.com/tbourn/support-chat-backend/internal/services"
	"github.com/tbourn/support-chat-backend/internal/utils"
)

const maxTicketPageSize = 100

//
// DTOs
//

// CreateTicketRequest rates a conversation. Question and response default
// to the conversation's last exchange.
type CreateTicketRequest struct {
	ConversationID uint    `json:"conversation_id" binding:"required"                         example:"42"`
	Evaluation     string  `json:"evaluation"      binding:"required,oneof=jaime jenaimepas" example:"jaime"`
	Question       *string `json:"question"                                                   example:"How do I reset my password?"`
	Response       *string `json:"response"                                                   example:"Open Settings, then Security."`
}

// UpdateTicketRequest is an admin's partial update.
type UpdateTicketRequest struct {
	Status           *string `json:"status"            binding:"omitempty,oneof=open closed" example:"closed"`
	CommentaireAdmin *string `json:"commentaire_admin"                                       example:"Fixed in the FAQ."`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListTicketsResponse wraps a page of tickets and pagination information.
type ListTicketsResponse struct {
	Tickets    []domain.Ticket `json:"tickets"`
	Pagination Pagination      `json:"pagination"`
}

//
// Handlers
//

// CreateTicket godoc
// @ID          createTicket
// @Summary     Rate a conversation
// @Description Creates the caller's ticket on a conversation, or updates the evaluation when one exists (200). Retries with the same Idempotency-Key return the original ticket.
// @Tags        Tickets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header  string  false  "Idempotency key"
// @Param       body  body      handlers.CreateTicketRequest  true  "Evaluation"
// @Success     201   {object}  domain.Ticket  "Created"
// @Success     200   {object}  domain.Ticket  "Existing ticket re-rated"
// @Failure     404   {object}  handlers.ErrorResponse  "Conversation not found or not owned"
// @Failure     422   {object}  handlers.ErrorResponse
// @Router      /create-ticket [post]
func (h *Handlers) CreateTicket(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	ctx := c.Request.Context()

	if rp, replay := middleware.ReplayFrom(c); replay {
		t, err := h.Tickets.Get(ctx, rp.ResourceID, u)
		if err != nil {
			failErr(c, err)
			return
		}
		markReplay(c)
		ok(c, rp.Status, t)
		return
	}

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c, err)
		return
	}
	t, created, err := h.Tickets.Rate(ctx, services.RateInput{
		ConversationID: req.ConversationID,
		UserID:         u.ID,
		Evaluation:     req.Evaluation,
		Question:       req.Question,
		Response:       req.Response,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.recordIdempotent(c, u.ID, t.ID, status)
	ok(c, status, t)
}

// UpdateTicket godoc
// @ID          updateTicket
// @Summary     Moderate a ticket
// @Description Sets the status and/or the admin comment. Omitted fields are left unchanged.
// @Tags        Tickets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      int  true  "Ticket ID"
// @Param       body  body      handlers.UpdateTicketRequest  true  "Changes"
// @Success     200   {object}  domain.Ticket
// @Failure     403   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Failure     422   {object}  handlers.ErrorResponse
// @Router      /update-ticket/{id} [put]
func (h *Handlers) UpdateTicket(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c, err)
		return
	}
	t, err := h.Tickets.UpdateByAdmin(c.Request.Context(), id, u, services.AdminUpdate{
		Status:  req.Status,
		Comment: req.CommentaireAdmin,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// ListTickets godoc
// @ID          listTickets
// @Summary     List every ticket (admin)
// @Tags        Tickets
// @Produce     json
// @Security    BearerAuth
// @Param       page        query     int     false  "Page number"     minimum(1) default(1)
// @Param       page_size   query     int     false  "Items per page"  minimum(1) maximum(100) default(15)
// @Param       status      query     string  false  "open or closed"
// @Param       evaluation  query     string  false  "jaime or jenaimepas"
// @Success     200  {object}  handlers.ListTicketsResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     422  {object}  handlers.ErrorResponse
// @Router      /tickets [get]
func (h *Handlers) ListTickets(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	page, size := utils.Page(c.Query("page"), c.Query("page_size"), services.DefaultTicketPageSize, maxTicketPageSize)
	f := repo.TicketFilter{Status: c.Query("status"), Evaluation: c.Query("evaluation")}

	items, total, err := h.Tickets.ListAll(c.Request.Context(), u, f, page, size)
	if err != nil {
		failErr(c, err)
		return
	}
	totalPages := utils.TotalPages(total, size)
	ok(c, http.StatusOK, ListTicketsResponse{
		Tickets: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   size,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetTicket godoc
// @ID          getTicket
// @Summary     Ticket detail
// @Description Visible to its author and to admins.
// @Tags        Tickets
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Ticket ID"
// @Success     200  {object}  domain.Ticket
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /ticket/{id} [get]
func (h *Handlers) GetTicket(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	t, err := h.Tickets.Get(c.Request.Context(), id, u)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// DeleteTicket godoc
// @ID          deleteTicket
// @Summary     Delete a ticket
// @Description Allowed for the author and for admins.
// @Tags        Tickets
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Ticket ID"
// @Success     200  {object}  handlers.MessageResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /ticket/{id} [delete]
func (h *Handlers) DeleteTicket(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.Tickets.Delete(c.Request.Context(), id, u); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, MessageResponse{Message: "Ticket deleted successfully"})
}

// UserEvaluations godoc
// @ID          userEvaluations
// @Summary     The caller's tickets
// @Tags        Tickets
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}   domain.Ticket
// @Router      /user-evaluations [get]
func (h *Handlers) UserEvaluations(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	items, err := h.Tickets.ListForUser(c.Request.Context(), u.ID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// ConversationEvaluations godoc
// @ID          conversationEvaluations
// @Summary     Tickets and stats of a conversation
// @Tags        Tickets
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Conversation ID"
// @Success     200  {object}  services.ConversationTickets
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /conversation/{id}/evaluations [get]
func (h *Handlers) ConversationEvaluations(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	res, err := h.Tickets.StatsForConversation(c.Request.Context(), id, u)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// EvaluationsByConversation godoc
// @ID          evaluationsByConversation
// @Summary     Per-conversation evaluation counts of a user
// @Description Users may read their own counts; admins may read anyone's.
// @Tags        Tickets
// @Produce     json
// @Security    BearerAuth
// @Param       userId  path      int  true  "User ID"
// @Success     200     {array}   repo.ConversationEvaluations
// @Failure     403     {object}  handlers.ErrorResponse
// @Router      /ticketchat/evaluations/{userId} [get]
func (h *Handlers) EvaluationsByConversation(c *gin.Context) {
	u, okUser := currentUser(c)
	if !okUser {
		return
	}
	userID, valid := pathID(c, "userId")
	if !valid {
		return
	}
	items, err := h.Tickets.EvaluationsByConversation(c.Request.Context(), userID, u)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}
