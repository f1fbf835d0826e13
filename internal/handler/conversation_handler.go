package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/teranga-stays/service-rental/internal/application"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/middleware"
	"github.com/teranga-stays/service-rental/internal/platform/response"
)

// ConversationHandler handles guest/host messaging.
type ConversationHandler struct {
	service *application.ConversationService
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(service *application.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// RegisterRoutes registers conversation routes.
func (h *ConversationHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	conversations := r.Group("/api/v1/conversations")
	conversations.Use(middleware.AuthMiddleware(jwtManager))
	{
		conversations.GET("", h.ListConversations)
		conversations.GET("/:id/messages", h.ListMessages)
		conversations.POST("/:id/messages", h.SendMessage)
	}
}

// ListConversations handles GET /api/v1/conversations.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.service.ListConversations(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListMessages handles GET /api/v1/conversations/:id/messages.
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	conversationID, ok := pathID(c, "id", "conversation")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	result, err := h.service.ListMessages(c.Request.Context(), userID, conversationID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// SendMessage handles POST /api/v1/conversations/:id/messages.
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	conversationID, ok := pathID(c, "id", "conversation")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req application.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SendMessage(c.Request.Context(), userID, conversationID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
