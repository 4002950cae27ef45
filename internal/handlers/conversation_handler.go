package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/services/conversation"
)

// ConversationHandler handles HTTP requests related to conversations
type ConversationHandler struct {
	conversations *conversation.Service
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(conversations *conversation.Service) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// RegisterConversationRoutes registers conversation-related routes
func (h *ConversationHandler) RegisterConversationRoutes(g *echo.Group) {
	g.POST("/conversations", h.CreateConversation)
	g.GET("/conversations", h.GetConversations)
	g.DELETE("/conversations/:groupId", h.DeleteConversation)
	g.POST("/conversations/:groupId/read", h.MarkAsRead)
	g.GET("/conversations/:groupId/messages", h.GetMessages)
	g.POST("/conversations/:groupId/messages", h.SendMessage)
	g.DELETE("/messages/:id", h.DeleteMessage)
}

// CreateConversation starts (or returns) a conversation with a friend
func (h *ConversationHandler) CreateConversation(c echo.Context) error {
	var req models.CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	groupID, err := h.conversations.CreateConversation(c.Request().Context(), actorID(c), req.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"group_id": groupID})
}

// GetConversations pages through the authenticated user's inbox
func (h *ConversationHandler) GetConversations(c echo.Context) error {
	mirrors, next, err := h.conversations.ListConversations(
		c.Request().Context(), actorID(c), c.QueryParam("cursor"), pageLimit(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"conversations": mirrors,
		"next_cursor":   next,
	})
}

// DeleteConversation removes the conversation for both participants
func (h *ConversationHandler) DeleteConversation(c echo.Context) error {
	if err := h.conversations.DeleteConversation(c.Request().Context(), c.Param("groupId"), actorID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAsRead clears the unread flag on the authenticated user's mirror
func (h *ConversationHandler) MarkAsRead(c echo.Context) error {
	if err := h.conversations.MarkAsRead(c.Request().Context(), c.Param("groupId"), actorID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetMessages pages through a conversation's messages, newest first
func (h *ConversationHandler) GetMessages(c echo.Context) error {
	messages, next, err := h.conversations.ListMessages(
		c.Request().Context(), c.Param("groupId"), actorID(c), c.QueryParam("cursor"), pageLimit(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages":    messages,
		"next_cursor": next,
	})
}

// SendMessage posts a message into a conversation
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	msg, err := h.conversations.SendMessage(c.Request().Context(), c.Param("groupId"), actorID(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// DeleteMessage removes a message the authenticated user sent
func (h *ConversationHandler) DeleteMessage(c echo.Context) error {
	if err := h.conversations.DeleteMessage(c.Request().Context(), c.Param("id"), actorID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func pageLimit(c echo.Context) int64 {
	limit, err := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if err != nil {
		return 0
	}
	return limit
}
