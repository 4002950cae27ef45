package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/services/friendship"
)

// FriendshipHandler handles HTTP requests related to friendships
type FriendshipHandler struct {
	friendships *friendship.Service
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendships *friendship.Service) *FriendshipHandler {
	return &FriendshipHandler{friendships: friendships}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/friends/requests", h.SendFriendRequest)
	g.GET("/friends/requests/pending", h.GetPendingFriendRequests)
	g.POST("/friends/requests/:id/accept", h.AcceptFriendRequest)
	g.POST("/friends/requests/:id/reject", h.RejectFriendRequest)
	g.DELETE("/friends/requests/:id", h.CancelFriendRequest)
	g.GET("/friends", h.GetFriends)
	g.DELETE("/friends/:id", h.RemoveFriend)
}

// SendFriendRequest handles sending a friend request
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	var req models.SendFriendRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	request, err := h.friendships.SendRequest(c.Request().Context(), actorID(c), req.ReceiverID, req.Message)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, request)
}

// GetPendingFriendRequests retrieves pending friend requests for the authenticated user
func (h *FriendshipHandler) GetPendingFriendRequests(c echo.Context) error {
	requests, err := h.friendships.ListPendingRequests(c.Request().Context(), actorID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, requests)
}

// AcceptFriendRequest accepts a pending friend request
func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	if err := h.friendships.AcceptRequest(c.Request().Context(), c.Param("id"), actorID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RejectFriendRequest rejects a pending friend request
func (h *FriendshipHandler) RejectFriendRequest(c echo.Context) error {
	if err := h.friendships.RejectRequest(c.Request().Context(), c.Param("id"), actorID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CancelFriendRequest withdraws a friend request the authenticated user sent
func (h *FriendshipHandler) CancelFriendRequest(c echo.Context) error {
	if err := h.friendships.CancelRequest(c.Request().Context(), c.Param("id"), actorID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetFriends retrieves the list of friends for the authenticated user
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	friends, err := h.friendships.ListFriends(c.Request().Context(), actorID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, friends)
}

// RemoveFriend handles unfriending
func (h *FriendshipHandler) RemoveFriend(c echo.Context) error {
	if err := h.friendships.RemoveFriend(c.Request().Context(), actorID(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
