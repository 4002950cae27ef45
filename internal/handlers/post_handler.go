package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/services/content"
)

// PostHandler handles HTTP requests related to posts and interactions
type PostHandler struct {
	content *content.Service
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(contentService *content.Service) *PostHandler {
	return &PostHandler{content: contentService}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/comments", h.AddComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/posts/:id/reactions", h.React)
	g.DELETE("/posts/:id/reactions", h.RemoveReaction)
	g.POST("/posts/:id/save", h.SavePost)
	g.DELETE("/posts/:id/save", h.UnsavePost)
}

// CreatePost publishes a new post on the authenticated user's profile
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	post, err := h.content.CreatePost(c.Request().Context(), actorID(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost returns a single post
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.content.GetPost(c.Request().Context(), c.Param("id"), actorID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost removes a post and its comments, reactions and saved entries
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.content.DeletePost(c.Request().Context(), c.Param("id"), actorID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddComment comments on a post
func (h *PostHandler) AddComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	comment, err := h.content.AddComment(c.Request().Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// DeleteComment removes a comment
func (h *PostHandler) DeleteComment(c echo.Context) error {
	if err := h.content.DeleteComment(c.Request().Context(), c.Param("id"), actorID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// React adds the authenticated user's reaction to a post
func (h *PostHandler) React(c echo.Context) error {
	var req models.CreateReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	reaction, err := h.content.React(c.Request().Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, reaction)
}

// RemoveReaction withdraws the authenticated user's reaction
func (h *PostHandler) RemoveReaction(c echo.Context) error {
	if err := h.content.RemoveReaction(c.Request().Context(), c.Param("id"), actorID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SavePost adds a post to the authenticated user's collection
func (h *PostHandler) SavePost(c echo.Context) error {
	if err := h.content.SavePost(c.Request().Context(), c.Param("id"), actorID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UnsavePost removes a post from the authenticated user's collection
func (h *PostHandler) UnsavePost(c echo.Context) error {
	if err := h.content.UnsavePost(c.Request().Context(), c.Param("id"), actorID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
