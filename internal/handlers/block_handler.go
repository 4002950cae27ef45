package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/services/blocking"
)

// BlockHandler handles HTTP requests related to blocking users
type BlockHandler struct {
	blocking *blocking.Service
}

// NewBlockHandler creates a new BlockHandler
func NewBlockHandler(blockingService *blocking.Service) *BlockHandler {
	return &BlockHandler{blocking: blockingService}
}

// RegisterBlockRoutes registers block-related routes
func (h *BlockHandler) RegisterBlockRoutes(g *echo.Group) {
	g.POST("/blocks", h.BlockUser)
	g.DELETE("/blocks/:id", h.UnblockUser)
	g.GET("/blocks", h.GetBlockedUsers)
}

// BlockUser blocks a user and sweeps all shared state
func (h *BlockHandler) BlockUser(c echo.Context) error {
	var req models.BlockUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	if err := h.blocking.BlockUser(c.Request().Context(), actorID(c), req.UserID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UnblockUser removes a block the authenticated user placed
func (h *BlockHandler) UnblockUser(c echo.Context) error {
	if err := h.blocking.UnblockUser(c.Request().Context(), actorID(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetBlockedUsers lists users the authenticated user has blocked
func (h *BlockHandler) GetBlockedUsers(c echo.Context) error {
	blocked, err := h.blocking.ListBlocked(c.Request().Context(), actorID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, blocked)
}
