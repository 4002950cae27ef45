package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/services/discovery"
)

// DiscoveryHandler handles HTTP requests for user discovery
type DiscoveryHandler struct {
	discovery *discovery.Service
}

// NewDiscoveryHandler creates a new DiscoveryHandler
func NewDiscoveryHandler(discoveryService *discovery.Service) *DiscoveryHandler {
	return &DiscoveryHandler{discovery: discoveryService}
}

// RegisterDiscoveryRoutes registers discovery-related routes
func (h *DiscoveryHandler) RegisterDiscoveryRoutes(g *echo.Group) {
	g.GET("/discover", h.Discover)
}

// Discover returns a page of candidate profiles for the authenticated user
func (h *DiscoveryHandler) Discover(c echo.Context) error {
	filters := discovery.Filters{
		Country:          c.QueryParam("country"),
		SpokenLanguage:   c.QueryParam("spoken_language"),
		LearningLanguage: c.QueryParam("learning_language"),
	}

	profiles, next, err := h.discovery.Discover(
		c.Request().Context(), actorID(c), filters, c.QueryParam("cursor"), pageLimit(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"profiles":    profiles,
		"next_cursor": next,
	})
}
