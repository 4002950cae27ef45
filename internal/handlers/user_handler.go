package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/services/blocking"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/services/profile"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	profiles *profile.Service
	blocking *blocking.Service
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profiles *profile.Service, blockingService *blocking.Service) *UserHandler {
	return &UserHandler{profiles: profiles, blocking: blockingService}
}

// RegisterUserRoutes registers profile-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.POST("/users", h.CreateProfile)
	g.GET("/users/me", h.GetMyProfile)
	g.GET("/users/:id", h.GetProfile)
	g.PUT("/users/me", h.UpdateProfile)
	g.DELETE("/users/me", h.DeleteAccount)
	g.POST("/users/me/activity", h.Touch)
}

// CreateProfile completes signup for the authenticated Firebase identity
func (h *UserHandler) CreateProfile(c echo.Context) error {
	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	user, err := h.profiles.CreateProfile(c.Request().Context(), actorID(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// GetMyProfile returns the authenticated user's own profile
func (h *UserHandler) GetMyProfile(c echo.Context) error {
	resp, err := h.profiles.GetProfile(c.Request().Context(), actorID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetProfile returns another user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	targetID := c.Param("id")
	excluded, err := h.blocking.IsExcluded(c.Request().Context(), actorID(c), targetID)
	if err != nil {
		return httpError(err)
	}
	if excluded && targetID != actorID(c) {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	resp, err := h.profiles.GetProfile(c.Request().Context(), targetID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateProfile applies a partial profile edit
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	user, err := h.profiles.UpdateProfile(c.Request().Context(), actorID(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteAccount runs the full account-deletion sweep
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	if err := h.blocking.DeleteAccount(c.Request().Context(), actorID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Touch bumps the user's discovery activity timestamp
func (h *UserHandler) Touch(c echo.Context) error {
	if err := h.profiles.Touch(c.Request().Context(), actorID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
