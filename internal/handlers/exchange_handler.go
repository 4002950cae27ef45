package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/services/exchange"
)

// ExchangeHandler handles HTTP requests related to letters and gifts
type ExchangeHandler struct {
	exchanges *exchange.Service
}

// NewExchangeHandler creates a new ExchangeHandler
func NewExchangeHandler(exchanges *exchange.Service) *ExchangeHandler {
	return &ExchangeHandler{exchanges: exchanges}
}

// RegisterExchangeRoutes registers letter and gift routes
func (h *ExchangeHandler) RegisterExchangeRoutes(g *echo.Group) {
	g.POST("/letters", h.SendLetter)
	g.GET("/letters", h.GetLetters)
	g.POST("/gifts", h.SendGift)
	g.GET("/gifts", h.GetGifts)
}

// SendLetter sends a letter to a friend, optionally with delayed delivery
func (h *ExchangeHandler) SendLetter(c echo.Context) error {
	var req models.SendLetterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	letter, err := h.exchanges.SendLetter(c.Request().Context(), actorID(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, letter)
}

// GetLetters lists letters the authenticated user has received
func (h *ExchangeHandler) GetLetters(c echo.Context) error {
	letters, err := h.exchanges.ListLetters(c.Request().Context(), actorID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, letters)
}

// SendGift sends a gift to a friend
func (h *ExchangeHandler) SendGift(c echo.Context) error {
	var req models.SendGiftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	gift, err := h.exchanges.SendGift(c.Request().Context(), actorID(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, gift)
}

// GetGifts lists gifts the authenticated user has received
func (h *ExchangeHandler) GetGifts(c echo.Context) error {
	gifts, err := h.exchanges.ListGifts(c.Request().Context(), actorID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, gifts)
}
