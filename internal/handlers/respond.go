package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

// httpError maps service-layer error codes onto HTTP statuses.
func httpError(err error) *echo.HTTPError {
	status := http.StatusInternalServerError
	switch apperrors.CodeOf(err) {
	case apperrors.CodeValidation:
		status = http.StatusBadRequest
	case apperrors.CodeAuth:
		status = http.StatusForbidden
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeConflict, apperrors.CodeState:
		status = http.StatusConflict
	}

	msg := "internal server error"
	if status != http.StatusInternalServerError {
		msg = err.Error()
	}
	return echo.NewHTTPError(status, msg)
}

func actorID(c echo.Context) string {
	uid, _ := c.Get("firebaseUID").(string)
	return uid
}
