package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CreateSessionHandler starts a session with an empty engine.
func CreateSessionHandler(c echo.Context) error {
	type createSessionResponse struct {
		SessionID string `json:"session_id"`
	}

	s, err := app(c).Sessions.Create()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, createSessionResponse{SessionID: s.ID})
}

// DeleteSessionHandler drops a session and its graph.
func DeleteSessionHandler(c echo.Context) error {
	if err := app(c).Sessions.Delete(c.Param("id")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Session deleted"})
}
