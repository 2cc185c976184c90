package routes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/OFFIS-RIT/kiwi/explorer/internal/server/middleware"
	"github.com/OFFIS-RIT/kiwi/explorer/internal/session"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/graph"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/leaselock"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/loader"
	pgxloader "github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/pgx"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"

	"github.com/labstack/echo/v4"
)

var (
	errInvalidBody     = errors.New("invalid request body")
	errDocumentMissing = errors.New("document not found")
	errDisabled        = errors.New("backend not configured")
)

type errorResponse struct {
	Error  string   `json:"error"`
	Labels []string `json:"labels,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func statusFor(err error) int {
	var dup *graph.DuplicateLabelError
	switch {
	case errors.As(err, &dup):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, pgxloader.ErrGraphNotFound),
		errors.Is(err, errDocumentMissing):
		return http.StatusNotFound
	case errors.Is(err, errInvalidBody),
		errors.Is(err, graph.ErrInvalidMode),
		errors.Is(err, graph.ErrInvalidDirection),
		errors.Is(err, graph.ErrInvalidThreshold),
		errors.Is(err, graph.ErrInvalidSortOrder),
		errors.Is(err, graph.ErrInvalidTier),
		errors.Is(err, graph.ErrUnknownKey),
		errors.Is(err, loader.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, errDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrLimitReached):
		return http.StatusTooManyRequests
	case errors.Is(err, leaselock.ErrBusy):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...} with the status it maps to.
// Internal errors are logged and hidden from the client.
func respondError(c echo.Context, err error) error {
	status := statusFor(err)
	body := errorResponse{Error: err.Error()}

	var dup *graph.DuplicateLabelError
	if errors.As(err, &dup) {
		body.Labels = dup.Labels
	}
	if status == http.StatusInternalServerError {
		logger.Error("[Server] Request failed", "method", c.Request().Method, "path", c.Path(), "err", err)
		body.Error = "Internal server error"
	}
	return c.JSON(status, body)
}

// bindAndValidate decodes the body into data and runs its validate tags.
func bindAndValidate(c echo.Context, data any) error {
	if err := c.Bind(data); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	if err := c.Validate(data); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

func app(c echo.Context) *middleware.App {
	return c.(*middleware.AppContext).App
}

// withEngine runs fn on the engine of the session named by the :id path
// parameter.
func withEngine(c echo.Context, fn func(e *graph.Engine) error) error {
	return app(c).Sessions.With(c.Param("id"), fn)
}
