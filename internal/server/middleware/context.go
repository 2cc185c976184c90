package middleware

import (
	"github.com/OFFIS-RIT/kiwi/explorer/internal/queue"
	"github.com/OFFIS-RIT/kiwi/explorer/internal/session"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/loader"
	pgxloader "github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/pgx"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"
)

type AppUser struct {
	Subject string
	Role    string
}

// App carries the collaborators shared by all handlers. Optional backends
// are nil when their configuration is missing.
type App struct {
	Sessions *session.Registry
	Catalog  *queue.Catalog

	// Files reads stored documents; S3 writes them.
	Files loader.GraphFileLoader
	S3    *s3.Client
	Queue *amqp091.Channel
	DB    *pgxloader.GraphDBLoader

	Key          keyfunc.Keyfunc
	MasterAPIKey string
}

// AuthEnabled reports whether requests must carry a bearer token.
func (a *App) AuthEnabled() bool {
	return a.Key != nil || a.MasterAPIKey != ""
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
