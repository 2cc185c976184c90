package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/kiwi/explorer/internal/queue"
	mid "github.com/OFFIS-RIT/kiwi/explorer/internal/server/middleware"
	"github.com/OFFIS-RIT/kiwi/explorer/internal/session"
	"github.com/OFFIS-RIT/kiwi/explorer/internal/storage"
	"github.com/OFFIS-RIT/kiwi/explorer/internal/util"
	pgxloader "github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/pgx"
	s3loader "github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/s3"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewEcho builds the HTTP surface around app.
func NewEcho(app *mid.App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(util.GetEnvString("BODY_LIMIT", "64M")))

	RegisterRoutes(e)
	return e
}

// RunMigrations applies the migrations found at MIGRATIONS_PATH.
func RunMigrations(databaseURL string) error {
	m, err := migrate.New(util.GetEnvString("MIGRATIONS_PATH", "file://migrations"), databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	version, dirty, _ := m.Version()
	logger.Info("Database migrated", "version", version, "dirty", dirty)
	return nil
}

func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &mid.App{
		Sessions: session.NewRegistry(session.NewRegistryParams{
			Limit:    util.GetEnvInt("SESSION_LIMIT", 64),
			MaxEdges: util.GetEnvInt("MAX_EDGES", 0),
		}),
		Catalog:      queue.NewCatalog(),
		MasterAPIKey: util.GetEnv("MASTER_API_KEY"),
	}

	if authURL := util.GetEnv("AUTH_URL"); authURL != "" {
		k, err := keyfunc.NewDefaultCtx(ctx, []string{authURL + "/jwks"})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		app.Key = k
	}

	if databaseURL := util.GetEnv("DATABASE_URL"); databaseURL != "" {
		if err := RunMigrations(databaseURL); err != nil {
			logger.Fatal("Failed to migrate database", "err", err)
		}
		conn, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", "err", err)
		}
		defer conn.Close()
		app.DB = pgxloader.NewGraphDBLoader(conn)
	}

	if storage.Enabled() {
		client, err := storage.NewS3Client(ctx)
		if err != nil {
			logger.Fatal("Failed to create S3 client", "err", err)
		}
		app.S3 = client
		app.Files = s3loader.NewS3GraphFileLoaderWithClient(storage.Bucket(), client)

		keys, err := util.RetryWithContext(ctx, 3, func(ctx context.Context) ([]string, error) {
			return storage.ListFilesWithPrefix(ctx, client, storage.GraphPrefix)
		})
		if err != nil {
			logger.Warn("Failed to list stored graph documents", "err", err)
		} else {
			logger.Info("Catalog loaded from bucket", "documents", queue.SyncFromKeys(app.Catalog, keys))
		}
	}

	if queue.Enabled() {
		conn, err := queue.Init(ctx)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", "err", err)
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		defer ch.Close()
		if err := queue.SetupQueues(ch); err != nil {
			logger.Fatal("Failed to set up queues", "err", err)
		}
		app.Queue = ch

		consumerCh, err := conn.Channel()
		if err != nil {
			logger.Fatal("Failed to open consumer channel", "err", err)
		}
		defer consumerCh.Close()
		go func() {
			if err := queue.Consume(ctx, consumerCh, app.Catalog); err != nil {
				logger.Error("Catalog consumer stopped", "err", err)
			}
		}()
	}

	e := NewEcho(app)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	timeout := time.Duration(util.GetEnvNumeric("SHUTDOWN_TIMEOUT", 10) * float64(time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
