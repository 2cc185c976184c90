package server

import (
	"github.com/OFFIS-RIT/kiwi/explorer/internal/server/middleware"
	"github.com/OFFIS-RIT/kiwi/explorer/internal/server/routes"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	apiRoutes.GET("/schema/document", routes.GetDocumentSchemaHandler)

	// Session routes
	apiRoutes.POST("/sessions", routes.CreateSessionHandler)
	apiRoutes.DELETE("/sessions/:id", routes.DeleteSessionHandler)

	// Loading
	apiRoutes.POST("/sessions/:id/graph", routes.LoadGraphHandler)
	apiRoutes.POST("/sessions/:id/load", routes.LoadSourceHandler)

	// Queries
	apiRoutes.GET("/sessions/:id/state", routes.GetStateHandler)
	apiRoutes.GET("/sessions/:id/visible", routes.GetVisibleHandler)
	apiRoutes.GET("/sessions/:id/selected", routes.GetSelectedHandler)
	apiRoutes.POST("/sessions/:id/distances", routes.CalculateDistancesHandler)

	// Filters and exploration
	apiRoutes.POST("/sessions/:id/toggle", routes.ToggleHandler)
	apiRoutes.POST("/sessions/:id/select-all", routes.SelectAllHandler)
	apiRoutes.POST("/sessions/:id/input", routes.InputHandler)
	apiRoutes.POST("/sessions/:id/sort", routes.SortHandler)
	apiRoutes.POST("/sessions/:id/mode", routes.ModeHandler)

	// Stored documents
	apiRoutes.GET("/catalog", routes.GetCatalogHandler)
	apiRoutes.POST("/documents", routes.UploadDocumentHandler)
	apiRoutes.DELETE("/documents", routes.DeleteDocumentHandler)
	apiRoutes.GET("/graphs", routes.GetGraphsHandler)
	apiRoutes.PUT("/graphs/:graph_id", routes.PutGraphHandler)
}
