package routes

import (
	"fmt"
	"net/http"

	"github.com/OFFIS-RIT/kiwi/explorer/internal/util"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/graph"
	pgxloader "github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/pgx"

	"github.com/labstack/echo/v4"
)

// GetGraphsHandler lists the graphs stored in Postgres.
func GetGraphsHandler(c echo.Context) error {
	type graphsResponse struct {
		Graphs []pgxloader.GraphSummary `json:"graphs"`
	}

	db := app(c).DB
	if db == nil {
		return respondError(c, fmt.Errorf("%w: postgres", errDisabled))
	}

	graphs, err := db.ListGraphs(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	if graphs == nil {
		graphs = []pgxloader.GraphSummary{}
	}

	return c.JSON(http.StatusOK, graphsResponse{Graphs: graphs})
}

// PutGraphHandler stores the document in the body under :graph_id,
// replacing any previous version. Documents whose labels collide are
// rejected before anything is written.
func PutGraphHandler(c echo.Context) error {
	db := app(c).DB
	if db == nil {
		return respondError(c, fmt.Errorf("%w: postgres", errDisabled))
	}

	graphID := c.Param("graph_id")
	if graphID == "" {
		return respondError(c, fmt.Errorf("%w: graph_id is required", errInvalidBody))
	}

	doc, err := decodeBodyDocument(c)
	if err != nil {
		return respondError(c, err)
	}
	clean := util.SanitizeDocumentText(doc)
	if _, err := graph.NewStore(clean); err != nil {
		return respondError(c, err)
	}

	if err := db.SaveDocument(c.Request().Context(), graphID, clean); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Graph stored"})
}
