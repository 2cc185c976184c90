package routes

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/OFFIS-RIT/kiwi/explorer/internal/metrics"
	"github.com/OFFIS-RIT/kiwi/explorer/internal/server/middleware"
	"github.com/OFFIS-RIT/kiwi/explorer/internal/timing"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/graph"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/loader"
	jsonloader "github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/json"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/source"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"

	"github.com/labstack/echo/v4"
)

type loadGraphResponse struct {
	Message  string `json:"message"`
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
	Metadata int    `json:"metadata"`
}

func loadIntoSession(c echo.Context, origin string, doc common.Document) error {
	var resp loadGraphResponse
	err := withEngine(c, func(e *graph.Engine) error {
		if err := e.LoadGraphData(doc); err != nil {
			return err
		}
		resp = loadGraphResponse{
			Message:  "Graph loaded",
			Nodes:    len(e.Store().Nodes()),
			Edges:    len(e.Store().Edges()),
			Metadata: len(e.Metadata()),
		}
		return nil
	})
	metrics.GraphLoads.WithLabelValues(origin, metrics.LoadResult(err)).Inc()
	if err != nil {
		return respondError(c, err)
	}

	logger.Info("[Server] Graph loaded", "session_id", c.Param("id"), "nodes", resp.Nodes, "edges", resp.Edges)
	return c.JSON(http.StatusOK, resp)
}

// LoadGraphHandler replaces the session's graph with the document in the
// request body.
func LoadGraphHandler(c echo.Context) error {
	doc, err := decodeBodyDocument(c)
	if err != nil {
		return respondError(c, err)
	}

	return loadIntoSession(c, "body", doc)
}

// decodeBodyDocument reads a graph document from the request body the same
// way uploaded and stored documents are decoded.
func decodeBodyDocument(c echo.Context) (common.Document, error) {
	content, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return common.Document{}, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	doc, err := jsonloader.DecodeDocument(content)
	if err != nil {
		return common.Document{}, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return doc, nil
}

// LoadSourceHandler replaces the session's graph with a stored document.
func LoadSourceHandler(c echo.Context) error {
	type loadSourceBody struct {
		Source   string `json:"source" validate:"required,oneof=s3 postgres catalog"`
		Key      string `json:"key"`
		GraphID  string `json:"graph_id"`
		Format   string `json:"format" validate:"omitempty,oneof=json csv"`
		Metadata bool   `json:"metadata"`
	}

	data := new(loadSourceBody)
	if err := bindAndValidate(c, data); err != nil {
		return respondError(c, err)
	}

	docLoader, err := documentLoader(app(c), data.Source, data.Key, data.GraphID, data.Format, data.Metadata)
	if err != nil {
		return respondError(c, err)
	}

	done := timing.Track("load source", "source", data.Source, "key", data.Key, "graph_id", data.GraphID)
	doc, err := docLoader.LoadDocument(c.Request().Context())
	done()
	if err != nil {
		metrics.GraphLoads.WithLabelValues(data.Source, metrics.LoadResult(err)).Inc()
		return respondError(c, err)
	}

	return loadIntoSession(c, data.Source, doc)
}

func documentLoader(a *middleware.App, src, key, graphID, format string, hasMetadata bool) (loader.DocumentLoader, error) {
	switch src {
	case "postgres":
		if a.DB == nil {
			return nil, fmt.Errorf("%w: postgres", errDisabled)
		}
		if graphID == "" {
			return nil, fmt.Errorf("%w: graph_id is required", errInvalidBody)
		}
		return a.DB.Document(graphID), nil
	case "catalog":
		entry, ok := a.Catalog.Get(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errDocumentMissing, key)
		}
		key, format, hasMetadata = entry.Key, entry.Format, entry.HasMetadata
	case "s3":
		if key == "" {
			return nil, fmt.Errorf("%w: key is required", errInvalidBody)
		}
		if format == "" {
			format = formatFromKey(key)
		}
	default:
		return nil, fmt.Errorf("%w: unknown source %q", errInvalidBody, src)
	}

	if a.Files == nil {
		return nil, fmt.Errorf("%w: object storage", errDisabled)
	}
	return source.New(source.Params{
		Key:         strings.TrimSuffix(key, "/"),
		Format:      format,
		HasMetadata: hasMetadata,
		Files:       a.Files,
	})
}

// formatFromKey treats ".json" keys as documents and anything else as a
// folder of CSV tables.
func formatFromKey(key string) string {
	if t, err := loader.FileTypeFromPath(key); err == nil && t == loader.GraphFileTypeJSON {
		return string(loader.GraphFileTypeJSON)
	}
	return string(loader.GraphFileTypeCSV)
}
