package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/kiwi/explorer/internal/metrics"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/graph"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// GetStateHandler returns the filter and exploration state.
func GetStateHandler(c echo.Context) error {
	var snap graph.Snapshot
	err := withEngine(c, func(e *graph.Engine) error {
		snap = e.Snapshot()
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, snap)
}

// GetVisibleHandler computes the visible subgraph for the current state.
func GetVisibleHandler(c echo.Context) error {
	var view common.VisibleGraph
	err := withEngine(c, func(e *graph.Engine) error {
		mode := e.Mode().String()
		timer := prometheus.NewTimer(metrics.VisibleGraphDuration.WithLabelValues(mode))
		view = e.GetVisibleGraph()
		timer.ObserveDuration()
		if graph.IsTruncated(view) {
			metrics.VisibleGraphTruncated.WithLabelValues(mode).Inc()
		}
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, view)
}

// GetSelectedHandler returns the selected entities and categories.
func GetSelectedHandler(c echo.Context) error {
	type selectedResponse struct {
		Nodes     []common.Node `json:"nodes"`
		NodeTypes []string      `json:"node_types"`
	}

	var resp selectedResponse
	err := withEngine(c, func(e *graph.Engine) error {
		resp = selectedResponse{
			Nodes:     e.GetSelectedNodes(),
			NodeTypes: e.GetSelectedNodeTypes(),
		}
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	if resp.Nodes == nil {
		resp.Nodes = []common.Node{}
	}
	if resp.NodeTypes == nil {
		resp.NodeTypes = []string{}
	}

	return c.JSON(http.StatusOK, resp)
}

// CalculateDistancesHandler recomputes root distances and returns them per
// node id. Unreached nodes are absent.
func CalculateDistancesHandler(c echo.Context) error {
	type distancesResponse struct {
		Distances map[string]int `json:"distances"`
	}

	var distances map[string]int
	err := withEngine(c, func(e *graph.Engine) error {
		distances = e.CalculateRootDistances()
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	if distances == nil {
		distances = map[string]int{}
	}

	return c.JSON(http.StatusOK, distancesResponse{Distances: distances})
}
