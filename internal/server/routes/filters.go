package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/graph"

	"github.com/labstack/echo/v4"
)

// mutate parses the body, applies fn to the session's engine and responds
// with the resulting snapshot.
func mutate[T any](c echo.Context, data *T, fn func(e *graph.Engine, data *T) error) error {
	if err := bindAndValidate(c, data); err != nil {
		return respondError(c, err)
	}

	var snap graph.Snapshot
	err := withEngine(c, func(e *graph.Engine) error {
		if err := fn(e, data); err != nil {
			return err
		}
		snap = e.Snapshot()
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, snap)
}

// ToggleHandler flips one key of a filter tier.
func ToggleHandler(c echo.Context) error {
	type toggleBody struct {
		Tier string `json:"tier" validate:"required,oneof=node_type node_label edge_label"`
		Key  string `json:"key" validate:"required"`
	}

	return mutate(c, new(toggleBody), func(e *graph.Engine, data *toggleBody) error {
		tier, err := graph.ParseTier(data.Tier)
		if err != nil {
			return err
		}
		return e.Toggle(tier, data.Key)
	})
}

// SelectAllHandler selects or clears every displayed key of a tier.
func SelectAllHandler(c echo.Context) error {
	type selectAllBody struct {
		Tier     string `json:"tier" validate:"required,oneof=node_type node_label edge_label"`
		Selected *bool  `json:"selected" validate:"required"`
	}

	return mutate(c, new(selectAllBody), func(e *graph.Engine, data *selectAllBody) error {
		tier, err := graph.ParseTier(data.Tier)
		if err != nil {
			return err
		}
		return e.SelectAll(tier, *data.Selected)
	})
}

// InputHandler sets the free-text filter of a tier.
func InputHandler(c echo.Context) error {
	type inputBody struct {
		Tier string `json:"tier" validate:"required,oneof=node_type node_label edge_label"`
		Text string `json:"text"`
	}

	return mutate(c, new(inputBody), func(e *graph.Engine, data *inputBody) error {
		tier, err := graph.ParseTier(data.Tier)
		if err != nil {
			return err
		}
		return e.SetInputFilter(tier, data.Text)
	})
}

// SortHandler sets the sort order of a tier.
func SortHandler(c echo.Context) error {
	type sortBody struct {
		Tier  string `json:"tier" validate:"required,oneof=node_type node_label edge_label"`
		Order string `json:"order" validate:"required"`
	}

	return mutate(c, new(sortBody), func(e *graph.Engine, data *sortBody) error {
		tier, err := graph.ParseTier(data.Tier)
		if err != nil {
			return err
		}
		order, err := graph.ParseSortOrder(data.Order)
		if err != nil {
			return err
		}
		return e.SetSortOrder(tier, order)
	})
}

// ModeHandler changes the exploration settings present in the body. The
// direction is either set or cycled, not both.
func ModeHandler(c echo.Context) error {
	type modeBody struct {
		Mode               *string `json:"mode" validate:"omitempty,oneof=routes explore edges"`
		Direction          *int    `json:"direction" validate:"omitempty,min=1,max=3"`
		CycleDirection     bool    `json:"cycle_direction"`
		DistanceThreshold  *int    `json:"distance_threshold" validate:"omitempty,min=0"`
		TypeFilteringNodes *bool   `json:"type_filtering_nodes"`
		NodeFilteringEdges *bool   `json:"node_filtering_edges"`
	}

	return mutate(c, new(modeBody), func(e *graph.Engine, data *modeBody) error {
		if data.Mode != nil {
			mode, err := graph.ParseMode(*data.Mode)
			if err != nil {
				return err
			}
			if err := e.SetMode(mode); err != nil {
				return err
			}
		}
		if data.Direction != nil {
			if err := e.SetDirection(graph.Direction(*data.Direction)); err != nil {
				return err
			}
		} else if data.CycleDirection {
			e.CycleDirection()
		}
		if data.DistanceThreshold != nil {
			if err := e.SetDistanceThreshold(*data.DistanceThreshold); err != nil {
				return err
			}
		}
		if data.TypeFilteringNodes != nil {
			e.SetTypeFilteringNodes(*data.TypeFilteringNodes)
		}
		if data.NodeFilteringEdges != nil {
			e.SetNodeFilteringEdges(*data.NodeFilteringEdges)
		}
		return nil
	})
}
