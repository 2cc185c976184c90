package graph

import "github.com/OFFIS-RIT/kiwi/explorer/pkg/common"

// TierSnapshot is the display state of one filter tier.
type TierSnapshot struct {
	Input      string      `json:"input"`
	SortOrder  SortOrder   `json:"sort_order"`
	Selected   int         `json:"selected"`
	Candidates []Candidate `json:"candidates"`
}

// Snapshot is the complete filter and exploration state of an engine, as
// needed by the side panels of the rendering collaborator.
type Snapshot struct {
	Mode               string            `json:"mode"`
	Direction          Direction         `json:"direction"`
	DistanceThreshold  int               `json:"distance_threshold"`
	TypeFilteringNodes bool              `json:"type_filtering_nodes"`
	NodeFilteringEdges bool              `json:"node_filtering_edges"`
	NodeTypes          TierSnapshot      `json:"node_types"`
	NodeLabels         TierSnapshot      `json:"node_labels"`
	EdgeLabels         TierSnapshot      `json:"edge_labels"`
	Colors             map[string]string `json:"colors"`
	Metadata           []common.Metadata `json:"metadata"`
	NodeCount          int               `json:"node_count"`
	EdgeCount          int               `json:"edge_count"`
}

func (e *Engine) tierSnapshot(tier Tier) TierSnapshot {
	selected := 0
	for _, v := range e.cascade.Filter(tier) {
		if v {
			selected++
		}
	}
	candidates := e.cascade.Sorted(tier)
	return TierSnapshot{
		Input:      e.cascade.Input(tier),
		SortOrder:  e.cascade.SortOrder(tier),
		Selected:   selected,
		Candidates: candidates,
	}
}

// Snapshot captures the current state. The result shares nothing with the
// engine.
func (e *Engine) Snapshot() Snapshot {
	metadata := e.store.Metadata()
	if metadata == nil {
		metadata = []common.Metadata{}
	}
	return Snapshot{
		Mode:               e.mode.String(),
		Direction:          e.direction,
		DistanceThreshold:  e.threshold,
		TypeFilteringNodes: e.cascade.TypeFilteringNodes(),
		NodeFilteringEdges: e.cascade.NodeFilteringEdges(),
		NodeTypes:          e.tierSnapshot(TierNodeType),
		NodeLabels:         e.tierSnapshot(TierNodeLabel),
		EdgeLabels:         e.tierSnapshot(TierEdgeLabel),
		Colors:             e.palette.Colors(),
		Metadata:           append([]common.Metadata(nil), metadata...),
		NodeCount:          len(e.store.Nodes()),
		EdgeCount:          len(e.store.Edges()),
	}
}
