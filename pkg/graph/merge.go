package graph

import (
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"
)

// MaxEdges is the size governor: no computed view holds more merged edges.
const MaxEdges = 1500

type pairKey struct {
	source string
	target string
}

// edgeMerger accumulates raw edges into merged edges keyed by the ordered
// (source, target) pair in first-seen order. Once a new pair would push the
// view past the limit, accumulation stops and the partial result is kept.
type edgeMerger struct {
	limit     int
	index     map[pairKey]int
	edges     []common.MergedEdge
	truncated bool
}

func newEdgeMerger(limit int) *edgeMerger {
	return &edgeMerger{
		limit: limit,
		index: make(map[pairKey]int),
	}
}

// add merges one raw edge. It returns false when the governor has stopped
// accumulation; callers must not add further edges.
func (m *edgeMerger) add(edge common.Edge) bool {
	if m.truncated {
		return false
	}

	docs := append([]string(nil), edge.DocumentIDs...)
	key := pairKey{source: edge.Source, target: edge.Target}

	if i, ok := m.index[key]; ok {
		merged := &m.edges[i]
		merged.Labels = append(merged.Labels, edge.Label)
		merged.DocumentIDs = append(merged.DocumentIDs, docs...)
		merged.LabelDocuments = append(merged.LabelDocuments, docs)
		return true
	}

	if m.limit > 0 && len(m.edges) >= m.limit {
		m.truncated = true
		logger.Info("[Traversal] Size limit reached", "merged_edges", len(m.edges))
		return false
	}

	m.index[key] = len(m.edges)
	m.edges = append(m.edges, common.MergedEdge{
		Source:         edge.Source,
		Target:         edge.Target,
		Labels:         []string{edge.Label},
		DocumentIDs:    append([]string(nil), docs...),
		LabelDocuments: [][]string{docs},
	})
	return true
}

// result returns the merged edges and the union of their endpoints in
// first-seen order. Endpoints without a matching node are skipped.
func (m *edgeMerger) result(store *Store) ([]common.Node, []common.MergedEdge) {
	seen := make(map[string]struct{}, len(m.edges)*2)
	nodes := make([]common.Node, 0, len(m.edges))

	addNode := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		node, ok := store.Node(id)
		if !ok {
			logger.Debug("[Traversal] Skipping unknown node", "id", id)
			return
		}
		nodes = append(nodes, node)
	}

	for _, edge := range m.edges {
		addNode(edge.Source)
		addNode(edge.Target)
	}

	edges := m.edges
	if edges == nil {
		edges = []common.MergedEdge{}
	}
	return nodes, edges
}

// MergeEdges groups raw edges by ordered (source, target) pair in first-seen
// order. Labels and document ids are concatenated per pair in the order of
// the raw edges, without any size limit.
func MergeEdges(edges []common.Edge) []common.MergedEdge {
	m := newEdgeMerger(0)
	for _, edge := range edges {
		m.add(edge)
	}
	if m.edges == nil {
		return []common.MergedEdge{}
	}
	return m.edges
}
