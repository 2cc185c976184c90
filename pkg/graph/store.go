package graph

import (
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"
)

// defaultDocumentID is assigned to nodes and edges that carry no document ids.
const defaultDocumentID = "0"

// DuplicateLabelError is returned when two valid nodes share a label. Labels
// are the selection handle of the explorer, so a load cannot proceed with
// ambiguous labels.
type DuplicateLabelError struct {
	Labels []string
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("duplicate node labels: %s", strings.Join(e.Labels, ", "))
}

// Store owns the sanitized nodes and edges of one loaded document together
// with the id and label indexes and the counters derived from them.
//
// Nodes and edges are plain values held in slices. Every relation between
// them is an id lookup through the indexes.
type Store struct {
	nodes    []common.Node
	edges    []common.Edge
	metadata []common.Metadata

	byID    map[string]int
	byLabel map[string]int

	nodeTypes           []string
	nodeTypeCounts      map[string]int
	nodeLabelEdgeCounts map[string]int
	edgeLabels          []string
	edgeLabelCounts     map[string]int
}

// NewStore sanitizes the document and builds the indexes over the surviving
// records. The only error is a *DuplicateLabelError.
func NewStore(doc common.Document) (*Store, error) {
	nodes, edges, err := Sanitize(doc.Nodes, doc.Edges)
	if err != nil {
		return nil, err
	}

	s := &Store{
		nodes:               nodes,
		edges:               edges,
		metadata:            append([]common.Metadata(nil), doc.Metadata...),
		byID:                make(map[string]int, len(nodes)),
		byLabel:             make(map[string]int, len(nodes)),
		nodeTypeCounts:      make(map[string]int),
		nodeLabelEdgeCounts: make(map[string]int),
		edgeLabelCounts:     make(map[string]int),
	}

	for i, node := range s.nodes {
		s.byID[node.ID] = i
		s.byLabel[node.Label] = i
		for _, t := range node.Type {
			if _, ok := s.nodeTypeCounts[t]; !ok {
				s.nodeTypes = append(s.nodeTypes, t)
			}
			s.nodeTypeCounts[t]++
		}
	}

	for _, edge := range s.edges {
		if _, ok := s.edgeLabelCounts[edge.Label]; !ok {
			s.edgeLabels = append(s.edgeLabels, edge.Label)
		}
		s.edgeLabelCounts[edge.Label]++

		s.nodeLabelEdgeCounts[s.nodes[s.byID[edge.Source]].Label]++
		s.nodeLabelEdgeCounts[s.nodes[s.byID[edge.Target]].Label]++
	}

	logger.Info("[Store] Graph loaded", "nodes", len(s.nodes), "edges", len(s.edges), "documents", len(s.metadata))

	return s, nil
}

// emptyStore is the store of an engine that has not loaded a document yet.
func emptyStore() *Store {
	return &Store{
		byID:                map[string]int{},
		byLabel:             map[string]int{},
		nodeTypeCounts:      map[string]int{},
		nodeLabelEdgeCounts: map[string]int{},
		edgeLabelCounts:     map[string]int{},
	}
}

// Sanitize drops malformed nodes and edges and validates label uniqueness.
//
// Nodes without id, label or type are dropped, as are repeated ids (the first
// occurrence wins). Edges whose endpoints are not surviving node ids, or that
// have no label, are dropped. Every drop is logged. Two surviving nodes with
// the same label abort with a *DuplicateLabelError; the comparison is case
// sensitive.
//
// The returned records are copies; empty document id lists default to ["0"].
func Sanitize(rawNodes []common.Node, rawEdges []common.Edge) ([]common.Node, []common.Edge, error) {
	nodes := make([]common.Node, 0, len(rawNodes))
	ids := make(map[string]struct{}, len(rawNodes))
	labelCounts := make(map[string]int, len(rawNodes))
	var labelOrder []string

	for _, raw := range rawNodes {
		if raw.ID == "" {
			logger.Warn("[Store] Removing node without id", "label", raw.Label)
			continue
		}
		if raw.Label == "" {
			logger.Warn("[Store] Removing node without label", "id", raw.ID)
			continue
		}
		types := nonEmpty(raw.Type)
		if len(types) == 0 {
			logger.Warn("[Store] Removing node without type", "id", raw.ID, "label", raw.Label)
			continue
		}
		if _, ok := ids[raw.ID]; ok {
			logger.Warn("[Store] Removing node with repeated id", "id", raw.ID, "label", raw.Label)
			continue
		}
		ids[raw.ID] = struct{}{}

		if labelCounts[raw.Label] == 0 {
			labelOrder = append(labelOrder, raw.Label)
		}
		labelCounts[raw.Label]++

		nodes = append(nodes, common.Node{
			ID:          raw.ID,
			Label:       raw.Label,
			Type:        types,
			DocumentIDs: documentIDsOrDefault(raw.DocumentIDs),
		})
	}

	var duplicates []string
	for _, label := range labelOrder {
		if labelCounts[label] > 1 {
			duplicates = append(duplicates, label)
		}
	}
	if len(duplicates) > 0 {
		logger.Error("[Store] Duplicate node labels found", "labels", duplicates)
		return nil, nil, &DuplicateLabelError{Labels: duplicates}
	}

	edges := make([]common.Edge, 0, len(rawEdges))
	for _, raw := range rawEdges {
		if _, ok := ids[raw.Source]; !ok {
			logger.Warn("[Store] Removing edge with invalid source", "source", raw.Source, "target", raw.Target, "label", raw.Label)
			continue
		}
		if _, ok := ids[raw.Target]; !ok {
			logger.Warn("[Store] Removing edge with invalid target", "source", raw.Source, "target", raw.Target, "label", raw.Label)
			continue
		}
		if raw.Label == "" {
			logger.Warn("[Store] Removing edge without label", "source", raw.Source, "target", raw.Target)
			continue
		}
		edges = append(edges, common.Edge{
			Source:      raw.Source,
			Target:      raw.Target,
			Label:       raw.Label,
			DocumentIDs: documentIDsOrDefault(raw.DocumentIDs),
		})
	}

	logger.Debug("[Store] Graph data sanitized", "nodes", len(nodes), "dropped_nodes", len(rawNodes)-len(nodes), "edges", len(edges), "dropped_edges", len(rawEdges)-len(edges))

	return nodes, edges, nil
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func documentIDsOrDefault(ids []string) []string {
	if len(ids) == 0 {
		return []string{defaultDocumentID}
	}
	return append([]string(nil), ids...)
}

// Nodes returns the sanitized nodes in document order.
func (s *Store) Nodes() []common.Node {
	return s.nodes
}

// Edges returns the sanitized edges in document order.
func (s *Store) Edges() []common.Edge {
	return s.edges
}

// Metadata returns the source document legend as loaded.
func (s *Store) Metadata() []common.Metadata {
	return s.metadata
}

// Node looks up a node by id.
func (s *Store) Node(id string) (common.Node, bool) {
	i, ok := s.byID[id]
	if !ok {
		return common.Node{}, false
	}
	return s.nodes[i], true
}

// NodeByLabel looks up a node by its unique label.
func (s *Store) NodeByLabel(label string) (common.Node, bool) {
	i, ok := s.byLabel[label]
	if !ok {
		return common.Node{}, false
	}
	return s.nodes[i], true
}

// NodeTypes returns every category in first-seen order.
func (s *Store) NodeTypes() []string {
	return s.nodeTypes
}

// NodeTypeCount returns how many nodes carry the category.
func (s *Store) NodeTypeCount(t string) int {
	return s.nodeTypeCounts[t]
}

// NodeLabelEdgeCount returns how many edge endpoints touch the node with
// the given label. A self loop counts twice.
func (s *Store) NodeLabelEdgeCount(label string) int {
	return s.nodeLabelEdgeCounts[label]
}

// EdgeLabels returns every relationship label in first-seen order.
func (s *Store) EdgeLabels() []string {
	return s.edgeLabels
}

// EdgeLabelCount returns how many raw edges carry the relationship label.
func (s *Store) EdgeLabelCount(label string) int {
	return s.edgeLabelCounts[label]
}

// NodeLabelEdgeCounts returns a copy of the per-label edge touch counters.
func (s *Store) NodeLabelEdgeCounts() map[string]int {
	out := make(map[string]int, len(s.nodeLabelEdgeCounts))
	for label, count := range s.nodeLabelEdgeCounts {
		out[label] = count
	}
	return out
}

func (s *Store) clearRootDistances() {
	for i := range s.nodes {
		s.nodes[i].RootDistance = nil
	}
}

func (s *Store) setRootDistance(id string, distance int) bool {
	i, ok := s.byID[id]
	if !ok {
		return false
	}
	d := distance
	s.nodes[i].RootDistance = &d
	return true
}

func (s *Store) rootDistance(id string) (int, bool) {
	i, ok := s.byID[id]
	if !ok || s.nodes[i].RootDistance == nil {
		return 0, false
	}
	return *s.nodes[i].RootDistance, true
}
