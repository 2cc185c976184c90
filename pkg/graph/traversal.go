package graph

import (
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"
)

// User-facing messages returned with a visible graph.
const (
	MessageSelectNodes      = "Select a few Nodes!"
	MessageSelectEdges      = "Select a few Edges!"
	MessageNoConnections    = "No connections found ... try selecting more Nodes!"
	MessageNoConnectedNodes = "Select Nodes which have at least one connection!"
	MessageNoEdgesFound     = "No edges found for current filters!"
	MessageRoutesTruncated  = "Incomplete Graph!\nSize is limited to avoid clutter.\nSelect fewer nodes!"
	MessageTruncated        = "Incomplete Graph!\nSize is limited to avoid clutter!"
	MessageUnexpectedEmpty  = "Something is not ok ... this should never happen!"
)

// IsTruncated reports whether the size governor cut view short.
func IsTruncated(view common.VisibleGraph) bool {
	return view.Message == MessageTruncated || view.Message == MessageRoutesTruncated
}

func emptyVisibleGraph(message string) common.VisibleGraph {
	return common.VisibleGraph{
		VisibleNodes: []common.Node{},
		MergedEdges:  []common.MergedEdge{},
		Message:      message,
	}
}

// edgesOnlyGraph shows every edge whose relationship is enabled.
func edgesOnlyGraph(store *Store, cascade *Cascade, maxEdges int) common.VisibleGraph {
	edges := selectedEdges(store, cascade)
	if len(edges) == 0 {
		return emptyVisibleGraph(MessageSelectEdges)
	}

	merger := newEdgeMerger(maxEdges)
	for _, edge := range edges {
		if !merger.add(edge) {
			break
		}
	}

	nodes, merged := merger.result(store)
	message := ""
	switch {
	case merger.truncated:
		message = MessageTruncated
	case len(merged) == 0:
		logger.Error("[Traversal] Empty edges-only view for a non-empty relationship filter", "edges", len(edges))
		message = MessageUnexpectedEmpty
	}

	return common.VisibleGraph{VisibleNodes: nodes, MergedEdges: merged, Message: message}
}

func selectedEdges(store *Store, cascade *Cascade) []common.Edge {
	var out []common.Edge
	for _, edge := range store.Edges() {
		if cascade.EdgeSelected(edge.Label) {
			out = append(out, edge)
		}
	}
	return out
}

type step struct {
	node string
	edge int
}

// routesGraph connects the selected entities through shortest paths. One
// breadth-first search runs per root over the undirected adjacency of all
// edges, ignoring relationship filters. Reaching another root reconstructs
// the path back to the source root and stops expanding past that root. Each
// search contributes one shortest path per reachable root.
func routesGraph(store *Store, cascade *Cascade, maxEdges int) common.VisibleGraph {
	edges := store.Edges()
	roots := cascade.SelectedNodes()
	rootIDs := cascade.SelectedNodeIDs()

	adjacency := make(map[string][]step)
	for i, edge := range edges {
		adjacency[edge.Source] = append(adjacency[edge.Source], step{node: edge.Target, edge: i})
		if edge.Source != edge.Target {
			adjacency[edge.Target] = append(adjacency[edge.Target], step{node: edge.Source, edge: i})
		}
	}

	merger := newEdgeMerger(maxEdges)
	included := make(map[int]struct{})

	for _, root := range roots {
		if merger.truncated {
			break
		}

		visited := map[string]struct{}{root.ID: {}}
		predecessors := make(map[string]step)
		queue := []string{root.ID}

		for head := 0; head < len(queue) && !merger.truncated; head++ {
			current := queue[head]

			if _, isRoot := rootIDs[current]; isRoot && current != root.ID {
				for at := current; at != root.ID; {
					pred := predecessors[at]
					if _, ok := included[pred.edge]; !ok {
						if !merger.add(edges[pred.edge]) {
							break
						}
						included[pred.edge] = struct{}{}
					}
					at = pred.node
				}
				continue
			}

			for _, next := range adjacency[current] {
				if _, ok := visited[next.node]; ok {
					continue
				}
				if _, ok := store.Node(next.node); !ok {
					logger.Debug("[Traversal] Skipping unknown node", "id", next.node)
					continue
				}
				visited[next.node] = struct{}{}
				predecessors[next.node] = step{node: current, edge: next.edge}
				queue = append(queue, next.node)
			}
		}
	}

	nodes, merged := merger.result(store)
	message := ""
	switch {
	case merger.truncated:
		message = MessageRoutesTruncated
	case len(merged) == 0 && len(roots) < 2:
		message = MessageSelectNodes
	case len(merged) == 0:
		message = MessageNoConnections
	}

	return common.VisibleGraph{VisibleNodes: nodes, MergedEdges: merged, Message: message}
}

// calculateRootDistances clears every root distance and runs a multi-source
// breadth-first search from the selected entities. Only edges with an
// enabled relationship are followed, out-edges when direction has bit 0 set
// and in-edges when it has bit 1 set. It returns the roots.
func calculateRootDistances(store *Store, cascade *Cascade, direction Direction) []common.Node {
	store.clearRootDistances()

	roots := cascade.SelectedNodes()
	queue := make([]string, 0, len(roots))
	for _, root := range roots {
		store.setRootDistance(root.ID, 0)
		queue = append(queue, root.ID)
	}

	adjacency := make(map[string][]string)
	for _, edge := range store.Edges() {
		if !cascade.EdgeSelected(edge.Label) {
			continue
		}
		if direction.followsOut() {
			adjacency[edge.Source] = append(adjacency[edge.Source], edge.Target)
		}
		if direction.followsIn() {
			adjacency[edge.Target] = append(adjacency[edge.Target], edge.Source)
		}
	}

	for head := 0; head < len(queue); head++ {
		current := queue[head]
		distance, _ := store.rootDistance(current)
		for _, next := range adjacency[current] {
			if _, reached := store.rootDistance(next); reached {
				continue
			}
			if !store.setRootDistance(next, distance+1) {
				logger.Debug("[Traversal] Skipping unknown node", "id", next)
				continue
			}
			queue = append(queue, next)
		}
	}

	logger.Debug("[Traversal] Root distances calculated", "roots", len(roots), "reached", len(queue), "direction", int(direction))

	return roots
}

// exploreGraph shows the neighbourhood of the selected entities. An edge is
// visible when both endpoints were reached within threshold and, for a
// single direction, it points away from (out) or towards (in) the roots.
func exploreGraph(store *Store, cascade *Cascade, direction Direction, threshold int, maxEdges int) common.VisibleGraph {
	roots := calculateRootDistances(store, cascade, direction)
	if len(roots) == 0 {
		return emptyVisibleGraph(MessageSelectNodes)
	}

	edges := selectedEdges(store, cascade)
	if len(edges) == 0 {
		return emptyVisibleGraph(MessageSelectEdges)
	}

	merger := newEdgeMerger(maxEdges)
	for _, edge := range edges {
		sourceDistance, ok := store.rootDistance(edge.Source)
		if !ok {
			continue
		}
		targetDistance, ok := store.rootDistance(edge.Target)
		if !ok {
			continue
		}
		if sourceDistance > threshold || targetDistance > threshold {
			continue
		}

		include := false
		switch {
		case direction.followsOut() && direction.followsIn():
			include = true
		case direction.followsOut():
			include = targetDistance > sourceDistance
		case direction.followsIn():
			include = targetDistance < sourceDistance
		}
		if !include {
			continue
		}

		if !merger.add(edge) {
			break
		}
	}

	nodes, merged := merger.result(store)
	message := ""
	switch {
	case merger.truncated:
		message = MessageTruncated
	case len(merged) == 0 && len(cascade.EdgeLabelUniverse()) == 0:
		message = MessageNoConnectedNodes
	case len(merged) == 0:
		message = MessageNoEdgesFound
	}

	return common.VisibleGraph{VisibleNodes: nodes, MergedEdges: merged, Message: message}
}
