package graph

import (
	"fmt"
	"testing"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger/memory"
)

func node(id, label string, types ...string) common.Node {
	return common.Node{ID: id, Label: label, Type: types}
}

func edge(source, target, label string, docs ...string) common.Edge {
	return common.Edge{Source: source, Target: target, Label: label, DocumentIDs: docs}
}

// pathDocument is A -> B -> C -> D with one "knows" edge per hop.
func pathDocument() common.Document {
	return common.Document{
		Nodes: []common.Node{
			node("1", "A", "Person"),
			node("2", "B", "Person"),
			node("3", "C", "Person"),
			node("4", "D", "Person"),
		},
		Edges: []common.Edge{
			edge("1", "2", "knows", "1"),
			edge("2", "3", "knows", "1"),
			edge("3", "4", "knows", "2"),
		},
	}
}

// companyDocument mixes categories and relationships.
//
//	alice -works_at-> acme, bob -works_at-> acme, alice -knows-> bob,
//	acme -located_in-> berlin, carol is isolated.
func companyDocument() common.Document {
	return common.Document{
		Nodes: []common.Node{
			node("p1", "Alice", "Person"),
			node("p2", "Bob", "Person"),
			node("p3", "Carol", "Person", "Author"),
			node("o1", "Acme", "Organization"),
			node("l1", "Berlin", "Location"),
		},
		Edges: []common.Edge{
			edge("p1", "o1", "works_at", "1"),
			edge("p2", "o1", "works_at", "2"),
			edge("p1", "p2", "knows", "1"),
			edge("o1", "l1", "located_in", "3"),
		},
		Metadata: []common.Metadata{
			{Index: 1, Filename: "report.pdf"},
			{Index: 2, Filename: "minutes.pdf"},
			{Index: 3, Filename: "register.pdf", SHA256: "abc"},
		},
	}
}

// starDocument has one hub connected to n leaves by distinct "rel" edges.
func starDocument(n int) common.Document {
	doc := common.Document{Nodes: []common.Node{node("hub", "Hub", "Thing")}}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("n%d", i)
		doc.Nodes = append(doc.Nodes, node(id, "Leaf "+id, "Thing"))
		doc.Edges = append(doc.Edges, edge("hub", id, "rel"))
	}
	return doc
}

func loadedEngine(t *testing.T, doc common.Document) *Engine {
	t.Helper()
	e := NewEngine(NewEngineParams{})
	if err := e.LoadGraphData(doc); err != nil {
		t.Fatalf("LoadGraphData: %v", err)
	}
	return e
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func captureLogs(t *testing.T) *memory.MemoryLogger {
	t.Helper()
	rec := memory.NewMemoryLogger()
	logger.Init(rec)
	t.Cleanup(func() { logger.Init() })
	return rec
}

func pairs(edges []common.MergedEdge) []string {
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.Source+"->"+e.Target)
	}
	return out
}

func nodeIDs(nodes []common.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}
