package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/graph"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return p
}

func csvFixture(t *testing.T) (nodes, edges string) {
	dir := t.TempDir()
	nodes = writeFile(t, dir, "nodes.csv", "id,label,type\n1,Alice|1,Person\n2,Bob|2,Person\n3,Acme,Org\n")
	edges = writeFile(t, dir, "edges.csv", "source,target,label\n1,3,works_at|1\n2,3,works_at\n1,2,knows\n")
	return nodes, edges
}

func renderView(t *testing.T, args ...string) common.VisibleGraph {
	t.Helper()
	var out bytes.Buffer
	if err := run(context.Background(), args, &out, io.Discard); err != nil {
		t.Fatalf("run(%v) error: %v", args, err)
	}
	var view common.VisibleGraph
	if err := json.Unmarshal(out.Bytes(), &view); err != nil {
		t.Fatalf("output is not a visible graph: %v\n%s", err, out.String())
	}
	return view
}

func TestRunEdgesMode(t *testing.T) {
	nodes, edges := csvFixture(t)

	view := renderView(t, "--nodes", nodes, "--edges", edges, "--edges-select", "works_at")

	if len(view.MergedEdges) != 2 {
		t.Fatalf("expected 2 merged edges, got %+v", view.MergedEdges)
	}
	for _, e := range view.MergedEdges {
		if !reflect.DeepEqual(e.Labels, []string{"works_at"}) || e.Target != "3" {
			t.Fatalf("unexpected merged edge %+v", e)
		}
	}
	if view.MergedEdges[0].Source == "1" && !reflect.DeepEqual(view.MergedEdges[0].DocumentIDs, []string{"1"}) {
		t.Fatalf("expected document ids from label suffix, got %v", view.MergedEdges[0].DocumentIDs)
	}
	if len(view.VisibleNodes) != 3 {
		t.Fatalf("expected 3 visible nodes, got %d", len(view.VisibleNodes))
	}
}

func TestRunRoutesMode(t *testing.T) {
	nodes, edges := csvFixture(t)

	view := renderView(t, "--nodes", nodes, "--edges", edges, "--mode", "routes", "--select", "Alice,Acme")

	if len(view.MergedEdges) != 1 {
		t.Fatalf("expected the direct route only, got %+v", view.MergedEdges)
	}
	if got := view.MergedEdges[0]; got.Source != "1" || got.Target != "3" {
		t.Fatalf("unexpected route edge %+v", got)
	}
}

func TestRunJSONDocumentState(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "graph.json", `{
		"nodes": [
			{"id": "1", "label": "Alice", "type": "Person|Author"},
			{"id": "2", "label": "Bob", "type": ["Person"]}
		],
		"edges": [{"source": "1", "target": "2", "label": "knows"}],
		"metadata": [{"index": 0, "filename": "a.pdf"}]
	}`)

	var out bytes.Buffer
	if err := run(context.Background(), []string{"--doc", doc, "--state", "--mode", "explore"}, &out, io.Discard); err != nil {
		t.Fatalf("run error: %v", err)
	}
	var snap graph.Snapshot
	if err := json.Unmarshal(out.Bytes(), &snap); err != nil {
		t.Fatalf("output is not a snapshot: %v", err)
	}
	if snap.Mode != "explore" || snap.NodeCount != 2 || snap.EdgeCount != 1 || len(snap.Metadata) != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.NodeTypes.Selected != 2 {
		t.Fatalf("expected both categories selected, got %d", snap.NodeTypes.Selected)
	}
}

func TestRunErrors(t *testing.T) {
	nodes, edges := csvFixture(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "no input", args: []string{"--mode", "edges"}, want: errUsage},
		{name: "bad mode", args: []string{"--nodes", nodes, "--edges", edges, "--mode", "radial"}, want: graph.ErrInvalidMode},
		{name: "bad direction", args: []string{"--nodes", nodes, "--edges", edges, "--direction", "4"}, want: graph.ErrInvalidDirection},
		{name: "unknown label", args: []string{"--nodes", nodes, "--edges", edges, "--select", "Zed"}, want: graph.ErrUnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.args, io.Discard, io.Discard)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRunHelp(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"--help"}, &out, io.Discard); err != nil {
		t.Fatalf("run(--help) error: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("--edges-select")) {
		t.Fatalf("help output misses flags:\n%s", out.String())
	}
}
