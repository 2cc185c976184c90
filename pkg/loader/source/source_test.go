package source

import (
	"context"
	"errors"
	"testing"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/loader"
)

type mapLoader map[string]string

func (m mapLoader) GetFileContent(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	content, ok := m[file.FilePath]
	if !ok {
		return nil, errors.New("not found: " + file.FilePath)
	}
	return []byte(content), nil
}

func TestNew(t *testing.T) {
	files := mapLoader{
		"graphs/a.json":          `{"nodes": [{"id": "1", "label": "Alice", "type": "Person"}], "edges": []}`,
		"graphs/b/nodes.csv":     "id,label,type\n1,Alice,Person\n2,Bob,Person\n",
		"graphs/b/edges.csv":     "source,target,label\n1,2,knows\n",
		"graphs/b/metadata.json": `{"index": 0, "filename": "a.pdf"}`,
	}

	tests := []struct {
		name     string
		params   Params
		nodes    int
		metadata int
	}{
		{name: "json", params: Params{Key: "graphs/a.json", Format: "json"}, nodes: 1},
		{name: "csv", params: Params{Key: "graphs/b", Format: "csv"}, nodes: 2},
		{name: "csv with metadata", params: Params{Key: "graphs/b", Format: "csv", HasMetadata: true}, nodes: 2, metadata: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.Files = files
			l, err := New(tt.params)
			if err != nil {
				t.Fatalf("New error: %v", err)
			}
			doc, err := l.LoadDocument(context.Background())
			if err != nil {
				t.Fatalf("LoadDocument error: %v", err)
			}
			if len(doc.Nodes) != tt.nodes || len(doc.Metadata) != tt.metadata {
				t.Fatalf("got %d nodes and %d metadata, want %d and %d", len(doc.Nodes), len(doc.Metadata), tt.nodes, tt.metadata)
			}
		})
	}
}

func TestNewUnsupportedFormat(t *testing.T) {
	if _, err := New(Params{Key: "graphs/a.xlsx", Format: "xlsx"}); !errors.Is(err, loader.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
