package csv

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
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

func TestParseTable(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []map[string]string
		wantErr error
	}{
		{
			name:    "bom and blank lines",
			content: "\ufeffid,label\n\n1,Alice\n , \n2,Bob\n",
			want: []map[string]string{
				{"id": "1", "label": "Alice"},
				{"id": "2", "label": "Bob"},
			},
		},
		{
			name:    "cells are trimmed",
			content: "id, label ,type\n 1 , Alice|1 ,\tPerson\n",
			want:    []map[string]string{{"id": "1", "label": "Alice|1", "type": "Person"}},
		},
		{
			name:    "short rows are padded",
			content: "id,label,type\n1,Alice\n",
			want:    []map[string]string{{"id": "1", "label": "Alice", "type": ""}},
		},
		{
			name:    "header only",
			content: "id,label,type\n",
			want:    nil,
		},
		{
			name:    "empty",
			content: "\n\n",
			wantErr: ErrEmptyTable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTable([]byte(tt.content))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseNodes(t *testing.T) {
	nodes, err := ParseNodes([]byte("id,label,type\n1,Alice|2|5,Person|Author\n2,Acme,\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []common.Node{
		{ID: "1", Label: "Alice", Type: []string{"Person", "Author"}, DocumentIDs: []string{"2", "5"}},
		{ID: "2", Label: "Acme", DocumentIDs: []string{"0"}},
	}
	if !reflect.DeepEqual(nodes, want) {
		t.Fatalf("got %+v, want %+v", nodes, want)
	}
}

func TestParseNodesPaddedCells(t *testing.T) {
	nodes, err := ParseNodes([]byte("id,label,type\n1, Alice|1 , Person\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []common.Node{{ID: "1", Label: "Alice", Type: []string{"Person"}, DocumentIDs: []string{"1"}}}
	if !reflect.DeepEqual(nodes, want) {
		t.Fatalf("got %+v, want %+v", nodes, want)
	}
}

func TestParseEdges(t *testing.T) {
	edges, err := ParseEdges([]byte("source,target,label\n1,2,\"works at|4\"\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []common.Edge{{Source: "1", Target: "2", Label: "works at", DocumentIDs: []string{"4"}}}
	if !reflect.DeepEqual(edges, want) {
		t.Fatalf("got %+v, want %+v", edges, want)
	}
}

func TestLoadDocument(t *testing.T) {
	files := mapLoader{
		"g/nodes.csv":     "id,label,type\n1,Alice,Person\n2,Bob,Person\n",
		"g/edges.csv":     "source,target,label\n1,2,knows|1\n",
		"g/metadata.json": `[{"index": 1, "filename": "a.pdf"}]`,
	}
	file := func(p string) loader.GraphFile {
		return loader.NewGraphCSVFile(loader.NewGraphFileParams{ID: "g", FilePath: p, Loader: files})
	}

	t.Run("with metadata", func(t *testing.T) {
		meta := loader.NewGraphMetadataFile(loader.NewGraphFileParams{ID: "g", FilePath: "g/metadata.json", Loader: files})
		l := NewCSVDocumentLoader(NewCSVDocumentLoaderParams{
			Nodes:    file("g/nodes.csv"),
			Edges:    file("g/edges.csv"),
			Metadata: &meta,
		})

		doc, err := l.LoadDocument(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(doc.Nodes) != 2 || len(doc.Edges) != 1 {
			t.Fatalf("unexpected document %+v", doc)
		}
		if !reflect.DeepEqual(doc.Metadata, []common.Metadata{{Index: 1, Filename: "a.pdf"}}) {
			t.Fatalf("unexpected metadata %+v", doc.Metadata)
		}
	})

	t.Run("missing table", func(t *testing.T) {
		l := NewCSVDocumentLoader(NewCSVDocumentLoaderParams{
			Nodes: file("g/nodes.csv"),
			Edges: file("g/missing.csv"),
		})
		if _, err := l.LoadDocument(context.Background()); err == nil {
			t.Fatal("expected an error for a missing edges table")
		}
	})
}
