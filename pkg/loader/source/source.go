// Package source builds document loaders for the stored layouts of a graph
// document: a single JSON file, or a folder of CSV tables.
package source

import (
	"fmt"
	"path"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/loader"
	csvloader "github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/csv"
	jsonloader "github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/json"
)

const (
	NodesFile    = "nodes.csv"
	EdgesFile    = "edges.csv"
	MetadataFile = "metadata.json"
)

// Params locates one stored document. For the csv format Key is a folder
// holding NodesFile, EdgesFile and, when HasMetadata is set, MetadataFile.
type Params struct {
	Key         string
	Format      string
	HasMetadata bool
	Files       loader.GraphFileLoader
}

// New returns the loader for p.Format ("json" or "csv").
//
// Example:
//
//	l, err := source.New(source.Params{Key: "graphs/report.json", Format: "json", Files: s3Loader})
//	if err != nil {
//		return err
//	}
//	doc, err := l.LoadDocument(ctx)
func New(p Params) (loader.DocumentLoader, error) {
	switch p.Format {
	case string(loader.GraphFileTypeJSON):
		return jsonloader.NewJSONDocumentLoader(loader.NewGraphJSONFile(loader.NewGraphFileParams{
			ID:       p.Key,
			FilePath: p.Key,
			Loader:   p.Files,
		})), nil
	case string(loader.GraphFileTypeCSV):
		return CSVFiles(CSVFilesParams{
			ID:       p.Key,
			Nodes:    path.Join(p.Key, NodesFile),
			Edges:    path.Join(p.Key, EdgesFile),
			Metadata: metadataPath(p),
			Files:    p.Files,
		}), nil
	}
	return nil, fmt.Errorf("%w: %q", loader.ErrUnsupportedFormat, p.Format)
}

func metadataPath(p Params) string {
	if !p.HasMetadata {
		return ""
	}
	return path.Join(p.Key, MetadataFile)
}

// CSVFilesParams names the tables of a CSV document explicitly. Metadata
// may be empty.
type CSVFilesParams struct {
	ID       string
	Nodes    string
	Edges    string
	Metadata string
	Files    loader.GraphFileLoader
}

// CSVFiles returns a loader for explicitly named CSV tables.
func CSVFiles(p CSVFilesParams) loader.DocumentLoader {
	params := csvloader.NewCSVDocumentLoaderParams{
		Nodes: loader.NewGraphCSVFile(loader.NewGraphFileParams{ID: p.ID, FilePath: p.Nodes, Loader: p.Files}),
		Edges: loader.NewGraphCSVFile(loader.NewGraphFileParams{ID: p.ID, FilePath: p.Edges, Loader: p.Files}),
	}
	if p.Metadata != "" {
		meta := loader.NewGraphMetadataFile(loader.NewGraphFileParams{ID: p.ID, FilePath: p.Metadata, Loader: p.Files})
		params.Metadata = &meta
	}
	return csvloader.NewCSVDocumentLoader(params)
}
