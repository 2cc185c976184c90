package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/loader"
	jsonloader "github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/json"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyTable is returned for a CSV file without a header row.
var ErrEmptyTable = errors.New("CSV file is empty or contains no valid data")

// ParseTable reads a header row followed by data rows. Each row becomes a
// map from header to trimmed cell; missing cells are empty strings. Blank
// lines and unreadable records are skipped.
func ParseTable(content []byte) ([]map[string]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var headers []string
	var rows []map[string]string

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Debug("[Loader] Skipping unreadable CSV record", "err", err)
			continue
		}

		isEmpty := true
		for _, field := range record {
			if strings.TrimSpace(field) != "" {
				isEmpty = false
				break
			}
		}
		if isEmpty {
			continue
		}

		if headers == nil {
			headers = make([]string, len(record))
			for i, h := range record {
				headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
			}
			continue
		}

		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	if headers == nil {
		return nil, ErrEmptyTable
	}
	return rows, nil
}

// ParseNodes reads an id,label,type table. Labels carry their document ids
// as a "|" suffix and types are "|"-separated lists.
func ParseNodes(content []byte) ([]common.Node, error) {
	rows, err := ParseTable(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse nodes: %w", err)
	}
	nodes := make([]common.Node, 0, len(rows))
	for _, row := range rows {
		label, ids := loader.SplitLabel(row["label"])
		nodes = append(nodes, common.Node{
			ID:          row["id"],
			Label:       label,
			Type:        loader.SplitTypes(row["type"]),
			DocumentIDs: ids,
		})
	}
	return nodes, nil
}

// ParseEdges reads a source,target,label table. Labels carry their document
// ids as a "|" suffix.
func ParseEdges(content []byte) ([]common.Edge, error) {
	rows, err := ParseTable(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse edges: %w", err)
	}
	edges := make([]common.Edge, 0, len(rows))
	for _, row := range rows {
		label, ids := loader.SplitLabel(row["label"])
		edges = append(edges, common.Edge{
			Source:      row["source"],
			Target:      row["target"],
			Label:       label,
			DocumentIDs: ids,
		})
	}
	return edges, nil
}

// CSVDocumentLoader assembles a graph document from a nodes table, an edges
// table and an optional JSON metadata list.
type CSVDocumentLoader struct {
	nodes    loader.GraphFile
	edges    loader.GraphFile
	metadata *loader.GraphFile
}

// NewCSVDocumentLoaderParams defines the files of one CSV graph export.
// Metadata may be nil.
type NewCSVDocumentLoaderParams struct {
	Nodes    loader.GraphFile
	Edges    loader.GraphFile
	Metadata *loader.GraphFile
}

// NewCSVDocumentLoader creates a loader for one CSV graph export.
//
// Example:
//
//	fs := io.NewIOGraphFileLoader("exports")
//	l := csv.NewCSVDocumentLoader(csv.NewCSVDocumentLoaderParams{
//		Nodes: loader.NewGraphCSVFile(loader.NewGraphFileParams{ID: "report", FilePath: "nodes.csv", Loader: fs}),
//		Edges: loader.NewGraphCSVFile(loader.NewGraphFileParams{ID: "report", FilePath: "edges.csv", Loader: fs}),
//	})
//	doc, err := l.LoadDocument(ctx)
func NewCSVDocumentLoader(params NewCSVDocumentLoaderParams) *CSVDocumentLoader {
	return &CSVDocumentLoader{
		nodes:    params.Nodes,
		edges:    params.Edges,
		metadata: params.Metadata,
	}
}

// LoadDocument fetches the files concurrently and parses them. It implements
// loader.DocumentLoader.
func (l *CSVDocumentLoader) LoadDocument(ctx context.Context) (common.Document, error) {
	var doc common.Document

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		content, err := l.nodes.GetContent(gctx)
		if err != nil {
			return err
		}
		doc.Nodes, err = ParseNodes(content)
		return err
	})
	g.Go(func() error {
		content, err := l.edges.GetContent(gctx)
		if err != nil {
			return err
		}
		doc.Edges, err = ParseEdges(content)
		return err
	})
	if l.metadata != nil {
		g.Go(func() error {
			content, err := l.metadata.GetContent(gctx)
			if err != nil {
				return err
			}
			doc.Metadata, err = jsonloader.DecodeMetadata(content)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return common.Document{}, err
	}

	logger.Debug("[Loader] Decoded CSV document", "nodes", len(doc.Nodes), "edges", len(doc.Edges), "documents", len(doc.Metadata))
	return doc, nil
}
