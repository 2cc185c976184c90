package pgx

import (
	"context"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/leaselock"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/loader"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"
)

// ErrGraphNotFound is returned when no rows exist for a graph id.
var ErrGraphNotFound = errors.New("graph not found")

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// GraphDBLoader reads and writes graph documents in the graph_nodes,
// graph_edges and graph_metadata tables. Rows keep the document order in
// their position column.
type GraphDBLoader struct {
	conn  pgxIConn
	locks *leaselock.Client
}

// NewGraphDBLoader creates a loader on an existing connection or pool.
//
// Example:
//
//	pool, err := pgxpool.New(ctx, os.Getenv("DATABASE_URL"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	db := pgx.NewGraphDBLoader(pool)
//	doc, err := db.LoadDocument(ctx, "report-2024")
func NewGraphDBLoader(conn pgxIConn) *GraphDBLoader {
	return &GraphDBLoader{
		conn:  conn,
		locks: leaselock.New(conn),
	}
}

// GraphSummary describes one stored graph.
type GraphSummary struct {
	GraphID string `json:"graph_id"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
}

// Document binds a graph id, returning a loader.DocumentLoader.
func (l *GraphDBLoader) Document(graphID string) loader.DocumentLoader {
	return boundDocument{db: l, graphID: graphID}
}

type boundDocument struct {
	db      *GraphDBLoader
	graphID string
}

func (b boundDocument) LoadDocument(ctx context.Context) (common.Document, error) {
	return b.db.LoadDocument(ctx, b.graphID)
}

// LoadDocument reads the raw document of one graph. Sanitization is left to
// the graph store.
func (l *GraphDBLoader) LoadDocument(ctx context.Context, graphID string) (common.Document, error) {
	doc := common.Document{}

	rows, err := l.conn.Query(ctx, selectNodesSQL, graphID)
	if err != nil {
		return doc, fmt.Errorf("failed to query nodes: %w", err)
	}
	doc.Nodes, err = pgxv5.CollectRows(rows, func(row pgxv5.CollectableRow) (common.Node, error) {
		var n common.Node
		err := row.Scan(&n.ID, &n.Label, &n.Type, &n.DocumentIDs)
		return n, err
	})
	if err != nil {
		return doc, fmt.Errorf("failed to scan nodes: %w", err)
	}

	rows, err = l.conn.Query(ctx, selectEdgesSQL, graphID)
	if err != nil {
		return doc, fmt.Errorf("failed to query edges: %w", err)
	}
	doc.Edges, err = pgxv5.CollectRows(rows, func(row pgxv5.CollectableRow) (common.Edge, error) {
		var e common.Edge
		err := row.Scan(&e.Source, &e.Target, &e.Label, &e.DocumentIDs)
		return e, err
	})
	if err != nil {
		return doc, fmt.Errorf("failed to scan edges: %w", err)
	}

	rows, err = l.conn.Query(ctx, selectMetadataSQL, graphID)
	if err != nil {
		return doc, fmt.Errorf("failed to query metadata: %w", err)
	}
	doc.Metadata, err = pgxv5.CollectRows(rows, func(row pgxv5.CollectableRow) (common.Metadata, error) {
		var m common.Metadata
		var sha *string
		err := row.Scan(&m.Index, &m.Filename, &sha)
		if sha != nil {
			m.SHA256 = *sha
		}
		return m, err
	})
	if err != nil {
		return doc, fmt.Errorf("failed to scan metadata: %w", err)
	}

	if len(doc.Nodes) == 0 && len(doc.Edges) == 0 && len(doc.Metadata) == 0 {
		return doc, fmt.Errorf("%w: %s", ErrGraphNotFound, graphID)
	}

	logger.Debug("[Loader] Read graph from database", "graph_id", graphID, "nodes", len(doc.Nodes), "edges", len(doc.Edges))
	return doc, nil
}

// SaveDocument replaces the stored rows of a graph with doc in a single
// transaction. Concurrent saves of the same graph id take turns on a lease
// lock.
func (l *GraphDBLoader) SaveDocument(ctx context.Context, graphID string, doc common.Document) error {
	opts := leaselock.Options{Wait: true}
	return l.locks.WithLease(ctx, leaselock.GraphKey(graphID), opts, func(ctx context.Context) error {
		tx, err := l.conn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		for _, stmt := range []string{deleteNodesSQL, deleteEdgesSQL, deleteMetadataSQL} {
			if _, err := tx.Exec(ctx, stmt, graphID); err != nil {
				return fmt.Errorf("failed to clear graph %s: %w", graphID, err)
			}
		}

		nodeRows := make([][]any, len(doc.Nodes))
		for i, n := range doc.Nodes {
			nodeRows[i] = []any{graphID, n.ID, n.Label, n.Type, n.DocumentIDs, i}
		}
		if _, err := tx.CopyFrom(ctx,
			pgxv5.Identifier{"graph_nodes"},
			[]string{"graph_id", "id", "label", "types", "document_ids", "position"},
			pgxv5.CopyFromRows(nodeRows),
		); err != nil {
			return fmt.Errorf("failed to insert nodes: %w", err)
		}

		edgeRows := make([][]any, len(doc.Edges))
		for i, e := range doc.Edges {
			edgeRows[i] = []any{graphID, e.Source, e.Target, e.Label, e.DocumentIDs, i}
		}
		if _, err := tx.CopyFrom(ctx,
			pgxv5.Identifier{"graph_edges"},
			[]string{"graph_id", "source", "target", "label", "document_ids", "position"},
			pgxv5.CopyFromRows(edgeRows),
		); err != nil {
			return fmt.Errorf("failed to insert edges: %w", err)
		}

		batch := &pgxv5.Batch{}
		for _, m := range doc.Metadata {
			var sha *string
			if m.SHA256 != "" {
				sha = &m.SHA256
			}
			batch.Queue(insertMetadataSQL, graphID, m.Index, m.Filename, sha)
		}
		if batch.Len() > 0 {
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return fmt.Errorf("failed to insert metadata: %w", err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit graph %s: %w", graphID, err)
		}

		logger.Info("[Loader] Stored graph", "graph_id", graphID, "nodes", len(doc.Nodes), "edges", len(doc.Edges))
		return nil
	})
}

// ListGraphs returns every stored graph id with its row counts.
func (l *GraphDBLoader) ListGraphs(ctx context.Context) ([]GraphSummary, error) {
	rows, err := l.conn.Query(ctx, listGraphsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	graphs, err := pgxv5.CollectRows(rows, func(row pgxv5.CollectableRow) (GraphSummary, error) {
		var g GraphSummary
		err := row.Scan(&g.GraphID, &g.Nodes, &g.Edges)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan graphs: %w", err)
	}
	return graphs, nil
}

const selectNodesSQL = `
SELECT id, label, types, document_ids
FROM graph_nodes
WHERE graph_id = $1
ORDER BY position;
`

const selectEdgesSQL = `
SELECT source, target, label, document_ids
FROM graph_edges
WHERE graph_id = $1
ORDER BY position;
`

const selectMetadataSQL = `
SELECT idx, filename, sha256
FROM graph_metadata
WHERE graph_id = $1
ORDER BY idx;
`

const deleteNodesSQL = `DELETE FROM graph_nodes WHERE graph_id = $1;`
const deleteEdgesSQL = `DELETE FROM graph_edges WHERE graph_id = $1;`
const deleteMetadataSQL = `DELETE FROM graph_metadata WHERE graph_id = $1;`

const insertMetadataSQL = `
INSERT INTO graph_metadata (graph_id, idx, filename, sha256)
VALUES ($1, $2, $3, $4);
`

const listGraphsSQL = `
SELECT g.graph_id,
       (SELECT count(*) FROM graph_nodes n WHERE n.graph_id = g.graph_id),
       (SELECT count(*) FROM graph_edges e WHERE e.graph_id = g.graph_id)
FROM (
    SELECT graph_id FROM graph_nodes
    UNION
    SELECT graph_id FROM graph_edges
    UNION
    SELECT graph_id FROM graph_metadata
) g
ORDER BY g.graph_id;
`
