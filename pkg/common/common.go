package common

// Document is the input handed to the graph engine by an ingestion
// collaborator (CSV parser, database loader or upload backend).
//
// A document contains:
//   - Nodes: typed entities extracted from the source documents
//   - Edges: directed, labelled relationships between nodes
//   - Metadata: the source documents referenced by document ids
type Document struct {
	Nodes    []Node     `json:"nodes"`
	Edges    []Edge     `json:"edges"`
	Metadata []Metadata `json:"metadata"`
}

// Node represents an entity in the graph. The label is the unique,
// human-facing handle used for selection; the id is the key edges refer to.
//
// RootDistance is only meaningful in explore mode. It is cleared and
// recomputed on every explore recomputation and is nil for unreached nodes.
type Node struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Type         []string `json:"type"`
	DocumentIDs  []string `json:"document_ids"`
	RootDistance *int     `json:"root_distance,omitempty"`
}

// Edge represents a directed relationship between two nodes. Each raw edge
// originates from one extraction and carries the documents that back it.
type Edge struct {
	Source      string   `json:"source"`
	Target      string   `json:"target"`
	Label       string   `json:"label"`
	DocumentIDs []string `json:"document_ids"`
}

// MergedEdge aggregates every raw edge sharing the same ordered
// (source, target) pair.
//
// Labels[i] is the relationship of the i-th merged raw edge and
// LabelDocuments[i] holds that raw edge's document ids. DocumentIDs is the
// flat, order-preserving concatenation of all LabelDocuments.
type MergedEdge struct {
	Source         string     `json:"source"`
	Target         string     `json:"target"`
	Labels         []string   `json:"label"`
	DocumentIDs    []string   `json:"document_ids"`
	LabelDocuments [][]string `json:"label_documents"`
}

// Metadata describes one source document. It is passed through to the
// rendering collaborator for the document legend and never interpreted.
type Metadata struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
	SHA256   string `json:"sha256,omitempty"`
}

// VisibleGraph is the subgraph computed for the current filters and
// exploration mode. Message carries user-facing guidance or a truncation
// notice and is empty when there is nothing to report.
type VisibleGraph struct {
	VisibleNodes []Node       `json:"visibleNodes"`
	MergedEdges  []MergedEdge `json:"mergedEdges"`
	Message      string       `json:"message"`
}
