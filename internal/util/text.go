package util

import (
	"strings"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
)

// SanitizePostgresText drops invalid UTF-8 and NUL bytes, which Postgres
// text columns reject.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// SanitizeDocumentText returns a copy of doc with every string passed
// through SanitizePostgresText. Nil lists stay nil.
func SanitizeDocumentText(doc common.Document) common.Document {
	out := common.Document{
		Nodes:    make([]common.Node, len(doc.Nodes)),
		Edges:    make([]common.Edge, len(doc.Edges)),
		Metadata: make([]common.Metadata, len(doc.Metadata)),
	}
	for i, n := range doc.Nodes {
		out.Nodes[i] = common.Node{
			ID:          SanitizePostgresText(n.ID),
			Label:       SanitizePostgresText(n.Label),
			Type:        sanitizeAll(n.Type),
			DocumentIDs: sanitizeAll(n.DocumentIDs),
		}
	}
	for i, e := range doc.Edges {
		out.Edges[i] = common.Edge{
			Source:      SanitizePostgresText(e.Source),
			Target:      SanitizePostgresText(e.Target),
			Label:       SanitizePostgresText(e.Label),
			DocumentIDs: sanitizeAll(e.DocumentIDs),
		}
	}
	for i, m := range doc.Metadata {
		out.Metadata[i] = common.Metadata{
			Index:    m.Index,
			Filename: SanitizePostgresText(m.Filename),
			SHA256:   SanitizePostgresText(m.SHA256),
		}
	}
	return out
}

func sanitizeAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = SanitizePostgresText(v)
	}
	return out
}
