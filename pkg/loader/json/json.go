package json

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/loader"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

func stripDuplicateLeadingBrace(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		rest := strings.TrimSpace(s[1:])
		if strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}

// GenerateSchema creates a JSON Schema from the given Go type.
func GenerateSchema(value any) any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}

	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	v := reflect.New(t).Interface()
	return reflector.Reflect(v)
}

// UnmarshalFlexible attempts to unmarshal JSON into the target with multiple
// fallback strategies: plain JSON, double-encoded JSON strings, and finally
// repaired JSON. Hand-edited graph exports often carry trailing commas or
// unquoted keys.
//
// Example:
//
//	var doc common.Document
//	UnmarshalFlexible(`{"nodes": []}`, &doc)         // standard JSON
//	UnmarshalFlexible(`"{\"nodes\": []}"`, &doc)     // double-encoded
//	UnmarshalFlexible(`{nodes: [],}`, &doc)          // malformed (repaired)
func UnmarshalFlexible(input string, out any) error {
	input = strings.TrimSpace(input)

	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if err := json.Unmarshal([]byte(asString), out); err == nil {
			return nil
		}
		input = asString
	}

	input = stripDuplicateLeadingBrace(input)
	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("json repair failed: %w", err)
	}

	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("unmarshal failed after repair: %w", err)
	}

	logger.Debug("[Loader] Repaired malformed JSON", "bytes", len(input))
	return nil
}

// typeList accepts a category list either as an array or as a single
// "|"-separated string.
type typeList []string

func (t *typeList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("type must be a string or a list of strings: %w", err)
	}
	*t = loader.SplitTypes(s)
	return nil
}

type rawNode struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Type        typeList `json:"type"`
	DocumentIDs []string `json:"document_ids"`
}

type rawEdge struct {
	Source      string   `json:"source"`
	Target      string   `json:"target"`
	Label       string   `json:"label"`
	DocumentIDs []string `json:"document_ids"`
}

type rawDocument struct {
	Nodes    []rawNode         `json:"nodes"`
	Edges    []rawEdge         `json:"edges"`
	Metadata []common.Metadata `json:"metadata"`
}

// DecodeDocument parses a graph document. Labels without explicit
// document_ids have their "|" suffix split off into document ids.
func DecodeDocument(content []byte) (common.Document, error) {
	var raw rawDocument
	if err := UnmarshalFlexible(string(content), &raw); err != nil {
		return common.Document{}, fmt.Errorf("failed to decode graph document: %w", err)
	}

	doc := common.Document{
		Nodes:    make([]common.Node, 0, len(raw.Nodes)),
		Edges:    make([]common.Edge, 0, len(raw.Edges)),
		Metadata: raw.Metadata,
	}
	for _, n := range raw.Nodes {
		label, ids := n.Label, n.DocumentIDs
		if len(ids) == 0 {
			label, ids = loader.SplitLabel(n.Label)
		}
		doc.Nodes = append(doc.Nodes, common.Node{ID: n.ID, Label: label, Type: n.Type, DocumentIDs: ids})
	}
	for _, e := range raw.Edges {
		label, ids := e.Label, e.DocumentIDs
		if len(ids) == 0 {
			label, ids = loader.SplitLabel(e.Label)
		}
		doc.Edges = append(doc.Edges, common.Edge{Source: e.Source, Target: e.Target, Label: label, DocumentIDs: ids})
	}
	return doc, nil
}

// DecodeMetadata parses the list of source documents. A single object is
// accepted as a list of one.
func DecodeMetadata(content []byte) ([]common.Metadata, error) {
	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return []common.Metadata{}, nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var single common.Metadata
		if err := UnmarshalFlexible(trimmed, &single); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
		return []common.Metadata{single}, nil
	}
	var list []common.Metadata
	if err := UnmarshalFlexible(trimmed, &list); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return list, nil
}

// JSONDocumentLoader loads a complete graph document from one JSON file.
type JSONDocumentLoader struct {
	file loader.GraphFile
}

func NewJSONDocumentLoader(file loader.GraphFile) *JSONDocumentLoader {
	return &JSONDocumentLoader{file: file}
}

// LoadDocument fetches and decodes the file. It implements
// loader.DocumentLoader.
func (l *JSONDocumentLoader) LoadDocument(ctx context.Context) (common.Document, error) {
	content, err := l.file.GetContent(ctx)
	if err != nil {
		return common.Document{}, err
	}
	doc, err := DecodeDocument(content)
	if err != nil {
		return common.Document{}, fmt.Errorf("%s: %w", l.file.FilePath, err)
	}
	logger.Debug("[Loader] Decoded JSON document", "path", l.file.FilePath, "nodes", len(doc.Nodes), "edges", len(doc.Edges))
	return doc, nil
}
