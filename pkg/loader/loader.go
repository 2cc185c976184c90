package loader

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
)

// ErrUnsupportedFormat is returned for graph files that are neither JSON
// documents nor CSV tables.
var ErrUnsupportedFormat = errors.New("unsupported graph document format")

type GraphFileType string

const (
	GraphFileTypeJSON     GraphFileType = "json"
	GraphFileTypeCSV      GraphFileType = "csv"
	GraphFileTypeMetadata GraphFileType = "metadata"
)

// GraphFile represents one stored file that contributes to a graph document:
// a complete JSON document, a nodes or edges CSV table, or a metadata list.
//
// The actual file content is retrieved via the associated GraphFileLoader.
type GraphFile struct {
	ID       string
	FilePath string
	FileType GraphFileType
	Loader   GraphFileLoader
}

// NewGraphFileParams defines the input parameters for creating a new GraphFile
// instance.
type NewGraphFileParams struct {
	ID       string
	FilePath string
	Loader   GraphFileLoader
}

// NewGraphJSONFile creates a new GraphFile holding a complete JSON document.
func NewGraphJSONFile(params NewGraphFileParams) GraphFile {
	return GraphFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		FileType: GraphFileTypeJSON,
		Loader:   params.Loader,
	}
}

// NewGraphCSVFile creates a new GraphFile holding a nodes or edges table.
func NewGraphCSVFile(params NewGraphFileParams) GraphFile {
	return GraphFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		FileType: GraphFileTypeCSV,
		Loader:   params.Loader,
	}
}

// NewGraphMetadataFile creates a new GraphFile holding the JSON list of
// source documents.
func NewGraphMetadataFile(params NewGraphFileParams) GraphFile {
	return GraphFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		FileType: GraphFileTypeMetadata,
		Loader:   params.Loader,
	}
}

// NewGraphFile picks the file type from the extension of the path.
func NewGraphFile(params NewGraphFileParams) (GraphFile, error) {
	t, err := FileTypeFromPath(params.FilePath)
	if err != nil {
		return GraphFile{}, err
	}
	return GraphFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		FileType: t,
		Loader:   params.Loader,
	}, nil
}

// FileTypeFromPath maps ".json" and ".csv" paths to their file type.
func FileTypeFromPath(p string) (GraphFileType, error) {
	switch strings.ToLower(path.Ext(p)) {
	case ".json":
		return GraphFileTypeJSON, nil
	case ".csv":
		return GraphFileTypeCSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, p)
}

// GetContent retrieves the raw bytes of the file using its Loader.
//
// Example:
//
//	content, err := file.GetContent(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(len(content))
func (f *GraphFile) GetContent(ctx context.Context) ([]byte, error) {
	if f.Loader == nil {
		return nil, fmt.Errorf("graph file %s has no loader", f.FilePath)
	}
	return f.Loader.GetFileContent(ctx, *f)
}

// GraphFileLoader defines the interface for loading the contents of a GraphFile.
// Implementations may load files from disk, cloud storage, or other sources.
type GraphFileLoader interface {
	GetFileContent(ctx context.Context, file GraphFile) ([]byte, error)
}

// DocumentLoader produces a raw graph document. Sanitization is left to the
// graph store.
type DocumentLoader interface {
	LoadDocument(ctx context.Context) (common.Document, error)
}

// CacheKey generates a unique cache key for a GraphFile based on its ID and path.
func CacheKey(file GraphFile) string {
	return file.ID + ":" + file.FilePath
}

// SplitLabel separates the document ids encoded as a "|" suffix from a label.
// "Acme|3|7" yields "Acme" and ["3", "7"]. Without a suffix the ids are ["0"].
func SplitLabel(raw string) (string, []string) {
	parts := strings.Split(raw, "|")
	var ids []string
	for _, p := range parts[1:] {
		if p != "" {
			ids = append(ids, p)
		}
	}
	if len(ids) == 0 {
		ids = []string{"0"}
	}
	return parts[0], ids
}

// SplitTypes parses a "|"-separated category cell, dropping empty parts.
func SplitTypes(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, "|") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
