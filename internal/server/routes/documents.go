package routes

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/OFFIS-RIT/kiwi/explorer/internal/queue"
	"github.com/OFFIS-RIT/kiwi/explorer/internal/storage"
	"github.com/OFFIS-RIT/kiwi/explorer/internal/util"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/graph"
	csvloader "github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/csv"
	jsonloader "github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/json"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/source"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetCatalogHandler lists the documents that can be loaded with source
// "catalog". With ?refresh=true the bucket is listed first.
func GetCatalogHandler(c echo.Context) error {
	type catalogResponse struct {
		Documents []queue.CatalogEntry `json:"documents"`
	}

	a := app(c)
	if c.QueryParam("refresh") == "true" {
		if a.S3 == nil {
			return respondError(c, fmt.Errorf("%w: object storage", errDisabled))
		}
		keys, err := storage.ListFilesWithPrefix(c.Request().Context(), a.S3, storage.GraphPrefix)
		if err != nil {
			return respondError(c, err)
		}
		n := queue.SyncFromKeys(a.Catalog, keys)
		logger.Debug("[Server] Refreshed catalog from bucket", "documents", n)
	}

	return c.JSON(http.StatusOK, catalogResponse{Documents: a.Catalog.List()})
}

func readFormFile(c echo.Context, field string) ([]byte, bool, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return readMultipart(fh)
}

func readMultipart(fh *multipart.FileHeader) ([]byte, bool, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, false, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, false, err
	}
	return content, true, nil
}

// UploadDocumentHandler stores a graph document in the bucket, adds it to
// the catalog and announces it on the queue. The form carries either a
// "document" JSON file or "nodes" and "edges" CSV tables with an optional
// "metadata" JSON file. Documents whose labels collide are rejected.
func UploadDocumentHandler(c echo.Context) error {
	type uploadResponse struct {
		Message string             `json:"message"`
		Entry   queue.CatalogEntry `json:"document"`
	}

	a := app(c)
	if a.S3 == nil {
		return respondError(c, fmt.Errorf("%w: object storage", errDisabled))
	}

	files := map[string][]byte{}
	for _, field := range []string{"document", "nodes", "edges", "metadata"} {
		content, ok, err := readFormFile(c, field)
		if err != nil {
			return respondError(c, err)
		}
		if ok {
			files[field] = content
		}
	}

	var doc common.Document
	var format string
	var err error
	switch {
	case files["document"] != nil:
		format = "json"
		doc, err = jsonloader.DecodeDocument(files["document"])
	case files["nodes"] != nil && files["edges"] != nil:
		format = "csv"
		doc, err = decodeCSVUpload(files)
	default:
		return respondError(c, fmt.Errorf("%w: expected a document file or nodes and edges tables", errInvalidBody))
	}
	if err != nil {
		return respondError(c, fmt.Errorf("%w: %v", errInvalidBody, err))
	}
	if _, err := graph.NewStore(doc); err != nil {
		return respondError(c, err)
	}

	id, err := util.NewSessionID()
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	key := storage.DocumentKey(id, format)

	if format == "json" {
		if _, err := storage.PutFile(ctx, a.S3, storage.GraphPrefix, id+".json", bytes.NewReader(files["document"])); err != nil {
			return respondError(c, err)
		}
	} else {
		names := map[string]string{"nodes": source.NodesFile, "edges": source.EdgesFile, "metadata": source.MetadataFile}
		for field, name := range names {
			content, ok := files[field]
			if !ok {
				continue
			}
			if _, err := storage.PutFile(ctx, a.S3, key, name, bytes.NewReader(content)); err != nil {
				return respondError(c, err)
			}
		}
	}

	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		name = id
	}
	entry := queue.CatalogEntry{Key: key, Name: name, Format: format, HasMetadata: files["metadata"] != nil}
	a.Catalog.Add(entry)
	entry, _ = a.Catalog.Get(key)

	if a.Queue != nil {
		msg := queue.GraphReadyMsg{Key: key, Name: name, Format: format, Metadata: entry.HasMetadata}
		if err := queue.AnnounceGraph(ctx, a.Queue, msg); err != nil {
			logger.Warn("[Server] Failed to announce graph document", "key", key, "err", err)
		}
	}

	logger.Info("[Server] Stored graph document", "key", key, "format", format, "nodes", len(doc.Nodes), "edges", len(doc.Edges))
	return c.JSON(http.StatusCreated, uploadResponse{Message: "Document stored", Entry: entry})
}

func decodeCSVUpload(files map[string][]byte) (common.Document, error) {
	var doc common.Document
	var err error
	if doc.Nodes, err = csvloader.ParseNodes(files["nodes"]); err != nil {
		return doc, err
	}
	if doc.Edges, err = csvloader.ParseEdges(files["edges"]); err != nil {
		return doc, err
	}
	if meta, ok := files["metadata"]; ok {
		if doc.Metadata, err = jsonloader.DecodeMetadata(meta); err != nil {
			return doc, err
		}
	}
	return doc, nil
}

// DeleteDocumentHandler removes a cataloged document from the bucket and
// the catalog. The key is passed as ?key=.
func DeleteDocumentHandler(c echo.Context) error {
	a := app(c)
	key := c.QueryParam("key")
	entry, ok := a.Catalog.Get(key)
	if !ok {
		return respondError(c, fmt.Errorf("%w: %s", errDocumentMissing, key))
	}
	if a.S3 == nil {
		return respondError(c, fmt.Errorf("%w: object storage", errDisabled))
	}

	prefix := entry.Key
	if entry.Format == "csv" {
		prefix += "/"
	}
	if err := storage.DeleteFolder(c.Request().Context(), a.S3, prefix); err != nil {
		return respondError(c, err)
	}
	a.Catalog.Remove(entry.Key)

	logger.Info("[Server] Deleted graph document", "key", entry.Key)
	return c.JSON(http.StatusOK, messageResponse{Message: "Document deleted"})
}
