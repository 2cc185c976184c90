package io

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// IOGraphFileLoader loads graph files directly from the local filesystem
// with caching. Relative paths are resolved against the base directory.
type IOGraphFileLoader struct {
	base string

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewIOGraphFileLoader creates a new filesystem-based file loader. An empty
// base resolves paths against the working directory.
func NewIOGraphFileLoader(base string) *IOGraphFileLoader {
	return &IOGraphFileLoader{
		base:  base,
		cache: make(map[string][]byte),
	}
}

func (l *IOGraphFileLoader) resolve(p string) string {
	if l.base == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(l.base, p)
}

// GetFileContent reads the file from the filesystem. Results are cached per
// file id and path; concurrent reads of the same file share one syscall.
func (l *IOGraphFileLoader) GetFileContent(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	key := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := os.ReadFile(l.resolve(file.FilePath))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file.FilePath, err)
		}

		l.cacheMu.Lock()
		l.cache[key] = content
		l.cacheMu.Unlock()

		return content, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// Forget drops the cached content of a file so the next read hits the disk.
func (l *IOGraphFileLoader) Forget(file loader.GraphFile) {
	l.cacheMu.Lock()
	delete(l.cache, loader.CacheKey(file))
	l.cacheMu.Unlock()
}
