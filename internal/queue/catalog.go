package queue

import (
	"slices"
	"sync"
	"time"
)

// CatalogEntry is a graph document that can be loaded from object storage.
type CatalogEntry struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Format string `json:"format"`
	// HasMetadata marks csv folders that also hold metadata.json.
	HasMetadata bool      `json:"has_metadata"`
	Announced   time.Time `json:"announced"`
}

// Catalog lists the graph documents announced on the queue or found in the
// bucket. It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]CatalogEntry
}

func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]CatalogEntry)}
}

// Add inserts or replaces the entry stored under entry.Key.
func (c *Catalog) Add(entry CatalogEntry) {
	if entry.Announced.IsZero() {
		entry.Announced = time.Now()
	}
	c.mu.Lock()
	c.entries[entry.Key] = entry
	c.mu.Unlock()
}

// Get returns the entry for key.
func (c *Catalog) Get(key string) (CatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Remove drops key and reports whether it was present.
func (c *Catalog) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// List returns all entries ordered by key.
func (c *Catalog) List() []CatalogEntry {
	c.mu.RLock()
	out := make([]CatalogEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		out = append(out, entry)
	}
	c.mu.RUnlock()

	slices.SortFunc(out, func(a, b CatalogEntry) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		}
		return 0
	})
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
