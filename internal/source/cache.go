package source

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pable/go-rushing-metrics/internal/model"
)

// Opener returns a reader over a table identifier. *Client implements it.
type Opener interface {
	Open(ctx context.Context, identifier string) (io.ReadCloser, error)
}

// Store persists loaded tables between runs. *storage.DB implements it.
type Store interface {
	LatestCarries(identifier string) ([]model.CarryRecord, bool, error)
	SaveCarries(identifier string, rows []model.CarryRecord) error
	LatestComparisons(identifier string) ([]model.ComparisonRecord, bool, error)
	SaveComparisons(identifier string, rows []model.ComparisonRecord) error
}

// Loader fetches and decodes tables without caching.
type Loader struct {
	open Opener
}

// NewLoader returns a Loader reading through open.
func NewLoader(open Opener) *Loader {
	return &Loader{open: open}
}

// LoadCarries fetches and decodes the carry table at identifier.
func (l *Loader) LoadCarries(ctx context.Context, identifier string) ([]model.CarryRecord, error) {
	rc, err := l.open.Open(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("load carries: %w", err)
	}
	defer rc.Close()
	rows, err := DecodeCarries(rc)
	if err != nil {
		return nil, fmt.Errorf("load carries from %s: %w", identifier, err)
	}
	return rows, nil
}

// LoadComparisons fetches and decodes the comparison table at identifier.
func (l *Loader) LoadComparisons(ctx context.Context, identifier string) ([]model.ComparisonRecord, error) {
	rc, err := l.open.Open(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("load comparisons: %w", err)
	}
	defer rc.Close()
	rows, err := DecodeComparisons(rc)
	if err != nil {
		return nil, fmt.Errorf("load comparisons from %s: %w", identifier, err)
	}
	return rows, nil
}

// Cache memoises tables per identifier. The first call for an identifier
// loads it (from the Store if one is set and holds a snapshot, otherwise
// from the source); later calls return the same rows. Returned slices are
// shared and must be treated as read-only.
type Cache struct {
	loader *Loader
	store  Store

	// Refresh skips stored snapshots on a cold cache and always fetches.
	Refresh bool

	mu          sync.Mutex
	carries     map[string][]model.CarryRecord
	comparisons map[string][]model.ComparisonRecord
}

// NewCache returns a Cache over loader. store may be nil.
func NewCache(loader *Loader, store Store) *Cache {
	return &Cache{
		loader:      loader,
		store:       store,
		carries:     make(map[string][]model.CarryRecord),
		comparisons: make(map[string][]model.ComparisonRecord),
	}
}

// Carries returns the carry table for identifier.
func (c *Cache) Carries(ctx context.Context, identifier string) ([]model.CarryRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rows, ok := c.carries[identifier]; ok {
		return rows, nil
	}
	if c.store != nil && !c.Refresh {
		rows, found, err := c.store.LatestCarries(identifier)
		if err != nil {
			return nil, fmt.Errorf("read stored carries: %w", err)
		}
		if found {
			c.carries[identifier] = rows
			return rows, nil
		}
	}
	rows, err := c.loader.LoadCarries(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if c.store != nil {
		if err := c.store.SaveCarries(identifier, rows); err != nil {
			return nil, fmt.Errorf("store carries: %w", err)
		}
	}
	c.carries[identifier] = rows
	return rows, nil
}

// Comparisons returns the comparison table for identifier.
func (c *Cache) Comparisons(ctx context.Context, identifier string) ([]model.ComparisonRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rows, ok := c.comparisons[identifier]; ok {
		return rows, nil
	}
	if c.store != nil && !c.Refresh {
		rows, found, err := c.store.LatestComparisons(identifier)
		if err != nil {
			return nil, fmt.Errorf("read stored comparisons: %w", err)
		}
		if found {
			c.comparisons[identifier] = rows
			return rows, nil
		}
	}
	rows, err := c.loader.LoadComparisons(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if c.store != nil {
		if err := c.store.SaveComparisons(identifier, rows); err != nil {
			return nil, fmt.Errorf("store comparisons: %w", err)
		}
	}
	c.comparisons[identifier] = rows
	return rows, nil
}
