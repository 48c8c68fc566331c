// Package store persists generated mind maps.
//
// Records are immutable: they are created once, after a successful
// generation, and never updated.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/mindmapd/internal/outline"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("mind map not found")

// Record is one stored mind map.
type Record struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Content   string             `json:"content"`
	Structure *outline.Structure `json:"structure"`
	Settings  outline.Settings   `json:"settings"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Summary is the listing view of a record.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the persistence contract for mind maps.
type Store interface {
	// Create inserts r. The ID must be set and unused.
	Create(ctx context.Context, r *Record) error

	// Get returns the record with id or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit summaries, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Summary, error)

	Close() error
}

// Provider names accepted by New.
const (
	ProviderSQLite = "sqlite"
	ProviderMemory = "memory"
)

// Config selects the backing store.
type Config struct {
	Provider string `koanf:"provider"`
	Path     string `koanf:"path"`
}

// New opens the store named by cfg.Provider.
func New(cfg Config) (Store, error) {
	switch cfg.Provider {
	case "", ProviderSQLite:
		return NewSQLite(cfg.Path)
	case ProviderMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

func (r *Record) summary() Summary {
	return Summary{ID: r.ID, Title: r.Title, CreatedAt: r.CreatedAt}
}

func (r *Record) check() error {
	if r == nil {
		return errors.New("record is nil")
	}
	if r.ID == "" {
		return errors.New("record id is required")
	}
	if r.Structure == nil {
		return errors.New("record structure is required")
	}
	return nil
}
