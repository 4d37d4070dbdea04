// Package store persists completed assessment records
package store

import (
	"context"
	"fmt"

	"github.com/lixenwraith/composure/metrics"
)

// Store appends assessment records to durable storage
type Store interface {
	// Append adds one record after all previously stored ones
	Append(ctx context.Context, rec metrics.AssessmentRecord) error
	// Load returns every stored record in append order
	// Missing or unreadable storage yields an empty collection
	Load(ctx context.Context) ([]metrics.AssessmentRecord, error)
	Close() error
}

// Backend selects a Store implementation
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

// Open creates the store for backend at path
func Open(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONFile(path), nil
	case BackendSQLite:
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
