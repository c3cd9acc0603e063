// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("record not found")

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Data Ports
// -----------------------------------------------------------------------------

// RecordStore persists the records panels edit. It backs the default
// load/save/delete callbacks for panels that do not supply their own.
type RecordStore interface {
	// Get retrieves a record's field values.
	Get(ctx context.Context, panel, id string) (map[string]any, error)

	// Save stores a record's sanitized field values.
	Save(ctx context.Context, panel, id string, data map[string]any) error

	// Delete removes a record.
	Delete(ctx context.Context, panel, id string) error
}

// Directory answers searches for the derivative field kinds (post,
// taxonomy, user): term lookups while the user types and label hydration
// for previously saved IDs.
type Directory interface {
	// Search returns id→label for records of kind/target matching term.
	Search(ctx context.Context, kind, target, term string) (map[string]string, error)

	// Labels returns id→label for the given ids of kind/target. Unknown
	// ids are omitted from the result.
	Labels(ctx context.Context, kind, target string, ids []string) (map[string]string, error)
}
