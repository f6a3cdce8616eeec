// Package storage defines the blob storage abstraction used by the file
// service. Concrete backends live in subpackages (see storage/localfs).
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when name has no backing blob. Delete
// reports a missing name as (false, nil) instead.
var ErrNotFound = errors.New("storage: not found")

// Storage is the abstract blob CRUD surface the file service stores and
// retrieves owned files through. Implementations must sanitize name to a
// flat identifier before mapping it to a backing object: no implementation
// may allow a caller to escape its storage root via path components in
// name.
type Storage interface {
	// Initialize prepares the backend for use (e.g. creating a root
	// directory). Called once, before Save/Get/Delete/Exists/List.
	Initialize(ctx context.Context) error

	// Save stores contents under name, returning the backend-local path
	// the blob was written to.
	Save(ctx context.Context, name string, contents []byte) (path string, err error)

	// Get returns the contents stored under name, or ErrNotFound if
	// there is none.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes the blob stored under name. It reports whether a
	// blob was actually present and removed.
	Delete(ctx context.Context, name string) (bool, error)

	// Exists reports whether a blob is stored under name.
	Exists(ctx context.Context, name string) (bool, error)

	// List returns the names of every blob currently stored.
	List(ctx context.Context) ([]string, error)
}
