package store

import "errors"

var (
	// ErrNotFound covers both "does not exist" and "exists but is not yours";
	// callers must not distinguish the two at the API boundary.
	ErrNotFound = errors.New("not found")

	// ErrConflict is a compare-and-swap miss: another writer touched the
	// document between read and write. Callers retry the whole operation.
	ErrConflict = errors.New("concurrent modification")
)
