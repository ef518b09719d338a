package history

import "fmt"

// StorageError represents an error from a storage backend.
type StorageError struct {
	Backend string // Storage backend ("sqlite", "sqlite3", "memory")
	Op      string // Operation that failed ("open", "save", "list", ...)
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("history storage error [backend=%s, operation=%s]: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, op string, err error) *StorageError {
	return &StorageError{
		Backend: backend,
		Op:      op,
		Err:     err,
	}
}
