package diag

import "fmt"

// StorageError reports a failed cache read or write. It is fatal for the file
// being compiled: callers neither retry nor fall back to recompiling.
type StorageError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Kind returns KindStorage.
func (e *StorageError) Kind() Kind { return KindStorage }
