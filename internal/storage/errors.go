package storage

import "fmt"

// StorageError carries the failed operation and key so callers can decide
// whether to retry, degrade, or abort.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op, key string, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}
