package library

import "errors"

var (
	// ErrNotFound indicates the requested entry or run does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey indicates another entry already uses the citation key.
	ErrDuplicateKey = errors.New("citation key already exists")
	// ErrLocked indicates another process holds the library writer lock.
	ErrLocked = errors.New("library is locked by another process")
	// ErrRevertConflict indicates an entry changed after the run being reverted.
	ErrRevertConflict = errors.New("entry modified since run")
	// ErrAlreadyReverted indicates the run was reverted before.
	ErrAlreadyReverted = errors.New("run already reverted")
	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)
