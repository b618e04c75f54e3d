package keyring

import "fmt"

// PersistenceErrorKind classifies key ring persistence failures.
type PersistenceErrorKind string

const (
	// PersistenceRead indicates the backing file could not be read
	PersistenceRead PersistenceErrorKind = "read-failure"
	// PersistenceCorrupt indicates the file exists but cannot be decoded
	// into a key ring (including a wrong password)
	PersistenceCorrupt PersistenceErrorKind = "corrupt-data"
	// PersistenceWrite indicates the file could not be written
	PersistenceWrite PersistenceErrorKind = "write-failure"
)

// PersistenceError is returned for key ring load/save failures. These
// indicate corrupt local state or a configuration error, never a
// transient condition; callers must not retry.
type PersistenceError struct {
	Kind PersistenceErrorKind
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("keyring %s (%s): %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("keyring %s (%s)", e.Kind, e.Path)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
