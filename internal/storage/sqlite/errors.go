// ABOUTME: Sentinel errors for the storage layer
// ABOUTME: Matched by callers with errors.Is to decide retry vs surface
package sqlite

import "errors"

var (
	// ErrNotFound means a referenced entity does not exist. Returned for
	// writes against dangling references; plain reads of a missing id
	// return (nil, nil) instead.
	ErrNotFound = errors.New("not found")

	// ErrConstraint means committing would break a referential invariant.
	ErrConstraint = errors.New("constraint violation")

	// ErrMigration is fatal: the database could not be brought to the
	// expected schema version and must not be used.
	ErrMigration = errors.New("migration failure")

	// ErrSerialization means a payload contained non-serializable data and
	// was rejected before any write.
	ErrSerialization = errors.New("serialization failure")

	// ErrTxAborted means the underlying engine rolled the transaction back.
	ErrTxAborted = errors.New("transaction aborted")
)
