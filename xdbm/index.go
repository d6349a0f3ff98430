// Package xdbm implements a one-level scope cursor over a hierarchical
// (parentId, rdn) -> entryId index, the shape a directory server uses to
// answer "list the immediate children of this entry" without a full
// subtree scan. Grounded directly on
// org.apache.directory.server.xdbm.search.cursor.ChildrenCursor and its
// sibling xdbm types (ParentIdAndRdn, IndexEntry, Cursor) from
// original_source/xdbm-partition, translated into idiomatic Go: checked
// exceptions become (bool, error)/(T, error) returns, the Java interface
// hierarchy collapses into one small Cursor interface, and ID is a Go
// type parameter rather than `ID extends Comparable<ID>`.
package xdbm

import "errors"

// ErrUnsupported is returned by cursor operations the one-level scope
// index's backward-only/forward-only discipline never needs — Last and
// AfterLast, mirroring ChildrenCursor.java's UnsupportedOperationException.
var ErrUnsupported = errors.New("xdbm: operation unsupported by this cursor")

// ErrNotAvailable is returned by Get when called before any Next/Previous
// has returned true since construction or the last BeforeFirst/First.
var ErrNotAvailable = errors.New("xdbm: no element available")

// ErrClosed is returned by any operation on a cursor that has already
// been closed.
var ErrClosed = errors.New("xdbm: cursor closed")

// ParentIdAndRdn is the composite index key a one-level scope search
// walks: the parent entry's ID paired with this entry's relative
// distinguished name, ordered so that all children of one parent sort
// contiguously.
type ParentIdAndRdn[ID comparable] struct {
	ParentId ID
	Rdn      string
}

// IndexEntry is one (key, id) tuple the underlying ordered index yields:
// K is the index's key type (ParentIdAndRdn[ID] for the children index,
// or just ID for the cursor ChildrenCursor exposes to its caller), V is
// always the entry ID the key maps to.
type IndexEntry[K any, V any] struct {
	Key K
	Id  V
}

// Cursor is the minimal bidirectional, resettable cursor contract this
// package needs, translated from org.apache.directory.shared.ldap.model.cursor.Cursor.
// A Cursor wraps a read transaction or iterator and must be Closed to
// release it.
type Cursor[T any] interface {
	// BeforeFirst resets the cursor so the next Next() call yields the
	// first element.
	BeforeFirst() error

	// AfterLast always returns ErrUnsupported: the cursors this package
	// builds only ever need to be primed forward from a known starting
	// bound, never seeded from the end.
	AfterLast() error

	// First is BeforeFirst followed by Next.
	First() (bool, error)

	// Last always returns ErrUnsupported, for the same reason as AfterLast.
	Last() (bool, error)

	// Next advances the cursor and reports whether a new current element
	// is available.
	Next() (bool, error)

	// Previous is the symmetric backward step.
	Previous() (bool, error)

	// Get returns the current element. Returns ErrNotAvailable if no
	// Next/Previous call since the last reset returned true.
	Get() (T, error)

	// Close releases the cursor's underlying resources. Idempotent.
	Close() error

	// CloseWithCause is Close, but records why the cursor is being
	// closed abnormally (e.g. a caller aborting a partial scan), mirroring
	// Cursor.close(Exception cause) in the original.
	CloseWithCause(cause error) error
}

// Index is the ordered (ParentIdAndRdn[ID] -> ID) store a one-level scope
// search consults. ChildrenCursorAt is the only entry point: callers
// never walk the underlying index cursor directly, since the greatest-
// lower-bound seek to (parentId, "") is the index's responsibility, not
// ChildrenCursor's.
type Index[ID comparable] interface {
	// ChildrenCursorAt returns a Cursor already positioned at the
	// greatest-lower-bound of (parentId, ""), ready to be wrapped by
	// NewChildrenCursor.
	ChildrenCursorAt(parentId ID) (Cursor[IndexEntry[ParentIdAndRdn[ID], ID]], error)
}
