package xdbm

// ChildrenCursor wraps an Index's raw (ParentIdAndRdn[ID], ID) cursor and
// filters it down to entries whose parentId matches a single target,
// translated directly from ChildrenCursor.java. The caller is expected to
// obtain the underlying cursor via Index.ChildrenCursorAt, which takes
// care of the greatest-lower-bound seek; this type only knows how to walk
// forward/backward from there and stop at the first non-matching key.
type ChildrenCursor[ID comparable] struct {
	cursor     Cursor[IndexEntry[ParentIdAndRdn[ID], ID]]
	parentId   ID
	prefetched IndexEntry[ID, ID]
	available  bool
	closed     bool
}

// NewChildrenCursor builds a one-level scope cursor over cursor, already
// positioned at the greatest-lower-bound of (parentId, ""), matching
// entries whose key's ParentId equals parentId.
func NewChildrenCursor[ID comparable](parentId ID, cursor Cursor[IndexEntry[ParentIdAndRdn[ID], ID]]) *ChildrenCursor[ID] {
	return &ChildrenCursor[ID]{parentId: parentId, cursor: cursor}
}

func (c *ChildrenCursor[ID]) checkNotClosed() error {
	if c.closed {
		return ErrClosed
	}
	return nil
}

// BeforeFirst marks the cursor unavailable and resets the underlying
// cursor with its own BeforeFirst; the next Next() call returns the first
// matching child, if any. This relies on the underlying cursor starting
// at this parent's children, as Index.ChildrenCursorAt's cursors do.
func (c *ChildrenCursor[ID]) BeforeFirst() error {
	if err := c.checkNotClosed(); err != nil {
		return err
	}
	if err := c.cursor.BeforeFirst(); err != nil {
		return err
	}
	c.available = false
	return nil
}

// AfterLast is unsupported: a one-level scope search is always driven
// forward from the parent's lower bound.
func (c *ChildrenCursor[ID]) AfterLast() error {
	return ErrUnsupported
}

// First is BeforeFirst followed by Next.
func (c *ChildrenCursor[ID]) First() (bool, error) {
	if err := c.BeforeFirst(); err != nil {
		return false, err
	}
	return c.Next()
}

// Last is unsupported, for the same reason as AfterLast.
func (c *ChildrenCursor[ID]) Last() (bool, error) {
	return false, ErrUnsupported
}

// Next advances the underlying cursor. The wrapper has no current element
// once the underlying cursor is exhausted or yields a key whose ParentId
// no longer matches the target — that first mismatch terminates forward
// iteration permanently, until a BeforeFirst/First reset.
func (c *ChildrenCursor[ID]) Next() (bool, error) {
	if err := c.checkNotClosed(); err != nil {
		return false, err
	}

	hasNext, err := c.cursor.Next()
	if err != nil {
		return false, err
	}
	if !hasNext {
		c.available = false
		return false, nil
	}

	entry, err := c.cursor.Get()
	if err != nil {
		return false, err
	}
	if entry.Key.ParentId != c.parentId {
		c.available = false
		return false, nil
	}

	c.prefetched = IndexEntry[ID, ID]{Key: c.parentId, Id: entry.Id}
	c.available = true
	return true, nil
}

// Previous is Next's symmetric backward step.
func (c *ChildrenCursor[ID]) Previous() (bool, error) {
	if err := c.checkNotClosed(); err != nil {
		return false, err
	}

	hasPrev, err := c.cursor.Previous()
	if err != nil {
		return false, err
	}
	if !hasPrev {
		c.available = false
		return false, nil
	}

	entry, err := c.cursor.Get()
	if err != nil {
		return false, err
	}
	if entry.Key.ParentId != c.parentId {
		c.available = false
		return false, nil
	}

	c.prefetched = IndexEntry[ID, ID]{Key: c.parentId, Id: entry.Id}
	c.available = true
	return true, nil
}

// Get returns the cached current element. The caller must have observed
// a true return from Next/Previous since the last reset.
func (c *ChildrenCursor[ID]) Get() (IndexEntry[ID, ID], error) {
	if err := c.checkNotClosed(); err != nil {
		return IndexEntry[ID, ID]{}, err
	}
	if !c.available {
		return IndexEntry[ID, ID]{}, ErrNotAvailable
	}
	return c.prefetched, nil
}

// Close releases the underlying cursor. Idempotent.
func (c *ChildrenCursor[ID]) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.cursor.Close()
}

// CloseWithCause closes the underlying cursor, recording why the closure
// is abnormal.
func (c *ChildrenCursor[ID]) CloseWithCause(cause error) error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.cursor.CloseWithCause(cause)
}
