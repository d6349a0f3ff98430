package badgerindex

import (
	"github.com/google/uuid"

	"github.com/chemikadze/dirkdc/xdbm"
)

type childEntry = xdbm.IndexEntry[xdbm.ParentIdAndRdn[uuid.UUID], uuid.UUID]

// snapshotCursor implements xdbm.Cursor[childEntry] over a slice of
// entries already sorted in badger key order. Backward iteration falls
// out for free from indexing the slice, which a live badger.Iterator
// cannot offer without a second, reverse-ordered iterator.
type snapshotCursor struct {
	items  []childEntry
	pos    int
	closed bool
}

func (c *snapshotCursor) checkNotClosed() error {
	if c.closed {
		return xdbm.ErrClosed
	}
	return nil
}

func (c *snapshotCursor) BeforeFirst() error {
	if err := c.checkNotClosed(); err != nil {
		return err
	}
	c.pos = -1
	return nil
}

func (c *snapshotCursor) AfterLast() error {
	return xdbm.ErrUnsupported
}

func (c *snapshotCursor) First() (bool, error) {
	if err := c.BeforeFirst(); err != nil {
		return false, err
	}
	return c.Next()
}

func (c *snapshotCursor) Last() (bool, error) {
	return false, xdbm.ErrUnsupported
}

func (c *snapshotCursor) Next() (bool, error) {
	if err := c.checkNotClosed(); err != nil {
		return false, err
	}
	if c.pos+1 >= len(c.items) {
		c.pos = len(c.items)
		return false, nil
	}
	c.pos++
	return true, nil
}

func (c *snapshotCursor) Previous() (bool, error) {
	if err := c.checkNotClosed(); err != nil {
		return false, err
	}
	if c.pos-1 < 0 {
		c.pos = -1
		return false, nil
	}
	c.pos--
	return true, nil
}

func (c *snapshotCursor) Get() (childEntry, error) {
	if err := c.checkNotClosed(); err != nil {
		return childEntry{}, err
	}
	if c.pos < 0 || c.pos >= len(c.items) {
		return childEntry{}, xdbm.ErrNotAvailable
	}
	return c.items[c.pos], nil
}

func (c *snapshotCursor) Close() error {
	c.closed = true
	return nil
}

func (c *snapshotCursor) CloseWithCause(cause error) error {
	c.closed = true
	return nil
}
