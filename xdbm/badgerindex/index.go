// Package badgerindex implements xdbm.Index[uuid.UUID] on top of
// github.com/dgraph-io/badger/v4, keyed by (parentID, rdn) -> entryID.
// Key layout and the prefix-scoped View/iterator pattern are grounded on
// marmos91-dittofs's pkg/store/metadata/badger/directory.go (keyChildPrefix,
// keyChild, and the db.View/txn.NewIterator/it.Rewind/it.Valid/it.Next walk
// in its ReadDirectory).
package badgerindex

import (
	"bytes"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/chemikadze/dirkdc/xdbm"
)

var childPrefix = []byte("c:")

func keyChildPrefix(parentId uuid.UUID) []byte {
	key := make([]byte, 0, len(childPrefix)+len(parentId)+1)
	key = append(key, childPrefix...)
	key = append(key, parentId[:]...)
	key = append(key, ':')
	return key
}

func keyChild(parentId uuid.UUID, rdn string) []byte {
	return append(keyChildPrefix(parentId), []byte(rdn)...)
}

func rdnFromKey(key []byte, parentId uuid.UUID) string {
	return string(key[len(keyChildPrefix(parentId)):])
}

// Index is a children index over a single badger.DB. It is safe for
// concurrent use, since every operation runs inside its own badger
// transaction.
type Index struct {
	db *badger.DB
}

func New(db *badger.DB) *Index {
	return &Index{db: db}
}

// Put records that entryId is parentId's child under rdn. Overwrites any
// existing mapping for the same (parentId, rdn) pair.
func (idx *Index) Put(parentId uuid.UUID, rdn string, entryId uuid.UUID) error {
	return idx.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyChild(parentId, rdn), entryId[:])
	})
}

// Delete removes the (parentId, rdn) mapping, if present.
func (idx *Index) Delete(parentId uuid.UUID, rdn string) error {
	return idx.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(keyChild(parentId, rdn))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

// ChildrenCursorAt snapshots parentId's children as of the call, in key
// order, and returns a Cursor over that snapshot. Badger's read
// transactions give a consistent point-in-time view, so this is
// equivalent in spirit to seeking a live cursor to the greatest-lower-
// bound of (parentId, "") and only reading forward from there; taking a
// snapshot instead is what lets this Cursor also walk backward, which a
// single forward-only badger.Iterator cannot do without reopening.
func (idx *Index) ChildrenCursorAt(parentId uuid.UUID) (xdbm.Cursor[xdbm.IndexEntry[xdbm.ParentIdAndRdn[uuid.UUID], uuid.UUID]], error) {
	prefix := keyChildPrefix(parentId)
	var entries []xdbm.IndexEntry[xdbm.ParentIdAndRdn[uuid.UUID], uuid.UUID]

	err := idx.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.Key()
			// Defensive: ValidForPrefix already guarantees this, but a
			// short key would panic rdnFromKey's slice below.
			if !bytes.HasPrefix(key, prefix) {
				continue
			}
			rdn := rdnFromKey(key, parentId)

			var childId uuid.UUID
			err := item.Value(func(val []byte) error {
				parsed, err := uuid.FromBytes(val)
				if err != nil {
					return fmt.Errorf("badgerindex: corrupt child id for key %q: %w", key, err)
				}
				childId = parsed
				return nil
			})
			if err != nil {
				return err
			}

			entries = append(entries, xdbm.IndexEntry[xdbm.ParentIdAndRdn[uuid.UUID], uuid.UUID]{
				Key: xdbm.ParentIdAndRdn[uuid.UUID]{ParentId: parentId, Rdn: rdn},
				Id:  childId,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &snapshotCursor{items: entries, pos: -1}, nil
}
