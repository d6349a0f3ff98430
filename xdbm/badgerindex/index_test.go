package badgerindex

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/chemikadze/dirkdc/xdbm"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("failed to open in-memory badger db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestIndexChildrenCursorAtYieldsOnlyDirectChildren(t *testing.T) {
	db := openTestDB(t)
	idx := New(db)

	parent := uuid.New()
	other := uuid.New()
	childA, childB, childC := uuid.New(), uuid.New(), uuid.New()
	unrelated := uuid.New()

	for rdn, id := range map[string]uuid.UUID{"ou=a": childA, "ou=b": childB, "ou=c": childC} {
		if err := idx.Put(parent, rdn, id); err != nil {
			t.Fatal(err)
		}
	}
	if err := idx.Put(other, "ou=x", unrelated); err != nil {
		t.Fatal(err)
	}

	cursor, err := idx.ChildrenCursorAt(parent)
	if err != nil {
		t.Fatal(err)
	}
	defer cursor.Close()

	cc := xdbm.NewChildrenCursor(parent, cursor)

	seen := map[string]uuid.UUID{}
	for {
		ok, err := cc.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		entry, err := cc.Get()
		if err != nil {
			t.Fatal(err)
		}
		seen[entry.Key.Rdn] = entry.Id
	}

	if len(seen) != 3 {
		t.Fatalf("expected 3 children, got %d: %v", len(seen), seen)
	}
	if seen["ou=a"] != childA || seen["ou=b"] != childB || seen["ou=c"] != childC {
		t.Fatalf("unexpected child mapping: %v", seen)
	}
}

func TestIndexChildrenCursorAtEmptyParent(t *testing.T) {
	db := openTestDB(t)
	idx := New(db)

	cursor, err := idx.ChildrenCursorAt(uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	defer cursor.Close()

	ok, err := cursor.Next()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected no children for a parent with no entries")
	}
}

func TestIndexDeleteRemovesChild(t *testing.T) {
	db := openTestDB(t)
	idx := New(db)

	parent := uuid.New()
	child := uuid.New()
	if err := idx.Put(parent, "ou=a", child); err != nil {
		t.Fatal(err)
	}
	if err := idx.Delete(parent, "ou=a"); err != nil {
		t.Fatal(err)
	}

	cursor, err := idx.ChildrenCursorAt(parent)
	if err != nil {
		t.Fatal(err)
	}
	defer cursor.Close()

	ok, err := cursor.Next()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected the deleted child to no longer appear")
	}
}

func TestIndexCursorSupportsPrevious(t *testing.T) {
	db := openTestDB(t)
	idx := New(db)

	parent := uuid.New()
	childA, childB := uuid.New(), uuid.New()
	if err := idx.Put(parent, "ou=a", childA); err != nil {
		t.Fatal(err)
	}
	if err := idx.Put(parent, "ou=b", childB); err != nil {
		t.Fatal(err)
	}

	cursor, err := idx.ChildrenCursorAt(parent)
	if err != nil {
		t.Fatal(err)
	}
	defer cursor.Close()

	cc := xdbm.NewChildrenCursor(parent, cursor)
	if ok, err := cc.Next(); err != nil || !ok {
		t.Fatalf("expected first Next to succeed, ok=%v err=%v", ok, err)
	}
	if ok, err := cc.Next(); err != nil || !ok {
		t.Fatalf("expected second Next to succeed, ok=%v err=%v", ok, err)
	}
	if ok, err := cc.Next(); err != nil || ok {
		t.Fatalf("expected exhaustion after two children, ok=%v err=%v", ok, err)
	}

	ok, err := cc.Previous()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected Previous to step back onto the last child")
	}
}
