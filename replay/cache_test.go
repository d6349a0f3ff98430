package replay

import (
	"testing"

	"github.com/chemikadze/dirkdc/datamodel"
)

func testKey() Key {
	return KeyOf(
		datamodel.PrincipalNameFromString("alice"),
		datamodel.Realm("EXAMPLE.COM"),
		datamodel.Now(),
		0,
	)
}

func TestCache_FirstSeenIsNotReplay(t *testing.T) {
	c := NewCache(5 * 60 * 1000)
	if c.CheckAndInsert(testKey()) {
		t.Error("first occurrence should not be flagged as a replay")
	}
}

func TestCache_RepeatedKeyIsReplay(t *testing.T) {
	c := NewCache(5 * 60 * 1000)
	k := testKey()
	c.CheckAndInsert(k)
	if !c.CheckAndInsert(k) {
		t.Error("repeated key should be flagged as a replay")
	}
}

func TestCache_ExpiredEntryIsForgotten(t *testing.T) {
	c := NewCache(5 * 60 * 1000).(*memCache)
	k := testKey()
	c.seen[k.mapKey()] = entry{seenAt: datamodel.Now().Minus(10 * 60 * 1000)}
	if c.CheckAndInsert(k) {
		t.Error("entry older than retention window should have been swept, not treated as a replay")
	}
}

func TestCache_DistinctCUSecNotConflated(t *testing.T) {
	c := NewCache(5 * 60 * 1000)
	now := datamodel.Now()
	cname := datamodel.PrincipalNameFromString("alice")
	realm := datamodel.Realm("EXAMPLE.COM")
	k1 := KeyOf(cname, realm, now, 0)
	k2 := KeyOf(cname, realm, now, 1)
	c.CheckAndInsert(k1)
	if c.CheckAndInsert(k2) {
		t.Error("distinct cusec should not collide with a previously seen key")
	}
}
