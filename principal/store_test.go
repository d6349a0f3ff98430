package principal

import (
	"testing"

	"github.com/chemikadze/dirkdc/datamodel"
)

func TestMemStore_PutAndLookup(t *testing.T) {
	store := NewMemStore()
	entry := datamodel.PrincipalStoreEntry{
		Principal:  datamodel.PrincipalNameFromString("alice"),
		RealmName:  datamodel.Realm("EXAMPLE.COM"),
		CommonName: "Alice Example",
		KeyMap: map[int32]datamodel.EncryptionKey{
			datamodel.EtypeAes256CtsHmacSha1: {EType: datamodel.EtypeAes256CtsHmacSha1, KeyValue: []byte("key-material")},
		},
	}
	if err := store.Put(entry); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := store.Lookup(datamodel.PrincipalNameFromString("alice"))
	if !ok {
		t.Fatal("expected to find alice")
	}
	if got.CommonName != "Alice Example" {
		t.Errorf("got CommonName %q, want %q", got.CommonName, "Alice Example")
	}
	key, ok := got.Key(datamodel.EtypeAes256CtsHmacSha1)
	if !ok {
		t.Fatal("expected aes256 key present")
	}
	if string(key.KeyValue) != "key-material" {
		t.Errorf("got key %q, want %q", key.KeyValue, "key-material")
	}
}

func TestMemStore_LookupUnknown(t *testing.T) {
	store := NewMemStore()
	_, ok := store.Lookup(datamodel.PrincipalNameFromString("nobody"))
	if ok {
		t.Error("expected lookup of unknown principal to fail")
	}
}
