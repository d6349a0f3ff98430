// Package principal provides the PrincipalStore collaborator the TGS
// pipeline consults to resolve a principal name to its long-term keys,
// the external lookup spec.md §1 treats as a boundary the core never
// reaches past directly.
package principal

import (
	"sync"

	"github.com/chemikadze/dirkdc/datamodel"
)

// Store resolves a principal name to its stored entry. Lookup returns
// false if the principal is unknown, letting a stage translate that
// into KDC_ERR_S_PRINCIPAL_UNKNOWN or KDC_ERR_C_PRINCIPAL_UNKNOWN
// depending on which side of the exchange it was resolving.
type Store interface {
	Lookup(name datamodel.PrincipalName) (datamodel.PrincipalStoreEntry, bool)
}

// Writer is the mutating half of Store, split out so read paths (the
// TGS pipeline) can depend on the narrower Store interface while only
// the key-provisioning tooling (genkeys) needs Writer.
type Writer interface {
	Put(entry datamodel.PrincipalStoreEntry) error
}

// Lister enumerates every entry currently in a store, used by the
// keytab writer to persist a store's full contents back to disk.
type Lister interface {
	All() []datamodel.PrincipalStoreEntry
}

// memStore is the in-memory Store implementation, grounded on the
// teacher's database.KdcDatabase, with entries keyed by the principal's
// slash-joined name the same way the teacher's mockPrincipalDatabase
// keys by PrincipalName.String().
type memStore struct {
	mu       sync.RWMutex
	entries  map[string]datamodel.PrincipalStoreEntry
}

func NewMemStore() interface {
	Store
	Writer
	Lister
} {
	return &memStore{entries: make(map[string]datamodel.PrincipalStoreEntry)}
}

func (s *memStore) All() []datamodel.PrincipalStoreEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]datamodel.PrincipalStoreEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	return entries
}

func (s *memStore) Lookup(name datamodel.PrincipalName) (datamodel.PrincipalStoreEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[name.String()]
	return entry, ok
}

func (s *memStore) Put(entry datamodel.PrincipalStoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Principal.String()] = entry
	return nil
}
