package registry

import (
	"fmt"
	"sync"
)

// OidRegistry maps user-visible aliases (schema object names) to their
// canonical OID, split out as its own collaborator the way the Java
// original's GlobalMatchingRuleRegistry delegates name normalization to
// a separate OidRegistry rather than inlining a name table.
type OidRegistry struct {
	mu        sync.RWMutex
	byAlias   map[string]string
	oidExists map[string]bool
}

func NewOidRegistry() *OidRegistry {
	return &OidRegistry{
		byAlias:   make(map[string]string),
		oidExists: make(map[string]bool),
	}
}

// Register records oid as a known canonical OID and, for each alias,
// that it normalizes to oid. An alias already bound to a different OID
// is an error; re-registering the same (alias, oid) pair is not.
func (r *OidRegistry) Register(oid string, aliases ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, alias := range aliases {
		if existing, ok := r.byAlias[alias]; ok && existing != oid {
			return fmt.Errorf("registry: alias %q already maps to OID %q, cannot rebind to %q", alias, existing, oid)
		}
	}

	r.oidExists[oid] = true
	r.byAlias[oid] = oid
	for _, alias := range aliases {
		r.byAlias[alias] = oid
	}
	return nil
}

// GetOid normalizes id: if id is itself a known OID, or a registered
// alias, returns the canonical OID. Otherwise returns id unchanged — the
// caller (registry.Registry) is responsible for treating an
// unrecognized OID as a lookup miss, matching the Java original's
// behavior of passing unresolvable ids through rather than failing
// inside OidRegistry.getOid itself.
func (r *OidRegistry) GetOid(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if oid, ok := r.byAlias[id]; ok {
		return oid
	}
	return id
}

// HasOid reports whether id (as an OID or a registered alias) is known.
func (r *OidRegistry) HasOid(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	oid, ok := r.byAlias[id]
	if !ok {
		oid = id
	}
	return r.oidExists[oid]
}
