// Package registry implements the two-tier schema object registry
// spec.md §4.3 describes as representative of the several near-
// identical registries (matching rules, attribute types, object
// classes, ...) a directory server's schema subsystem keeps. Grounded
// on GlobalMatchingRuleRegistry.java: a mutable overlay tier consulted
// before a process-wide immutable bootstrap tier, both keyed by OID,
// with every lookup first normalized through an OidRegistry and every
// Register, Lookup and failed GetSchemaName reported to a replaceable
// Monitor.
package registry

import (
	"errors"
	"fmt"
	"sync"
)

// ErrAlreadyRegistered is returned by Register when obj's OID already
// exists in either tier.
var ErrAlreadyRegistered = errors.New("registry: already registered")

// ErrNotRegistered is returned by Lookup/GetSchemaName when id
// normalizes to an OID present in neither tier.
var ErrNotRegistered = errors.New("registry: not registered")

// SchemaObject is the minimal shape a registered value must have: an
// OID identifying it, and zero or more human-readable aliases an
// OidRegistry can normalize back to that OID.
type SchemaObject interface {
	Oid() string
	Names() []string
}

// Monitor is notified of every Register and Lookup outcome and of every
// failed GetSchemaName; LoadBootstrap and Has do not notify it. Mirrors MatchingRuleRegistryMonitor's registered/registerFailed/
// lookedUp/lookupFailed callback points; a single interface rather than
// the Java original's dynamic-proxy-friendly adapter class, per
// spec.md §9's "avoid source-style dynamic proxy wrappers" note.
type Monitor interface {
	Registered(schema string, obj SchemaObject)
	RegisterFailed(schema string, obj SchemaObject, err error)
	LookedUp(obj SchemaObject)
	LookupFailed(id string, err error)
}

// NoopMonitor is the default Monitor: every callback is a no-op.
type NoopMonitor struct{}

func (NoopMonitor) Registered(string, SchemaObject)            {}
func (NoopMonitor) RegisterFailed(string, SchemaObject, error) {}
func (NoopMonitor) LookedUp(SchemaObject)                      {}
func (NoopMonitor) LookupFailed(string, error)                 {}

// Registry is a two-tier, OID-keyed store of schema objects of type T.
// The bootstrap tier is expected to be loaded once at startup via
// LoadBootstrap before any concurrent traffic begins, then treated as
// read-only; the overlay tier is mutated by Register under r.mu,
// serialized against concurrent Lookup/List per spec.md §5's
// single-writer/many-reader discipline.
type Registry[T SchemaObject] struct {
	mu      sync.RWMutex
	oids    *OidRegistry
	monitor Monitor

	overlay       map[string]T
	overlaySchema map[string]string

	bootstrap       map[string]T
	bootstrapSchema map[string]string
}

// New returns an empty Registry backed by oids for name normalization,
// with a NoopMonitor until SetMonitor is called.
func New[T SchemaObject](oids *OidRegistry) *Registry[T] {
	return &Registry[T]{
		oids:            oids,
		monitor:         NoopMonitor{},
		overlay:         make(map[string]T),
		overlaySchema:   make(map[string]string),
		bootstrap:       make(map[string]T),
		bootstrapSchema: make(map[string]string),
	}
}

// SetMonitor replaces the registry's Monitor.
func (r *Registry[T]) SetMonitor(m Monitor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.monitor = m
}

// LoadBootstrap seeds the immutable bootstrap tier with obj under
// schema. Intended to run only during startup, before Register/Lookup
// traffic begins; it does not check the overlay for collisions because
// the overlay is expected to still be empty at that point.
func (r *Registry[T]) LoadBootstrap(schema string, obj T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	oid := obj.Oid()
	if err := r.oids.Register(oid, obj.Names()...); err != nil {
		return err
	}
	r.bootstrap[oid] = obj
	r.bootstrapSchema[oid] = schema
	return nil
}

// Register inserts obj into the overlay tier under schema, failing if
// obj.Oid() already exists in either tier.
func (r *Registry[T]) Register(schema string, obj T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	oid := obj.Oid()
	if _, exists := r.overlay[oid]; exists {
		return r.registerFailed(schema, obj, oid)
	}
	if _, exists := r.bootstrap[oid]; exists {
		return r.registerFailed(schema, obj, oid)
	}

	if err := r.oids.Register(oid, obj.Names()...); err != nil {
		r.monitor.RegisterFailed(schema, obj, err)
		return err
	}

	r.overlay[oid] = obj
	r.overlaySchema[oid] = schema
	r.monitor.Registered(schema, obj)
	return nil
}

func (r *Registry[T]) registerFailed(schema string, obj T, oid string) error {
	err := fmt.Errorf("%w: OID %q", ErrAlreadyRegistered, oid)
	r.monitor.RegisterFailed(schema, obj, err)
	return err
}

// Lookup normalizes id through the OidRegistry, then returns the
// overlay entry if present, else the bootstrap entry, else
// ErrNotRegistered.
func (r *Registry[T]) Lookup(id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	oid := r.oids.GetOid(id)
	if obj, ok := r.overlay[oid]; ok {
		r.monitor.LookedUp(obj)
		return obj, nil
	}
	if obj, ok := r.bootstrap[oid]; ok {
		r.monitor.LookedUp(obj)
		return obj, nil
	}

	var zero T
	err := fmt.Errorf("%w: OID %q", ErrNotRegistered, oid)
	r.monitor.LookupFailed(id, err)
	return zero, err
}

// Has is Lookup without the failure notification: a plain boolean
// membership test.
func (r *Registry[T]) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	oid := r.oids.GetOid(id)
	if _, ok := r.overlay[oid]; ok {
		return true
	}
	_, ok := r.bootstrap[oid]
	return ok
}

// GetSchemaName normalizes id, then returns the schema name it was
// registered (or bootstrapped) under.
func (r *Registry[T]) GetSchemaName(id string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	oid := r.oids.GetOid(id)
	if schema, ok := r.overlaySchema[oid]; ok {
		return schema, nil
	}
	if schema, ok := r.bootstrapSchema[oid]; ok {
		return schema, nil
	}
	err := fmt.Errorf("%w: OID %q", ErrNotRegistered, oid)
	r.monitor.LookupFailed(id, err)
	return "", err
}

// List returns the union of overlay and bootstrap contents, each OID
// appearing exactly once: Register's collision check guarantees no OID
// is ever present in both tiers, so no de-duplication is needed beyond
// that invariant.
func (r *Registry[T]) List() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]T, 0, len(r.overlay)+len(r.bootstrap))
	for _, obj := range r.overlay {
		result = append(result, obj)
	}
	for _, obj := range r.bootstrap {
		result = append(result, obj)
	}
	return result
}
