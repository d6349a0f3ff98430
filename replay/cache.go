// Package replay implements the AP-REQ authenticator replay cache RFC
// 4120 section 3.3.3.2 requires the TGS to consult before trusting an
// authenticator's timestamp: a repeated (client, ctime, cusec) tuple
// within the KDC's clock-skew window is a replay and must fail with
// KRB_AP_ERR_REPEAT. The TGS checks it in Stage 6, after the
// authenticator is decrypted and its clock skew checked, and before the
// Stage 7 body checksum.
package replay

import (
	"fmt"
	"strings"
	"sync"

	"github.com/chemikadze/dirkdc/datamodel"
)

// Key identifies a single authenticator for replay-detection purposes.
// RFC 4120 doesn't mandate cusec granularity, but the wire format
// carries it and two authenticators differing only in cusec are
// legitimately distinct.
type Key struct {
	CName datamodel.PrincipalName
	CRealm datamodel.Realm
	CTime  datamodel.KerberosTime
	CUSec  int32
}

func KeyOf(cname datamodel.PrincipalName, crealm datamodel.Realm, ctime datamodel.KerberosTime, cusec int32) Key {
	return Key{CName: cname, CRealm: crealm, CTime: ctime, CUSec: cusec}
}

// mapKey encodes Key into a comparable string, since PrincipalName's
// NameString slice makes Key itself non-comparable and thus unusable
// directly as a Go map key.
func (k Key) mapKey() string {
	return fmt.Sprintf("%d|%s|%s|%v|%d", k.CName.NameType, strings.Join(k.CName.NameString, "\x00"), k.CRealm, k.CTime, k.CUSec)
}

// Cache is the collaborator the TGS pipeline's Stage 6 consults. Check
// reports whether key has been seen within the retention window and, if
// not, records it so a subsequent identical key is rejected.
type Cache interface {
	// CheckAndInsert returns true if key is a replay (already present
	// and still within the retention window) and false if key is new,
	// in which case it is recorded for future lookups.
	CheckAndInsert(key Key) bool
}

// entry pairs a recorded key with the time it was seen, so sweep can
// drop entries older than the retention window without a separate
// expiry index.
type entry struct {
	seenAt datamodel.KerberosTime
}

// memCache is a sync.Mutex-guarded map-backed Cache with lazy expiry: a
// sweep runs at the start of every CheckAndInsert call, discarding
// entries older than retention. This is the same "insert, then
// periodically sweep anything older than the policy window" discipline
// as the teacher's authsrv/hotlist.go, adapted from that file's
// interval-merge semantics (appropriate for *ranges* of revoked time)
// down to point semantics (appropriate for individual authenticator
// timestamps) — a plain map entry rather than a merged interval list.
type memCache struct {
	mu        sync.Mutex
	seen      map[string]entry
	retention int64 // milliseconds
}

// NewCache returns an in-memory Cache retaining entries for
// retentionMillis, which callers should set to the configured
// AllowableClockSkew: any authenticator older than that is already
// rejected by Stage 6's clock-skew check, so nothing useful survives
// longer than the skew window anyway.
func NewCache(retentionMillis int64) Cache {
	return &memCache{
		seen:      make(map[string]entry),
		retention: retentionMillis,
	}
}

func (c *memCache) CheckAndInsert(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := datamodel.Now()
	c.sweep(now)

	mk := key.mapKey()
	if _, replay := c.seen[mk]; replay {
		return true
	}
	c.seen[mk] = entry{seenAt: now}
	return false
}

func (c *memCache) sweep(now datamodel.KerberosTime) {
	cutoff := now.Minus(c.retention)
	for k, e := range c.seen {
		if e.seenAt.Before(cutoff) {
			delete(c.seen, k)
		}
	}
}
