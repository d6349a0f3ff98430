package tgs

import (
	"fmt"

	"github.com/chemikadze/dirkdc/datamodel"
)

// RevocationHotlist tracks intervals of ticket authtimes that have been
// explicitly invalidated, the interval-merging structure RFC 4120
// section 3.3.3.1 describes for revoking postdated tickets stolen before
// their starttime. Nothing in spec.md's Stage 1-10 rules requires it;
// Stage 6 consults it as an additional, spec-compatible check that never
// fires unless an operator calls RevokeTickets.
type RevocationHotlist interface {
	RevokeTickets(from, to datamodel.KerberosTime)
	IsRevoked(authTime datamodel.KerberosTime) bool
}

type revocation struct {
	from datamodel.KerberosTime
	to   datamodel.KerberosTime
}

func (r revocation) Intersects(other revocation) bool {
	return int64(r.from) <= int64(other.to) && int64(r.to) >= int64(other.from)
}

func (r revocation) Contains(point datamodel.KerberosTime) bool {
	return int64(r.from) <= int64(point) && int64(point) <= int64(r.to)
}

func (r revocation) ToLeftOf(other revocation) bool {
	return int64(r.to) < int64(other.from)
}

func (r revocation) Merge(other revocation) revocation {
	if !r.Intersects(other) {
		panic(fmt.Sprintf("cannot merge non-intersecting revocations %v and %v", r, other))
	}
	merged := revocation{from: r.from, to: r.to}
	if other.from < merged.from {
		merged.from = other.from
	}
	if other.to > merged.to {
		merged.to = other.to
	}
	return merged
}

// revocationHotlist is an in-memory RevocationHotlist, adapted from the
// teacher's authsrv/hotlist.go: the same sorted, merged interval list and
// the same "drop anything older than maxLifetime" cleanup discipline,
// retyped from that file's KerberosTime onto this module's millisecond/
// INFINITY model.
type revocationHotlist struct {
	revocations []revocation
	maxLifetime int64 // milliseconds
}

func NewRevocationHotlist(maxLifetime int64) RevocationHotlist {
	return &revocationHotlist{maxLifetime: maxLifetime}
}

func (r *revocationHotlist) RevokeTickets(from, to datamodel.KerberosTime) {
	if int64(from) > int64(to) {
		panic(fmt.Sprintf("revocation from %v after to %v", from, to))
	}
	inserted := revocation{from: from, to: to}

	switch {
	case len(r.revocations) == 0 || int64(r.revocations[len(r.revocations)-1].to) < int64(inserted.from):
		r.revocations = append(r.revocations, inserted)
	case int64(inserted.to) < int64(r.revocations[0].from):
		r.revocations = append([]revocation{inserted}, r.revocations...)
	default:
		r.insertAndMerge(inserted)
	}
	r.cleanup()
}

func (r *revocationHotlist) insertAndMerge(inserted revocation) {
	for i, curr := range r.revocations {
		if inserted.Intersects(curr) {
			merged := inserted.Merge(curr)
			r.revocations[i] = merged
			for i < len(r.revocations)-1 && r.revocations[i].Intersects(r.revocations[i+1]) {
				merged = r.revocations[i].Merge(r.revocations[i+1])
				r.revocations = append(r.revocations[:i], append([]revocation{merged}, r.revocations[i+2:]...)...)
			}
			return
		}
		if i < len(r.revocations)-1 {
			next := r.revocations[i+1]
			if curr.ToLeftOf(inserted) && inserted.ToLeftOf(next) {
				head := append([]revocation{}, r.revocations[:i+1]...)
				tail := r.revocations[i+1:]
				r.revocations = append(append(head, inserted), tail...)
				return
			}
		}
	}
}

func (r *revocationHotlist) IsRevoked(authTime datamodel.KerberosTime) bool {
	for _, curr := range r.revocations {
		if curr.Contains(authTime) {
			return true
		}
	}
	return false
}

func (r *revocationHotlist) cleanup() {
	if len(r.revocations) == 0 {
		return
	}
	cutoff := datamodel.Now().Minus(r.maxLifetime)
	if int64(cutoff) < int64(r.revocations[0].from) {
		return
	}
	if int64(r.revocations[len(r.revocations)-1].to) < int64(cutoff) {
		r.revocations = nil
		return
	}
	for i := 1; i < len(r.revocations); i++ {
		if int64(r.revocations[i-1].to) < int64(cutoff) && int64(r.revocations[i].to) >= int64(cutoff) {
			r.revocations = append([]revocation{}, r.revocations[i:]...)
			return
		}
	}
}
