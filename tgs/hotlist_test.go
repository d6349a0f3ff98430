package tgs

import (
	"testing"

	"github.com/chemikadze/dirkdc/datamodel"
)

func TestRevocationHotlistNotRevokedByDefault(t *testing.T) {
	h := NewRevocationHotlist(int64(1 * 60 * 60 * 1000))
	if h.IsRevoked(datamodel.Now()) {
		t.Fatal("expected fresh hotlist to revoke nothing")
	}
}

func TestRevocationHotlistExactInterval(t *testing.T) {
	h := NewRevocationHotlist(int64(24 * 60 * 60 * 1000))
	now := datamodel.Now()
	from := now.Minus(1000)
	to := now.Plus(1000)
	h.RevokeTickets(from, to)

	if !h.IsRevoked(now) {
		t.Fatal("expected authtime within the revoked interval to be revoked")
	}
	if h.IsRevoked(now.Plus(10000)) {
		t.Fatal("expected authtime outside the revoked interval to be clean")
	}
}

func TestRevocationHotlistMergesOverlappingIntervals(t *testing.T) {
	h := NewRevocationHotlist(int64(24 * 60 * 60 * 1000)).(*revocationHotlist)
	now := datamodel.Now()

	h.RevokeTickets(now.Minus(5000), now.Minus(1000))
	h.RevokeTickets(now.Plus(1000), now.Plus(5000))
	h.RevokeTickets(now.Minus(2000), now.Plus(2000))

	if len(h.revocations) != 1 {
		t.Fatalf("expected the three overlapping revocations to merge into one interval, got %d", len(h.revocations))
	}
	if !h.IsRevoked(now) {
		t.Fatal("expected midpoint of merged interval to be revoked")
	}
	if !h.IsRevoked(now.Minus(4999)) || !h.IsRevoked(now.Plus(4999)) {
		t.Fatal("expected merged interval to span the full original range")
	}
}

func TestRevocationHotlistAppendsDisjointIntervals(t *testing.T) {
	h := NewRevocationHotlist(int64(24 * 60 * 60 * 1000)).(*revocationHotlist)
	now := datamodel.Now()

	h.RevokeTickets(now.Minus(10000), now.Minus(9000))
	h.RevokeTickets(now.Plus(9000), now.Plus(10000))

	if len(h.revocations) != 2 {
		t.Fatalf("expected two disjoint revocations to stay separate, got %d", len(h.revocations))
	}
	if h.IsRevoked(now) {
		t.Fatal("expected the gap between disjoint revocations to remain clean")
	}
}
