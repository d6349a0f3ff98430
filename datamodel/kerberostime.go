package datamodel

import (
	"math"
	"time"
)

// KerberosTime is a UTC timestamp expressed in milliseconds since the Unix
// epoch. Infinity is represented by the distinguished sentinel value
// returned by Infinity(), and all arithmetic on it saturates rather than
// overflowing.
type KerberosTime int64

const keberosTimeWireFormat = "20060102150405Z"

// Infinity is the KDC's "no limit" timestamp, used for till/rtime fields
// the client left at the wire zero value.
func Infinity() KerberosTime {
	return KerberosTime(math.MaxInt64)
}

// Zero is the wire "unset" timestamp (1970-01-01T00:00:00Z). It equals the
// Go zero value of KerberosTime, so callers can tell "explicitly epoch"
// apart from "field absent" only via a *KerberosTime pointer, matching
// optional wire fields (From, RTime, StartTime, RenewTill).
func Zero() KerberosTime {
	return KerberosTime(0)
}

func Now() KerberosTime {
	return FromTime(time.Now())
}

func FromTime(t time.Time) KerberosTime {
	return KerberosTime(t.UnixMilli())
}

func FromUnixSeconds(sec int64) KerberosTime {
	if sec >= math.MaxInt64/1000 {
		return Infinity()
	}
	return KerberosTime(sec * 1000)
}

func (t KerberosTime) Time() time.Time {
	if t.IsInfinity() {
		return time.Unix(0, math.MaxInt64)
	}
	return time.UnixMilli(int64(t)).UTC()
}

func (t KerberosTime) IsInfinity() bool {
	return t == Infinity()
}

func (t KerberosTime) IsZero() bool {
	return t == Zero()
}

func (t KerberosTime) String() string {
	return t.Time().Format(keberosTimeWireFormat)
}

func KerberosTimeFromString(s string) (KerberosTime, error) {
	parsed, err := time.ParseInLocation(keberosTimeWireFormat, s, time.UTC)
	if err != nil {
		return 0, err
	}
	return FromTime(parsed), nil
}

// Before reports whether t happens strictly before other.
func (t KerberosTime) Before(other KerberosTime) bool {
	return t < other
}

// After reports whether t happens strictly after other.
func (t KerberosTime) After(other KerberosTime) bool {
	return t > other
}

// Difference returns t - other in milliseconds, saturating instead of
// overflowing when either side is Infinity.
func (t KerberosTime) Difference(other KerberosTime) int64 {
	if t.IsInfinity() && !other.IsInfinity() {
		return math.MaxInt64
	}
	if other.IsInfinity() && !t.IsInfinity() {
		return math.MinInt64
	}
	if t.IsInfinity() && other.IsInfinity() {
		return 0
	}
	return int64(t) - int64(other)
}

func (t KerberosTime) AbsoluteDifference(other KerberosTime) int64 {
	d := t.Difference(other)
	if d < 0 {
		return -d
	}
	return d
}

// IsInClockSkew reports whether t is within skewMillis of now in either
// direction.
func (t KerberosTime) IsInClockSkew(now KerberosTime, skewMillis int64) bool {
	return t.AbsoluteDifference(now) <= skewMillis
}

// Plus adds millis to t, saturating at Infinity.
func (t KerberosTime) Plus(millis int64) KerberosTime {
	if t.IsInfinity() {
		return t
	}
	sum := int64(t) + millis
	if millis > 0 && sum < int64(t) {
		return Infinity()
	}
	return KerberosTime(sum)
}

func (t KerberosTime) Minus(millis int64) KerberosTime {
	return t.Plus(-millis)
}

// Min returns the earlier of the two timestamps, saturating semantics
// making Infinity the proper identity element.
func Min(a, b KerberosTime) KerberosTime {
	if a < b {
		return a
	}
	return b
}

func MinOf(times ...KerberosTime) KerberosTime {
	m := Infinity()
	for _, t := range times {
		m = Min(m, t)
	}
	return m
}
