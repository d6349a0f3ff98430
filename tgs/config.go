// Package tgs implements the Ticket-Granting Service state machine: a
// ten-stage pipeline that consumes a TGS-REQ and a prior Ticket-Granting
// Ticket and issues a new service ticket under RFC 4120. The pipeline
// never reaches past its collaborators (crypto.Factory, principal.Store,
// replay.Cache, *KdcConfig) to talk to a transport, a database, or a
// clock directly, matching the "core never reaches past the boundary"
// rule the rest of this module's ambient layers are built around.
package tgs

import "github.com/chemikadze/dirkdc/datamodel"

// KdcConfig is the read-only configuration surface the TGS core consults.
// The core never mutates it; a config reload is expected to swap the
// pointer it was given, not edit fields in place.
type KdcConfig struct {
	PrimaryRealm     datamodel.Realm
	ServicePrincipal datamodel.PrincipalName

	// EncryptionTypes is this KDC's etype preference order, most
	// preferred first. Stage 2 picks the first entry also present in
	// the request's etype list.
	EncryptionTypes []int32

	AllowableClockSkew   int64 // milliseconds
	MaxTicketLifetime    int64 // milliseconds
	MaxRenewableLifetime int64 // milliseconds

	BodyChecksumVerified  bool
	EmptyAddressesAllowed bool

	ForwardableAllowed bool
	ProxiableAllowed   bool
	PostdatedAllowed   bool
	RenewableAllowed   bool
}
