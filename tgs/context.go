package tgs

import (
	"github.com/chemikadze/dirkdc/crypto"
	"github.com/chemikadze/dirkdc/datamodel"
	"github.com/chemikadze/dirkdc/principal"
	"github.com/chemikadze/dirkdc/replay"
)

// context is the mutable bag spec.md §9 calls out as a builder value
// threaded by reference through the ten pipeline stages: each stage
// reads fields an earlier stage populated and writes the fields it owns,
// then returns nil to advance or an error to terminate the pipeline.
// Nothing outside Execute constructs or inspects one.
type context struct {
	config *KdcConfig
	crypto crypto.Factory
	store  principal.Store
	replay replay.Cache
	hotlist RevocationHotlist
	recorder Recorder

	now        datamodel.KerberosTime
	clientAddr *datamodel.HostAddress

	req datamodel.KdcReq

	// etype is the encryption type Stage 2 selected for the new
	// session key and the new ticket's seal.
	etype int32

	// apReq is the AP-REQ Stage 3 extracted from the PA-TGS-REQ entry.
	apReq datamodel.ApReq

	// tgtServer is the PrincipalStoreEntry for the TGT's own server
	// name (Stage 5), tgtKey the key selected from its KeyMap and tgt
	// the decrypted ticket body (both Stage 6).
	tgtServer datamodel.PrincipalStoreEntry
	tgtKey    datamodel.EncryptionKey
	tgt       datamodel.EncTicketPart
	auth      datamodel.Authenticator

	// server is the requested service's PrincipalStoreEntry (Stage 8).
	server datamodel.PrincipalStoreEntry

	// sessionKey, newTicket and ticket are assembled by Stage 9.
	sessionKey datamodel.EncryptionKey
	newTicket  datamodel.EncTicketPart
	ticket     datamodel.Ticket

	// reply is populated by Stage 10, the pipeline's only success output.
	reply datamodel.TgsRep
}

// stage is one of the ten ordered pipeline steps. A stage returning a
// non-nil error terminates the pipeline immediately; there are no
// back-edges, matching spec.md §4.1's "ok-advance or fail-terminate, no
// back-edges" state diagram.
type stage func(*context) error

// pipeline is the fixed Stage 1-10 order. Reordering this slice would
// change observable protocol behavior (e.g. the replay cache must be
// consulted in Stage 6, before the Stage 7 checksum check, so a replayed
// request is rejected even when a later stage would also have failed).
var pipeline = []stage{
	stage1Configure,
	stage2SelectEType,
	stage3ExtractApReq,
	stage4VerifyTgtNames,
	stage5ResolveTgtPrincipal,
	stage6VerifyApReq,
	stage7VerifyBodyChecksum,
	stage8ResolveRequestedServer,
	stage9ConstructTicket,
	stage10BuildReply,
}
