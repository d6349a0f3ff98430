package tgs

import (
	"github.com/chemikadze/dirkdc/crypto"
	"github.com/chemikadze/dirkdc/datamodel"
	"github.com/chemikadze/dirkdc/kerberos"
	"github.com/chemikadze/dirkdc/principal"
	"github.com/chemikadze/dirkdc/replay"
)

// Recorder observes replay-cache outcomes so a caller can expose them as
// metrics. A nil Recorder is never passed to a stage directly; Execute's
// callers may pass NoopRecorder{} when they have nothing to wire it to.
type Recorder interface {
	ReplayHit()
	ReplayMiss()
}

// NoopRecorder discards every observation. Useful in tests and for
// callers that don't care about replay-cache metrics.
type NoopRecorder struct{}

func (NoopRecorder) ReplayHit()  {}
func (NoopRecorder) ReplayMiss() {}

// Server holds the collaborators the TGS pipeline needs across requests:
// the long-term key store, the replay cache, the revocation hotlist and
// the crypto factory. Execute is the only exported entry point; building
// and running a context is otherwise entirely internal to this package.
type Server struct {
	Config   *KdcConfig
	Crypto   crypto.Factory
	Store    principal.Store
	Replay   replay.Cache
	Hotlist  RevocationHotlist
	Recorder Recorder
}

// Execute runs a single TGS-REQ through the ten-stage pipeline, returning
// either a well-formed TGS-REP or a KRB-ERROR describing why the request
// was refused. now and clientAddr are passed in rather than read from the
// wall clock or a listener socket so the pipeline stays deterministic and
// testable; callers at the transport boundary supply the live values.
func (s *Server) Execute(req datamodel.KdcReq, now datamodel.KerberosTime, clientAddr *datamodel.HostAddress) (datamodel.TgsRep, datamodel.KrbError, error) {
	recorder := s.Recorder
	if recorder == nil {
		recorder = NoopRecorder{}
	}

	ctx := &context{
		config:     s.Config,
		crypto:     s.Crypto,
		store:      s.Store,
		replay:     s.Replay,
		hotlist:    s.Hotlist,
		recorder:   recorder,
		now:        now,
		clientAddr: clientAddr,
		req:        req,
	}

	for _, st := range pipeline {
		if err := st(ctx); err != nil {
			kerr, ok := kerberos.As(err)
			if !ok {
				kerr = kerberos.NewErrorGeneric(err)
			}
			return datamodel.TgsRep{}, kerberos.ToKrbError(kerr, s.Config.PrimaryRealm, s.Config.ServicePrincipal), nil
		}
	}

	return ctx.reply, datamodel.KrbError{}, nil
}
