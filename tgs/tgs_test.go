package tgs

import (
	"testing"

	"github.com/chemikadze/dirkdc/datamodel"
	"github.com/chemikadze/dirkdc/principal"
	"github.com/chemikadze/dirkdc/replay"
	"github.com/chemikadze/dirkdc/wire"
)

const testRealm datamodel.Realm = "EXAMPLE.COM"

func alice() datamodel.PrincipalName {
	return datamodel.PrincipalName{NameType: 1, NameString: []string{"alice"}}
}

func svcPrincipal() datamodel.PrincipalName {
	return datamodel.PrincipalName{NameType: 2, NameString: []string{"host", "svc.example.com"}}
}

// fixture bundles a ready-to-run TGS-REQ plus the collaborators it
// expects, built directly rather than through any client-side encoder so
// each test can mutate exactly the one field it cares about.
type fixture struct {
	server        *Server
	req           datamodel.KdcReq
	now           datamodel.KerberosTime
	tgtSessionKey datamodel.EncryptionKey
}

// decryptRepPart decrypts and decodes the EncKDCRepPart sealed inside a
// successful reply, for tests that need to inspect the new ticket's
// flags or times rather than just the outer Ticket/EncPart etype.
func (f *fixture) decryptRepPart(t *testing.T, rep datamodel.TgsRep) datamodel.EncKDCRepPart {
	t.Helper()
	mock := mockAlgo{etype: mockEtype}
	plain, err := mock.Decrypt(rep.EncPart, f.tgtSessionKey, datamodel.KeyUsageTgsRepSessionKey)
	if err != nil {
		t.Fatalf("failed to decrypt EncKDCRepPart: %v", err)
	}
	part, err := wire.DecodeEncKdcRepPart(plain)
	if err != nil {
		t.Fatalf("failed to decode EncKDCRepPart: %v", err)
	}
	return part
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithTgtFlags(t, nil)
}

// newFixtureWithTgtFlags builds the same fixture as newFixture, but lets
// the caller add extra flags (e.g. MAY-POSTDATE) to the sealed TGT before
// it's encrypted, for tests that need a TGT capability newFixture doesn't
// grant by default.
func newFixtureWithTgtFlags(t *testing.T, extraTgtFlags func(*datamodel.TicketFlags)) *fixture {
	t.Helper()

	now := datamodel.Now()
	cfg := &KdcConfig{
		PrimaryRealm:          testRealm,
		ServicePrincipal:      datamodel.KrbTgtForRealm(testRealm),
		EncryptionTypes:       []int32{mockEtype},
		AllowableClockSkew:    int64(5 * 60 * 1000),
		MaxTicketLifetime:     int64(8 * 60 * 60 * 1000),
		MaxRenewableLifetime:  int64(7 * 24 * 60 * 60 * 1000),
		BodyChecksumVerified:  false,
		EmptyAddressesAllowed: true,
		ForwardableAllowed:    true,
		ProxiableAllowed:      true,
		PostdatedAllowed:      true,
		RenewableAllowed:      true,
	}

	store := principal.NewMemStore()
	tgtServerKey := datamodel.EncryptionKey{EType: mockEtype, KeyValue: []byte("tgt-server-key")}
	if err := store.Put(datamodel.PrincipalStoreEntry{
		Principal:  cfg.ServicePrincipal,
		KeyMap:     map[int32]datamodel.EncryptionKey{mockEtype: tgtServerKey},
		CommonName: "krbtgt",
		RealmName:  testRealm,
	}); err != nil {
		t.Fatal(err)
	}
	svcKey := datamodel.EncryptionKey{EType: mockEtype, KeyValue: []byte("service-key")}
	if err := store.Put(datamodel.PrincipalStoreEntry{
		Principal:  svcPrincipal(),
		KeyMap:     map[int32]datamodel.EncryptionKey{mockEtype: svcKey},
		CommonName: "svc",
		RealmName:  testRealm,
	}); err != nil {
		t.Fatal(err)
	}

	tgtSessionKey := datamodel.EncryptionKey{EType: mockEtype, KeyValue: []byte("tgt-session-key")}
	endTime := now.Plus(cfg.MaxTicketLifetime)
	renewTill := now.Plus(cfg.MaxRenewableLifetime)
	var tgtFlags datamodel.TicketFlags
	tgtFlags.Set(datamodel.TktFlagInitial, true)
	tgtFlags.Set(datamodel.TktFlagForwardable, true)
	tgtFlags.Set(datamodel.TktFlagRenewable, true)
	if extraTgtFlags != nil {
		extraTgtFlags(&tgtFlags)
	}

	tgtBody := datamodel.EncTicketPart{
		Flags:     tgtFlags,
		Key:       tgtSessionKey,
		CRealm:    testRealm,
		CName:     alice(),
		AuthTime:  now,
		EndTime:   endTime,
		RenewTill: &renewTill,
	}
	tgtPlain, err := wire.EncodeEncTicketPart(tgtBody)
	if err != nil {
		t.Fatal(err)
	}
	mock := mockAlgo{etype: mockEtype}
	encTgt, err := mock.Encrypt(tgtServerKey, datamodel.KeyUsageTicketSeal, tgtPlain)
	if err != nil {
		t.Fatal(err)
	}

	auth := datamodel.Authenticator{
		AuthenticatorVNo: datamodel.Pvno,
		CRealm:           testRealm,
		CName:            alice(),
		CUSec:            0,
		CTime:            now,
	}
	authPlain, err := wire.EncodeAuthenticator(auth)
	if err != nil {
		t.Fatal(err)
	}
	encAuth, err := mock.Encrypt(tgtSessionKey, datamodel.KeyUsageTgsReqAuthenticator, authPlain)
	if err != nil {
		t.Fatal(err)
	}

	apReq := datamodel.ApReq{
		PvNo:          datamodel.Pvno,
		MsgType:       datamodel.MsgTypeApReq,
		Ticket:        datamodel.Ticket{VNo: datamodel.Pvno, Realm: testRealm, SName: cfg.ServicePrincipal, EncPart: encTgt},
		Authenticator: encAuth,
	}

	sname := svcPrincipal()
	reqBody := datamodel.KdcReqBody{
		SName:     &sname,
		Realm:     testRealm,
		Till:      now.Plus(int64(60 * 60 * 1000)),
		Nonce:     1,
		EType:     []int32{mockEtype},
		BodyBytes: []byte("request-body-placeholder"),
	}

	req := datamodel.KdcReq{
		PvNo:    datamodel.Pvno,
		MsgType: datamodel.MsgTypeTgsReq,
		PaData:  []datamodel.PaData{{Type: datamodel.PaTypeTgsReq, Value: datamodel.PaTgsReq(apReq)}},
		ReqBody: reqBody,
	}

	server := &Server{
		Config:   cfg,
		Crypto:   mockFactory{},
		Store:    store,
		Replay:   replay.NewCache(cfg.AllowableClockSkew),
		Hotlist:  NewRevocationHotlist(cfg.MaxRenewableLifetime),
		Recorder: NoopRecorder{},
	}

	return &fixture{server: server, req: req, now: now, tgtSessionKey: tgtSessionKey}
}

func TestExecuteSucceeds(t *testing.T) {
	f := newFixture(t)

	rep, kerr, err := f.server.Execute(f.req, f.now, nil)
	if err != nil {
		t.Fatalf("unexpected transport-level error: %v", err)
	}
	if kerr.ErrorCode != 0 {
		t.Fatalf("expected success, got KRB-ERROR %d: %s", kerr.ErrorCode, kerr.EText)
	}
	if !rep.Ticket.SName.Equal(svcPrincipal()) {
		t.Fatalf("expected ticket issued for %v, got %v", svcPrincipal(), rep.Ticket.SName)
	}
	if rep.Ticket.EncPart.EType != mockEtype {
		t.Fatalf("expected ticket sealed with etype %d, got %d", mockEtype, rep.Ticket.EncPart.EType)
	}
}

func TestExecuteRejectsBadPvno(t *testing.T) {
	f := newFixture(t)
	f.req.PvNo = 4

	_, kerr, err := f.server.Execute(f.req, f.now, nil)
	if err != nil {
		t.Fatalf("unexpected transport-level error: %v", err)
	}
	if kerr.ErrorCode != datamodel.KdcErrBadPvno {
		t.Fatalf("expected KDC_ERR_BAD_PVNO, got %d", kerr.ErrorCode)
	}
}

func TestExecuteRejectsUnknownServer(t *testing.T) {
	f := newFixture(t)
	unknown := datamodel.PrincipalName{NameType: 2, NameString: []string{"host", "ghost.example.com"}}
	f.req.ReqBody.SName = &unknown

	_, kerr, err := f.server.Execute(f.req, f.now, nil)
	if err != nil {
		t.Fatalf("unexpected transport-level error: %v", err)
	}
	if kerr.ErrorCode != datamodel.KdcErrSPrincipalUnknown {
		t.Fatalf("expected KDC_ERR_S_PRINCIPAL_UNKNOWN, got %d", kerr.ErrorCode)
	}
}

func TestExecuteRejectsReplayedAuthenticator(t *testing.T) {
	f := newFixture(t)

	_, kerr, err := f.server.Execute(f.req, f.now, nil)
	if err != nil || kerr.ErrorCode != 0 {
		t.Fatalf("first request should succeed, got err=%v kerr=%d", err, kerr.ErrorCode)
	}

	_, kerr, err = f.server.Execute(f.req, f.now, nil)
	if err != nil {
		t.Fatalf("unexpected transport-level error: %v", err)
	}
	if kerr.ErrorCode != datamodel.KrbApErrRepeat {
		t.Fatalf("expected KRB_AP_ERR_REPEAT on replay, got %d", kerr.ErrorCode)
	}
}

func TestExecuteRejectsRevokedTgt(t *testing.T) {
	f := newFixture(t)
	f.server.Hotlist.RevokeTickets(f.now.Minus(1000), f.now.Plus(1000))

	_, kerr, err := f.server.Execute(f.req, f.now, nil)
	if err != nil {
		t.Fatalf("unexpected transport-level error: %v", err)
	}
	if kerr.ErrorCode != datamodel.KrbApErrTktExpired {
		t.Fatalf("expected KRB_AP_ERR_TKT_EXPIRED for a revoked TGT, got %d", kerr.ErrorCode)
	}
}

func TestExecuteRejectsUnsupportedEtype(t *testing.T) {
	f := newFixture(t)
	f.req.ReqBody.EType = []int32{7777}

	_, kerr, err := f.server.Execute(f.req, f.now, nil)
	if err != nil {
		t.Fatalf("unexpected transport-level error: %v", err)
	}
	if kerr.ErrorCode != datamodel.KdcErrEtypeNosupp {
		t.Fatalf("expected KDC_ERR_ETYPE_NOSUPP, got %d", kerr.ErrorCode)
	}
}

func TestExecuteRejectsMissingPaTgsReq(t *testing.T) {
	f := newFixture(t)
	f.req.PaData = nil

	_, kerr, err := f.server.Execute(f.req, f.now, nil)
	if err != nil {
		t.Fatalf("unexpected transport-level error: %v", err)
	}
	if kerr.ErrorCode != datamodel.KdcErrPadataTypeNosupp {
		t.Fatalf("expected KDC_ERR_PADATA_TYPE_NOSUPP, got %d", kerr.ErrorCode)
	}
}

func TestExecuteReflectsForwardableOption(t *testing.T) {
	f := newFixture(t)
	f.req.ReqBody.KdcOptions.Set(datamodel.KdcOptForwardable, true)

	rep, kerr, err := f.server.Execute(f.req, f.now, nil)
	if err != nil || kerr.ErrorCode != 0 {
		t.Fatalf("expected success, got err=%v kerr=%d", err, kerr.ErrorCode)
	}
	if !rep.Ticket.SName.Equal(svcPrincipal()) {
		t.Fatal("expected ticket for requested service")
	}
	repPart := f.decryptRepPart(t, rep)
	if !repPart.Flags.Get(datamodel.TktFlagForwardable) {
		t.Fatal("expected the new ticket to carry FORWARDABLE")
	}
}

// TestExecutePostdatedOption drives spec.md's S3 scenario end to end: a
// TGT carrying MAY-POSTDATE, a request for POSTDATED with from = now+2h,
// and a policy that allows it. The new ticket must carry POSTDATED and
// INVALID with startTime pinned to the requested from time, as far as
// the reply's whole-second KerberosTime wire encoding carries it.
func TestExecutePostdatedOption(t *testing.T) {
	f := newFixtureWithTgtFlags(t, func(flags *datamodel.TicketFlags) {
		flags.Set(datamodel.TktFlagMayPostdate, true)
	})

	from := f.now.Plus(int64(2 * 60 * 60 * 1000))
	f.req.ReqBody.From = &from
	f.req.ReqBody.Till = f.now.Plus(int64(4 * 60 * 60 * 1000))
	f.req.ReqBody.KdcOptions.Set(datamodel.KdcOptPostdated, true)

	rep, kerr, err := f.server.Execute(f.req, f.now, nil)
	if err != nil {
		t.Fatalf("unexpected transport-level error: %v", err)
	}
	if kerr.ErrorCode != 0 {
		t.Fatalf("expected success, got KRB-ERROR %d: %s", kerr.ErrorCode, kerr.EText)
	}

	repPart := f.decryptRepPart(t, rep)
	if !repPart.Flags.Get(datamodel.TktFlagPostdated) {
		t.Fatal("expected the new ticket to carry POSTDATED")
	}
	if !repPart.Flags.Get(datamodel.TktFlagInvalid) {
		t.Fatal("expected the new ticket to carry INVALID until validated")
	}
	wantStart := from.Minus(int64(from) % 1000)
	if repPart.StartTime == nil || *repPart.StartTime != wantStart {
		t.Fatalf("expected startTime %v, got %v", wantStart, repPart.StartTime)
	}
}

// TestExecutePostdatedRejectedWithoutMayPostdate confirms POSTDATED is
// refused when the TGT wasn't itself issued with MAY-POSTDATE.
func TestExecutePostdatedRejectedWithoutMayPostdate(t *testing.T) {
	f := newFixture(t)

	from := f.now.Plus(int64(2 * 60 * 60 * 1000))
	f.req.ReqBody.From = &from
	f.req.ReqBody.KdcOptions.Set(datamodel.KdcOptPostdated, true)

	_, kerr, err := f.server.Execute(f.req, f.now, nil)
	if err != nil {
		t.Fatalf("unexpected transport-level error: %v", err)
	}
	if kerr.ErrorCode != datamodel.KdcErrBadOption {
		t.Fatalf("expected KDC_ERR_BADOPTION, got %d", kerr.ErrorCode)
	}
}
