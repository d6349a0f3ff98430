package tgs

import (
	"github.com/chemikadze/dirkdc/crypto"
	"github.com/chemikadze/dirkdc/datamodel"
	"github.com/chemikadze/dirkdc/kerberos"
	"github.com/chemikadze/dirkdc/replay"
	"github.com/chemikadze/dirkdc/wire"
)

// stage1Configure checks the protocol version the client asserted.
func stage1Configure(ctx *context) error {
	if ctx.req.PvNo != datamodel.Pvno {
		return kerberos.NewErrorC(datamodel.KdcErrBadPvno)
	}
	return nil
}

// stage2SelectEType picks the first etype in this KDC's configured
// preference order that the client also offered.
func stage2SelectEType(ctx *context) error {
	offered := make(map[int32]bool, len(ctx.req.ReqBody.EType))
	for _, e := range ctx.req.ReqBody.EType {
		offered[e] = true
	}
	for _, e := range ctx.config.EncryptionTypes {
		if offered[e] {
			ctx.etype = e
			return nil
		}
	}
	return kerberos.NewErrorC(datamodel.KdcErrEtypeNosupp)
}

// stage3ExtractApReq locates the PA-TGS-REQ pre-authentication entry and
// recovers the embedded AP-REQ (and, through it, the TGT).
func stage3ExtractApReq(ctx *context) error {
	if len(ctx.req.PaData) == 0 {
		return kerberos.NewErrorC(datamodel.KdcErrPadataTypeNosupp)
	}
	for _, pa := range ctx.req.PaData {
		if pa.Type != datamodel.PaTypeTgsReq {
			continue
		}
		apReq, ok := pa.Value.(datamodel.PaTgsReq)
		if !ok {
			return kerberos.NewErrorC(datamodel.KdcErrPadataTypeNosupp)
		}
		ctx.apReq = datamodel.ApReq(apReq)
		return nil
	}
	return kerberos.NewErrorC(datamodel.KdcErrPadataTypeNosupp)
}

// stage4VerifyTgtNames checks the TGT was issued by this realm for either
// this KDC's own ticket-granting service or the server the client is now
// requesting (the user-to-user second-ticket case).
func stage4VerifyTgtNames(ctx *context) error {
	tgt := ctx.apReq.Ticket
	if tgt.Realm != ctx.config.PrimaryRealm {
		return kerberos.NewErrorC(datamodel.KrbApErrNotUs)
	}
	ownTgs := datamodel.KrbTgtForRealm(ctx.config.PrimaryRealm)
	isOwnTgs := tgt.SName.Equal(ownTgs)
	isRequestedServer := ctx.req.ReqBody.SName != nil && tgt.SName.Equal(*ctx.req.ReqBody.SName)
	if !isOwnTgs && !isRequestedServer {
		return kerberos.NewErrorC(datamodel.KrbApErrNotUs)
	}
	return nil
}

// stage5ResolveTgtPrincipal resolves the TGT's own server name (normally
// krbtgt/REALM) to its long-term keys.
func stage5ResolveTgtPrincipal(ctx *context) error {
	entry, ok := ctx.store.Lookup(ctx.apReq.Ticket.SName)
	if !ok {
		return kerberos.NewErrorC(datamodel.KdcErrSPrincipalUnknown)
	}
	ctx.tgtServer = entry
	return nil
}

// stage6VerifyApReq decrypts the TGT and the authenticator riding inside
// the AP-REQ, then runs every RFC 4120 section 3.3.2 check on the pair:
// matching identity, clock skew, replay, and client address.
func stage6VerifyApReq(ctx *context) error {
	tgt := ctx.apReq.Ticket
	key, ok := ctx.tgtServer.Key(tgt.EncPart.EType)
	if !ok {
		return kerberos.NewErrorC(datamodel.KrbApErrBadkeyver)
	}
	ctx.tgtKey = key

	alg := ctx.crypto.Create(tgt.EncPart.EType)
	plaintext, err := alg.Decrypt(tgt.EncPart, key, datamodel.KeyUsageTicketSeal)
	if err != nil {
		return kerberos.NewErrorC(datamodel.KrbApErrModified)
	}
	decrypted, err := wire.DecodeEncTicketPart(plaintext)
	if err != nil {
		return kerberos.NewErrorC(datamodel.KrbApErrModified)
	}
	ctx.tgt = decrypted

	if ctx.hotlist != nil && ctx.hotlist.IsRevoked(ctx.tgt.AuthTime) {
		return kerberos.NewErrorC(datamodel.KrbApErrTktExpired)
	}

	authAlg := ctx.crypto.Create(ctx.tgt.Key.EType)
	authPlain, err := authAlg.Decrypt(ctx.apReq.Authenticator, ctx.tgt.Key, datamodel.KeyUsageTgsReqAuthenticator)
	if err != nil {
		return kerberos.NewErrorC(datamodel.KrbApErrModified)
	}
	auth, err := wire.DecodeAuthenticator(authPlain)
	if err != nil {
		return kerberos.NewErrorC(datamodel.KrbApErrModified)
	}
	ctx.auth = auth

	if !auth.CName.Equal(ctx.tgt.CName) || auth.CRealm != ctx.tgt.CRealm {
		return kerberos.NewErrorC(datamodel.KrbApErrBadmatch)
	}

	if !auth.CTime.IsInClockSkew(ctx.now, ctx.config.AllowableClockSkew) {
		return kerberos.NewErrorC(datamodel.KrbApErrSkew)
	}

	replayKey := replay.KeyOf(auth.CName, auth.CRealm, auth.CTime, auth.CUSec)
	if ctx.replay.CheckAndInsert(replayKey) {
		if ctx.recorder != nil {
			ctx.recorder.ReplayHit()
		}
		return kerberos.NewErrorC(datamodel.KrbApErrRepeat)
	}
	if ctx.recorder != nil {
		ctx.recorder.ReplayMiss()
	}

	if ctx.clientAddr != nil && ctx.tgt.CAddr != nil && len(*ctx.tgt.CAddr) > 0 {
		if !addrInList(*ctx.clientAddr, *ctx.tgt.CAddr) {
			return kerberos.NewErrorC(datamodel.KrbApErrBadaddr)
		}
	} else if !ctx.config.EmptyAddressesAllowed {
		return kerberos.NewErrorC(datamodel.KrbApErrBadaddr)
	}

	return nil
}

func addrInList(want datamodel.HostAddress, list []datamodel.HostAddress) bool {
	for _, a := range list {
		if a.AddrType == want.AddrType && a.Address.Equal(want.Address) {
			return true
		}
	}
	return false
}

// stage7VerifyBodyChecksum checks the authenticator's checksum over the
// exact request body bytes, when the KDC is configured to require it.
func stage7VerifyBodyChecksum(ctx *context) error {
	if !ctx.config.BodyChecksumVerified {
		return nil
	}
	if ctx.auth.CKSum == nil || ctx.auth.CKSum.CkSumType == 0 || len(ctx.auth.CKSum.Checksum) == 0 {
		return kerberos.NewErrorC(datamodel.KrbApErrInappCksum)
	}
	if len(ctx.req.ReqBody.BodyBytes) == 0 {
		return kerberos.NewErrorC(datamodel.KrbApErrInappCksum)
	}
	expectedType := ctx.crypto.ChecksumTypeForEncryption(ctx.tgt.Key.EType)
	if ctx.auth.CKSum.CkSumType != expectedType {
		return kerberos.NewErrorC(datamodel.KrbApErrInappCksum)
	}
	cksumAlg := ctx.crypto.CreateChecksum(expectedType)
	ok := cksumAlg.VerifyMic(ctx.tgt.Key, datamodel.KeyUsageTgsBodyChecksum, ctx.req.ReqBody.BodyBytes, crypto.MIC(ctx.auth.CKSum.Checksum))
	if !ok {
		return kerberos.NewErrorC(datamodel.KrbApErrModified)
	}
	return nil
}

// stage8ResolveRequestedServer resolves the service the client is
// actually asking for a ticket to.
func stage8ResolveRequestedServer(ctx *context) error {
	if ctx.req.ReqBody.SName == nil {
		return kerberos.NewErrorC(datamodel.KdcErrSPrincipalUnknown)
	}
	entry, ok := ctx.store.Lookup(*ctx.req.ReqBody.SName)
	if !ok {
		return kerberos.NewErrorC(datamodel.KdcErrSPrincipalUnknown)
	}
	ctx.server = entry
	return nil
}

// supportedTransitedTypes are the TransitedEncoding tr-type values this
// KDC passes through unchanged. Cross-realm transit compression (RFC
// 4120 section 3.3.3.2's DOMAIN-X500-COMPRESS, type 1) is accepted as an
// opaque pass-through since cross-realm referral itself is out of scope;
// anything else is a transited-encoding type this KDC cannot interpret.
var supportedTransitedTypes = map[int32]bool{0: true, 1: true}

// stage9ConstructTicket assembles the new service ticket: flag algebra,
// a fresh session key, authorization data, transited encoding, and the
// full lifetime computation, then seals the result under the requested
// server's key.
func stage9ConstructTicket(ctx *context) error {
	opts := ctx.req.ReqBody.KdcOptions

	if opts.HasReserved() {
		return kerberos.NewErrorC(datamodel.KdcErrBadOption)
	}
	if opts.Get(datamodel.KdcOptEncTktInSkey) {
		return kerberos.NewErrorC(datamodel.KdcErrBadOption)
	}
	if opts.Get(datamodel.KdcOptValidate) && opts.Get(datamodel.KdcOptRenew) {
		return kerberos.NewErrorC(datamodel.KdcErrBadOption)
	}

	if !supportedTransitedTypes[ctx.tgt.Transited.TrType] {
		return kerberos.NewErrorC(datamodel.KdcErrTrtypeNosupp)
	}

	var newPart datamodel.EncTicketPart
	newPart.CRealm = ctx.tgt.CRealm
	newPart.CName = ctx.tgt.CName
	newPart.Transited = ctx.tgt.Transited

	if opts.Get(datamodel.KdcOptValidate) {
		if err := applyValidate(ctx, &newPart); err != nil {
			return err
		}
	} else {
		if err := applyFlagAlgebra(ctx, opts, &newPart); err != nil {
			return err
		}
		if err := applyTimeAlgebra(ctx, opts, &newPart); err != nil {
			return err
		}
	}

	if ctx.tgt.Flags.Get(datamodel.TktFlagPreAuthent) {
		newPart.Flags.Set(datamodel.TktFlagPreAuthent, true)
	}

	if err := applyAuthorizationData(ctx, &newPart); err != nil {
		return err
	}

	alg := ctx.crypto.Create(ctx.etype)
	ctx.sessionKey = datamodel.EncryptionKey{EType: ctx.etype, KeyValue: alg.GenerateKey()}
	newPart.Key = ctx.sessionKey

	encPart, err := wire.EncodeEncTicketPart(newPart)
	if err != nil {
		return kerberos.NewErrorGeneric(err)
	}
	serverKey, ok := ctx.server.Key(ctx.etype)
	if !ok {
		return kerberos.NewErrorC(datamodel.KdcErrEtypeNosupp)
	}
	sealed, err := alg.Encrypt(serverKey, datamodel.KeyUsageTicketSeal, encPart)
	if err != nil {
		return kerberos.NewErrorGeneric(err)
	}

	ctx.newTicket = newPart
	ctx.ticket = datamodel.Ticket{
		VNo:     datamodel.Pvno,
		Realm:   ctx.server.RealmName,
		SName:   *ctx.req.ReqBody.SName,
		EncPart: sealed,
	}
	return nil
}

// applyValidate implements the VALIDATE option: the TGT must actually
// carry INVALID and have already reached its starttime, then its body is
// echoed into the new ticket with INVALID cleared.
func applyValidate(ctx *context, newPart *datamodel.EncTicketPart) error {
	if !ctx.tgt.Flags.Get(datamodel.TktFlagInvalid) {
		return kerberos.NewErrorC(datamodel.KdcErrPolicy)
	}
	start := ctx.tgt.AuthTime
	if ctx.tgt.StartTime != nil {
		start = *ctx.tgt.StartTime
	}
	if start.After(ctx.now) {
		return kerberos.NewErrorC(datamodel.KrbApErrTktNyv)
	}
	*newPart = ctx.tgt
	newPart.Flags.Set(datamodel.TktFlagInvalid, false)
	return nil
}

// applyFlagAlgebra runs the table-driven option rules, propagates an
// already-FORWARDED TGT, and handles POSTDATED's extra INVALID effect.
func applyFlagAlgebra(ctx *context, opts datamodel.KdcOptions, newPart *datamodel.EncTicketPart) error {
	addrs, err := applyFlagRules(opts, ctx.tgt.Flags, ctx.config, ctx.req.ReqBody.Addresses, &newPart.Flags)
	if err != nil {
		return err
	}
	if addrs != nil {
		newPart.CAddr = addrs
	}

	if ctx.tgt.Flags.Get(datamodel.TktFlagForwarded) {
		newPart.Flags.Set(datamodel.TktFlagForwarded, true)
	}

	if opts.Get(datamodel.KdcOptPostdated) {
		newPart.Flags.Set(datamodel.TktFlagInvalid, true)
	}
	return nil
}

// applyTimeAlgebra computes authTime/startTime/endTime/renewTill for a
// normally (non-VALIDATE) constructed ticket.
func applyTimeAlgebra(ctx *context, opts datamodel.KdcOptions, newPart *datamodel.EncTicketPart) error {
	now := ctx.now
	skew := ctx.config.AllowableClockSkew
	postdated := opts.Get(datamodel.KdcOptPostdated)

	newPart.AuthTime = ctx.tgt.AuthTime

	var startTime datamodel.KerberosTime
	from := ctx.req.ReqBody.From
	switch {
	case from == nil || from.Before(now) || (from.IsInClockSkew(now, skew) && !postdated):
		startTime = now
	case from.After(now.Plus(skew)) && (!postdated || !ctx.tgt.Flags.Get(datamodel.TktFlagMayPostdate)):
		return kerberos.NewErrorC(datamodel.KdcErrCannotPostdate)
	default:
		startTime = *from
	}
	if postdated {
		newPart.StartTime = &startTime
	}

	till := ctx.req.ReqBody.Till
	if till.IsZero() {
		till = datamodel.Infinity()
	}

	var endTime datamodel.KerberosTime
	if opts.Get(datamodel.KdcOptRenew) {
		if !ctx.config.RenewableAllowed {
			return kerberos.NewErrorC(datamodel.KdcErrPolicy)
		}
		if !ctx.tgt.Flags.Get(datamodel.TktFlagRenewable) {
			return kerberos.NewErrorC(datamodel.KdcErrBadOption)
		}
		if ctx.tgt.RenewTill == nil || ctx.tgt.RenewTill.Before(now) {
			return kerberos.NewErrorC(datamodel.KrbApErrTktExpired)
		}
		base := ctx.tgt.AuthTime
		if ctx.tgt.StartTime != nil {
			base = *ctx.tgt.StartTime
		}
		lifespan := ctx.tgt.EndTime.Difference(base)
		startTime = now
		endTime = datamodel.Min(*ctx.tgt.RenewTill, now.Plus(lifespan))
	} else {
		endTime = datamodel.MinOf(till, startTime.Plus(ctx.config.MaxTicketLifetime), ctx.tgt.EndTime)
	}

	renewable := opts.Get(datamodel.KdcOptRenewable)
	var provisionalRenewTill *datamodel.KerberosTime
	if opts.Get(datamodel.KdcOptRenewableOk) && endTime.Before(till) && ctx.tgt.Flags.Get(datamodel.TktFlagRenewable) {
		renewable = true
		provisional := datamodel.Min(till, *ctx.tgt.RenewTill)
		till = provisional
		provisionalRenewTill = &provisional
	}

	newPart.StartTime = startOrNil(newPart.StartTime, startTime, postdated)
	newPart.EndTime = endTime

	if renewable && ctx.tgt.Flags.Get(datamodel.TktFlagRenewable) && ctx.tgt.RenewTill != nil {
		rtime := datamodel.Infinity()
		if provisionalRenewTill != nil {
			rtime = *provisionalRenewTill
		}
		if ctx.req.ReqBody.RTime != nil && !ctx.req.ReqBody.RTime.IsZero() {
			rtime = *ctx.req.ReqBody.RTime
		}
		renewTill := datamodel.MinOf(rtime, startTime.Plus(ctx.config.MaxRenewableLifetime), *ctx.tgt.RenewTill)
		newPart.RenewTill = &renewTill
		newPart.Flags.Set(datamodel.TktFlagRenewable, true)
	}

	if newPart.EndTime.Before(startTime) || newPart.EndTime.Difference(startTime) < skew {
		return kerberos.NewErrorC(datamodel.KdcErrNeverValid)
	}
	return nil
}

// startOrNil returns the startTime to record on the new ticket: for a
// postdated ticket the pointer already set from the request, otherwise a
// pointer to the computed start. The new ticket therefore always carries
// an explicit starttime.
func startOrNil(existing *datamodel.KerberosTime, computed datamodel.KerberosTime, postdated bool) *datamodel.KerberosTime {
	if postdated {
		return existing
	}
	t := computed
	return &t
}

// applyAuthorizationData decrypts any client-supplied enc-authorization-
// data (preferring the authenticator's subkey, falling back to the TGT
// session key) and concatenates the TGT's existing authorization data
// after the request-supplied entries.
func applyAuthorizationData(ctx *context, newPart *datamodel.EncTicketPart) error {
	var requested datamodel.AuthorizationData
	if ctx.req.ReqBody.EncAuthorizationData != nil {
		key := ctx.tgt.Key
		if ctx.auth.SubKey != nil {
			key = *ctx.auth.SubKey
		}
		alg := ctx.crypto.Create(ctx.req.ReqBody.EncAuthorizationData.EType)
		plain, err := alg.Decrypt(*ctx.req.ReqBody.EncAuthorizationData, key, datamodel.KeyUsageAuthorizationData)
		if err != nil {
			return kerberos.NewErrorC(datamodel.KrbApErrModified)
		}
		decoded, err := wire.DecodeAuthorizationData(plain)
		if err != nil {
			return kerberos.NewErrorC(datamodel.KrbApErrModified)
		}
		requested = decoded
	}
	newPart.AuthorizationData = append(requested, ctx.tgt.AuthorizationData...)
	return nil
}

// stage10BuildReply assembles the EncKDCRepPart mirroring the new ticket
// and seals it under the authenticator's subkey (if offered) or the TGT
// session key, then packages the wire TGS-REP.
func stage10BuildReply(ctx *context) error {
	repPart := datamodel.EncKDCRepPart{
		Key:       ctx.sessionKey,
		LastReq:   datamodel.LastReq{},
		Nonce:     ctx.req.ReqBody.Nonce,
		Flags:     ctx.newTicket.Flags,
		AuthTime:  ctx.newTicket.AuthTime,
		StartTime: ctx.newTicket.StartTime,
		EndTime:   ctx.newTicket.EndTime,
		RenewTill: ctx.newTicket.RenewTill,
		SRealm:    ctx.ticket.Realm,
		SName:     ctx.ticket.SName,
		CAddr:     ctx.newTicket.CAddr,
	}

	plaintext, err := wire.EncodeEncKdcRepPart(repPart)
	if err != nil {
		return kerberos.NewErrorGeneric(err)
	}

	key := ctx.tgt.Key
	usage := datamodel.KeyUsageTgsRepSessionKey
	if ctx.auth.SubKey != nil {
		key = *ctx.auth.SubKey
		usage = datamodel.KeyUsageTgsRepSubkey
	}
	alg := ctx.crypto.Create(key.EType)
	encPart, err := alg.Encrypt(key, usage, plaintext)
	if err != nil {
		return kerberos.NewErrorGeneric(err)
	}

	ctx.reply = datamodel.TgsRep{
		PvNo:    datamodel.Pvno,
		MsgType: datamodel.MsgTypeTgsRep,
		CRealm:  ctx.newTicket.CRealm,
		CName:   ctx.newTicket.CName,
		Ticket:  ctx.ticket,
		EncPart: encPart,
	}
	return nil
}
