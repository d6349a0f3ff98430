package wire

import (
	"fmt"

	"github.com/jcmturner/gofork/encoding/asn1"

	"github.com/chemikadze/dirkdc/datamodel"
)

// DecodeMessageType peeks the outer APPLICATION tag of a DER-encoded
// Kerberos message without decoding its contents, the same trick
// jcmturner's reference KDC test harness uses to dispatch AS-REQ vs.
// TGS-REQ before picking a concrete Unmarshal target.
func DecodeMessageType(der []byte) (int, error) {
	var raw asn1.RawValue
	if _, err := asn1.Unmarshal(der, &raw); err != nil {
		return 0, fmt.Errorf("wire: peek message type: %w", err)
	}
	return raw.Tag, nil
}

// DecodeTgsReq parses a TGS-REQ message and returns the domain KdcReq,
// with ReqBody.BodyBytes set to the exact DER octets of the KDC-REQ-BODY
// element (not a re-encoding), so a later checksum verification against
// those bytes succeeds regardless of how this codec would re-serialize
// the struct.
func DecodeTgsReq(der []byte) (datamodel.KdcReq, error) {
	var msg tgsReqMsg
	if _, err := asn1.Unmarshal(der, &msg); err != nil {
		return datamodel.KdcReq{}, fmt.Errorf("wire: decode TGS-REQ: %w", err)
	}
	body, err := decodeReqBodyRaw(msg.Body.ReqBody)
	if err != nil {
		return datamodel.KdcReq{}, err
	}
	paData, err := decodePaDataList(msg.Body.PaData)
	if err != nil {
		return datamodel.KdcReq{}, err
	}
	return datamodel.KdcReq{
		PvNo:    int32(msg.Body.PvNo),
		MsgType: int32(msg.Body.MsgType),
		PaData:  paData,
		ReqBody: body,
	}, nil
}

// DecodeReqBody parses a standalone KDC-REQ-BODY DER encoding (as opposed
// to one embedded in a TGS-REQ via DecodeTgsReq), setting BodyBytes to
// the input slice. Exposed for tests and for any future AS-REQ path.
func DecodeReqBody(der []byte) (datamodel.KdcReqBody, error) {
	return decodeReqBodyRaw(asn1.RawValue{FullBytes: der})
}

// EncodeReqBody serializes a KdcReqBody to its KDC-REQ-BODY DER form.
// The TGS pipeline never calls this for checksum purposes (BodyBytes
// from the original decode must be used instead, see KdcReqBody docs),
// but it is needed to build outgoing requests and in round-trip tests.
func EncodeReqBody(body datamodel.KdcReqBody) ([]byte, error) {
	w := wireKdcReqBody{
		KdcOptions: kdcOptionsToBitString(body.KdcOptions),
		Realm:      string(body.Realm),
		Till:       body.Till.String(),
		Nonce:      int(body.Nonce),
		EType:      body.EType,
	}
	if body.CName != nil {
		w.CName = fromPrincipalName(*body.CName)
	}
	if body.SName != nil {
		w.SName = fromPrincipalName(*body.SName)
	}
	if body.From != nil {
		w.From = body.From.String()
	}
	if body.RTime != nil {
		w.RTime = body.RTime.String()
	}
	if body.EncAuthorizationData != nil {
		w.EncAuthz = fromEncryptedData(*body.EncAuthorizationData)
	}
	if len(body.AdditionalTickets) > 0 {
		tickets := make([]wireTicket, len(body.AdditionalTickets))
		for i, t := range body.AdditionalTickets {
			tickets[i] = fromTicket(t)
		}
		w.Additional = tickets
	}
	b, err := asn1.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("wire: encode KDC-REQ-BODY: %w", err)
	}
	return b, nil
}

func decodeReqBodyRaw(raw asn1.RawValue) (datamodel.KdcReqBody, error) {
	var wireBody wireKdcReqBody
	if _, err := asn1.Unmarshal(raw.FullBytes, &wireBody); err != nil {
		return datamodel.KdcReqBody{}, fmt.Errorf("wire: decode KDC-REQ-BODY: %w", err)
	}
	till, err := datamodel.KerberosTimeFromString(wireBody.Till)
	if err != nil {
		return datamodel.KdcReqBody{}, fmt.Errorf("wire: decode till: %w", err)
	}
	body := datamodel.KdcReqBody{
		KdcOptions: bitStringToKdcOptions(wireBody.KdcOptions),
		Realm:      datamodel.Realm(wireBody.Realm),
		Till:       till,
		Nonce:      uint32(wireBody.Nonce),
		EType:      wireBody.EType,
		BodyBytes:  raw.FullBytes,
	}
	if len(wireBody.CName.NameString) > 0 {
		cname := wireBody.CName.toDomain()
		body.CName = &cname
	}
	if len(wireBody.SName.NameString) > 0 {
		sname := wireBody.SName.toDomain()
		body.SName = &sname
	}
	if wireBody.From != "" {
		t, err := datamodel.KerberosTimeFromString(wireBody.From)
		if err != nil {
			return datamodel.KdcReqBody{}, fmt.Errorf("wire: decode from: %w", err)
		}
		body.From = &t
	}
	if wireBody.RTime != "" {
		t, err := datamodel.KerberosTimeFromString(wireBody.RTime)
		if err != nil {
			return datamodel.KdcReqBody{}, fmt.Errorf("wire: decode rtime: %w", err)
		}
		body.RTime = &t
	}
	if len(wireBody.EncAuthz.Cipher) > 0 {
		encAuthz := wireBody.EncAuthz.toDomain()
		body.EncAuthorizationData = &encAuthz
	}
	if len(wireBody.Additional) > 0 {
		tickets := make([]datamodel.Ticket, len(wireBody.Additional))
		for i, t := range wireBody.Additional {
			tickets[i] = t.toDomain()
		}
		body.AdditionalTickets = tickets
	}
	return body, nil
}

func decodePaDataList(in []wirePaData) ([]datamodel.PaData, error) {
	out := make([]datamodel.PaData, 0, len(in))
	for _, p := range in {
		switch p.Type {
		case datamodel.PaTypeTgsReq:
			apReq, err := DecodeApReq(p.Value)
			if err != nil {
				return nil, fmt.Errorf("wire: decode PA-TGS-REQ: %w", err)
			}
			out = append(out, datamodel.PaData{Type: p.Type, Value: datamodel.PaTgsReq(apReq)})
		default:
			out = append(out, datamodel.PaData{Type: p.Type})
		}
	}
	return out, nil
}

// DecodeApReq parses an AP-REQ and its embedded ticket, but does not
// decrypt either the ticket or the authenticator; that is crypto's job
// once the TGS pipeline has picked the right key.
func DecodeApReq(der []byte) (datamodel.ApReq, error) {
	var msg apReqMsg
	if _, err := asn1.Unmarshal(der, &msg); err != nil {
		return datamodel.ApReq{}, fmt.Errorf("wire: decode AP-REQ: %w", err)
	}
	return datamodel.ApReq{
		PvNo:      int32(msg.Body.PvNo),
		MsgType:   int32(msg.Body.MsgType),
		ApOptions: bitStringToApOptions(msg.Body.ApOptions),
		Ticket:    msg.Body.Ticket.toDomain(),
		Authenticator: msg.Body.Authenticator.toDomain(),
	}, nil
}

func EncodeApReq(req datamodel.ApReq) ([]byte, error) {
	msg := apReqMsg{Body: wireApReq{
		PvNo:          int(req.PvNo),
		MsgType:       int(req.MsgType),
		ApOptions:     apOptionsToBitString(req.ApOptions),
		Ticket:        fromTicket(req.Ticket),
		Authenticator: fromEncryptedData(req.Authenticator),
	}}
	b, err := asn1.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("wire: encode AP-REQ: %w", err)
	}
	return b, nil
}

// DecodeAuthenticator parses a decrypted Authenticator body (the caller
// must have already decrypted the EncryptedData that carries it).
func DecodeAuthenticator(plaintext []byte) (datamodel.Authenticator, error) {
	var msg authenticatorMsg
	if _, err := asn1.Unmarshal(plaintext, &msg); err != nil {
		return datamodel.Authenticator{}, fmt.Errorf("wire: decode Authenticator: %w", err)
	}
	w := msg.Body
	ctime, err := datamodel.KerberosTimeFromString(w.CTime)
	if err != nil {
		return datamodel.Authenticator{}, fmt.Errorf("wire: decode ctime: %w", err)
	}
	auth := datamodel.Authenticator{
		AuthenticatorVNo: int32(w.AVNo),
		CRealm:           datamodel.Realm(w.CRealm),
		CName:            w.CName.toDomain(),
		CUSec:            int32(w.CUSec),
		CTime:            ctime,
	}
	if len(w.CKSum.Checksum) > 0 {
		cksum := w.CKSum.toDomain()
		auth.CKSum = &cksum
	}
	if len(w.SubKey.KeyValue) > 0 {
		key := w.SubKey.toDomain(0)
		auth.SubKey = &key
	}
	if w.SeqNumber != 0 {
		seq := uint32(w.SeqNumber)
		auth.SeqNumber = &seq
	}
	return auth, nil
}

func EncodeAuthenticator(auth datamodel.Authenticator) ([]byte, error) {
	w := wireAuthenticator{
		AVNo:   int(auth.AuthenticatorVNo),
		CRealm: string(auth.CRealm),
		CName:  fromPrincipalName(auth.CName),
		CUSec:  int(auth.CUSec),
		CTime:  auth.CTime.String(),
	}
	if auth.CKSum != nil {
		w.CKSum = fromChecksum(*auth.CKSum)
	}
	if auth.SubKey != nil {
		w.SubKey = fromEncryptionKey(*auth.SubKey)
	}
	if auth.SeqNumber != nil {
		w.SeqNumber = int(*auth.SeqNumber)
	}
	b, err := asn1.Marshal(authenticatorMsg{Body: w})
	if err != nil {
		return nil, fmt.Errorf("wire: encode Authenticator: %w", err)
	}
	return b, nil
}

// DecodeEncTicketPart parses a decrypted ticket body.
func DecodeEncTicketPart(plaintext []byte) (datamodel.EncTicketPart, error) {
	var w wireEncTicketPart
	if _, err := asn1.Unmarshal(plaintext, &w); err != nil {
		return datamodel.EncTicketPart{}, fmt.Errorf("wire: decode EncTicketPart: %w", err)
	}
	return w.toDomain()
}

func EncodeEncTicketPart(part datamodel.EncTicketPart) ([]byte, error) {
	b, err := asn1.Marshal(fromEncTicketPart(part))
	if err != nil {
		return nil, fmt.Errorf("wire: encode EncTicketPart: %w", err)
	}
	return b, nil
}

// EncodeTicket encodes a complete Ticket (tkt-vno/realm/sname/enc-part),
// used when this KDC builds a fresh ticket for the TGS-REP.
func EncodeTicket(t datamodel.Ticket) ([]byte, error) {
	b, err := asn1.Marshal(fromTicket(t))
	if err != nil {
		return nil, fmt.Errorf("wire: encode Ticket: %w", err)
	}
	return b, nil
}

// EncodeTgsRep serializes a complete TGS-REP message.
func EncodeTgsRep(rep datamodel.KdcRep) ([]byte, error) {
	paData := make([]wirePaData, 0, len(rep.PaData))
	for _, p := range rep.PaData {
		wp, err := fromPaData(p)
		if err != nil {
			return nil, err
		}
		paData = append(paData, wp)
	}
	msg := tgsRepMsg{Body: wireKdcRep{
		PvNo:    int(rep.PvNo),
		MsgType: int(rep.MsgType),
		PaData:  paData,
		CRealm:  string(rep.CRealm),
		CName:   fromPrincipalName(rep.CName),
		Ticket:  fromTicket(rep.Ticket),
		EncPart: fromEncryptedData(rep.EncPart),
	}}
	b, err := asn1.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("wire: encode TGS-REP: %w", err)
	}
	return b, nil
}

// EncodeEncKdcRepPart serializes the encrypted part of a TGS-REP
// (EncTGSRepPart, APPLICATION 26).
func EncodeEncKdcRepPart(part datamodel.EncKDCRepPart) ([]byte, error) {
	w := wireEncKdcRepPart{
		Key:      fromEncryptionKey(part.Key),
		Nonce:    int(part.Nonce),
		Flags:    ticketFlagsToBitString(part.Flags),
		AuthTime: part.AuthTime.String(),
		EndTime:  part.EndTime.String(),
		SRealm:   string(part.SRealm),
		SName:    fromPrincipalName(part.SName),
	}
	if part.StartTime != nil {
		w.StartTime = part.StartTime.String()
	}
	if part.RenewTill != nil {
		w.RenewTill = part.RenewTill.String()
	}
	b, err := asn1.Marshal(encTgsRepPartMsg{Body: w})
	if err != nil {
		return nil, fmt.Errorf("wire: encode EncTGSRepPart: %w", err)
	}
	return b, nil
}

// DecodeEncKdcRepPart parses a decrypted EncTGSRepPart, used by clients
// and by this module's own tests to round-trip a reply.
func DecodeEncKdcRepPart(plaintext []byte) (datamodel.EncKDCRepPart, error) {
	var msg encTgsRepPartMsg
	if _, err := asn1.Unmarshal(plaintext, &msg); err != nil {
		return datamodel.EncKDCRepPart{}, fmt.Errorf("wire: decode EncTGSRepPart: %w", err)
	}
	w := msg.Body
	authTime, err := datamodel.KerberosTimeFromString(w.AuthTime)
	if err != nil {
		return datamodel.EncKDCRepPart{}, err
	}
	endTime, err := datamodel.KerberosTimeFromString(w.EndTime)
	if err != nil {
		return datamodel.EncKDCRepPart{}, err
	}
	part := datamodel.EncKDCRepPart{
		Key:      w.Key.toDomain(0),
		Nonce:    uint32(w.Nonce),
		Flags:    bitStringToTicketFlags(w.Flags),
		AuthTime: authTime,
		EndTime:  endTime,
		SRealm:   datamodel.Realm(w.SRealm),
		SName:    w.SName.toDomain(),
	}
	if w.StartTime != "" {
		t, err := datamodel.KerberosTimeFromString(w.StartTime)
		if err != nil {
			return datamodel.EncKDCRepPart{}, err
		}
		part.StartTime = &t
	}
	if w.RenewTill != "" {
		t, err := datamodel.KerberosTimeFromString(w.RenewTill)
		if err != nil {
			return datamodel.EncKDCRepPart{}, err
		}
		part.RenewTill = &t
	}
	return part, nil
}

// DecodeAuthorizationData parses the decrypted plaintext of an
// EncryptedData whose contents are an AuthorizationData SEQUENCE, used
// for the enc-authorization-data field of a KDC-REQ-BODY once the TGS
// pipeline has decrypted it with the authenticator's subkey or the TGT
// session key.
func DecodeAuthorizationData(plaintext []byte) (datamodel.AuthorizationData, error) {
	var elems []wireAuthzElement
	if _, err := asn1.Unmarshal(plaintext, &elems); err != nil {
		return nil, fmt.Errorf("wire: decode AuthorizationData: %w", err)
	}
	return toDomainAuthzData(elems), nil
}

// EncodeAuthorizationData serializes an AuthorizationData SEQUENCE to the
// plaintext bytes that get sealed into an EncryptedData.
func EncodeAuthorizationData(ad datamodel.AuthorizationData) ([]byte, error) {
	b, err := asn1.Marshal(fromDomainAuthzData(ad))
	if err != nil {
		return nil, fmt.Errorf("wire: encode AuthorizationData: %w", err)
	}
	return b, nil
}

// EncodeKrbError serializes a KRB-ERROR reply.
func EncodeKrbError(e datamodel.KrbError) ([]byte, error) {
	w := wireKrbError{
		PvNo:      datamodel.Pvno,
		MsgType:   datamodel.MsgTypeKrbError,
		CTime:     e.CTime.String(),
		STime:     datamodel.Now().String(),
		ErrorCode: e.ErrorCode,
		CRealm:    string(e.CRealm),
		Realm:     string(e.Realm),
		SName:     fromPrincipalName(e.SName),
		EText:     e.EText,
		EData:     e.EData,
	}
	if len(e.CName.NameString) > 0 {
		w.CName = fromPrincipalName(e.CName)
	}
	b, err := asn1.Marshal(krbErrorMsg{Body: w})
	if err != nil {
		return nil, fmt.Errorf("wire: encode KRB-ERROR: %w", err)
	}
	return b, nil
}
