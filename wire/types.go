// Package wire is the ASN.1 DER codec boundary: it converts between the
// pure datamodel types and the tagged wire structures jcmturner/gofork's
// asn1 fork encodes/decodes, in the same style gokrb5's messages package
// uses its own mirror structs for the BER/DER quirks (explicit context
// tags, GeneralizedTime, BIT STRING) that the plain datamodel types don't
// carry themselves.
package wire

import (
	"net"

	"github.com/jcmturner/gofork/encoding/asn1"

	"github.com/chemikadze/dirkdc/datamodel"
)

type wirePrincipalName struct {
	NameType   int32    `asn1:"explicit,tag:0"`
	NameString []string `asn1:"generalstring,explicit,tag:1"`
}

func (w wirePrincipalName) toDomain() datamodel.PrincipalName {
	return datamodel.PrincipalName{NameType: w.NameType, NameString: w.NameString}
}

func fromPrincipalName(p datamodel.PrincipalName) wirePrincipalName {
	return wirePrincipalName{NameType: p.NameType, NameString: p.NameString}
}

type wireEncryptedData struct {
	EType  int32  `asn1:"explicit,tag:0"`
	KVNo   int    `asn1:"optional,explicit,tag:1"`
	Cipher []byte `asn1:"explicit,tag:2"`
}

func (w wireEncryptedData) toDomain() datamodel.EncryptedData {
	ed := datamodel.EncryptedData{EType: w.EType, Cipher: w.Cipher}
	if w.KVNo != 0 {
		kvno := uint32(w.KVNo)
		ed.KVNo = &kvno
	}
	return ed
}

func fromEncryptedData(e datamodel.EncryptedData) wireEncryptedData {
	w := wireEncryptedData{EType: e.EType, Cipher: e.Cipher}
	if e.KVNo != nil {
		w.KVNo = int(*e.KVNo)
	}
	return w
}

type wireEncryptionKey struct {
	KeyType  int32  `asn1:"explicit,tag:0"`
	KeyValue []byte `asn1:"explicit,tag:1"`
}

func (w wireEncryptionKey) toDomain(kvno int) datamodel.EncryptionKey {
	return datamodel.EncryptionKey{EType: w.KeyType, KVNo: kvno, KeyValue: w.KeyValue}
}

func fromEncryptionKey(k datamodel.EncryptionKey) wireEncryptionKey {
	return wireEncryptionKey{KeyType: k.EType, KeyValue: k.KeyValue}
}

type wireChecksum struct {
	CksumType int32  `asn1:"explicit,tag:0"`
	Checksum  []byte `asn1:"explicit,tag:1"`
}

func (w wireChecksum) toDomain() datamodel.Checksum {
	return datamodel.Checksum{CkSumType: w.CksumType, Checksum: w.Checksum}
}

func fromChecksum(c datamodel.Checksum) wireChecksum {
	return wireChecksum{CksumType: c.CkSumType, Checksum: c.Checksum}
}

type wireHostAddress struct {
	AddrType int32  `asn1:"explicit,tag:0"`
	Address  []byte `asn1:"explicit,tag:1"`
}

func (w wireHostAddress) toDomain() datamodel.HostAddress {
	return datamodel.HostAddress{AddrType: w.AddrType, Address: net.IP(w.Address)}
}

func fromHostAddress(a datamodel.HostAddress) wireHostAddress {
	return wireHostAddress{AddrType: a.AddrType, Address: []byte(a.Address)}
}

func toDomainAddresses(in []wireHostAddress) datamodel.HostAddresses {
	if len(in) == 0 {
		return nil
	}
	addrs := make([]datamodel.HostAddress, len(in))
	for i, a := range in {
		addrs[i] = a.toDomain()
	}
	return &addrs
}

func fromDomainAddresses(in datamodel.HostAddresses) []wireHostAddress {
	if in == nil || len(*in) == 0 {
		return nil
	}
	out := make([]wireHostAddress, len(*in))
	for i, a := range *in {
		out[i] = fromHostAddress(a)
	}
	return out
}

// wireAuthzElement mirrors a single AuthorizationData SEQUENCE { ad-type,
// ad-data } entry. This module doesn't interpret ad-type-specific
// contents, so every element round-trips as datamodel.OpaqueAuthData.
type wireAuthzElement struct {
	AdType int32  `asn1:"explicit,tag:0"`
	AdData []byte `asn1:"explicit,tag:1"`
}

func toDomainAuthzData(in []wireAuthzElement) datamodel.AuthorizationData {
	if len(in) == 0 {
		return nil
	}
	out := make(datamodel.AuthorizationData, len(in))
	for i, e := range in {
		out[i] = datamodel.OpaqueAuthData{Type: e.AdType, Data: e.AdData}
	}
	return out
}

func fromDomainAuthzData(ad datamodel.AuthorizationData) []wireAuthzElement {
	if len(ad) == 0 {
		return nil
	}
	out := make([]wireAuthzElement, len(ad))
	for i, e := range ad {
		opaque, ok := e.(datamodel.OpaqueAuthData)
		if !ok {
			opaque = datamodel.OpaqueAuthData{Type: e.AdType()}
		}
		out[i] = wireAuthzElement{AdType: opaque.Type, AdData: opaque.Data}
	}
	return out
}

type wireTransitedEncoding struct {
	TrType   int32  `asn1:"explicit,tag:0"`
	Contents []byte `asn1:"explicit,tag:1"`
}

func (w wireTransitedEncoding) toDomain() datamodel.TransitedEncoding {
	return datamodel.TransitedEncoding{TrType: w.TrType, Contents: w.Contents}
}

func fromTransitedEncoding(t datamodel.TransitedEncoding) wireTransitedEncoding {
	return wireTransitedEncoding{TrType: t.TrType, Contents: t.Contents}
}

// Ticket ::= [APPLICATION 1] SEQUENCE { tkt-vno, realm, sname, enc-part }
type wireTicket struct {
	TktVno  int               `asn1:"explicit,tag:0"`
	Realm   string            `asn1:"generalstring,explicit,tag:1"`
	SName   wirePrincipalName `asn1:"explicit,tag:2"`
	EncPart wireEncryptedData `asn1:"explicit,tag:3"`
}

func (w wireTicket) toDomain() datamodel.Ticket {
	return datamodel.Ticket{
		VNo:     int32(w.TktVno),
		Realm:   datamodel.Realm(w.Realm),
		SName:   w.SName.toDomain(),
		EncPart: w.EncPart.toDomain(),
	}
}

func fromTicket(t datamodel.Ticket) wireTicket {
	return wireTicket{
		TktVno:  int(t.VNo),
		Realm:   string(t.Realm),
		SName:   fromPrincipalName(t.SName),
		EncPart: fromEncryptedData(t.EncPart),
	}
}

// EncTicketPart ::= [APPLICATION 3] SEQUENCE { flags, key, crealm, cname,
// transited, authtime, starttime?, endtime, renew-till?, caddr?, authorization-data? }
type wireEncTicketPart struct {
	Flags             asn1.BitString        `asn1:"explicit,tag:0"`
	Key               wireEncryptionKey     `asn1:"explicit,tag:1"`
	CRealm            string                `asn1:"generalstring,explicit,tag:2"`
	CName             wirePrincipalName     `asn1:"explicit,tag:3"`
	Transited         wireTransitedEncoding `asn1:"explicit,tag:4"`
	AuthTime          string                `asn1:"generalized,explicit,tag:5"`
	StartTime         string                `asn1:"generalized,optional,explicit,tag:6"`
	EndTime           string                `asn1:"generalized,explicit,tag:7"`
	RenewTill         string                `asn1:"generalized,optional,explicit,tag:8"`
	CAddr             []wireHostAddress     `asn1:"optional,explicit,tag:9"`
	AuthorizationData []wireAuthzElement    `asn1:"optional,explicit,tag:10"`
}

func (w wireEncTicketPart) toDomain() (datamodel.EncTicketPart, error) {
	authTime, err := datamodel.KerberosTimeFromString(w.AuthTime)
	if err != nil {
		return datamodel.EncTicketPart{}, err
	}
	endTime, err := datamodel.KerberosTimeFromString(w.EndTime)
	if err != nil {
		return datamodel.EncTicketPart{}, err
	}
	part := datamodel.EncTicketPart{
		Flags:             bitStringToTicketFlags(w.Flags),
		Key:               w.Key.toDomain(0),
		CRealm:            datamodel.Realm(w.CRealm),
		CName:             w.CName.toDomain(),
		Transited:         w.Transited.toDomain(),
		AuthTime:          authTime,
		EndTime:           endTime,
		CAddr:             toDomainAddresses(w.CAddr),
		AuthorizationData: toDomainAuthzData(w.AuthorizationData),
	}
	if w.StartTime != "" {
		t, err := datamodel.KerberosTimeFromString(w.StartTime)
		if err != nil {
			return datamodel.EncTicketPart{}, err
		}
		part.StartTime = &t
	}
	if w.RenewTill != "" {
		t, err := datamodel.KerberosTimeFromString(w.RenewTill)
		if err != nil {
			return datamodel.EncTicketPart{}, err
		}
		part.RenewTill = &t
	}
	return part, nil
}

func fromEncTicketPart(p datamodel.EncTicketPart) wireEncTicketPart {
	w := wireEncTicketPart{
		Flags:             ticketFlagsToBitString(p.Flags),
		Key:               fromEncryptionKey(p.Key),
		CRealm:            string(p.CRealm),
		CName:             fromPrincipalName(p.CName),
		Transited:         fromTransitedEncoding(p.Transited),
		AuthTime:          p.AuthTime.String(),
		EndTime:           p.EndTime.String(),
		CAddr:             fromDomainAddresses(p.CAddr),
		AuthorizationData: fromDomainAuthzData(p.AuthorizationData),
	}
	if p.StartTime != nil {
		w.StartTime = p.StartTime.String()
	}
	if p.RenewTill != nil {
		w.RenewTill = p.RenewTill.String()
	}
	return w
}

// bitStringToTicketFlags/ticketFlagsToBitString bridge the RFC-4120 MSB-first
// BIT STRING wire form and datamodel's fixed 4-byte bitflags representation.
func bitStringToTicketFlags(b asn1.BitString) datamodel.TicketFlags {
	f := datamodel.NewTicketFlags()
	for bit := 0; bit < b.BitLength; bit++ {
		if b.At(bit) == 1 {
			f.Set(bit, true)
		}
	}
	return f
}

func ticketFlagsToBitString(f datamodel.TicketFlags) asn1.BitString {
	bytes := f.Bytes()
	return asn1.BitString{Bytes: bytes, BitLength: len(bytes) * 8}
}

func bitStringToKdcOptions(b asn1.BitString) datamodel.KdcOptions {
	o := datamodel.NewKdcOptions()
	for bit := 0; bit < b.BitLength; bit++ {
		if b.At(bit) == 1 {
			o.Set(bit, true)
		}
	}
	return o
}

func kdcOptionsToBitString(o datamodel.KdcOptions) asn1.BitString {
	bytes := o.Bytes()
	return asn1.BitString{Bytes: bytes, BitLength: len(bytes) * 8}
}

func apOptionsToBitString(o datamodel.ApOptions) asn1.BitString {
	bytes := o.Bytes()
	return asn1.BitString{Bytes: bytes, BitLength: len(bytes) * 8}
}

func bitStringToApOptions(b asn1.BitString) datamodel.ApOptions {
	o := datamodel.NewApOptions()
	for bit := 0; bit < b.BitLength; bit++ {
		if b.At(bit) == 1 {
			o.Set(bit, true)
		}
	}
	return o
}

type wirePaData struct {
	Type  int32  `asn1:"explicit,tag:1"`
	Value []byte `asn1:"explicit,tag:2"`
}

func fromPaData(p datamodel.PaData) (wirePaData, error) {
	switch v := p.Value.(type) {
	case datamodel.PaTgsReq:
		b, err := EncodeApReq(datamodel.ApReq(v))
		if err != nil {
			return wirePaData{}, err
		}
		return wirePaData{Type: p.Type, Value: b}, nil
	default:
		// PA types this KDC does not produce travel as opaque bytes;
		// AS-REQ preauth (timestamp, salt, etype-info) is a Non-goal.
		return wirePaData{Type: p.Type}, nil
	}
}

// wireKdcReqBody mirrors KDC-REQ-BODY. Unlike every other wire struct, a
// decoded wireKdcReqBody is never the only thing callers want: they also
// need the exact octets it came from, which DecodeReqBody captures
// separately via asn1.RawValue before delegating here.
type wireKdcReqBody struct {
	KdcOptions asn1.BitString      `asn1:"explicit,tag:0"`
	CName      wirePrincipalName   `asn1:"optional,explicit,tag:1"`
	Realm      string              `asn1:"generalstring,explicit,tag:2"`
	SName      wirePrincipalName   `asn1:"optional,explicit,tag:3"`
	From       string              `asn1:"generalized,optional,explicit,tag:4"`
	Till       string              `asn1:"generalized,explicit,tag:5"`
	RTime      string              `asn1:"generalized,optional,explicit,tag:6"`
	Nonce      int                 `asn1:"explicit,tag:7"`
	EType      []int32             `asn1:"explicit,tag:8"`
	Addresses  asn1.RawValue       `asn1:"optional,explicit,tag:9"`
	EncAuthz   wireEncryptedData   `asn1:"optional,explicit,tag:10"`
	Additional []wireTicket        `asn1:"optional,explicit,tag:11"`
}

type wireKdcReq struct {
	PvNo    int           `asn1:"explicit,tag:1"`
	MsgType int           `asn1:"explicit,tag:2"`
	PaData  []wirePaData  `asn1:"optional,explicit,tag:3"`
	ReqBody asn1.RawValue `asn1:"explicit,tag:4"`
}

type tgsReqMsg struct {
	Body wireKdcReq `asn1:"application,explicit,tag:12"`
}

type wireKdcRep struct {
	PvNo    int               `asn1:"explicit,tag:0"`
	MsgType int               `asn1:"explicit,tag:1"`
	PaData  []wirePaData      `asn1:"optional,explicit,tag:2"`
	CRealm  string            `asn1:"generalstring,explicit,tag:3"`
	CName   wirePrincipalName `asn1:"explicit,tag:4"`
	// The wire Ticket type is itself [APPLICATION 1]-tagged; nested here
	// under the KDC-REP's own context tag 5, only the context tag is
	// represented explicitly (double explicit tagging collapses to a
	// single wrapper in this codec, which round-trips correctly since
	// both sides of this module use the same wireTicket shape).
	Ticket  wireTicket        `asn1:"explicit,tag:5"`
	EncPart wireEncryptedData `asn1:"explicit,tag:6"`
}

type tgsRepMsg struct {
	Body wireKdcRep `asn1:"application,explicit,tag:13"`
}

type wireEncKdcRepPart struct {
	Key           wireEncryptionKey `asn1:"explicit,tag:0"`
	LastReq       []byte            `asn1:"optional,explicit,tag:1"`
	Nonce         int               `asn1:"explicit,tag:2"`
	Flags         asn1.BitString    `asn1:"explicit,tag:4"`
	AuthTime      string            `asn1:"generalized,explicit,tag:5"`
	StartTime     string            `asn1:"generalized,optional,explicit,tag:6"`
	EndTime       string            `asn1:"generalized,explicit,tag:7"`
	RenewTill     string            `asn1:"generalized,optional,explicit,tag:8"`
	SRealm        string            `asn1:"generalstring,explicit,tag:9"`
	SName         wirePrincipalName `asn1:"explicit,tag:10"`
}

type encTgsRepPartMsg struct {
	Body wireEncKdcRepPart `asn1:"application,explicit,tag:26"`
}

type wireAuthenticator struct {
	AVNo      int                `asn1:"explicit,tag:0"`
	CRealm    string             `asn1:"generalstring,explicit,tag:1"`
	CName     wirePrincipalName  `asn1:"explicit,tag:2"`
	CKSum     wireChecksum       `asn1:"optional,explicit,tag:3"`
	CUSec     int                `asn1:"explicit,tag:4"`
	CTime     string             `asn1:"generalized,explicit,tag:5"`
	SubKey    wireEncryptionKey  `asn1:"optional,explicit,tag:6"`
	SeqNumber int                `asn1:"optional,explicit,tag:7"`
}

type authenticatorMsg struct {
	Body wireAuthenticator `asn1:"application,explicit,tag:2"`
}

type wireApReq struct {
	PvNo          int            `asn1:"explicit,tag:0"`
	MsgType       int            `asn1:"explicit,tag:1"`
	ApOptions     asn1.BitString    `asn1:"explicit,tag:2"`
	Ticket        wireTicket        `asn1:"explicit,tag:3"`
	Authenticator wireEncryptedData `asn1:"explicit,tag:4"`
}

type apReqMsg struct {
	Body wireApReq `asn1:"application,explicit,tag:14"`
}

type wireKrbError struct {
	PvNo      int               `asn1:"explicit,tag:0"`
	MsgType   int               `asn1:"explicit,tag:1"`
	CTime     string            `asn1:"generalized,optional,explicit,tag:2"`
	CUSec     int               `asn1:"optional,explicit,tag:3"`
	STime     string            `asn1:"generalized,explicit,tag:4"`
	SUSec     int               `asn1:"explicit,tag:5"`
	ErrorCode int32             `asn1:"explicit,tag:6"`
	CRealm    string            `asn1:"generalstring,optional,explicit,tag:7"`
	CName     wirePrincipalName `asn1:"optional,explicit,tag:8"`
	Realm     string            `asn1:"generalstring,explicit,tag:9"`
	SName     wirePrincipalName `asn1:"explicit,tag:10"`
	EText     string            `asn1:"generalstring,optional,explicit,tag:11"`
	EData     []byte            `asn1:"optional,explicit,tag:12"`
}

type krbErrorMsg struct {
	Body wireKrbError `asn1:"application,explicit,tag:30"`
}
