package datamodel

/**
  Error Code                         Value  Meaning

  KDC_ERR_NONE                           0  No error
  KDC_ERR_BAD_PVNO                       3  Requested protocol version number not supported
  KDC_ERR_C_PRINCIPAL_UNKNOWN            6  Client not found in Kerberos database
  KDC_ERR_S_PRINCIPAL_UNKNOWN            7  Server not found in Kerberos database
  KDC_ERR_CANNOT_POSTDATE               10  Ticket not eligible for postdating
  KDC_ERR_NEVER_VALID                   11  Requested starttime is later than end time
  KDC_ERR_POLICY                        12  KDC policy rejects request
  KDC_ERR_BADOPTION                     13  KDC cannot accommodate requested option
  KDC_ERR_ETYPE_NOSUPP                  14  KDC has no support for encryption type
  KDC_ERR_SUMTYPE_NOSUPP                15  KDC has no support for checksum type
  KDC_ERR_PADATA_TYPE_NOSUPP            16  KDC has no support for padata type
  KDC_ERR_TRTYPE_NOSUPP                 17  KDC has no support for transited type
  KDC_ERR_TGT_REVOKED                   20  TGT has been revoked
  KRB_AP_ERR_BAD_INTEGRITY              31  Integrity check on decrypted field failed
  KRB_AP_ERR_TKT_EXPIRED                32  Ticket expired
  KRB_AP_ERR_TKT_NYV                    33  Ticket not yet valid
  KRB_AP_ERR_REPEAT                     34  Request is a replay
  KRB_AP_ERR_NOT_US                     35  The ticket isn't for us
  KRB_AP_ERR_BADMATCH                   36  Ticket and authenticator don't match
  KRB_AP_ERR_SKEW                       37  Clock skew too great
  KRB_AP_ERR_BADADDR                    38  Incorrect net address
  KRB_AP_ERR_MSG_TYPE                   40  Invalid msg type
  KRB_AP_ERR_MODIFIED                   41  Message stream modified
  KRB_AP_ERR_BADKEYVER                  44  Specified version of key is not available
  KRB_AP_ERR_NOKEY                      45  Service key not available
  KRB_AP_ERR_INAPP_CKSUM                50  Inappropriate type of checksum in message
  KRB_ERR_GENERIC                       60  Generic error (description in e-text)

  The full registry (RFC 4120 section 7.5.9) has more codes than this KDC
  implements; only a subset is given a name here: the codes the TGS core
  in tgs/ returns, plus a few related ones it does not return.
*/
const (
	KdcErrNone              int32 = 0
	KdcErrBadPvno           int32 = 3
	KdcErrCPrincipalUnknown int32 = 6
	KdcErrSPrincipalUnknown int32 = 7
	KdcErrCannotPostdate    int32 = 10
	KdcErrNeverValid        int32 = 11
	KdcErrPolicy            int32 = 12
	KdcErrBadOption         int32 = 13
	KdcErrEtypeNosupp       int32 = 14
	KdcErrSumtypeNosupp     int32 = 15
	KdcErrPadataTypeNosupp  int32 = 16
	KdcErrTrtypeNosupp      int32 = 17
	KdcErrTgtRevoked        int32 = 20

	KrbApErrBadIntegrity int32 = 31
	KrbApErrTktExpired   int32 = 32
	KrbApErrTktNyv       int32 = 33
	KrbApErrRepeat       int32 = 34
	KrbApErrNotUs        int32 = 35
	KrbApErrBadmatch     int32 = 36
	KrbApErrSkew         int32 = 37
	KrbApErrBadaddr      int32 = 38
	KrbApErrMsgType      int32 = 40
	KrbApErrModified     int32 = 41
	KrbApErrBadkeyver    int32 = 44
	KrbApErrNokey        int32 = 45
	KrbApErrInappCksum   int32 = 50

	KrbErrGeneric int32 = 60
)

/**
padata-type  Name             Contents of padata-value

      1            pa-tgs-req       DER encoding of AP-REQ
      2            pa-enc-timestamp DER encoding of PA-ENC-TIMESTAMP
      3            pa-pw-salt       salt (not ASN.1 encoded)
      11           pa-etype-info    DER encoding of ETYPE-INFO
      19           pa-etype-info2   DER encoding of ETYPE-INFO2
*/
const (
	PaTypeTgsReq       int32 = 1
	PaTypeEncTimestamp int32 = 2
	PaTypePwSalt       int32 = 3
	PaTypeEtypeInfo    int32 = 11
	PaTypeEtypeInfo2   int32 = 19
)

/**
  Contents of ad-data                ad-type

  DER encoding of AD-IF-RELEVANT        1
  DER encoding of AD-KDCIssued          4
  DER encoding of AD-AND-OR             5
  DER encoding of AD-MANDATORY-FOR-KDC  8
*/
const (
	AdTypeIfRelevant      int32 = 1
	AdTypeKdcIssued       int32 = 4
	AdTypeAndOr           int32 = 5
	AdTypeMandatoryForKdc int32 = 8
)

// PrincipalName name types.
const (
	NtUnknown       int32 = 0
	NtPrincipal     int32 = 1
	NtSrvInst       int32 = 2
	NtSrvHst        int32 = 3
	NtSrvXhst       int32 = 4
	NtUid           int32 = 5
	NtX500Principal int32 = 6
	NtSmtpName      int32 = 7
	NtEnterprise    int32 = 10
)

const (
	Pvno = 5

	MsgTypeTgsReq  = 12
	MsgTypeTgsRep  = 13
	MsgTypeApReq   = 14
	MsgTypeApRep   = 15
	MsgTypeKrbError = 30

	KrbTgtServiceName = "krbtgt"

	KerberosTimeWireFormat = "20060102150405Z"
)

// Key usages, RFC 4120 section 7.5.1. Implementations must use these exact
// values to remain interoperable with other realms.
const (
	KeyUsageTicketSeal           = 2
	KeyUsageAuthorizationData    = 4
	KeyUsageTgsReqAuthDataSubkey = 5
	KeyUsageTgsReqAuthenticator  = 7
	KeyUsageTgsBodyChecksum      = 8
	KeyUsageTgsRepSessionKey     = 8
	KeyUsageTgsRepSubkey         = 9
)

// Encryption types (RFC 3961/3962), limited to what crypto/ implements.
const (
	EtypeAes128CtsHmacSha1 int32 = 17
	EtypeAes256CtsHmacSha1 int32 = 18
)

// Checksum types (RFC 3961), limited to what crypto/ implements.
const (
	CksumHmacSha1Aes128 int32 = 15
	CksumHmacSha1Aes256 int32 = 16
)
