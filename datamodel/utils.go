package datamodel

import (
	"fmt"
	"strings"
)

// KrbError constructors, mirroring the teacher's NewErrorC/NewErrorExt
// shape: build the common envelope once, then fill in the code/text that
// differ per call site.

func NewEmptyError(realm Realm, sname PrincipalName) KrbError {
	now := Now()
	return KrbError{
		CTime:  now,
		CUSec:  0,
		CRealm: realm,
		SName:  sname,
	}
}

func NewErrorExt(realm Realm, sname PrincipalName, code int32, msg string) KrbError {
	err := NewEmptyError(realm, sname)
	err.ErrorCode = code
	err.EText = msg
	return err
}

func NewErrorC(realm Realm, sname PrincipalName, code int32) KrbError {
	err := NewEmptyError(realm, sname)
	err.ErrorCode = code
	return err
}

func NewErrorGeneric(realm Realm, sname PrincipalName, msg string) KrbError {
	return NewErrorExt(realm, sname, KrbErrGeneric, msg)
}

func NoError() KrbError {
	return KrbError{}
}

func (e KrbError) Error() string {
	return fmt.Sprintf("KRB-ERROR %d: %s", e.ErrorCode, e.EText)
}

// KrbTgtForRealm builds the well-known krbtgt/REALM service principal a
// TGT's sname is checked against in Stage 4 of the TGS exchange.
func KrbTgtForRealm(tgtRealm Realm) PrincipalName {
	return PrincipalName{NameType: NtSrvInst, NameString: []string{KrbTgtServiceName, tgtRealm.String()}}
}

func PrincipalNameFromString(str string) PrincipalName {
	return PrincipalName{NameType: NtUnknown, NameString: strings.Split(str, "/")}
}

func (a AuthorizationData) Unwrap() []AuthorizationDataElement {
	return []AuthorizationDataElement(a)
}

func (a AuthorizationData) Get(i int) AuthorizationDataElement {
	return []AuthorizationDataElement(a)[i]
}

func NewTicketFlags() TicketFlags {
	return TicketFlags{}
}

func NewKdcOptions() KdcOptions {
	return KdcOptions{}
}

func NewApOptions() ApOptions {
	return ApOptions{}
}

func (r Realm) String() string {
	return string(r)
}
