// Package kerberos holds the Go-native error type the TGS pipeline
// returns internally. It is deliberately distinct from datamodel.KrbError:
// datamodel.KrbError is the wire KRB-ERROR structure the daemon sends
// back to a client, while kerberos.Error is what a stage function
// returns to its caller before anything has been decided about how (or
// whether) to report it on the wire.
package kerberos

import (
	"errors"
	"fmt"

	"github.com/chemikadze/dirkdc/datamodel"
)

// Error is a Kerberos protocol failure carrying the RFC 4120 numeric
// error code a stage decided on, plus optional human-readable context.
type Error struct {
	Code int32
	Msg  string
}

func (e Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("kerberos: error code %d", e.Code)
	}
	return fmt.Sprintf("kerberos: error code %d: %s", e.Code, e.Msg)
}

// NewErrorC builds an Error carrying only a code, mirroring the
// datamodel.NewErrorC constructor used at the wire boundary.
func NewErrorC(code int32) Error {
	return Error{Code: code}
}

// NewErrorExt builds an Error with an explanatory message.
func NewErrorExt(code int32, msg string) Error {
	return Error{Code: code, Msg: msg}
}

// NewErrorGeneric wraps an arbitrary error under KRB_ERR_GENERIC so any
// unexpected failure (a collaborator returning a plain Go error) can
// still be reported as a well-formed Kerberos error code.
func NewErrorGeneric(err error) Error {
	return Error{Code: datamodel.KrbErrGeneric, Msg: err.Error()}
}

// ToKrbError converts a kerberos.Error into the wire KrbError structure
// sent back to the client, filling in the realm/service-name envelope
// the pipeline's config supplies.
func ToKrbError(err Error, realm datamodel.Realm, sname datamodel.PrincipalName) datamodel.KrbError {
	return datamodel.NewErrorExt(realm, sname, err.Code, err.Msg)
}

// As reports whether err is (or wraps) a kerberos.Error, mirroring the
// errors.As contract so callers can pattern-match on Code.
func As(err error) (Error, bool) {
	var kerr Error
	ok := errors.As(err, &kerr)
	return kerr, ok
}
