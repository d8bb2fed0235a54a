package domain

import "errors"

// ErrorKind classifies a domain failure so transport layers can map it to a
// status code without string matching.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"           // Missing coin/wallet/user/trade
	KindInvalidArgument    ErrorKind = "invalid_argument"    // Non-positive amount/price, out-of-band sell price
	KindFailedPrecondition ErrorKind = "failed_precondition" // Insufficient balance, order already completed
	KindUnauthenticated    ErrorKind = "unauthenticated"     // Missing/invalid/expired credential
	KindConflict           ErrorKind = "conflict"            // Uniqueness violation on create
)

// Error is a domain failure with a machine-checkable kind and a
// human-readable message.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// NewError creates a domain error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the kind from err, or "" if err is not a domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
