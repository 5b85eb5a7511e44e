// Package fault classifies failures by who is responsible for them, so the
// RPC boundary can decide what to show the caller and what to alert on.
package fault

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// YourFault is invalid or unsupported caller input. Safe to show verbatim.
	YourFault Kind = "your_fault"

	// OurFault is local misconfiguration or an upstream response we could
	// not interpret. Indicates a bug or contract drift on our side.
	OurFault Kind = "our_fault"

	// TheirFault is a degraded upstream that answered but could not serve us.
	TheirFault Kind = "their_fault"

	// WhoKnows is a transport-level failure where responsibility cannot be
	// determined from this side.
	WhoKnows Kind = "who_knows_whose_fault"

	// CompensationFailed means a compensating action (refund) failed after a
	// failed registration. Money may remain captured without a domain.
	CompensationFailed Kind = "compensation_failed"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost classified error in the chain.
// Unclassified errors are treated as OurFault.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return OurFault
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the caller-facing message for err.
func Message(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
