// Package translate maps registrar status tokens to outcomes.
//
// Each operation kind has its own closed enumeration. Tokens outside it are
// reported as an upstream contract violation and never defaulted: a
// misread success/failure has financial consequences.
package translate

import (
	"fmt"

	"github.com/benithors/domaincli/internal/fault"
)

type Operation string

const (
	OpCheckAvailability Operation = "check_availability"
	OpRegisterDomain    Operation = "register_domain"
	OpSetNameservers    Operation = "set_nameservers"
)

type Availability string

const (
	Available     Availability = "available"
	Unavailable   Availability = "unavailable"
	Indeterminate Availability = "indeterminate"
)

// UnmappedStatusError carries the raw token the registrar sent.
type UnmappedStatusError struct {
	Operation Operation
	Status    string
}

func (e *UnmappedStatusError) Error() string {
	return fmt.Sprintf("unrecognized upstream status %q for %s", e.Status, e.Operation)
}

func unmapped(op Operation, status string) error {
	return fault.Wrap(&UnmappedStatusError{Operation: op, Status: status}, fault.OurFault,
		"We can't for the life of us figure out what the upstream response %q means", status)
}

// CheckAvailability maps a Domain/Check status.
func CheckAvailability(status string) (Availability, error) {
	switch status {
	case "AVAILABLE":
		return Available, nil
	case "UNAVAILABLE":
		return Unavailable, nil
	case "FAILURE":
		return Indeterminate, nil
	default:
		return "", unmapped(OpCheckAvailability, status)
	}
}

// RegisterDomain maps a Domain/Create status.
func RegisterDomain(status string) (bool, error) {
	return successOrFailure(OpRegisterDomain, status)
}

// SetNameservers maps a Domain/Update status.
func SetNameservers(status string) (bool, error) {
	return successOrFailure(OpSetNameservers, status)
}

func successOrFailure(op Operation, status string) (bool, error) {
	switch status {
	case "SUCCESS":
		return true, nil
	case "FAILURE":
		return false, nil
	default:
		return false, unmapped(op, status)
	}
}
