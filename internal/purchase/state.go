package purchase

import (
	"slices"

	"github.com/benithors/domaincli/internal/fault"
)

type State string

const (
	Start                 State = "start"
	AvailabilityChecked   State = "availability_checked"
	PaymentAuthorized     State = "payment_authorized"
	RegistrationSubmitted State = "registration_submitted"
	Committed             State = "committed"
	Refunded              State = "refunded"
	Failed                State = "failed"
)

var transitions = map[State][]State{
	Start:                 {AvailabilityChecked, Failed},
	AvailabilityChecked:   {PaymentAuthorized, Failed},
	PaymentAuthorized:     {RegistrationSubmitted, Failed},
	RegistrationSubmitted: {Committed, Refunded, Failed},
}

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// Transaction tracks one purchase call. It lives only for the duration of
// the call.
type Transaction struct {
	Domain    string
	AccountID string
	ChargeID  string
	State     State
}

func newTransaction(domain string) *Transaction {
	return &Transaction{Domain: domain, State: Start}
}

func (t *Transaction) advance(to State) error {
	if !slices.Contains(transitions[t.State], to) {
		return fault.New(fault.OurFault, "purchase of %s: illegal transition %s -> %s", t.Domain, t.State, to)
	}
	t.State = to
	return nil
}

// refundable reports whether a compensating refund may be issued now. Only a
// submitted registration that came back as a failure qualifies, and only once.
func (t *Transaction) refundable() bool {
	return t.State == RegistrationSubmitted && t.ChargeID != ""
}
