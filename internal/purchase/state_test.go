package purchase

import (
	"testing"

	"github.com/benithors/domaincli/internal/fault"
)

func TestTransaction_LegalPath(t *testing.T) {
	t.Parallel()

	tx := newTransaction("example.com")
	for _, to := range []State{AvailabilityChecked, PaymentAuthorized, RegistrationSubmitted, Refunded} {
		if err := tx.advance(to); err != nil {
			t.Fatalf("advance(%s): %v", to, err)
		}
	}
	if !tx.State.Terminal() {
		t.Fatalf("state %s should be terminal", tx.State)
	}
}

func TestTransaction_IllegalTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to State
	}{
		{Start, PaymentAuthorized},
		{AvailabilityChecked, RegistrationSubmitted},
		{PaymentAuthorized, Refunded},
		{Refunded, Refunded},
		{Committed, Refunded},
		{Failed, Refunded},
	}
	for _, tc := range cases {
		tx := &Transaction{Domain: "example.com", State: tc.from}
		err := tx.advance(tc.to)
		if !fault.Is(err, fault.OurFault) {
			t.Fatalf("%s -> %s: err=%v, want our_fault", tc.from, tc.to, err)
		}
		if tx.State != tc.from {
			t.Fatalf("%s -> %s: state changed to %s", tc.from, tc.to, tx.State)
		}
	}
}

func TestTransaction_RefundableOnlyAfterSubmission(t *testing.T) {
	t.Parallel()

	tx := &Transaction{Domain: "example.com", State: PaymentAuthorized, ChargeID: "ch_1"}
	if tx.refundable() {
		t.Fatalf("refundable before submission")
	}
	tx.State = RegistrationSubmitted
	if !tx.refundable() {
		t.Fatalf("not refundable after submission")
	}
	tx.State = Refunded
	if tx.refundable() {
		t.Fatalf("refundable twice")
	}
}
