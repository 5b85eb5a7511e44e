package payment

import "context"

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Gateway --dir=. --output=../mocks --outpkg=mocks --filename=gateway.go --structname=Gateway

// Gateway is the subset of a card processor used by the facade. Errors are
// classified with the fault package: card declines are the caller's fault,
// malformed requests are ours, everything else is undetermined.
type Gateway interface {
	CreateCustomer(ctx context.Context, req CustomerRequest) (Customer, error)
	GetCustomer(ctx context.Context, customerID string) (Customer, error)
	SetDefaultSource(ctx context.Context, customerID, cardToken string) error
	Charge(ctx context.Context, req ChargeRequest) (Charge, error)
	Refund(ctx context.Context, chargeID string) (Refund, error)
}

type CustomerRequest struct {
	Description string
	AccountID   string
	// Source is an optional card token attached as the default source.
	Source string
}

type Customer struct {
	ID string
	// DefaultCard is nil when the customer has no card source on file.
	DefaultCard *Card
}

type Card struct {
	Brand    string
	ExpMonth int
	ExpYear  int
	Last4    string
}

type ChargeRequest struct {
	CustomerID     string
	Amount         int64
	Currency       string
	Description    string
	IdempotencyKey string
}

type Charge struct {
	ID       string
	Amount   int64
	Currency string
}

type Refund struct {
	ID       string
	ChargeID string
	Status   string
}
