// Package account holds the minimal per-user state the facade keeps: an
// opaque token, the set of domains bought through it and a reference to a
// payment customer. Card data never lives here.
package account

import (
	"context"
	"encoding/hex"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/benithors/domaincli/internal/fault"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Store --dir=. --output=../mocks --outpkg=mocks --filename=store.go --structname=AccountStore

const IDPrefix = "ac_"

var ErrNotFound = errors.New("account not found")

type Account struct {
	ID         string
	Username   string
	Domains    []string
	CustomerID string
	CreatedAt  time.Time
}

// Owns reports whether domain is in the account's domain set.
func (a Account) Owns(domain string) bool {
	return slices.Contains(a.Domains, domain)
}

// Store persists accounts keyed by ID. AddDomain has set semantics.
// Mutations on a missing ID return ErrNotFound.
type Store interface {
	Get(ctx context.Context, id string) (Account, error)
	Insert(ctx context.Context, a Account) error
	AddDomain(ctx context.Context, id, domain string) error
	SetCustomer(ctx context.Context, id, customerID string) error
}

// NewID mints an opaque account token: "ac_" followed by 32 hex digits.
func NewID() string {
	u := uuid.New()
	return IDPrefix + hex.EncodeToString(u[:])
}

// Resolve loads the account named by id, mapping the ways that can go wrong
// to caller or local faults.
func Resolve(ctx context.Context, store Store, id string) (Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Account{}, fault.New(fault.YourFault, "Missing user_id. Seems like a bug in the client library?")
	}
	a, err := store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Account{}, fault.Wrap(err, fault.YourFault, "Invalid user_id. Check your config file (~/.domaincli by default)")
	}
	if err != nil {
		return Account{}, fault.Wrap(err, fault.OurFault, "account store unavailable")
	}
	return a, nil
}
