// Package registrar defines the registrar operations the facade relies on.
package registrar

import "context"

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Client --dir=. --output=../mocks --outpkg=mocks --filename=registrar.go --structname=Registrar

type Client interface {
	Name() string
	CheckAvailability(ctx context.Context, domain string) (CheckResult, error)
	RegisterDomain(ctx context.Context, req RegisterRequest) (RegisterResult, error)
	SetNameservers(ctx context.Context, domain string, nameservers []string) (UpdateResult, error)
	PriceList(ctx context.Context) (PriceList, error)
}

type CheckResult struct {
	Status  string
	Message string
}

// Contact is one registrant/admin/technical/billing profile.
type Contact struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Street      string
	City        string
	CountryCode string
	PostalCode  string
}

// ContactRoles are submitted with every registration, in this order.
var ContactRoles = []string{"Registrant", "Admin", "Technical", "Billing"}

type RegisterRequest struct {
	Domain string
	Years  int

	// Keyed by role from ContactRoles.
	Contacts map[string]Contact
}

type RegisterResult struct {
	// Status is empty when the registrar only reports per-product status.
	Status   string
	Message  string
	Currency string
	Products []Product
}

type Product struct {
	Domain string
	Status string
	Price  string
}

type UpdateResult struct {
	Status  string
	Message string
}

type PriceList struct {
	Status   string
	Currency string
	// Raw is the decoded body, passed through as-is for the admin surface.
	Raw map[string]any
}
