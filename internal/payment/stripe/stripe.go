// Package stripe implements payment.Gateway on the Stripe API.
package stripe

import (
	"context"
	"errors"
	"net/http"
	"strings"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"

	"github.com/benithors/domaincli/internal/fault"
	"github.com/benithors/domaincli/internal/payment"
)

type Options struct {
	SecretKey string
	// BaseURL overrides the API host, mainly for tests.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type Gateway struct {
	api *client.API
	log *zap.Logger
}

var _ payment.Gateway = (*Gateway)(nil)

func New(opts Options) (*Gateway, error) {
	opts.SecretKey = strings.TrimSpace(opts.SecretKey)
	if opts.SecretKey == "" {
		return nil, fault.New(fault.OurFault, "stripe: missing secret key (set payment.secret_key)")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	cfg := &stripego.BackendConfig{
		HTTPClient:        opts.HTTPClient,
		MaxNetworkRetries: stripego.Int64(0),
		LeveledLogger:     &stripego.LeveledLogger{Level: stripego.LevelNull},
	}
	if opts.BaseURL != "" {
		cfg.URL = stripego.String(strings.TrimRight(opts.BaseURL, "/"))
	}
	b := stripego.GetBackendWithConfig(stripego.APIBackend, cfg)

	return &Gateway{
		api: client.New(opts.SecretKey, &stripego.Backends{API: b, Connect: b, Uploads: b}),
		log: opts.Logger.With(zap.String("gateway", "stripe")),
	}, nil
}

func (g *Gateway) CreateCustomer(ctx context.Context, req payment.CustomerRequest) (payment.Customer, error) {
	params := &stripego.CustomerParams{}
	params.Context = ctx
	if req.Description != "" {
		params.Description = stripego.String(req.Description)
	}
	if req.Source != "" {
		params.Source = stripego.String(req.Source)
	}
	if req.AccountID != "" {
		params.AddMetadata("account_id", req.AccountID)
	}
	params.AddExpand("default_source")

	c, err := g.api.Customers.New(params)
	if err != nil {
		return payment.Customer{}, classify("create customer", err)
	}
	return toCustomer(c), nil
}

func (g *Gateway) GetCustomer(ctx context.Context, customerID string) (payment.Customer, error) {
	params := &stripego.CustomerParams{}
	params.Context = ctx
	params.AddExpand("default_source")

	c, err := g.api.Customers.Get(customerID, params)
	if err != nil {
		return payment.Customer{}, classify("get customer", err)
	}
	return toCustomer(c), nil
}

// SetDefaultSource replaces the customer's default card with token.
func (g *Gateway) SetDefaultSource(ctx context.Context, customerID, cardToken string) error {
	params := &stripego.CustomerParams{Source: stripego.String(cardToken)}
	params.Context = ctx

	if _, err := g.api.Customers.Update(customerID, params); err != nil {
		return classify("update customer", err)
	}
	return nil
}

func (g *Gateway) Charge(ctx context.Context, req payment.ChargeRequest) (payment.Charge, error) {
	params := &stripego.ChargeParams{
		Amount:   stripego.Int64(req.Amount),
		Currency: stripego.String(req.Currency),
		Customer: stripego.String(req.CustomerID),
	}
	params.Context = ctx
	if req.Description != "" {
		params.Description = stripego.String(req.Description)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	ch, err := g.api.Charges.New(params)
	if err != nil {
		return payment.Charge{}, classify("charge", err)
	}
	return payment.Charge{ID: ch.ID, Amount: ch.Amount, Currency: string(ch.Currency)}, nil
}

// Refund refunds chargeID in full. The idempotency key is derived from the
// charge so a replayed request cannot refund twice.
func (g *Gateway) Refund(ctx context.Context, chargeID string) (payment.Refund, error) {
	params := &stripego.RefundParams{Charge: stripego.String(chargeID)}
	params.Context = ctx
	params.SetIdempotencyKey("refund-" + chargeID)

	r, err := g.api.Refunds.New(params)
	if err != nil {
		return payment.Refund{}, classify("refund", err)
	}
	out := payment.Refund{ID: r.ID, ChargeID: chargeID, Status: string(r.Status)}
	if r.Charge != nil && r.Charge.ID != "" {
		out.ChargeID = r.Charge.ID
	}
	return out, nil
}

func toCustomer(c *stripego.Customer) payment.Customer {
	out := payment.Customer{ID: c.ID}
	if c.DefaultSource != nil && c.DefaultSource.Card != nil {
		card := c.DefaultSource.Card
		out.DefaultCard = &payment.Card{
			Brand:    string(card.Brand),
			ExpMonth: int(card.ExpMonth),
			ExpYear:  int(card.ExpYear),
			Last4:    card.Last4,
		}
	}
	return out
}

func classify(op string, err error) error {
	var se *stripego.Error
	if !errors.As(err, &se) {
		return fault.Wrap(err, fault.WhoKnows, "The payment processor could not be reached (%s)", op)
	}
	switch se.Type {
	case stripego.ErrorTypeCard:
		msg := se.Msg
		if msg == "" {
			msg = "Your card was declined."
		}
		return fault.Wrap(err, fault.YourFault, "%s", msg)
	case stripego.ErrorTypeInvalidRequest:
		return fault.Wrap(err, fault.OurFault, "stripe: %s rejected: %s", op, se.Msg)
	default:
		return fault.Wrap(err, fault.WhoKnows, "The payment processor failed (%s): %s", op, se.Msg)
	}
}
