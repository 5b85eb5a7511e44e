package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/benithors/domaincli/internal/fault"
	"github.com/benithors/domaincli/internal/payment"
)

// Service implements create_account, get_card and add_card.
type Service struct {
	store   Store
	gateway payment.Gateway
	log     *zap.Logger
	now     func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.log = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService constructs a Service. gateway may be nil, in which case card
// operations report our_fault.
func NewService(store Store, gateway payment.Gateway, opts ...Option) *Service {
	s := &Service{store: store, gateway: gateway, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CardInfo is the caller-facing rendition of a default card.
type CardInfo struct {
	Type     string `json:"type"`
	ExpMonth string `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
	Last4    string `json:"last4"`
}

// Create mints and stores a new account. A payment customer is created
// eagerly when possible; failing that, AddCard creates it later.
func (s *Service) Create(ctx context.Context, username string) (Account, error) {
	a := Account{
		ID:        NewID(),
		Username:  strings.TrimSpace(username),
		Domains:   []string{},
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Insert(ctx, a); err != nil {
		return Account{}, fault.Wrap(err, fault.OurFault, "could not create account")
	}
	if s.gateway == nil {
		return a, nil
	}

	desc := a.Username
	if desc == "" {
		desc = a.ID
	}
	c, err := s.gateway.CreateCustomer(ctx, payment.CustomerRequest{Description: desc, AccountID: a.ID})
	if err != nil {
		s.log.Warn("payment customer not created; will retry on add_card",
			zap.String("account_id", a.ID), zap.Error(err))
		return a, nil
	}
	if err := s.store.SetCustomer(ctx, a.ID, c.ID); err != nil {
		s.log.Warn("payment customer not recorded; will retry on add_card",
			zap.String("account_id", a.ID), zap.String("customer_id", c.ID), zap.Error(err))
		return a, nil
	}
	a.CustomerID = c.ID
	return a, nil
}

// GetCard returns the default card on file, or nil when there is none.
func (s *Service) GetCard(ctx context.Context, id string) (*CardInfo, error) {
	a, err := Resolve(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if a.CustomerID == "" {
		return nil, nil
	}
	if s.gateway == nil {
		return nil, fault.New(fault.OurFault, "payment gateway not configured")
	}

	c, err := s.gateway.GetCustomer(ctx, a.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	if c.DefaultCard == nil {
		return nil, nil
	}
	return &CardInfo{
		Type:     c.DefaultCard.Brand,
		ExpMonth: fmt.Sprintf("%02d", c.DefaultCard.ExpMonth),
		ExpYear:  c.DefaultCard.ExpYear,
		Last4:    c.DefaultCard.Last4,
	}, nil
}

// AddCard attaches cardToken as the account's default card, creating the
// payment customer on first use.
func (s *Service) AddCard(ctx context.Context, id, cardToken string) error {
	cardToken = strings.TrimSpace(cardToken)
	if cardToken == "" {
		return fault.New(fault.YourFault, "Missing card_token.")
	}
	a, err := Resolve(ctx, s.store, id)
	if err != nil {
		return err
	}
	if s.gateway == nil {
		return fault.New(fault.OurFault, "payment gateway not configured")
	}

	if a.CustomerID != "" {
		if err := s.gateway.SetDefaultSource(ctx, a.CustomerID, cardToken); err != nil {
			return fmt.Errorf("add card: %w", err)
		}
		return nil
	}

	desc := a.Username
	if desc == "" {
		desc = a.ID
	}
	c, err := s.gateway.CreateCustomer(ctx, payment.CustomerRequest{Description: desc, AccountID: a.ID, Source: cardToken})
	if err != nil {
		return fmt.Errorf("add card: %w", err)
	}
	if err := s.store.SetCustomer(ctx, a.ID, c.ID); err != nil {
		return fault.Wrap(err, fault.OurFault, "card saved but not linked to account (customer %s)", c.ID)
	}
	return nil
}
