// Package purchase runs the domain purchase transaction: availability
// check, charge, registration, then either commit to the account or refund
// the charge.
//
// A charge is only refunded after the registrar answers with an explicit
// failure. Transport errors and responses that cannot be interpreted leave
// the outcome unknown; those return an error carrying the charge id and no
// refund is attempted.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benithors/domaincli/internal/account"
	"github.com/benithors/domaincli/internal/domain"
	"github.com/benithors/domaincli/internal/fault"
	"github.com/benithors/domaincli/internal/lock"
	"github.com/benithors/domaincli/internal/metrics"
	"github.com/benithors/domaincli/internal/payment"
	"github.com/benithors/domaincli/internal/registrar"
	"github.com/benithors/domaincli/internal/translate"
)

const (
	MinYears = 1
	MaxYears = 10
)

type Config struct {
	// Amount per registration year in the payment currency's minor unit.
	Amount   int64
	Currency string
	// RegistrarCurrency is what a successful registration must be billed in.
	RegistrarCurrency string
	LockTTL           time.Duration
	SupportEmail      string
}

func DefaultConfig() Config {
	return Config{
		Amount:            1200,
		Currency:          "usd",
		RegistrarCurrency: "USD",
		LockTTL:           lock.DefaultTTL,
		SupportEmail:      "support@domaincli.com",
	}
}

type Request struct {
	Domain    string
	Years     int
	AccountID string
}

type Result struct {
	Success  bool
	Message  string
	Domain   string
	ChargeID string
	State    State
}

type Service struct {
	registrar registrar.Client
	gateway   payment.Gateway
	accounts  account.Store
	locker    lock.Locker
	cfg       Config
	log       *zap.Logger
	metrics   *metrics.Metrics
	nonce     func() string
}

type Option func(s *Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.log = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLocker(l lock.Locker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.cfg = cfg
	}
}

// WithNonce replaces the idempotency nonce source.
func WithNonce(f func() string) Option {
	return func(s *Service) {
		s.nonce = f
	}
}

func New(reg registrar.Client, gateway payment.Gateway, accounts account.Store, opts ...Option) *Service {
	s := &Service{
		registrar: reg,
		gateway:   gateway,
		accounts:  accounts,
		locker:    lock.NewMemory(),
		cfg:       DefaultConfig(),
		log:       zap.NewNop(),
		nonce:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Purchase registers req.Domain for req.Years on behalf of req.AccountID.
//
// A returned error is always classified with the fault package. The Result
// is meaningful alongside an error too: its State and ChargeID say how far
// the transaction got.
func (s *Service) Purchase(ctx context.Context, req Request) (res Result, err error) {
	d, err := validate(req)
	if err != nil {
		s.metrics.IncPurchase("rejected")
		return Result{Domain: req.Domain, State: Start}, err
	}

	tx := newTransaction(d)
	tx.AccountID = strings.TrimSpace(req.AccountID)
	log := s.log.With(zap.String("domain", d), zap.String("account_id", tx.AccountID))

	defer func() {
		res.Domain = d
		res.ChargeID = tx.ChargeID
		res.State = tx.State
		s.metrics.IncPurchase(outcome(tx.State, err))
	}()

	unlock, err := s.locker.Acquire(ctx, d, s.cfg.LockTTL)
	if errors.Is(err, lock.ErrHeld) {
		return Result{}, fault.Wrap(err, fault.YourFault, "A purchase of %s is already in progress.", d)
	}
	if err != nil {
		return Result{}, fault.Wrap(err, fault.OurFault, "could not take the purchase lock for %s", d)
	}
	defer func() {
		if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
			log.Warn("purchase lock release failed", zap.Error(uerr))
		}
	}()

	if err := s.checkAvailability(ctx, tx); err != nil {
		return Result{}, s.fail(tx, err)
	}

	acct, err := account.Resolve(ctx, s.accounts, tx.AccountID)
	if err != nil {
		return Result{}, s.fail(tx, err)
	}
	if acct.CustomerID == "" {
		return Result{}, s.fail(tx, fault.New(fault.YourFault,
			"You don't have a card on file yet. Add one with `domaincli card add` and try again."))
	}

	ch, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		CustomerID:     acct.CustomerID,
		Amount:         s.cfg.Amount * int64(req.Years),
		Currency:       s.cfg.Currency,
		Description:    fmt.Sprintf("Registration of %s for %d year(s)", d, req.Years),
		IdempotencyKey: fmt.Sprintf("purchase-%s-%s-%s", tx.AccountID, d, s.nonce()),
	})
	if err != nil {
		return Result{}, s.fail(tx, fmt.Errorf("charge for %s: %w", d, err))
	}
	tx.ChargeID = ch.ID
	// The charge is captured: a caller going away must not stop the
	// registration or its refund. The registrar client's timeout bounds it.
	ctx = context.WithoutCancel(ctx)
	if err := tx.advance(PaymentAuthorized); err != nil {
		return Result{}, err
	}
	log = log.With(zap.String("charge_id", ch.ID))

	if err := tx.advance(RegistrationSubmitted); err != nil {
		return Result{}, err
	}
	reg, err := s.registrar.RegisterDomain(ctx, registrar.RegisterRequest{
		Domain:   d,
		Years:    req.Years,
		Contacts: placeholderContacts(d),
	})
	if err != nil {
		log.Error("registration outcome unknown; charge kept for reconciliation", zap.Error(err))
		return Result{}, s.fail(tx, fault.Wrap(err, fault.KindOf(err),
			"Registration of %s could not be confirmed. Charge %s was not refunded; contact %s to reconcile.",
			d, ch.ID, s.cfg.SupportEmail))
	}

	ok, err := interpret(reg)
	if err != nil {
		log.Error("registration response not understood; charge kept for reconciliation",
			zap.String("status", reg.Status), zap.Error(err))
		return Result{}, s.fail(tx, fmt.Errorf("register %s (charge %s): %w", d, ch.ID, err))
	}

	if ok {
		return s.commit(ctx, tx, reg, log)
	}
	return s.compensate(ctx, tx, reg, log)
}

func validate(req Request) (string, error) {
	d, err := domain.Normalize(req.Domain)
	if err != nil {
		return "", fault.Wrap(err, fault.YourFault, "Sorry, %q is not a valid domain name.", req.Domain)
	}
	if !domain.IsSupported(d) {
		return "", fault.New(fault.YourFault, "Sorry, we currently only support the following TLDs: %s",
			strings.Join(domain.SupportedTLDs, ", "))
	}
	if req.Years < MinYears || req.Years > MaxYears {
		return "", fault.New(fault.YourFault, "Registration period must be between %d and %d years.", MinYears, MaxYears)
	}
	return d, nil
}

func (s *Service) checkAvailability(ctx context.Context, tx *Transaction) error {
	res, err := s.registrar.CheckAvailability(ctx, tx.Domain)
	if err != nil {
		return fmt.Errorf("check availability of %s: %w", tx.Domain, err)
	}
	avail, err := translate.CheckAvailability(res.Status)
	if err != nil {
		return err
	}
	switch avail {
	case translate.Indeterminate:
		msg := res.Message
		if msg == "" {
			msg = "The registrar could not determine whether " + tx.Domain + " is available."
		}
		return fault.New(fault.TheirFault, "%s", msg)
	case translate.Unavailable:
		return fault.New(fault.YourFault, "Sorry, %s is not available.", tx.Domain)
	}
	return tx.advance(AvailabilityChecked)
}

// interpret reads the registration status: the top-level field when
// present, otherwise the first product's.
func interpret(res registrar.RegisterResult) (bool, error) {
	status := res.Status
	if status == "" {
		if len(res.Products) == 0 || res.Products[0].Status == "" {
			return false, fault.New(fault.OurFault, "registration response carries no status")
		}
		status = res.Products[0].Status
	}
	return translate.RegisterDomain(status)
}

func (s *Service) commit(ctx context.Context, tx *Transaction, reg registrar.RegisterResult, log *zap.Logger) (Result, error) {
	if reg.Currency != s.cfg.RegistrarCurrency {
		log.Error("registered in unexpected currency", zap.String("currency", reg.Currency))
		return Result{}, s.fail(tx, fault.New(fault.OurFault,
			"registration of %s billed in %q, expected %q (charge %s)", tx.Domain, reg.Currency, s.cfg.RegistrarCurrency, tx.ChargeID))
	}
	if len(reg.Products) == 0 || !strings.EqualFold(reg.Products[0].Domain, tx.Domain) {
		got := ""
		if len(reg.Products) > 0 {
			got = reg.Products[0].Domain
		}
		log.Error("registrar confirmed a different domain", zap.String("registered", got))
		return Result{}, s.fail(tx, fault.New(fault.OurFault,
			"registrar confirmed %q, expected %q (charge %s)", got, tx.Domain, tx.ChargeID))
	}

	if err := s.accounts.AddDomain(ctx, tx.AccountID, tx.Domain); err != nil {
		log.Error("domain registered but not recorded on account", zap.Error(err))
		return Result{}, s.fail(tx, fault.Wrap(err, fault.OurFault,
			"%s was registered but could not be recorded on your account (charge %s); contact %s.",
			tx.Domain, tx.ChargeID, s.cfg.SupportEmail))
	}
	if err := tx.advance(Committed); err != nil {
		return Result{}, err
	}
	log.Info("domain purchased")
	return Result{Success: true, Message: fmt.Sprintf("Congratulations! You now own %s.", tx.Domain)}, nil
}

// compensate refunds the charge exactly once. A failed refund is never
// retried here.
func (s *Service) compensate(ctx context.Context, tx *Transaction, reg registrar.RegisterResult, log *zap.Logger) (Result, error) {
	msg := reg.Message
	if msg == "" {
		msg = "The registrar declined to register " + tx.Domain + "."
	}
	if !tx.refundable() {
		return Result{}, s.fail(tx, fault.New(fault.OurFault, "purchase of %s: refund requested in state %s", tx.Domain, tx.State))
	}

	if _, err := s.gateway.Refund(ctx, tx.ChargeID); err != nil {
		s.metrics.IncRefund("failed")
		log.Error("refund failed after rejected registration; money may remain captured",
			zap.String("registrar_message", msg), zap.Error(err))
		_ = tx.advance(Failed)
		return Result{Message: msg}, fault.Wrap(err, fault.CompensationFailed,
			"Registration of %s failed and refunding charge %s did not go through. Contact %s and we'll sort it out.",
			tx.Domain, tx.ChargeID, s.cfg.SupportEmail)
	}
	s.metrics.IncRefund("ok")
	if err := tx.advance(Refunded); err != nil {
		return Result{}, err
	}
	log.Info("registration rejected; charge refunded", zap.String("registrar_message", msg))
	return Result{Success: false, Message: msg}, nil
}

// fail moves tx to Failed and returns err unchanged.
func (s *Service) fail(tx *Transaction, err error) error {
	if !tx.State.Terminal() {
		_ = tx.advance(Failed)
	}
	return err
}

func outcome(st State, err error) string {
	switch st {
	case Committed, Refunded:
		return string(st)
	}
	if fault.Is(err, fault.YourFault) {
		return "rejected"
	}
	if fault.Is(err, fault.CompensationFailed) {
		return "compensation_failed"
	}
	return "failed"
}

func placeholderContacts(d string) map[string]registrar.Contact {
	c := registrar.Contact{
		FirstName:   "Domain",
		LastName:    "Registrant",
		Email:       d + "@domaincli.com",
		PhoneNumber: "+1.7104192312",
		Street:      "701 Webster St",
		City:        "Palo Alto",
		CountryCode: "US",
		PostalCode:  "94301",
	}
	out := make(map[string]registrar.Contact, len(registrar.ContactRoles))
	for _, role := range registrar.ContactRoles {
		out[role] = c
	}
	return out
}
