package purchase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/benithors/domaincli/internal/account"
	"github.com/benithors/domaincli/internal/account/memory"
	"github.com/benithors/domaincli/internal/fault"
	"github.com/benithors/domaincli/internal/lock"
	"github.com/benithors/domaincli/internal/mocks"
	"github.com/benithors/domaincli/internal/payment"
	"github.com/benithors/domaincli/internal/registrar"
	"github.com/benithors/domaincli/internal/translate"
)

type countingLocker struct {
	lock.Locker
	calls int
}

func (c *countingLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (lock.Unlock, error) {
	c.calls++
	return c.Locker.Acquire(ctx, key, ttl)
}

type fixture struct {
	reg    *mocks.Registrar
	gw     *mocks.Gateway
	store  *memory.Store
	locker *countingLocker
	svc    *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		reg:    mocks.NewRegistrar(t),
		gw:     mocks.NewGateway(t),
		store:  memory.New(),
		locker: &countingLocker{Locker: lock.NewMemory()},
	}
	require.NoError(t, f.store.Insert(context.Background(), account.Account{ID: "ac_abc", CustomerID: "cus_1"}))
	f.svc = New(f.reg, f.gw, f.store,
		WithLocker(f.locker),
		WithNonce(func() string { return "n1" }),
	)
	return f
}

func (f *fixture) expectAvailable(d string) {
	f.reg.On("CheckAvailability", mock.Anything, d).
		Return(registrar.CheckResult{Status: "AVAILABLE"}, nil).Once()
}

func (f *fixture) expectCharge(chargeID string) {
	f.gw.On("Charge", mock.Anything, mock.MatchedBy(func(r payment.ChargeRequest) bool {
		return r.CustomerID == "cus_1" && r.Amount == 1200 && r.Currency == "usd"
	})).Return(payment.Charge{ID: chargeID, Amount: 1200, Currency: "usd"}, nil).Once()
}

func registered(d string) registrar.RegisterResult {
	return registrar.RegisterResult{
		Status:   "SUCCESS",
		Currency: "USD",
		Products: []registrar.Product{{Domain: d, Status: "SUCCESS", Price: "8.95"}},
	}
}

func TestPurchase_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	f.expectAvailable("example.com")
	f.gw.On("Charge", mock.Anything, payment.ChargeRequest{
		CustomerID:     "cus_1",
		Amount:         1200,
		Currency:       "usd",
		Description:    "Registration of example.com for 1 year(s)",
		IdempotencyKey: "purchase-ac_abc-example.com-n1",
	}).Return(payment.Charge{ID: "ch_1"}, nil).Once()
	f.reg.On("RegisterDomain", mock.Anything, mock.MatchedBy(func(r registrar.RegisterRequest) bool {
		if r.Domain != "example.com" || r.Years != 1 || len(r.Contacts) != 4 {
			return false
		}
		for _, role := range registrar.ContactRoles {
			c := r.Contacts[role]
			if c.FirstName != "Domain" || c.Email != "example.com@domaincli.com" || c.PostalCode != "94301" {
				return false
			}
		}
		return true
	})).Return(registered("example.com"), nil).Once()

	res, err := f.svc.Purchase(ctx, Request{Domain: "Example.COM", Years: 1, AccountID: "ac_abc"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "example.com")
	assert.Equal(t, Committed, res.State)
	assert.Equal(t, "ch_1", res.ChargeID)

	a, err := f.store.Get(ctx, "ac_abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com"}, a.Domains)
	f.gw.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
}

func TestPurchase_StatusFallsBackToProduct(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.expectAvailable("example.org")
	f.expectCharge("ch_2")
	res := registered("example.org")
	res.Status = ""
	f.reg.On("RegisterDomain", mock.Anything, mock.Anything).Return(res, nil).Once()

	out, err := f.svc.Purchase(context.Background(), Request{Domain: "example.org", Years: 1, AccountID: "ac_abc"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, Committed, out.State)
}

func TestPurchase_UnsupportedTLD(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res, err := f.svc.Purchase(context.Background(), Request{Domain: "example.io", Years: 1, AccountID: "ac_abc"})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.YourFault))
	assert.Contains(t, fault.Message(err), "com, info, net, org, us")
	assert.Equal(t, Start, res.State)
	assert.Zero(t, f.locker.calls)
}

func TestPurchase_InvalidInput(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for _, req := range []Request{
		{Domain: "", Years: 1},
		{Domain: "not a domain", Years: 1},
		{Domain: "example.com", Years: 0},
		{Domain: "example.com", Years: 11},
	} {
		_, err := f.svc.Purchase(context.Background(), req)
		assert.True(t, fault.Is(err, fault.YourFault), "req=%+v err=%v", req, err)
	}
	assert.Zero(t, f.locker.calls)
}

func TestPurchase_Unavailable(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.reg.On("CheckAvailability", mock.Anything, "example.com").
		Return(registrar.CheckResult{Status: "UNAVAILABLE"}, nil).Once()

	res, err := f.svc.Purchase(context.Background(), Request{Domain: "example.com", Years: 1, AccountID: "ac_abc"})
	assert.True(t, fault.Is(err, fault.YourFault))
	assert.Equal(t, Failed, res.State)
	assert.Empty(t, res.ChargeID)
}

func TestPurchase_AvailabilityIndeterminate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.reg.On("CheckAvailability", mock.Anything, "example.com").
		Return(registrar.CheckResult{Status: "FAILURE", Message: "Registry timeout"}, nil).Once()

	_, err := f.svc.Purchase(context.Background(), Request{Domain: "example.com", Years: 1, AccountID: "ac_abc"})
	assert.True(t, fault.Is(err, fault.TheirFault))
	assert.Equal(t, "Registry timeout", fault.Message(err))
}

func TestPurchase_AvailabilityUnmapped(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.reg.On("CheckAvailability", mock.Anything, "example.com").
		Return(registrar.CheckResult{Status: "MAYBE"}, nil).Once()

	_, err := f.svc.Purchase(context.Background(), Request{Domain: "example.com", Years: 1, AccountID: "ac_abc"})
	assert.True(t, fault.Is(err, fault.OurFault))
	var ue *translate.UnmappedStatusError
	assert.ErrorAs(t, err, &ue)
}

func TestPurchase_AccountProblems(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing id":  "",
		"unknown id":  "ac_nobody",
		"no customer": "ac_nocard",
	}
	for name, id := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			require.NoError(t, f.store.Insert(context.Background(), account.Account{ID: "ac_nocard"}))
			f.expectAvailable("example.com")

			_, err := f.svc.Purchase(context.Background(), Request{Domain: "example.com", Years: 1, AccountID: id})
			assert.True(t, fault.Is(err, fault.YourFault), "err=%v", err)
		})
	}
}

func TestPurchase_CardDeclined(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.expectAvailable("example.com")
	f.gw.On("Charge", mock.Anything, mock.Anything).
		Return(payment.Charge{}, fault.New(fault.YourFault, "Your card was declined.")).Once()

	res, err := f.svc.Purchase(context.Background(), Request{Domain: "example.com", Years: 1, AccountID: "ac_abc"})
	assert.True(t, fault.Is(err, fault.YourFault))
	assert.Equal(t, "Your card was declined.", fault.Message(err))
	assert.Equal(t, Failed, res.State)
}

func TestPurchase_RegistrationFailureRefundsOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	f.expectAvailable("example.com")
	f.expectCharge("ch_1")
	f.reg.On("RegisterDomain", mock.Anything, mock.Anything).
		Return(registrar.RegisterResult{Status: "FAILURE", Message: "Domain is reserved"}, nil).Once()
	f.gw.On("Refund", mock.Anything, "ch_1").Return(payment.Refund{ID: "re_1", ChargeID: "ch_1"}, nil).Once()

	res, err := f.svc.Purchase(ctx, Request{Domain: "example.com", Years: 1, AccountID: "ac_abc"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Domain is reserved", res.Message)
	assert.Equal(t, Refunded, res.State)
	f.gw.AssertNumberOfCalls(t, "Refund", 1)

	a, err := f.store.Get(ctx, "ac_abc")
	require.NoError(t, err)
	assert.Empty(t, a.Domains)
}

func TestPurchase_CallerCancelAfterChargeStillRegistersAndRefunds(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFixture(t)

	live := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })

	f.expectAvailable("example.com")
	f.gw.On("Charge", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(payment.Charge{ID: "ch_1", Amount: 1200, Currency: "usd"}, nil).Once()
	f.reg.On("RegisterDomain", live, mock.Anything).
		Return(registrar.RegisterResult{Status: "FAILURE", Message: "Domain is reserved"}, nil).Once()
	f.gw.On("Refund", live, "ch_1").Return(payment.Refund{ID: "re_1", ChargeID: "ch_1"}, nil).Once()

	res, err := f.svc.Purchase(ctx, Request{Domain: "example.com", Years: 1, AccountID: "ac_abc"})
	require.NoError(t, err)
	assert.Equal(t, Refunded, res.State)
	f.reg.AssertNumberOfCalls(t, "RegisterDomain", 1)
	f.gw.AssertNumberOfCalls(t, "Refund", 1)
}

func TestPurchase_RefundFailureIsCompensationFailed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.expectAvailable("example.com")
	f.expectCharge("ch_1")
	f.reg.On("RegisterDomain", mock.Anything, mock.Anything).
		Return(registrar.RegisterResult{Status: "FAILURE", Message: "nope"}, nil).Once()
	f.gw.On("Refund", mock.Anything, "ch_1").
		Return(payment.Refund{}, fault.New(fault.WhoKnows, "stripe down")).Once()

	res, err := f.svc.Purchase(context.Background(), Request{Domain: "example.com", Years: 1, AccountID: "ac_abc"})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.CompensationFailed))
	assert.Contains(t, fault.Message(err), "ch_1")
	assert.Equal(t, Failed, res.State)
	f.gw.AssertNumberOfCalls(t, "Refund", 1)
}

func TestPurchase_RegistrationTransportErrorKeepsCharge(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.expectAvailable("example.com")
	f.expectCharge("ch_1")
	f.reg.On("RegisterDomain", mock.Anything, mock.Anything).
		Return(registrar.RegisterResult{}, fault.Wrap(errors.New("i/o timeout"), fault.WhoKnows, "unreachable")).Once()

	res, err := f.svc.Purchase(context.Background(), Request{Domain: "example.com", Years: 1, AccountID: "ac_abc"})
	assert.True(t, fault.Is(err, fault.WhoKnows))
	assert.Contains(t, fault.Message(err), "ch_1")
	assert.Equal(t, "ch_1", res.ChargeID)
	assert.Equal(t, Failed, res.State)
	f.gw.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
}

func TestPurchase_AmbiguousResponsesAreNotRefunded(t *testing.T) {
	t.Parallel()

	cases := map[string]registrar.RegisterResult{
		"no status":         {Currency: "USD"},
		"unmapped status":   {Status: "PENDING"},
		"wrong currency":    {Status: "SUCCESS", Currency: "EUR", Products: []registrar.Product{{Domain: "example.com"}}},
		"wrong domain":      {Status: "SUCCESS", Currency: "USD", Products: []registrar.Product{{Domain: "example.net"}}},
		"no product domain": {Status: "SUCCESS", Currency: "USD"},
	}
	for name, reg := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			f := newFixture(t)

			f.expectAvailable("example.com")
			f.expectCharge("ch_1")
			f.reg.On("RegisterDomain", mock.Anything, mock.Anything).Return(reg, nil).Once()

			res, err := f.svc.Purchase(ctx, Request{Domain: "example.com", Years: 1, AccountID: "ac_abc"})
			assert.True(t, fault.Is(err, fault.OurFault), "err=%v", err)
			assert.Equal(t, Failed, res.State)
			f.gw.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)

			a, err := f.store.Get(ctx, "ac_abc")
			require.NoError(t, err)
			assert.Empty(t, a.Domains)
		})
	}
}

func TestPurchase_RegisteredButNotRecorded(t *testing.T) {
	t.Parallel()

	reg := mocks.NewRegistrar(t)
	gw := mocks.NewGateway(t)
	store := mocks.NewAccountStore(t)
	svc := New(reg, gw, store)

	reg.On("CheckAvailability", mock.Anything, "example.com").Return(registrar.CheckResult{Status: "AVAILABLE"}, nil).Once()
	store.On("Get", mock.Anything, "ac_abc").Return(account.Account{ID: "ac_abc", CustomerID: "cus_1"}, nil).Once()
	gw.On("Charge", mock.Anything, mock.Anything).Return(payment.Charge{ID: "ch_1"}, nil).Once()
	reg.On("RegisterDomain", mock.Anything, mock.Anything).Return(registered("example.com"), nil).Once()
	store.On("AddDomain", mock.Anything, "ac_abc", "example.com").Return(errors.New("write concern")).Once()

	_, err := svc.Purchase(context.Background(), Request{Domain: "example.com", Years: 1, AccountID: "ac_abc"})
	assert.True(t, fault.Is(err, fault.OurFault))
	assert.Contains(t, fault.Message(err), "ch_1")
	gw.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
}

func TestPurchase_LockedDomain(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	unlock, err := f.locker.Acquire(ctx, "example.com", time.Minute)
	require.NoError(t, err)
	defer func() { _ = unlock(ctx) }()

	_, err = f.svc.Purchase(ctx, Request{Domain: "example.com", Years: 1, AccountID: "ac_abc"})
	assert.True(t, fault.Is(err, fault.YourFault))
	assert.Contains(t, fault.Message(err), "already in progress")
	f.reg.AssertNotCalled(t, "CheckAvailability", mock.Anything, mock.Anything)
}

func TestPurchase_ReleasesLock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	f.reg.On("CheckAvailability", mock.Anything, "example.com").
		Return(registrar.CheckResult{Status: "UNAVAILABLE"}, nil).Once()
	_, _ = f.svc.Purchase(ctx, Request{Domain: "example.com", Years: 1, AccountID: "ac_abc"})

	unlock, err := f.locker.Acquire(ctx, "example.com", time.Minute)
	require.NoError(t, err)
	_ = unlock(ctx)
}

func TestPurchase_AmountScalesWithYears(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.expectAvailable("example.com")
	f.gw.On("Charge", mock.Anything, mock.MatchedBy(func(r payment.ChargeRequest) bool {
		return r.Amount == 3600
	})).Return(payment.Charge{ID: "ch_3"}, nil).Once()
	f.reg.On("RegisterDomain", mock.Anything, mock.MatchedBy(func(r registrar.RegisterRequest) bool {
		return r.Years == 3
	})).Return(registered("example.com"), nil).Once()

	res, err := f.svc.Purchase(context.Background(), Request{Domain: "example.com", Years: 3, AccountID: "ac_abc"})
	require.NoError(t, err)
	assert.True(t, res.Success)
}
