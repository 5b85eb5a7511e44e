package nameserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/benithors/domaincli/internal/account"
	"github.com/benithors/domaincli/internal/account/memory"
	"github.com/benithors/domaincli/internal/fault"
	"github.com/benithors/domaincli/internal/mocks"
	"github.com/benithors/domaincli/internal/registrar"
)

func newUpdater(t *testing.T) (*Updater, *mocks.Registrar) {
	t.Helper()

	store := memory.New()
	require.NoError(t, store.Insert(context.Background(), account.Account{ID: "ac_abc", Domains: []string{"example.com"}}))
	reg := mocks.NewRegistrar(t)
	return NewUpdater(reg, store, "help@domaincli.com", nil), reg
}

func TestSet_Success(t *testing.T) {
	t.Parallel()
	u, reg := newUpdater(t)

	reg.On("SetNameservers", mock.Anything, "example.com", []string{"ns1.example.net", "ns2.example.net"}).
		Return(registrar.UpdateResult{Status: "SUCCESS"}, nil).Once()

	res, err := u.Set(context.Background(), "ac_abc", "example.com", " ns1.example.net, ,NS2.example.net. ")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "Set nameservers to ns1.example.net, ns2.example.net", res.Message)
}

func TestSet_RegistrarFailure(t *testing.T) {
	t.Parallel()
	u, reg := newUpdater(t)

	reg.On("SetNameservers", mock.Anything, "example.com", mock.Anything).
		Return(registrar.UpdateResult{Status: "FAILURE", Message: "Invalid nameserver"}, nil).Once()

	res, err := u.Set(context.Background(), "ac_abc", "example.com", "ns1.example.net")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "Invalid nameserver", res.Message)
}

func TestSet_NotOwnedMakesNoRegistrarCall(t *testing.T) {
	t.Parallel()
	u, reg := newUpdater(t)

	res, err := u.Set(context.Background(), "ac_abc", "example.org", "ns1.example.net")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "don't appear to own that domain")
	assert.Contains(t, res.Message, "help@domaincli.com")
	reg.AssertNotCalled(t, "SetNameservers", mock.Anything, mock.Anything, mock.Anything)
}

func TestSet_CallerFaults(t *testing.T) {
	t.Parallel()
	u, _ := newUpdater(t)
	ctx := context.Background()

	_, err := u.Set(ctx, "ac_abc", "example.com", " , ")
	assert.True(t, fault.Is(err, fault.YourFault))

	_, err = u.Set(ctx, "", "example.com", "ns1.example.net")
	assert.True(t, fault.Is(err, fault.YourFault))

	_, err = u.Set(ctx, "ac_unknown", "example.com", "ns1.example.net")
	assert.True(t, fault.Is(err, fault.YourFault))

	_, err = u.Set(ctx, "ac_abc", "", "ns1.example.net")
	assert.True(t, fault.Is(err, fault.YourFault))
}

func TestSet_UnmappedStatus(t *testing.T) {
	t.Parallel()
	u, reg := newUpdater(t)

	reg.On("SetNameservers", mock.Anything, "example.com", mock.Anything).
		Return(registrar.UpdateResult{Status: "QUEUED"}, nil).Once()

	_, err := u.Set(context.Background(), "ac_abc", "example.com", "ns1.example.net")
	assert.True(t, fault.Is(err, fault.OurFault))
}
