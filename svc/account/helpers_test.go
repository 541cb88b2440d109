package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shubhamtiwari158/securify/pkg/clock"
	"github.com/shubhamtiwari158/securify/pkg/password"
	"github.com/shubhamtiwari158/securify/pkg/totp"
	"github.com/shubhamtiwari158/securify/svc/account"
	"github.com/shubhamtiwari158/securify/svc/account/memstore"
)

const (
	testEmail    = "a@x.com"
	testPassword = "Abc12345!"
)

var epoch = time.Unix(1_700_000_010, 0).UTC()

type fixture struct {
	store   *memstore.Store
	pending *memstore.PendingStore
	clock   *clock.Manual
	auth    *account.Authenticator
	enroll  *account.Enrollment
}

func testOptions(clk clock.Clock, extra ...account.Option) []account.Option {
	opts := []account.Option{
		account.WithClock(clk),
		account.WithPasswordPool(password.MustNewPool(password.NewBcrypt(bcrypt.MinCost), 2)),
	}
	return append(opts, extra...)
}

func newFixture(t *testing.T, extra ...account.Option) *fixture {
	t.Helper()

	clk := clock.NewManual(epoch)
	store := memstore.New()
	pending := memstore.NewPendingStore(clk)
	opts := testOptions(clk, append([]account.Option{account.WithPendingStore(pending)}, extra...)...)

	return &fixture{
		store:   store,
		pending: pending,
		clock:   clk,
		auth:    account.NewAuthenticator(store, opts...),
		enroll:  account.NewEnrollment(store, opts...),
	}
}

func (f *fixture) register(t *testing.T) *account.Account {
	t.Helper()
	acc, err := f.auth.Register(context.Background(), account.RegisterInput{
		Username: "alice",
		Email:    testEmail,
		Password: testPassword,
	})
	require.NoError(t, err)
	return acc
}

// enable registers an account and takes it to StateEnabled.
func (f *fixture) enable(t *testing.T) (*account.Account, totp.Secret) {
	t.Helper()
	ctx := context.Background()

	acc := f.register(t)
	secret, err := f.enroll.BeginEnrollment(ctx, acc.ID)
	require.NoError(t, err)

	ok, err := f.enroll.ConfirmEnrollment(ctx, acc.ID, f.code(t, secret, 0))
	require.NoError(t, err)
	require.True(t, ok)
	return acc, secret
}

// code returns the TOTP code for secret at the fixture clock plus offset.
func (f *fixture) code(t *testing.T, secret totp.Secret, offset time.Duration) string {
	t.Helper()
	code, err := totp.GenerateCode(secret.Base32, f.clock.Now().Add(offset))
	require.NoError(t, err)
	return code
}

func (f *fixture) state(t *testing.T, id uuid.UUID) account.State {
	t.Helper()
	st, err := f.enroll.Status(context.Background(), id)
	require.NoError(t, err)
	return st
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	args := m.Called(ctx, email)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *mockStore) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *mockStore) Create(ctx context.Context, acc *account.Account) error {
	return m.Called(ctx, acc).Error(0)
}

func (m *mockStore) Update(ctx context.Context, id uuid.UUID, patch account.Patch) (*account.Account, error) {
	args := m.Called(ctx, id, patch)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

// blockingStore never answers before the context is done.
type blockingStore struct {
	*memstore.Store
}

func (b blockingStore) FindByID(ctx context.Context, _ uuid.UUID) (*account.Account, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b blockingStore) FindByEmail(ctx context.Context, _ string) (*account.Account, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
