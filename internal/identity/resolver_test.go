package identity

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	accountdomain "github.com/trash2cash/platform/internal/account/domain"
	"go.uber.org/zap"
)

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) Signup(ctx context.Context, req accountdomain.SignupRequest) (accountdomain.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(accountdomain.User), args.Error(1)
}

func (m *mockAccountService) Login(ctx context.Context, req accountdomain.LoginRequest) (accountdomain.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(accountdomain.User), args.Error(1)
}

func (m *mockAccountService) GetByID(ctx context.Context, req accountdomain.GetUserRequest) (accountdomain.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(accountdomain.User), args.Error(1)
}

func (m *mockAccountService) FindByCNIC(ctx context.Context, cnic string) (accountdomain.User, error) {
	args := m.Called(ctx, cnic)
	return args.Get(0).(accountdomain.User), args.Error(1)
}

func (m *mockAccountService) AuthenticateCNIC(ctx context.Context, cnic, pass string) (accountdomain.User, error) {
	args := m.Called(ctx, cnic, pass)
	return args.Get(0).(accountdomain.User), args.Error(1)
}

func newResolver(accounts accountdomain.Service) *Resolver {
	return NewResolver(Params{
		Log:      zap.NewNop(),
		Accounts: accounts,
	})
}

func TestResolvePlainCNIC(t *testing.T) {
	accounts := &mockAccountService{}
	user := accountdomain.User{ID: snowflake.ID(42), Username: "ali", CNIC: "12345-1234567-1"}
	accounts.On("FindByCNIC", mock.Anything, "12345-1234567-1").Return(user, nil)

	resolved, err := newResolver(accounts).Resolve(context.Background(), "12345-1234567-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	accounts.AssertExpectations(t)
}

func TestResolveKeyedTokenVerifiesCredentials(t *testing.T) {
	accounts := &mockAccountService{}
	accounts.On("AuthenticateCNIC", mock.Anything, "12345-1234567-1", "wrong").
		Return(accountdomain.User{}, accountdomain.ErrInvalidCredentials)

	_, err := newResolver(accounts).Resolve(context.Background(), "CNIC:12345-1234567-1|PASS:wrong")
	assert.ErrorIs(t, err, accountdomain.ErrInvalidCredentials)
}

func TestResolveKeyedCNICOnlyResolvesByLookup(t *testing.T) {
	accounts := &mockAccountService{}
	user := accountdomain.User{ID: snowflake.ID(42), Username: "ali", CNIC: "12345-1234567-1"}
	accounts.On("FindByCNIC", mock.Anything, "12345-1234567-1").Return(user, nil)

	resolved, err := newResolver(accounts).Resolve(context.Background(), "CNIC:12345-1234567-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	accounts.AssertNotCalled(t, "AuthenticateCNIC", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveUserOnlyTokenRejected(t *testing.T) {
	accounts := &mockAccountService{}

	_, err := newResolver(accounts).Resolve(context.Background(), "USER:42")
	assert.ErrorIs(t, err, ErrMalformedToken)
	accounts.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestResolveUserTokenMismatch(t *testing.T) {
	accounts := &mockAccountService{}
	user := accountdomain.User{ID: snowflake.ID(42), Username: "ali", CNIC: "12345-1234567-1"}
	accounts.On("GetByID", mock.Anything, accountdomain.GetUserRequest{ID: "42"}).Return(user, nil)

	_, err := newResolver(accounts).Resolve(context.Background(), "USER:42|CNIC:99999-9999999-9|USERNAME:ali")
	assert.ErrorIs(t, err, ErrIdentityMismatch)
}

func TestResolveUserTokenMatches(t *testing.T) {
	accounts := &mockAccountService{}
	user := accountdomain.User{ID: snowflake.ID(42), Username: "ali", CNIC: "12345-1234567-1"}
	accounts.On("GetByID", mock.Anything, accountdomain.GetUserRequest{ID: "42"}).Return(user, nil)

	resolved, err := newResolver(accounts).Resolve(context.Background(), "USER:42|CNIC:12345-1234567-1|USERNAME:ali")
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestResolveUserTokenStaleUsername(t *testing.T) {
	accounts := &mockAccountService{}
	user := accountdomain.User{ID: snowflake.ID(42), Username: "ali_new", CNIC: "12345-1234567-1"}
	accounts.On("GetByID", mock.Anything, accountdomain.GetUserRequest{ID: "42"}).Return(user, nil)

	// A rename after the code was printed must not lock the user out.
	resolved, err := newResolver(accounts).Resolve(context.Background(), "USER:42|CNIC:12345-1234567-1|USERNAME:ali")
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestResolveUserTokenBadID(t *testing.T) {
	accounts := &mockAccountService{}
	accounts.On("GetByID", mock.Anything, accountdomain.GetUserRequest{ID: "abc"}).
		Return(accountdomain.User{}, accountdomain.ErrInvalidID)

	_, err := newResolver(accounts).Resolve(context.Background(), "USER:abc|CNIC:12345-1234567-1")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestResolveMalformedNeverHitsStorage(t *testing.T) {
	accounts := &mockAccountService{}

	_, err := newResolver(accounts).Resolve(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrMalformedToken)
	accounts.AssertNotCalled(t, "FindByCNIC", mock.Anything, mock.Anything)
}
