package accounts_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accounts "github.com/stormhaven/go-accounts"
)

func verifiedAccount(t *testing.T, password string) *accounts.Account {
	t.Helper()

	hash, err := accounts.HashPassword(password)
	require.NoError(t, err)

	return &accounts.Account{
		ID:           uuid.New(),
		Email:        "pepe@example.com",
		Name:         "Pepe",
		Verified:     true,
		PasswordHash: hash,
	}
}

func TestAccountProvider_VerifyIdentity(t *testing.T) {
	store := &MockAccounts{}
	account := verifiedAccount(t, "super-secret")

	store.On("GetByEmail", mock.Anything, "pepe@example.com").
		Return(account, nil).Once()

	provider := accounts.NewAccountProvider(store).WithLogger(testLogger{})

	identity, err := provider.VerifyIdentity(context.Background(), "pepe@example.com", "super-secret")
	require.NoError(t, err)

	assert.Equal(t, account.ID.String(), identity.ID())
	assert.Equal(t, "Pepe", identity.Name())
	assert.Equal(t, "pepe@example.com", identity.Email())
}

func TestAccountProvider_VerifyIdentityUnknownEmail(t *testing.T) {
	store := &MockAccounts{}

	store.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	provider := accounts.NewAccountProvider(store)

	_, err := provider.VerifyIdentity(context.Background(), "ghost@example.com", "whatever")
	require.ErrorIs(t, err, accounts.ErrUserNotFound)
}

func TestAccountProvider_VerifyIdentityUnverified(t *testing.T) {
	store := &MockAccounts{}
	account := verifiedAccount(t, "super-secret")
	account.Verified = false

	store.On("GetByEmail", mock.Anything, "pepe@example.com").
		Return(account, nil).Once()

	provider := accounts.NewAccountProvider(store)

	_, err := provider.VerifyIdentity(context.Background(), "pepe@example.com", "super-secret")
	require.ErrorIs(t, err, accounts.ErrNotVerified)
}

func TestAccountProvider_VerifyIdentityWrongPassword(t *testing.T) {
	store := &MockAccounts{}

	store.On("GetByEmail", mock.Anything, "pepe@example.com").
		Return(verifiedAccount(t, "super-secret"), nil).Once()

	provider := accounts.NewAccountProvider(store)

	_, err := provider.VerifyIdentity(context.Background(), "pepe@example.com", "not-the-password")
	require.ErrorIs(t, err, accounts.ErrIncorrectPassword)
}

func TestAccountProvider_FindIdentityByIdentifier(t *testing.T) {
	store := &MockAccounts{}
	account := verifiedAccount(t, "super-secret")

	store.On("GetByID", mock.Anything, account.ID.String()).
		Return(account, nil).Once()
	store.On("GetByEmail", mock.Anything, "pepe@example.com").
		Return(account, nil).Once()

	provider := accounts.NewAccountProvider(store)

	byID, err := provider.FindIdentityByIdentifier(context.Background(), account.ID.String())
	require.NoError(t, err)
	assert.Equal(t, account.ID.String(), byID.ID())

	byEmail, err := provider.FindIdentityByIdentifier(context.Background(), "pepe@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID.String(), byEmail.ID())

	store.AssertExpectations(t)
}

func TestAccountProvider_FindIdentityByIdentifierNotFound(t *testing.T) {
	store := &MockAccounts{}

	store.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	provider := accounts.NewAccountProvider(store)

	_, err := provider.FindIdentityByIdentifier(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, accounts.ErrUserNotFound)
}
