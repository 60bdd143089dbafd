package accounts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accounts "github.com/stormhaven/go-accounts"
)

func TestRegisterAccountHandler_Execute(t *testing.T) {
	store := &MockAccounts{}
	notifier := &MockNotifier{}
	sink := &capturingSink{}

	store.On("GetByEmailTx", mock.Anything, mock.Anything, "pepe@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	registered := &accounts.Account{
		ID:    uuid.New(),
		Email: "pepe@example.com",
		Name:  "Pepe",
	}

	var created *accounts.Account
	store.On("RegisterTx", mock.Anything, mock.Anything, mock.Anything).
		Return(registered, nil).
		Run(func(args mock.Arguments) {
			created = args.Get(2).(*accounts.Account)
		}).Once()

	notifier.On("Deliver", mock.Anything, mock.MatchedBy(func(n accounts.Notification) bool {
		return n.To == "pepe@example.com" &&
			n.Name == "Pepe" &&
			n.Code == "ABC123" &&
			n.Kind == accounts.NotificationVerification
	})).Return(nil).Once()

	handler := accounts.NewRegisterAccountHandler(&stubRepoManager{store: store}, notifier).
		WithCodeGenerator(staticCodes("ABC123")).
		WithActivitySink(sink).
		WithLogger(testLogger{})

	err := handler.Execute(context.Background(), accounts.RegisterAccountMessage{
		Email:    "pepe@example.com",
		Name:     "Pepe",
		Password: "super-secret",
	})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, "pepe@example.com", created.Email)
	assert.False(t, created.Verified)
	require.NotNil(t, created.EmailCode)
	assert.Equal(t, "ABC123", *created.EmailCode)
	require.NotNil(t, created.EmailCodeSentAt)
	require.NoError(t, accounts.ComparePasswordAndHash("super-secret", created.PasswordHash))

	require.Len(t, sink.events, 1)
	assert.Equal(t, accounts.ActivityEventRegisterSuccess, sink.events[0].EventType)
	assert.Equal(t, "pepe@example.com", sink.events[0].Metadata["email"])

	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestRegisterAccountHandler_DuplicateEmail(t *testing.T) {
	store := &MockAccounts{}
	notifier := &MockNotifier{}

	store.On("GetByEmailTx", mock.Anything, mock.Anything, "pepe@example.com").
		Return(&accounts.Account{Email: "pepe@example.com"}, nil).Once()

	handler := accounts.NewRegisterAccountHandler(&stubRepoManager{store: store}, notifier)

	err := handler.Execute(context.Background(), accounts.RegisterAccountMessage{
		Email:    "pepe@example.com",
		Name:     "Pepe",
		Password: "super-secret",
	})
	require.ErrorIs(t, err, accounts.ErrDuplicateEmail)

	store.AssertExpectations(t)
	notifier.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestRegisterAccountHandler_NotifierFailureAbortsRegistration(t *testing.T) {
	store := &MockAccounts{}
	notifier := &MockNotifier{}

	store.On("GetByEmailTx", mock.Anything, mock.Anything, "pepe@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()
	store.On("RegisterTx", mock.Anything, mock.Anything, mock.Anything).
		Return(&accounts.Account{ID: uuid.New(), Email: "pepe@example.com", Name: "Pepe"}, nil).Once()

	notifier.On("Deliver", mock.Anything, mock.Anything).
		Return(errors.New("smtp: connection refused")).Once()

	sink := &capturingSink{}
	handler := accounts.NewRegisterAccountHandler(&stubRepoManager{store: store}, notifier).
		WithCodeGenerator(staticCodes("ABC123")).
		WithActivitySink(sink)

	err := handler.Execute(context.Background(), accounts.RegisterAccountMessage{
		Email:    "pepe@example.com",
		Name:     "Pepe",
		Password: "super-secret",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to deliver verification code")
	assert.Empty(t, sink.events)

	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestRegisterAccountHandler_EmptyPassword(t *testing.T) {
	store := &MockAccounts{}

	store.On("GetByEmailTx", mock.Anything, mock.Anything, "pepe@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	handler := accounts.NewRegisterAccountHandler(&stubRepoManager{store: store}, nil)

	err := handler.Execute(context.Background(), accounts.RegisterAccountMessage{
		Email: "pepe@example.com",
		Name:  "Pepe",
	})
	require.Error(t, err)
	store.AssertNotCalled(t, "RegisterTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterAccountHandler_CancelledContext(t *testing.T) {
	handler := accounts.NewRegisterAccountHandler(&stubRepoManager{store: &MockAccounts{}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := handler.Execute(ctx, accounts.RegisterAccountMessage{
		Email:    "pepe@example.com",
		Password: "super-secret",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}
