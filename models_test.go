package accounts_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accounts "github.com/stormhaven/go-accounts"
)

func TestAccountCodeMatching(t *testing.T) {
	account := &accounts.Account{}

	assert.False(t, account.HasPendingEmailCode())
	assert.False(t, account.MatchesEmailCode("ABC123"))
	assert.False(t, account.MatchesEmailCode(""))

	code := "ABC123"
	account.EmailCode = &code

	assert.True(t, account.HasPendingEmailCode())
	assert.True(t, account.MatchesEmailCode("ABC123"))
	assert.False(t, account.MatchesEmailCode("abc123"))
	assert.False(t, account.MatchesEmailCode(""))

	reset := "RST123"
	account.ResetCode = &reset

	assert.True(t, account.HasPendingResetCode())
	assert.True(t, account.MatchesResetCode("RST123"))
	assert.False(t, account.MatchesResetCode("RST999"))
}

func TestAccountProfile(t *testing.T) {
	now := time.Now()
	account := &accounts.Account{
		ID:           uuid.New(),
		Email:        "pepe@example.com",
		Name:         "Pepe",
		PasswordHash: "secret-hash",
		CreatedAt:    &now,
	}

	profile := account.Profile()
	assert.Equal(t, account.ID.String(), profile.ID)
	assert.Equal(t, "Pepe", profile.Name)
	assert.Equal(t, "pepe@example.com", profile.Email)
	assert.Equal(t, &now, profile.CreatedAt)
}

func TestAccountJSONHidesSecrets(t *testing.T) {
	code := "ABC123"
	account := &accounts.Account{
		ID:           uuid.New(),
		Email:        "pepe@example.com",
		PasswordHash: "secret-hash",
		EmailCode:    &code,
		ResetCode:    &code,
	}

	raw, err := json.Marshal(account)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "secret-hash")
	assert.NotContains(t, string(raw), "ABC123")
}
