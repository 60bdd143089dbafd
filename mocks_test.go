package accounts_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	accounts "github.com/stormhaven/go-accounts"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// stubRepoManager runs the transaction function directly so handler errors
// surface without a real database.
type stubRepoManager struct {
	store accounts.Accounts
}

func (s *stubRepoManager) Validate() error { return nil }

func (s *stubRepoManager) MustValidate() {}

func (s *stubRepoManager) Accounts() accounts.Accounts { return s.store }

func (s *stubRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(context.Context, bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

var _ accounts.RepositoryManager = (*stubRepoManager)(nil)

// MockAccounts mocks the store methods the command handlers touch. The
// embedded interface covers the rest of the repository surface.
type MockAccounts struct {
	mock.Mock
	accounts.Accounts
}

func (m *MockAccounts) GetByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	args := m.Called(ctx, email)
	return accountArg(args, 0), args.Error(1)
}

func (m *MockAccounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*accounts.Account, error) {
	args := m.Called(ctx, tx, email)
	return accountArg(args, 0), args.Error(1)
}

func (m *MockAccounts) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*accounts.Account, error) {
	args := m.Called(ctx, id)
	return accountArg(args, 0), args.Error(1)
}

func (m *MockAccounts) RegisterTx(ctx context.Context, tx bun.IDB, account *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, tx, account)
	return accountArg(args, 0), args.Error(1)
}

func (m *MockAccounts) StoreVerificationCodeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, code string, sentAt time.Time) error {
	args := m.Called(ctx, tx, id, code, sentAt)
	return args.Error(0)
}

func (m *MockAccounts) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, code string) error {
	args := m.Called(ctx, tx, id, code)
	return args.Error(0)
}

func (m *MockAccounts) StoreResetCodeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, code string, sentAt time.Time) error {
	args := m.Called(ctx, tx, id, code, sentAt)
	return args.Error(0)
}

func (m *MockAccounts) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash, code string) error {
	args := m.Called(ctx, tx, id, passwordHash, code)
	return args.Error(0)
}

func accountArg(args mock.Arguments, idx int) *accounts.Account {
	if v := args.Get(idx); v != nil {
		return v.(*accounts.Account)
	}
	return nil
}

// MockNotifier implements accounts.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Deliver(ctx context.Context, n accounts.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockActivitySink implements accounts.ActivitySink
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event accounts.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type capturingSink struct {
	mu     sync.Mutex
	events []accounts.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt accounts.ActivityEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

// MockIdentityProvider implements accounts.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, email, password string) (accounts.Identity, error) {
	args := m.Called(ctx, email, password)
	if v := args.Get(0); v != nil {
		return v.(accounts.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (accounts.Identity, error) {
	args := m.Called(ctx, identifier)
	if v := args.Get(0); v != nil {
		return v.(accounts.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

// TestIdentity is a plain Identity value for authenticator tests.
type TestIdentity struct {
	id    string
	name  string
	email string
}

func (t TestIdentity) ID() string    { return t.id }
func (t TestIdentity) Name() string  { return t.name }
func (t TestIdentity) Email() string { return t.email }

type mockConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
	audience        []string
	contextKey      string
	tokenLookup     string
	authScheme      string
	signingMethod   string
}

func newMockConfig() *mockConfig {
	return &mockConfig{
		signingKey:      "test-signing-key",
		tokenExpiration: 1,
		issuer:          "test-issuer",
		audience:        []string{"test-audience"},
		contextKey:      "user",
		tokenLookup:     "header:Authorization",
		authScheme:      "Bearer",
		signingMethod:   "HS256",
	}
}

func (c *mockConfig) GetSigningKey() string     { return c.signingKey }
func (c *mockConfig) GetSigningMethod() string  { return c.signingMethod }
func (c *mockConfig) GetContextKey() string     { return c.contextKey }
func (c *mockConfig) GetTokenExpiration() int   { return c.tokenExpiration }
func (c *mockConfig) GetTokenLookup() string    { return c.tokenLookup }
func (c *mockConfig) GetAuthScheme() string     { return c.authScheme }
func (c *mockConfig) GetIssuer() string         { return c.issuer }
func (c *mockConfig) GetAudience() []string     { return c.audience }

var _ accounts.Config = (*mockConfig)(nil)

// staticCodes returns a CodeGenerator that always yields code.
func staticCodes(code string) accounts.CodeGenerator {
	return func() (string, error) { return code, nil }
}

// memoryAccounts is an in-memory Accounts store for lifecycle tests. Only
// the methods the handlers exercise are implemented.
type memoryAccounts struct {
	accounts.Accounts

	mu      sync.Mutex
	records map[string]*accounts.Account // keyed by email
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{records: map[string]*accounts.Account{}}
}

func (m *memoryAccounts) GetByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	return m.GetByEmailTx(ctx, nil, email)
}

func (m *memoryAccounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*accounts.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record, ok := m.records[email]; ok {
		clone := *record
		return &clone, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (m *memoryAccounts) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*accounts.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, record := range m.records {
		if record.ID.String() == id {
			clone := *record
			return &clone, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (m *memoryAccounts) Register(ctx context.Context, account *accounts.Account) (*accounts.Account, error) {
	return m.RegisterTx(ctx, nil, account)
}

func (m *memoryAccounts) RegisterTx(ctx context.Context, tx bun.IDB, account *accounts.Account) (*accounts.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[account.Email]; ok {
		return nil, accounts.ErrDuplicateEmail
	}

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	now := time.Now()
	account.CreatedAt = &now
	account.UpdatedAt = &now

	clone := *account
	m.records[account.Email] = &clone
	return account, nil
}

func (m *memoryAccounts) StoreVerificationCodeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, code string, sentAt time.Time) error {
	return m.update(id, func(record *accounts.Account) bool {
		record.EmailCode = &code
		record.EmailCodeSentAt = &sentAt
		return true
	})
}

func (m *memoryAccounts) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, code string) error {
	return m.update(id, func(record *accounts.Account) bool {
		if !record.MatchesEmailCode(code) {
			return false
		}
		record.Verified = true
		record.EmailCode = nil
		record.EmailCodeSentAt = nil
		return true
	})
}

func (m *memoryAccounts) StoreResetCodeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, code string, sentAt time.Time) error {
	return m.update(id, func(record *accounts.Account) bool {
		record.ResetCode = &code
		record.ResetCodeSentAt = &sentAt
		return true
	})
}

func (m *memoryAccounts) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash, code string) error {
	return m.update(id, func(record *accounts.Account) bool {
		if !record.MatchesResetCode(code) {
			return false
		}
		record.PasswordHash = passwordHash
		record.ResetCode = nil
		record.ResetCodeSentAt = nil
		return true
	})
}

func (m *memoryAccounts) update(id uuid.UUID, apply func(*accounts.Account) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, record := range m.records {
		if record.ID == id {
			if !apply(record) {
				return repository.NewRecordNotFound()
			}
			return nil
		}
	}
	return repository.NewRecordNotFound()
}
