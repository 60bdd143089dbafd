package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// AccountFinder is the store we need to resolve identities.
type AccountFinder interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*Account, error)
}

// AccountProvider resolves identities for the authenticator.
type AccountProvider struct {
	store  AccountFinder
	logger Logger
}

// NewAccountProvider will create a new AccountProvider
func NewAccountProvider(store AccountFinder) *AccountProvider {
	return &AccountProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (p *AccountProvider) WithLogger(l Logger) *AccountProvider {
	if l != nil {
		p.logger = l
	}
	return p
}

// VerifyIdentity will find the account, compare the password, and return
// the identity. Unverified accounts cannot log in.
func (p *AccountProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	account, err := p.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during verification")
	}

	if account == nil {
		return nil, ErrUserNotFound
	}

	if !account.Verified {
		return nil, ErrNotVerified
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		return nil, ErrIncorrectPassword
	}

	return identityFromAccount(account), nil
}

// FindIdentityByIdentifier resolves an identity by account id or email.
func (p *AccountProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	var account *Account
	var err error

	if _, uuidErr := uuid.Parse(identifier); uuidErr == nil {
		account, err = p.store.GetByID(ctx, identifier)
	} else {
		account, err = p.store.GetByEmail(ctx, identifier)
	}

	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if account == nil {
		return nil, ErrIdentityNotFound
	}

	return identityFromAccount(account), nil
}

func identityFromAccount(account *Account) accountIdentity {
	return accountIdentity{
		id:    account.ID.String(),
		name:  account.Name,
		email: account.Email,
	}
}

type accountIdentity struct {
	id    string
	name  string
	email string
}

func (a accountIdentity) ID() string {
	return a.id
}

func (a accountIdentity) Name() string {
	return a.name
}

func (a accountIdentity) Email() string {
	return a.email
}

var _ Identity = accountIdentity{}
