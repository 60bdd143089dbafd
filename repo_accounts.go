package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// The update statements guard on the code column so the read-check-write
// done by the command handlers stays correct under concurrent requests:
// a code can be consumed exactly once.
var StoreVerificationCodeSQL = `UPDATE "accounts" AS "acc"
SET
	"email_code" = ?,
	"email_code_sent_at" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"acc"."id" = ? RETURNING *;`

var MarkAccountVerifiedSQL = `UPDATE "accounts" AS "acc"
SET
	"is_verified" = TRUE,
	"email_code" = NULL,
	"email_code_sent_at" = NULL,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"acc"."id" = ?
AND (
	"acc"."email_code" = ?
) RETURNING *;`

var StoreResetCodeSQL = `UPDATE "accounts" AS "acc"
SET
	"reset_code" = ?,
	"reset_code_sent_at" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"acc"."id" = ? RETURNING *;`

var ResetAccountPasswordSQL = `UPDATE "accounts" AS "acc"
SET
	"password_hash" = ?,
	"reset_code" = NULL,
	"reset_code_sent_at" = NULL,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"acc"."id" = ?
AND (
	"acc"."reset_code" = ?
) RETURNING *;`

type Accounts interface {
	repository.Repository[*Account]

	Register(ctx context.Context, account *Account) (*Account, error)
	RegisterTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)

	StoreVerificationCode(ctx context.Context, id uuid.UUID, code string, sentAt time.Time) error
	StoreVerificationCodeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, code string, sentAt time.Time) error
	MarkVerified(ctx context.Context, id uuid.UUID, code string) error
	MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, code string) error
	StoreResetCode(ctx context.Context, id uuid.UUID, code string, sentAt time.Time) error
	StoreResetCodeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, code string, sentAt time.Time) error
	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash, code string) error
	ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash, code string) error
}

type accountsRepo struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accountsRepo)(nil)
	_ repository.Repository[*Account] = (*accountsRepo)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accountsRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *accountsRepo) Register(ctx context.Context, account *Account) (*Account, error) {
	return a.RegisterTx(ctx, a.db, account)
}

func (a *accountsRepo) RegisterTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error) {
	prepareAccountDefaults(account)

	record, err := a.Repository.CreateTx(ctx, tx, account)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return record, nil
}

func (a *accountsRepo) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *accountsRepo) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	record := &Account{}

	err := tx.NewSelect().
		Model(record).
		Where(`?TableAlias.email = ?`, email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *accountsRepo) StoreVerificationCode(ctx context.Context, id uuid.UUID, code string, sentAt time.Time) error {
	return a.StoreVerificationCodeTx(ctx, a.db, id, code, sentAt)
}

func (a *accountsRepo) StoreVerificationCodeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, code string, sentAt time.Time) error {
	return a.execUpdate(ctx, tx, StoreVerificationCodeSQL, id, code, sentAt, id.String())
}

func (a *accountsRepo) MarkVerified(ctx context.Context, id uuid.UUID, code string) error {
	return a.MarkVerifiedTx(ctx, a.db, id, code)
}

func (a *accountsRepo) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, code string) error {
	return a.execUpdate(ctx, tx, MarkAccountVerifiedSQL, id, id.String(), code)
}

func (a *accountsRepo) StoreResetCode(ctx context.Context, id uuid.UUID, code string, sentAt time.Time) error {
	return a.StoreResetCodeTx(ctx, a.db, id, code, sentAt)
}

func (a *accountsRepo) StoreResetCodeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, code string, sentAt time.Time) error {
	return a.execUpdate(ctx, tx, StoreResetCodeSQL, id, code, sentAt, id.String())
}

func (a *accountsRepo) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash, code string) error {
	return a.ResetPasswordTx(ctx, a.db, id, passwordHash, code)
}

func (a *accountsRepo) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash, code string) error {
	return a.execUpdate(ctx, tx, ResetAccountPasswordSQL, id, passwordHash, id.String(), code)
}

func (a *accountsRepo) execUpdate(ctx context.Context, tx bun.IDB, query string, id uuid.UUID, args ...any) error {
	res, err := a.Repository.RawTx(ctx, tx, query, args...)
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func prepareAccountDefaults(account *Account) {
	if account == nil {
		return
	}

	account.Email = strings.TrimSpace(account.Email)

	if account.ID == uuid.Nil {
		if id, err := hashid.NewUUID(account.Email); err == nil {
			account.ID = id
		} else {
			account.ID = uuid.New()
		}
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
