package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type VerifyEmailMessage struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (e VerifyEmailMessage) Type() string { return "account.verify_email" }

// VerifyEmailHandler confirms an emailed verification code. A successful
// verification flips is_verified and consumes the code in one statement,
// so a replay of the same code fails.
type VerifyEmailHandler struct {
	repo     RepositoryManager
	activity ActivitySink
	logger   Logger
}

// NewVerifyEmailHandler creates a handler with sane defaults.
func NewVerifyEmailHandler(repo RepositoryManager) *VerifyEmailHandler {
	return &VerifyEmailHandler{
		repo:     repo,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit verification events.
func (h *VerifyEmailHandler) WithActivitySink(sink ActivitySink) *VerifyEmailHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *VerifyEmailHandler) WithLogger(logger Logger) *VerifyEmailHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	account := &Account{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var err error

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		account, err = h.repo.Accounts().GetByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidCode
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for verification")
		}

		if account.Verified {
			return ErrInvalidCode
		}

		if !account.MatchesEmailCode(event.Code) {
			return ErrInvalidCode
		}

		if account.EmailCodeSentAt != nil {
			expired, err := IsOutsideThresholdPeriod(*account.EmailCodeSentAt, VerificationCodeTTL)
			if err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check code expiration period")
			}
			if expired {
				return ErrInvalidCode
			}
		}

		if err := h.repo.Accounts().MarkVerifiedTx(ctx, tx, account.ID, event.Code); err != nil {
			if repository.IsRecordNotFound(err) {
				// lost the race against a concurrent attempt that consumed the code
				return ErrInvalidCode
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark account as verified")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "email verification transaction failed")
	}

	h.recordActivity(ctx, account)

	return nil
}

func (h *VerifyEmailHandler) recordActivity(ctx context.Context, account *Account) {
	if account == nil {
		return
	}

	event := ActivityEvent{
		EventType: ActivityEventEmailVerified,
		Actor: ActorRef{
			ID:   account.ID.String(),
			Type: "account",
		},
		AccountID: account.ID.String(),
		Metadata: map[string]any{
			"email": account.Email,
		},
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during verification: %v", err)
	}
}
