package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type RegisterAccountMessage struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

// RegisterAccountHandler creates an unverified account and emails its first
// verification code. The insert and the delivery share one transaction: if
// the notifier fails, no account is left behind.
type RegisterAccountHandler struct {
	repo     RepositoryManager
	notifier Notifier
	codes    CodeGenerator
	activity ActivitySink
	logger   Logger
}

// NewRegisterAccountHandler creates a handler with sane defaults.
func NewRegisterAccountHandler(repo RepositoryManager, notifier Notifier) *RegisterAccountHandler {
	return &RegisterAccountHandler{
		repo:     repo,
		notifier: normalizeNotifier(notifier),
		codes:    GenerateCode,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithCodeGenerator overrides the code generator used by the handler.
func (h *RegisterAccountHandler) WithCodeGenerator(codes CodeGenerator) *RegisterAccountHandler {
	if codes != nil {
		h.codes = codes
	}
	return h
}

// WithActivitySink sets the sink used to emit registration events.
func (h *RegisterAccountHandler) WithActivitySink(sink ActivitySink) *RegisterAccountHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterAccountHandler) WithLogger(logger Logger) *RegisterAccountHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	account := &Account{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if existing, err := h.repo.Accounts().GetByEmailTx(ctx, tx, event.Email); err == nil && existing != nil {
			return ErrDuplicateEmail
		} else if err != nil && !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing account")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		code, err := h.codes()
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate verification code")
		}

		now := time.Now()
		account.Email = event.Email
		account.Name = event.Name
		account.PasswordHash = hash
		account.EmailCode = &code
		account.EmailCodeSentAt = &now

		if account, err = h.repo.Accounts().RegisterTx(ctx, tx, account); err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
		}

		if err := h.notifier.Deliver(ctx, Notification{
			To:   account.Email,
			Name: account.Name,
			Code: code,
			Kind: NotificationVerification,
		}); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to deliver verification code")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	h.recordActivity(ctx, account)

	return nil
}

func (h *RegisterAccountHandler) recordActivity(ctx context.Context, account *Account) {
	if account == nil {
		return
	}

	event := ActivityEvent{
		EventType: ActivityEventRegisterSuccess,
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
		h.logger.Warn("activity sink error during registration: %v", err)
	}
}
