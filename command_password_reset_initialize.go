package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type InitializePasswordResetMessage struct {
	Email string `json:"email"`
}

func (e InitializePasswordResetMessage) Type() string { return "account.password_reset_init" }

// InitializePasswordResetHandler stores a reset code on the account and
// emails it. A repeat request overwrites the previous code.
type InitializePasswordResetHandler struct {
	repo     RepositoryManager
	notifier Notifier
	codes    CodeGenerator
	activity ActivitySink
	logger   Logger
}

// NewInitializePasswordResetHandler creates a handler with sane defaults.
func NewInitializePasswordResetHandler(repo RepositoryManager, notifier Notifier) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:     repo,
		notifier: normalizeNotifier(notifier),
		codes:    GenerateCode,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithCodeGenerator overrides the code generator used by the handler.
func (h *InitializePasswordResetHandler) WithCodeGenerator(codes CodeGenerator) *InitializePasswordResetHandler {
	if codes != nil {
		h.codes = codes
	}
	return h
}

// WithActivitySink sets the sink used to emit reset request events.
func (h *InitializePasswordResetHandler) WithActivitySink(sink ActivitySink) *InitializePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	account := &Account{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var err error

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		account, err = h.repo.Accounts().GetByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrEmailNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
		}

		code, err := h.codes()
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset code")
		}

		now := time.Now()
		if err := h.repo.Accounts().StoreResetCodeTx(ctx, tx, account.ID, code, now); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset code")
		}

		if err := h.notifier.Deliver(ctx, Notification{
			To:   account.Email,
			Name: account.Name,
			Code: code,
			Kind: NotificationPasswordReset,
		}); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to deliver reset code")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password reset initialization transaction failed")
	}

	h.recordActivity(ctx, account)

	return nil
}

func (h *InitializePasswordResetHandler) recordActivity(ctx context.Context, account *Account) {
	if account == nil {
		return
	}

	event := ActivityEvent{
		EventType: ActivityEventPasswordResetRequested,
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
		h.logger.Warn("activity sink error during password reset request: %v", err)
	}
}
