package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ResendVerificationCodeMessage struct {
	Email string `json:"email"`
}

func (e ResendVerificationCodeMessage) Type() string { return "account.resend_code" }

// ResendVerificationCodeHandler issues a fresh verification code. Storing
// the new code overwrites the previous one, so only the latest emailed code
// can verify the account.
type ResendVerificationCodeHandler struct {
	repo     RepositoryManager
	notifier Notifier
	codes    CodeGenerator
	activity ActivitySink
	logger   Logger
}

// NewResendVerificationCodeHandler creates a handler with sane defaults.
func NewResendVerificationCodeHandler(repo RepositoryManager, notifier Notifier) *ResendVerificationCodeHandler {
	return &ResendVerificationCodeHandler{
		repo:     repo,
		notifier: normalizeNotifier(notifier),
		codes:    GenerateCode,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithCodeGenerator overrides the code generator used by the handler.
func (h *ResendVerificationCodeHandler) WithCodeGenerator(codes CodeGenerator) *ResendVerificationCodeHandler {
	if codes != nil {
		h.codes = codes
	}
	return h
}

// WithActivitySink sets the sink used to emit resend events.
func (h *ResendVerificationCodeHandler) WithActivitySink(sink ActivitySink) *ResendVerificationCodeHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *ResendVerificationCodeHandler) WithLogger(logger Logger) *ResendVerificationCodeHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ResendVerificationCodeHandler) Execute(ctx context.Context, event ResendVerificationCodeMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during verification code resend",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendVerificationCodeHandler) execute(ctx context.Context, event ResendVerificationCodeMessage) error {
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
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for code resend")
		}

		code, err := h.codes()
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate verification code")
		}

		now := time.Now()
		if err := h.repo.Accounts().StoreVerificationCodeTx(ctx, tx, account.ID, code, now); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store verification code")
		}

		if err := h.notifier.Deliver(ctx, Notification{
			To:   account.Email,
			Name: account.Name,
			Code: code,
			Kind: NotificationCodeResend,
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
		return goerrors.Wrap(err, goerrors.CategoryInternal, "verification code resend transaction failed")
	}

	h.recordActivity(ctx, account)

	return nil
}

func (h *ResendVerificationCodeHandler) recordActivity(ctx context.Context, account *Account) {
	if account == nil {
		return
	}

	event := ActivityEvent{
		EventType: ActivityEventCodeResent,
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
		h.logger.Warn("activity sink error during code resend: %v", err)
	}
}
