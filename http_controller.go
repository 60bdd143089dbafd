package accounts

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// StatusResponse is the envelope every endpoint answers with. Lifecycle
// failures travel as HTTP 200 with status "error"; only token errors and
// missing resources use non 200 codes.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Email   string `json:"email,omitempty"`
}

// LoginResponse is the success payload for POST /login.
type LoginResponse struct {
	Status string        `json:"status"`
	Token  string        `json:"token"`
	User   PublicProfile `json:"user"`
}

// ProfileResponse is the success payload for GET /profile.
type ProfileResponse struct {
	Status string        `json:"status"`
	User   PublicProfile `json:"user"`
}

// APIController exposes the account lifecycle as a JSON API.
type APIController struct {
	Debug      bool
	ContextKey string
	Logger     Logger
	Repo       RepositoryManager
	Auth       Authenticator
	Notifier   Notifier
	Codes      CodeGenerator
	Activity   ActivitySink
}

// NewAPIController creates a controller with sane defaults.
func NewAPIController(repo RepositoryManager, auther Authenticator, notifier Notifier) *APIController {
	return &APIController{
		ContextKey: "user",
		Logger:     defLogger{},
		Repo:       repo,
		Auth:       auther,
		Notifier:   normalizeNotifier(notifier),
		Codes:      GenerateCode,
		Activity:   noopActivitySink{},
	}
}

type SignupPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

type VerifyPayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (r VerifyPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Code, validation.Required, validation.Length(CodeLength, CodeLength)),
	)
}

type ResendCodePayload struct {
	Email string `json:"email"`
}

func (r ResendCodePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type ForgotPayload struct {
	Email string `json:"email"`
}

func (r ForgotPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type ResetPayload struct {
	Email   string `json:"email"`
	Code    string `json:"code"`
	NewPass string `json:"newPass"`
}

func (r ResetPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Code, validation.Required, validation.Length(CodeLength, CodeLength)),
		validation.Field(&r.NewPass, validation.Required, validation.Length(8, 100)),
	)
}

// Signup handles POST /signup.
func (a *APIController) Signup(c *fiber.Ctx) error {
	payload := new(SignupPayload)
	if err := a.bind(c, payload); err != nil {
		return a.renderError(c, err, "Server error during signup")
	}

	handler := NewRegisterAccountHandler(a.Repo, a.Notifier).
		WithCodeGenerator(a.Codes).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := handler.Execute(c.UserContext(), RegisterAccountMessage{
		Email:    payload.Email,
		Name:     payload.Name,
		Password: payload.Password,
	}); err != nil {
		return a.renderError(c, err, "Server error during signup")
	}

	return c.JSON(StatusResponse{
		Status:  "success",
		Message: "Account created. Check email for verification code.",
		Email:   payload.Email,
	})
}

// Verify handles POST /verify.
func (a *APIController) Verify(c *fiber.Ctx) error {
	payload := new(VerifyPayload)
	if err := a.bind(c, payload); err != nil {
		return a.renderError(c, err, "Verification failed")
	}

	handler := NewVerifyEmailHandler(a.Repo).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := handler.Execute(c.UserContext(), VerifyEmailMessage{
		Email: payload.Email,
		Code:  payload.Code,
	}); err != nil {
		return a.renderError(c, err, "Verification failed")
	}

	return c.JSON(StatusResponse{
		Status:  "success",
		Message: "Email verified successfully!",
	})
}

// ResendCode handles POST /resend-code.
func (a *APIController) ResendCode(c *fiber.Ctx) error {
	payload := new(ResendCodePayload)
	if err := a.bind(c, payload); err != nil {
		return a.renderError(c, err, "Failed to resend code")
	}

	handler := NewResendVerificationCodeHandler(a.Repo, a.Notifier).
		WithCodeGenerator(a.Codes).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := handler.Execute(c.UserContext(), ResendVerificationCodeMessage{
		Email: payload.Email,
	}); err != nil {
		return a.renderError(c, err, "Failed to resend code")
	}

	return c.JSON(StatusResponse{
		Status:  "success",
		Message: "New verification code sent",
	})
}

// Login handles POST /login.
func (a *APIController) Login(c *fiber.Ctx) error {
	payload := new(LoginPayload)
	if err := a.bind(c, payload); err != nil {
		return a.renderError(c, err, "Login failed")
	}

	result, err := a.Auth.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return a.renderError(c, err, "Login failed")
	}

	return c.JSON(LoginResponse{
		Status: "success",
		Token:  result.Token,
		User: PublicProfile{
			ID:    result.Identity.ID(),
			Name:  result.Identity.Name(),
			Email: result.Identity.Email(),
		},
	})
}

// Forgot handles POST /forgot.
func (a *APIController) Forgot(c *fiber.Ctx) error {
	payload := new(ForgotPayload)
	if err := a.bind(c, payload); err != nil {
		return a.renderError(c, err, "Failed to send reset code")
	}

	handler := NewInitializePasswordResetHandler(a.Repo, a.Notifier).
		WithCodeGenerator(a.Codes).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := handler.Execute(c.UserContext(), InitializePasswordResetMessage{
		Email: payload.Email,
	}); err != nil {
		return a.renderError(c, err, "Failed to send reset code")
	}

	return c.JSON(StatusResponse{
		Status:  "success",
		Message: "Reset code sent to your email",
	})
}

// Reset handles POST /reset.
func (a *APIController) Reset(c *fiber.Ctx) error {
	payload := new(ResetPayload)
	if err := a.bind(c, payload); err != nil {
		return a.renderError(c, err, "Password reset failed")
	}

	handler := NewFinalizePasswordResetHandler(a.Repo).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := handler.Execute(c.UserContext(), FinalizePasswordResetMessage{
		Email:    payload.Email,
		Code:     payload.Code,
		Password: payload.NewPass,
	}); err != nil {
		return a.renderError(c, err, "Password reset failed")
	}

	return c.JSON(StatusResponse{
		Status:  "success",
		Message: "Password updated successfully",
	})
}

// Profile handles GET /profile. The route sits behind the bearer token
// middleware, which stores validated claims under ContextKey.
func (a *APIController) Profile(c *fiber.Ctx) error {
	claims, ok := c.Locals(a.contextKey()).(AuthClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(StatusResponse{
			Status:  "error",
			Message: "Invalid or expired token",
		})
	}

	account, err := a.Repo.Accounts().GetByID(c.UserContext(), claims.UserID())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(StatusResponse{
				Status:  "error",
				Message: "User not found",
			})
		}

		a.Logger.Error("Profile lookup failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(StatusResponse{
			Status:  "error",
			Message: "Failed to get profile",
		})
	}

	return c.JSON(ProfileResponse{
		Status: "success",
		User:   account.Profile(),
	})
}

func (a *APIController) bind(c *fiber.Ctx, payload interface{ Validate() error }) error {
	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "Invalid request body").
			WithTextCode("INVALID_BODY")
	}

	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithTextCode("VALIDATION_ERROR")
	}

	return nil
}

func (a *APIController) renderError(c *fiber.Ctx, err error, fallback string) error {
	if msg, ok := LifecycleMessage(err); ok {
		return c.JSON(StatusResponse{Status: "error", Message: msg})
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.TextCode {
		case "INVALID_BODY", "VALIDATION_ERROR":
			return c.JSON(StatusResponse{Status: "error", Message: richErr.Message})
		}
	}

	a.Logger.Error("request failed", "path", c.Path(), "error", err)

	if a.Debug {
		a.Logger.Debug("error detail: %s", print.MaybePrettyJSON(err))
	}

	return c.JSON(StatusResponse{Status: "error", Message: fallback})
}

func (a *APIController) contextKey() string {
	if a.ContextKey != "" {
		return a.ContextKey
	}
	return "user"
}
