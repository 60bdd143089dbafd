package accounts

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrNoEmptyString is returned when a required value is blank
var ErrNoEmptyString = errors.New("string value should not be empty")

// ErrMismatchedHashAndPassword is the error for a failed password comparison
var ErrMismatchedHashAndPassword = errors.New("mismatched password and hash")

// ErrUnableToDecodeSession unable to decode JWT claims from a token
var ErrUnableToDecodeSession = errors.New("unable to decode session")

// ErrUnableToParseData parse error
var ErrUnableToParseData = errors.New("unable to parse data")

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found")

// Text codes for the closed set of account lifecycle errors. The HTTP
// boundary maps these to the client facing messages; everything outside
// this set is reported as a generic server error.
const (
	TextCodeDuplicateEmail    = "DUPLICATE_EMAIL"
	TextCodeEmailNotFound     = "EMAIL_NOT_FOUND"
	TextCodeInvalidCode       = "INVALID_CODE"
	TextCodeInvalidResetCode  = "INVALID_RESET_CODE"
	TextCodeUserNotFound      = "USER_NOT_FOUND"
	TextCodeNotVerified       = "NOT_VERIFIED"
	TextCodeIncorrectPassword = "INCORRECT_PASSWORD"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
)

var (
	// ErrDuplicateEmail signals a registration against an email that already
	// has an account.
	ErrDuplicateEmail = goerrors.New("Email already registered", goerrors.CategoryConflict).
				WithTextCode(TextCodeDuplicateEmail).
				WithCode(goerrors.CodeConflict)

	// ErrEmailNotFound signals a resend or reset request for an unknown email.
	ErrEmailNotFound = goerrors.New("Email not found", goerrors.CategoryNotFound).
				WithTextCode(TextCodeEmailNotFound).
				WithCode(goerrors.CodeNotFound)

	// ErrInvalidCode covers every failed verification attempt: unknown email,
	// wrong code, already used code, or an expired code.
	ErrInvalidCode = goerrors.New("Invalid verification code", goerrors.CategoryValidation).
			WithTextCode(TextCodeInvalidCode).
			WithCode(goerrors.CodeBadRequest)

	// ErrInvalidResetCode is the reset flow counterpart of ErrInvalidCode.
	ErrInvalidResetCode = goerrors.New("Invalid or expired reset code", goerrors.CategoryValidation).
				WithTextCode(TextCodeInvalidResetCode).
				WithCode(goerrors.CodeBadRequest)

	// ErrUserNotFound signals a login or profile lookup for a missing account.
	ErrUserNotFound = goerrors.New("User not found", goerrors.CategoryNotFound).
			WithTextCode(TextCodeUserNotFound).
			WithCode(goerrors.CodeNotFound)

	// ErrNotVerified blocks logins until the email code has been confirmed.
	ErrNotVerified = goerrors.New("Please verify your email first", goerrors.CategoryAuth).
			WithTextCode(TextCodeNotVerified).
			WithCode(goerrors.CodeUnauthorized)

	// ErrIncorrectPassword signals a failed credential comparison.
	ErrIncorrectPassword = goerrors.New("Incorrect password", goerrors.CategoryAuth).
				WithTextCode(TextCodeIncorrectPassword).
				WithCode(goerrors.CodeUnauthorized)

	// ErrTokenExpired is returned by token validation for expired tokens.
	ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
			WithTextCode(TextCodeTokenExpired).
			WithCode(goerrors.CodeUnauthorized)

	// ErrTokenMalformed is returned by token validation for every other
	// parse or signature failure.
	ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
				WithTextCode(TextCodeTokenMalformed).
				WithCode(goerrors.CodeUnauthorized)
)

var lifecycleTextCodes = map[string]struct{}{
	TextCodeDuplicateEmail:    {},
	TextCodeEmailNotFound:     {},
	TextCodeInvalidCode:       {},
	TextCodeInvalidResetCode:  {},
	TextCodeUserNotFound:      {},
	TextCodeNotVerified:       {},
	TextCodeIncorrectPassword: {},
}

// LifecycleMessage returns the client facing message when err belongs to the
// account lifecycle taxonomy. The second return value reports membership;
// callers treat everything else as an unexpected fault.
func LifecycleMessage(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return "", false
	}

	if _, ok := lifecycleTextCodes[richErr.TextCode]; !ok {
		return "", false
	}

	return richErr.Message, true
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
