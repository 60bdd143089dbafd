// Package accounts implements an email/password account service: signup
// with emailed verification codes, login that issues signed bearer tokens,
// password reset via one time codes, and profile lookup.
//
// Account lifecycle:
//   - Accounts start unverified. A 6 character code is emailed at signup and
//     must be confirmed before the account can log in. Codes are stored on
//     the account row and consumed atomically, so each code works once.
//   - Command handlers (RegisterAccountHandler, VerifyEmailHandler,
//     ResendVerificationCodeHandler, InitializePasswordResetHandler,
//     FinalizePasswordResetHandler) run each transition inside a single
//     transaction, including code delivery: if the Notifier fails, the
//     stored code rolls back with it.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and the
//     command handlers to describe registration, verification, login, and
//     password reset events. Sinks run best-effort (errors are logged) so
//     you can forward to a database or queue without blocking requests.
//
// Tokens:
//   - TokenService mints HS256 JWTs carrying the account id and email and
//     validates incoming bearer tokens. The middleware/jwtware package
//     guards HTTP routes with the same validator.
package accounts
