// Package auth handles accounts, credentials and sessions.
//
// # Callers
//
// Every domain operation takes an explicit [Caller]. The HTTP layer derives it from a session token with
// [Middleware.Authenticate]; the CLI and TUI build it from a stored user with [CallerOf].
//
// # Sessions
//
// Sessions are stateless HS256 JWTs issued by [Tokens]. The subject is the user id; the admin flag and
// sign-in provider travel as the "adm" and "prv" claims. Tokens are read from an "Authorization: Bearer"
// header or the "session" cookie.
//
// # Google sign-in
//
// [GoogleHandler] implements the authorization code flow with a state cookie and signs the user in through
// [Accounts.SignInExternal], which links the Google identity to an existing account with the same email.
package auth
