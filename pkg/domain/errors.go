package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")

	// ErrInvalidCredentials is returned uniformly for unknown email, wrong
	// password, and banned accounts so an unauthenticated caller cannot
	// enumerate accounts or probe ban status.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrOAuthOnlyUser is deliberately distinguishable from
	// ErrInvalidCredentials: the caller should prompt the user to sign in
	// with their linked provider instead.
	ErrOAuthOnlyUser = errors.New("account has no password; sign in with a linked provider")

	ErrIdentityNotFound = errors.New("identity not found")
	ErrInvalidToken     = errors.New("invalid session token")
	ErrSessionRequired  = errors.New("authentication required")
)

// Error codes surfaced to the web layer. Each maps to a fixed user-facing
// message via ErrorMessage.
const (
	CodeConfiguration         = "Configuration"
	CodeAccessDenied          = "AccessDenied"
	CodeOAuthSignin           = "OAuthSignin"
	CodeOAuthCallback         = "OAuthCallback"
	CodeOAuthAccountNotLinked = "OAuthAccountNotLinked"
	CodeEmailMismatch         = "EmailMismatch"
	CodeCredentialsSignin     = "CredentialsSignin"
	CodeSessionRequired       = "SessionRequired"
)

var errorMessages = map[string]string{
	CodeConfiguration:         "There is a problem with the server configuration. Please try again later.",
	CodeAccessDenied:          "Access denied. You do not have permission to sign in.",
	CodeOAuthSignin:           "Could not start the provider sign-in. Please try again.",
	CodeOAuthCallback:         "The provider sign-in could not be completed. Please try again.",
	CodeOAuthAccountNotLinked: "This account is already linked to a different sign-in method.",
	CodeEmailMismatch:         "The email from the provider does not match your account email.",
	CodeCredentialsSignin:     "Invalid email or password.",
	CodeSessionRequired:       "Please sign in to access this page.",
}

// ErrorMessage resolves an error code to its user-facing message. Unknown
// codes get a generic message rather than leaking the code itself.
func ErrorMessage(code string) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "Something went wrong. Please try again."
}
