package auth

import "errors"

var (
	// ErrWeakSecret is returned when the signing secret is missing or short.
	ErrWeakSecret = errors.New("auth: jwt secret must be at least 16 characters")
	// ErrInvalidCredentials is returned for any failed login.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrNoToken is returned when a request carries no token at all.
	ErrNoToken = errors.New("auth: no token provided")
)

// TokenError reports a token that failed parsing or validation.
type TokenError struct {
	Err error
}

func (e *TokenError) Error() string { return "auth: invalid token: " + e.Err.Error() }

func (e *TokenError) Unwrap() error { return e.Err }

// IsInvalidToken reports whether err is a *TokenError.
func IsInvalidToken(err error) bool {
	var te *TokenError
	return errors.As(err, &te)
}
