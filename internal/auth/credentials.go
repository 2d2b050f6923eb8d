package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Credentials checks login attempts. With a configured bcrypt hash only that
// single user may log in; without one, any non-empty pair is accepted.
type Credentials struct {
	username string
	hash     []byte
}

// NewCredentials validates the hash up front so a typo fails at start-up.
func NewCredentials(username, passwordHash string) (*Credentials, error) {
	if passwordHash == "" {
		return &Credentials{}, nil
	}
	if strings.TrimSpace(username) == "" {
		return nil, errors.New("auth: a username is required with a password hash")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, err
	}
	return &Credentials{username: username, hash: []byte(passwordHash)}, nil
}

// Open reports whether any non-empty username and password is accepted.
func (c *Credentials) Open() bool { return len(c.hash) == 0 }

// Check returns ErrInvalidCredentials unless the pair is acceptable.
func (c *Credentials) Check(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrInvalidCredentials
	}
	if c.Open() {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) != 1 {
		// same work as a wrong password
		_ = bcrypt.CompareHashAndPassword(c.hash, []byte(password))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for auth.password-hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("auth: empty password")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
