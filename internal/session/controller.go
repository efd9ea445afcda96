package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/desertwitch/gshell/internal/accounts"
)

type accountStore interface {
	CreateAccount(username, password string) error
	VerifyLogin(username, password string) error
	Exists(username string) (bool, error)
}

// Credentials are the already collected fields of a signup or login. Confirm
// is only used by signup.
type Credentials struct {
	Username string
	Password string
	Confirm  string
}

// loginError hides the specific cause of a failed login behind the generic
// [ErrInvalidCredentials] message, while keeping it matchable with errors.Is.
type loginError struct {
	cause error
}

func (e *loginError) Error() string {
	return ErrInvalidCredentials.Error()
}

func (e *loginError) Unwrap() []error {
	return []error{ErrInvalidCredentials, e.cause}
}

// Controller is the principal implementation of the authentication flows. It
// contains no I/O of its own beyond the credential store.
type Controller struct {
	store accountStore
}

// NewController returns a pointer to a new [Controller].
func NewController(store accountStore) *Controller {
	return &Controller{
		store: store,
	}
}

// CheckSignup tells whether a signup for username can proceed, so that the
// caller does not need to ask for passwords in vain.
func (c *Controller) CheckSignup(sess *Session, username string) error {
	if sess.State() == Authenticated {
		return ErrAlreadyLoggedIn
	}

	if err := accounts.ValidateUsername(username); err != nil {
		return err
	}

	exists, err := c.store.Exists(username)
	if err != nil {
		return err
	}

	if exists {
		return fmt.Errorf("%w: %s", accounts.ErrDuplicateUsername, username)
	}

	return nil
}

// RequireAnonymous fails with [ErrAlreadyLoggedIn] for an authenticated
// session.
func (c *Controller) RequireAnonymous(sess *Session) error {
	if sess.State() == Authenticated {
		return ErrAlreadyLoggedIn
	}

	return nil
}

// Signup creates the account and authenticates the session as the new user.
func (c *Controller) Signup(sess *Session, creds Credentials) error {
	if sess.State() == Authenticated {
		return ErrAlreadyLoggedIn
	}

	if creds.Password != creds.Confirm {
		return ErrPasswordMismatch
	}

	if err := c.store.CreateAccount(creds.Username, creds.Password); err != nil {
		return err
	}

	sess.authenticate(creds.Username)

	slog.Info("Signed up.",
		"user", creds.Username,
		"session", sess.ID(),
	)

	return nil
}

// Login verifies the credentials and authenticates the session. Both an
// unknown user and a wrong password surface as [ErrInvalidCredentials].
func (c *Controller) Login(sess *Session, creds Credentials) error {
	if sess.State() == Authenticated {
		return ErrAlreadyLoggedIn
	}

	if err := c.store.VerifyLogin(creds.Username, creds.Password); err != nil {
		if errors.Is(err, accounts.ErrUnknownUser) || errors.Is(err, accounts.ErrWrongPassword) {
			slog.Debug("Login failed.",
				"user", creds.Username,
				"session", sess.ID(),
				"reason", err,
			)

			return &loginError{cause: err}
		}

		return err
	}

	sess.authenticate(creds.Username)

	slog.Info("Logged in.",
		"user", creds.Username,
		"session", sess.ID(),
	)

	return nil
}

// Logout returns the session to the anonymous state.
func (c *Controller) Logout(sess *Session) error {
	user, ok := sess.User()
	if !ok {
		return ErrNotLoggedIn
	}

	sess.clear()

	slog.Info("Logged out.",
		"user", user,
		"session", sess.ID(),
	)

	return nil
}
