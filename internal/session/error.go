package session

import "errors"

var (
	// ErrPasswordMismatch occurs when the password confirmation of a signup
	// differs from the password.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrAlreadyLoggedIn occurs on signup or login while a user is already
	// authenticated; the user has to log out first.
	ErrAlreadyLoggedIn = errors.New("already logged in, log out first")

	// ErrNotLoggedIn occurs on logout while no user is authenticated.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrInvalidCredentials is the single user-facing error for a failed
	// login, regardless of whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
