package accounts

import "errors"

var (
	// ErrDuplicateUsername occurs when an account with the same username
	// already exists in the store.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrInvalidInput occurs when a username or password cannot be accepted,
	// either because it is empty or because it contains characters that are
	// unsafe for the record format.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownUser occurs when no account matches the given username.
	ErrUnknownUser = errors.New("unknown user")

	// ErrWrongPassword occurs when the password does not match the stored hash.
	ErrWrongPassword = errors.New("wrong password")

	// ErrPersistence occurs when the backing file cannot be read, written or
	// synced. The store can no longer guarantee durability after it, so
	// callers should treat it as fatal.
	ErrPersistence = errors.New("credential storage failure")
)
