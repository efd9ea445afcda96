package accounts

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxUsernameLength is the maximum length of a username in bytes.
	MaxUsernameLength = 64

	// MaxPasswordLength is the maximum length of a password in bytes, as
	// imposed by bcrypt.
	MaxPasswordLength = 72

	// recordDelimiter separates the username from the hash on a record line.
	recordDelimiter = ":"

	forbiddenUsernameRunes = `/\` + recordDelimiter
)

// ValidateUsername checks that a username is non-empty and free of any
// whitespace, control characters, path separators and the record delimiter.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username is empty", ErrInvalidInput)
	}

	if len(username) > MaxUsernameLength {
		return fmt.Errorf("%w: username is longer than %d bytes", ErrInvalidInput, MaxUsernameLength)
	}

	if !utf8.ValidString(username) {
		return fmt.Errorf("%w: username is not valid UTF-8", ErrInvalidInput)
	}

	for _, r := range username {
		if unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(forbiddenUsernameRunes, r) {
			return fmt.Errorf("%w: username contains forbidden character %q", ErrInvalidInput, r)
		}
	}

	return nil
}

// ValidatePassword checks that a password is non-empty, fits the bcrypt input
// limit and contains no line breaks or NUL bytes.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is empty", ErrInvalidInput)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: password is longer than %d bytes", ErrInvalidInput, MaxPasswordLength)
	}

	if strings.ContainsAny(password, "\r\n\x00") {
		return fmt.Errorf("%w: password contains a line break or NUL byte", ErrInvalidInput)
	}

	return nil
}
