// Package accounts implements the credential store, a durable mapping of
// usernames to bcrypt password hashes kept in a line-based file.
//
// Every mutation rewrites the file through a synced temporary file that is
// renamed over the original, so a crash at any point leaves either the old or
// the new content behind. A lock file serializes the check-and-insert sequence
// across processes.
package accounts

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sys/unix"
)

const (
	// MinCost is the lowest bcrypt work factor the store will hash with.
	MinCost = 10

	dirPerms  = 0o700
	filePerms = 0o600

	tmpSuffix  = ".tmp"
	lockSuffix = ".lock"
)

type osProvider interface {
	MkdirAll(path string, perm os.FileMode) error
	Open(name string) (*os.File, error)
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
	ReadFile(name string) ([]byte, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
}

type unixProvider interface {
	Flock(fd int, how int) error
	Fsync(fd int) error
}

// Store is the principal implementation of the credential store.
type Store struct {
	path    string
	cost    int
	osOps   osProvider
	unixOps unixProvider
}

// NewStore returns a pointer to a new [Store] backed by the file at path. The
// parent directory is created if needed. A cost below [MinCost] is raised to
// [MinCost].
func NewStore(path string, cost int, osOps osProvider, unixOps unixProvider) (*Store, error) {
	if cost < MinCost {
		cost = MinCost
	}

	if cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("(accounts) %w: bcrypt cost %d exceeds %d", ErrInvalidInput, cost, bcrypt.MaxCost)
	}

	if err := osOps.MkdirAll(filepath.Dir(path), dirPerms); err != nil {
		return nil, fmt.Errorf("(accounts) %w: failed to create data directory: %w", ErrPersistence, err)
	}

	return &Store{
		path:    path,
		cost:    cost,
		osOps:   osOps,
		unixOps: unixOps,
	}, nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// CreateAccount validates the input, hashes the password and durably appends
// the new record. The record is on disk once CreateAccount returns nil.
func (s *Store) CreateAccount(username, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}

	if err := ValidatePassword(password); err != nil {
		return err
	}

	unlock, err := s.lock(unix.LOCK_EX)
	if err != nil {
		return err
	}
	defer unlock()

	raw, users, err := s.load()
	if err != nil {
		return err
	}

	if _, exists := users[username]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateUsername, username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("(accounts-create) %w: %w", ErrInvalidInput, err)
	}

	if err := s.replace(appendRecord(raw, username, hash)); err != nil {
		return err
	}

	slog.Info("Account created.",
		"user", username,
		"file", s.path,
	)

	return nil
}

// VerifyLogin checks the password against the stored hash of the username.
func (s *Store) VerifyLogin(username, password string) error {
	hash, err := s.lookup(username)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			slog.Warn("Stored password hash is unusable.",
				"user", username,
				"err", err,
			)
		}

		return ErrWrongPassword
	}

	return nil
}

// Exists reports whether an account with the username exists.
func (s *Store) Exists(username string) (bool, error) {
	if _, err := s.lookup(username); err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (s *Store) lookup(username string) (string, error) {
	unlock, err := s.lock(unix.LOCK_SH)
	if err != nil {
		return "", err
	}
	defer unlock()

	_, users, err := s.load()
	if err != nil {
		return "", err
	}

	hash, ok := users[username]
	if !ok {
		return "", ErrUnknownUser
	}

	return hash, nil
}

// load returns the raw file content together with the parsed records. A
// missing file is an empty store.
func (s *Store) load() ([]byte, map[string]string, error) {
	raw, err := s.osOps.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, map[string]string{}, nil
		}

		return nil, nil, fmt.Errorf("(accounts-load) %w: failed to read: %w", ErrPersistence, err)
	}

	return raw, parseRecords(s.path, raw), nil
}

// replace writes content to a temporary file, syncs it and renames it over the
// backing file, then syncs the parent directory to persist the rename.
func (s *Store) replace(content []byte) error {
	var replaced bool

	tmpPath := s.path + tmpSuffix
	defer func() {
		if !replaced {
			s.osOps.Remove(tmpPath) //nolint:errcheck
		}
	}()

	tmpFile, err := s.osOps.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerms)
	if err != nil {
		return fmt.Errorf("(accounts-replace) %w: failed to open tmp file: %w", ErrPersistence, err)
	}
	defer tmpFile.Close()

	if _, err := tmpFile.Write(content); err != nil {
		return fmt.Errorf("(accounts-replace) %w: failed to write tmp file: %w", ErrPersistence, err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("(accounts-replace) %w: failed to sync tmp file: %w", ErrPersistence, err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("(accounts-replace) %w: failed to close tmp file: %w", ErrPersistence, err)
	}

	if err := s.osOps.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("(accounts-replace) %w: failed to rename tmp file: %w", ErrPersistence, err)
	}

	replaced = true

	if err := s.syncDir(); err != nil {
		return fmt.Errorf("(accounts-replace) %w: %w", ErrPersistence, err)
	}

	return nil
}

func (s *Store) syncDir() error {
	dir, err := s.osOps.Open(filepath.Dir(s.path))
	if err != nil {
		return fmt.Errorf("failed to open data directory: %w", err)
	}
	defer dir.Close()

	if err := s.unixOps.Fsync(int(dir.Fd())); err != nil {
		return fmt.Errorf("failed to sync data directory: %w", err)
	}

	return nil
}

// lock acquires a flock of the given kind on the lock file next to the
// backing file and returns the function releasing it.
func (s *Store) lock(how int) (func(), error) {
	lockFile, err := s.osOps.OpenFile(s.path+lockSuffix, os.O_CREATE|os.O_RDWR, filePerms)
	if err != nil {
		return nil, fmt.Errorf("(accounts-lock) %w: failed to open lock file: %w", ErrPersistence, err)
	}

	fd := int(lockFile.Fd())

	if err := s.unixOps.Flock(fd, how); err != nil {
		lockFile.Close()

		return nil, fmt.Errorf("(accounts-lock) %w: failed to acquire lock: %w", ErrPersistence, err)
	}

	return func() {
		s.unixOps.Flock(fd, unix.LOCK_UN) //nolint:errcheck
		lockFile.Close()
	}, nil
}
