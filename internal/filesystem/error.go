package filesystem

import (
	"context"
	"errors"
	"io/fs"

	"golang.org/x/sys/unix"
)

var (
	// ErrPathNotFound occurs when a path does not exist.
	ErrPathNotFound = errors.New("no such file or directory")

	// ErrAlreadyExists occurs when a path that is to be created already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotADirectory occurs when a directory was expected but something
	// else was found.
	ErrNotADirectory = errors.New("not a directory")

	// ErrNotEmpty occurs when a directory to be removed still has entries.
	ErrNotEmpty = errors.New("directory not empty")

	// ErrIsADirectory occurs when a file was expected but a directory was found.
	ErrIsADirectory = errors.New("is a directory")

	// ErrPermissionDenied occurs when the operating system refused access.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrSameFile occurs when a copy would overwrite its own source.
	ErrSameFile = errors.New("source and destination are the same file")

	// ErrIntoItself occurs when a directory is to be copied into itself.
	ErrIntoItself = errors.New("cannot copy a directory into itself")

	// ErrCanceled occurs when an operation was interrupted before it
	// completed.
	ErrCanceled = errors.New("operation canceled")

	// ErrHashMismatch occurs when the checksums of a copied file and its
	// source differ, which usually points to underlying hardware issues.
	ErrHashMismatch = errors.New("hash mismatch")
)

// PathError records a failed operation on a path as the user typed it. Kind is
// one of the sentinel errors of this package, or nil when the cause could not
// be classified; Err is the underlying cause.
type PathError struct {
	Path string
	Kind error
	Err  error
}

func (e *PathError) Error() string {
	if e.Kind != nil {
		return e.Path + ": " + e.Kind.Error()
	}
	if e.Err != nil {
		return e.Path + ": " + rootCause(e.Err).Error()
	}

	return e.Path
}

func (e *PathError) Unwrap() []error {
	errs := make([]error, 0, 2) //nolint:mnd
	for _, err := range []error{e.Kind, e.Err} {
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

// rootCause follows the chain of wrapped errors down to the operating system
// error, leaving out the context added on the way up.
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func newPathError(path string, kind error) *PathError {
	return &PathError{Path: path, Kind: kind}
}

// classify maps an operating system error onto the sentinel errors of this
// package, keeping the original error as the cause.
func classify(path string, err error) error {
	if err == nil {
		return nil
	}

	var kind error

	switch {
	case errors.Is(err, unix.ENOTEMPTY):
		kind = ErrNotEmpty
	case errors.Is(err, unix.ENOENT), errors.Is(err, fs.ErrNotExist):
		kind = ErrPathNotFound
	case errors.Is(err, unix.EEXIST), errors.Is(err, fs.ErrExist):
		kind = ErrAlreadyExists
	case errors.Is(err, unix.ENOTDIR):
		kind = ErrNotADirectory
	case errors.Is(err, unix.EISDIR):
		kind = ErrIsADirectory
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind = ErrCanceled
	case errors.Is(err, ErrHashMismatch):
		kind = ErrHashMismatch
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM), errors.Is(err, fs.ErrPermission):
		kind = ErrPermissionDenied
	}

	return &PathError{Path: path, Kind: kind, Err: err}
}
