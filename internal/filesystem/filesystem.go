// Package filesystem implements the file and directory operations behind the
// shell commands. All operations take the session's working directory and
// resolve relative paths against it; the process working directory is never
// changed.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

type osProvider interface {
	Lstat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	Open(name string) (*os.File, error)
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
	ReadDir(name string) ([]os.DirEntry, error)
	ReadFile(name string) ([]byte, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
}

type unixProvider interface {
	Mkdir(path string, mode uint32) error
	Rmdir(path string) error
	Unlink(path string) error
	UtimesNano(path string, times []unix.Timespec) error
}

type fsWalkProvider interface {
	WalkDir(root string, fn fs.WalkDirFunc) error
}

// Entry is a single listed directory entry.
type Entry struct {
	Name      string
	IsDir     bool
	IsSymlink bool
	Size      int64
	Mode      fs.FileMode
	ModTime   time.Time
}

// Handler is the principal implementation of the filesystem operations.
type Handler struct {
	OSOps   osProvider
	UnixOps unixProvider
	WalkOps fsWalkProvider
	HomeDir string

	now func() time.Time
}

// NewHandler returns a pointer to a new filesystem [Handler]. The home
// directory is the target of a bare `cd` and of `~` expansion.
func NewHandler(osOps osProvider, unixOps unixProvider, walkOps fsWalkProvider, homeDir string) *Handler {
	return &Handler{
		OSOps:   osOps,
		UnixOps: unixOps,
		WalkOps: walkOps,
		HomeDir: homeDir,
		now:     time.Now,
	}
}

// Resolve returns the absolute, cleaned form of path. Relative paths are
// resolved against cwd, a leading `~` against the home directory.
func (f *Handler) Resolve(cwd, path string) string {
	switch {
	case path == "~":
		return filepath.Clean(f.HomeDir)
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(f.HomeDir, path[2:])
	case filepath.IsAbs(path):
		return filepath.Clean(path)
	default:
		return filepath.Join(cwd, path)
	}
}

// ChangeDir returns the new working directory for target. An empty target
// means the home directory.
func (f *Handler) ChangeDir(cwd, target string) (string, error) {
	display := target
	if target == "" {
		display = "~"
	}

	path := f.Resolve(cwd, display)

	info, err := f.OSOps.Stat(path)
	if err != nil {
		return "", classify(display, err)
	}

	if !info.IsDir() {
		return "", newPathError(display, ErrNotADirectory)
	}

	return path, nil
}

// List returns the entries of the directory at target, sorted by name. If
// target is not a directory, the single entry describes target itself.
func (f *Handler) List(cwd, target string) ([]Entry, error) {
	if target == "" {
		target = "."
	}

	path := f.Resolve(cwd, target)

	info, err := f.OSOps.Stat(path)
	if err != nil {
		return nil, classify(target, err)
	}

	if !info.IsDir() {
		return []Entry{newEntry(target, info)}, nil
	}

	dirEntries, err := f.OSOps.ReadDir(path)
	if err != nil {
		return nil, classify(target, err)
	}

	entries := make([]Entry, 0, len(dirEntries))

	for _, d := range dirEntries {
		info, err := d.Info()
		if err != nil {
			slog.Debug("Skipped entry vanished during listing.",
				"path", filepath.Join(path, d.Name()),
				"err", err,
			)

			continue
		}

		entries = append(entries, newEntry(d.Name(), info))
	}

	return entries, nil
}

func newEntry(name string, info fs.FileInfo) Entry {
	return Entry{
		Name:      name,
		IsDir:     info.IsDir(),
		IsSymlink: info.Mode()&fs.ModeSymlink != 0,
		Size:      info.Size(),
		Mode:      info.Mode(),
		ModTime:   info.ModTime(),
	}
}

// MakeDir creates the directory name. With parents, missing parents are
// created as well and an existing directory is not an error.
func (f *Handler) MakeDir(cwd, name string, parents bool) error {
	path := f.Resolve(cwd, name)

	if parents {
		if info, err := f.OSOps.Stat(path); err == nil {
			if info.IsDir() {
				return nil
			}

			return newPathError(name, ErrAlreadyExists)
		}

		if err := f.OSOps.MkdirAll(path, dirPerms); err != nil {
			return classify(name, err)
		}

		return nil
	}

	if err := f.UnixOps.Mkdir(path, dirPerms); err != nil {
		return classify(name, err)
	}

	return nil
}

// RemoveDir removes the empty directory name.
func (f *Handler) RemoveDir(cwd, name string) error {
	if err := f.UnixOps.Rmdir(f.Resolve(cwd, name)); err != nil {
		return classify(name, err)
	}

	return nil
}

// Touch creates the file name if it does not exist, otherwise it sets its
// access and modification times to the current time.
func (f *Handler) Touch(cwd, name string) error {
	path := f.Resolve(cwd, name)

	if _, err := f.OSOps.Stat(path); errors.Is(err, fs.ErrNotExist) {
		file, err := f.OSOps.OpenFile(path, os.O_CREATE|os.O_WRONLY, filePerms)
		if err != nil {
			return classify(name, err)
		}

		if err := file.Close(); err != nil {
			return classify(name, err)
		}

		return nil
	} else if err != nil {
		return classify(name, err)
	}

	ts := unix.NsecToTimespec(f.now().UnixNano())
	if err := f.UnixOps.UtimesNano(path, []unix.Timespec{ts, ts}); err != nil {
		return classify(name, err)
	}

	return nil
}

// Remove deletes the file name. Directories are refused, and so is a name
// with a trailing slash, which can only denote a directory.
func (f *Handler) Remove(cwd, name string) error {
	path := f.Resolve(cwd, name)

	info, err := f.OSOps.Lstat(path)
	if err != nil {
		return classify(name, err)
	}

	if info.IsDir() {
		return newPathError(name, ErrIsADirectory)
	}

	if strings.HasSuffix(name, "/") {
		return newPathError(name, ErrNotADirectory)
	}

	if err := f.UnixOps.Unlink(path); err != nil {
		return classify(name, err)
	}

	return nil
}

// ReadFile returns the content of the file name.
func (f *Handler) ReadFile(cwd, name string) ([]byte, error) {
	path := f.Resolve(cwd, name)

	info, err := f.OSOps.Stat(path)
	if err != nil {
		return nil, classify(name, err)
	}

	if info.IsDir() {
		return nil, newPathError(name, ErrIsADirectory)
	}

	data, err := f.OSOps.ReadFile(path)
	if err != nil {
		return nil, classify(name, err)
	}

	return data, nil
}

// WriteText writes text followed by a newline to the file name, either
// truncating it or appending to it. The file is created if needed.
func (f *Handler) WriteText(cwd, name, text string, appendMode bool) error {
	path := f.Resolve(cwd, name)

	flag := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}

	file, err := f.OSOps.OpenFile(path, flag, filePerms)
	if err != nil {
		return classify(name, err)
	}
	defer file.Close()

	if _, err := file.WriteString(text + "\n"); err != nil {
		return classify(name, fmt.Errorf("(fs-write) failed to write: %w", err))
	}

	if err := file.Close(); err != nil {
		return classify(name, fmt.Errorf("(fs-write) failed to close: %w", err))
	}

	return nil
}
