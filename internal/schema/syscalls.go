package schema

import (
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// OS is an implementation wrapping operating system functions.
type OS struct{}

// Hostname wraps around [os.Hostname].
func (*OS) Hostname() (string, error) {
	return os.Hostname()
}

// Lstat wraps around [os.Lstat].
func (*OS) Lstat(name string) (os.FileInfo, error) {
	return os.Lstat(name)
}

// MkdirAll wraps around [os.MkdirAll].
func (*OS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Open wraps around [os.Open].
func (*OS) Open(name string) (*os.File, error) {
	return os.Open(name)
}

// OpenFile wraps around [os.OpenFile].
func (*OS) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, flag, perm)
}

// ReadDir wraps around [os.ReadDir].
func (*OS) ReadDir(name string) ([]os.DirEntry, error) {
	return os.ReadDir(name)
}

// ReadFile wraps around [os.ReadFile].
func (*OS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// Remove wraps around [os.Remove].
func (*OS) Remove(name string) error {
	return os.Remove(name)
}

// Rename wraps around [os.Rename].
func (*OS) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// Stat wraps around [os.Stat].
func (*OS) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// WalkDir wraps around [filepath.WalkDir].
func (*OS) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

// Unix is an implementation wrapping Unix operating system functions.
type Unix struct{}

// Flock wraps around [unix.Flock].
func (*Unix) Flock(fd int, how int) error {
	return unix.Flock(fd, how)
}

// Fsync wraps around [unix.Fsync].
func (*Unix) Fsync(fd int) error {
	return unix.Fsync(fd)
}

// Mkdir wraps around [unix.Mkdir].
func (*Unix) Mkdir(path string, mode uint32) error {
	return unix.Mkdir(path, mode)
}

// Rmdir wraps around [unix.Rmdir].
func (*Unix) Rmdir(path string) error {
	return unix.Rmdir(path)
}

// Sysinfo wraps around [unix.Sysinfo].
func (*Unix) Sysinfo(info *unix.Sysinfo_t) error {
	return unix.Sysinfo(info)
}

// Uname wraps around [unix.Uname].
func (*Unix) Uname(buf *unix.Utsname) error {
	return unix.Uname(buf)
}

// Unlink wraps around [unix.Unlink].
func (*Unix) Unlink(path string) error {
	return unix.Unlink(path)
}

// UtimesNano wraps around [unix.UtimesNano].
func (*Unix) UtimesNano(path string, times []unix.Timespec) error {
	return unix.UtimesNano(path, times)
}
