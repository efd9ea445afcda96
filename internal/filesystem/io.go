package filesystem

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"
)

const tmpSuffix = ".gshell"

//nolint:containedctx
type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	select {
	case <-cr.ctx.Done():
		return 0, context.Canceled
	default:
		return cr.reader.Read(p)
	}
}

// Move renames src to dst. If dst is an existing directory, or names a
// missing one with a trailing slash, src is moved inside it. An existing
// non-directory destination is never overwritten. Files crossing a device
// boundary are copied (verified) and then removed.
func (f *Handler) Move(ctx context.Context, cwd, src, dst string) error {
	srcPath := f.Resolve(cwd, src)

	srcInfo, err := f.OSOps.Lstat(srcPath)
	if err != nil {
		return classify(src, err)
	}

	dstPath, dstDisplay, err := f.moveTarget(cwd, srcPath, dst)
	if err != nil {
		return err
	}

	if _, err := f.OSOps.Lstat(dstPath); err == nil {
		return newPathError(dstDisplay, ErrAlreadyExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return classify(dstDisplay, err)
	}

	if err := f.OSOps.Rename(srcPath, dstPath); err != nil {
		if !errors.Is(err, unix.EXDEV) || !srcInfo.Mode().IsRegular() {
			return classify(dstDisplay, err)
		}

		slog.Debug("Rename crosses devices, falling back to copy.",
			"src", srcPath,
			"dst", dstPath,
		)

		if err := f.copyFile(ctx, srcPath, dstPath, srcInfo.Mode().Perm()); err != nil {
			return classify(dstDisplay, err)
		}

		if err := f.OSOps.Remove(srcPath); err != nil {
			return classify(src, err)
		}
	}

	return nil
}

// moveTarget returns the final destination path of a move together with the
// form of it that is shown to the user.
func (f *Handler) moveTarget(cwd, srcPath, dst string) (string, string, error) {
	dstPath := f.Resolve(cwd, dst)
	base := filepath.Base(srcPath)

	info, err := f.OSOps.Stat(dstPath)

	switch {
	case err == nil && info.IsDir():
		return filepath.Join(dstPath, base), filepath.Join(dst, base), nil

	case err == nil && strings.HasSuffix(dst, "/"):
		return "", "", newPathError(dst, ErrNotADirectory)

	case err == nil:
		return "", "", newPathError(dst, ErrAlreadyExists)

	case errors.Is(err, fs.ErrNotExist) && strings.HasSuffix(dst, "/"):
		if err := f.OSOps.MkdirAll(dstPath, dirPerms); err != nil {
			return "", "", classify(dst, err)
		}

		return filepath.Join(dstPath, base), filepath.Join(dst, base), nil

	case errors.Is(err, fs.ErrNotExist):
		return dstPath, dst, nil

	default:
		return "", "", classify(dst, err)
	}
}

// Copy copies the file src to dst, or into dst if it is an existing
// directory. A missing destination with a trailing slash is created as a
// directory, as for [Handler.Move]. Directory sources require recursive.
func (f *Handler) Copy(ctx context.Context, cwd, src, dst string, recursive bool) error {
	srcPath := f.Resolve(cwd, src)

	srcInfo, err := f.OSOps.Stat(srcPath)
	if err != nil {
		return classify(src, err)
	}

	dstPath := f.Resolve(cwd, dst)
	dstDisplay := dst
	base := filepath.Base(srcPath)

	var createDir bool

	dstInfo, err := f.OSOps.Stat(dstPath)

	switch {
	case err == nil && dstInfo.IsDir():
		dstPath = filepath.Join(dstPath, base)
		dstDisplay = filepath.Join(dst, base)

	case err == nil && strings.HasSuffix(dst, "/"):
		return newPathError(dst, ErrNotADirectory)

	case errors.Is(err, fs.ErrNotExist) && strings.HasSuffix(dst, "/"):
		createDir = true
		dstPath = filepath.Join(dstPath, base)
		dstDisplay = filepath.Join(dst, base)

	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return classify(dst, err)
	}

	if dstInfo, err := f.OSOps.Stat(dstPath); err == nil && os.SameFile(srcInfo, dstInfo) {
		return newPathError(dstDisplay, ErrSameFile)
	}

	if srcInfo.IsDir() {
		if !recursive {
			return newPathError(src, ErrIsADirectory)
		}

		if dstPath == srcPath || strings.HasPrefix(dstPath, srcPath+string(filepath.Separator)) {
			return newPathError(dst, ErrIntoItself)
		}
	}

	if createDir {
		if err := f.OSOps.MkdirAll(filepath.Dir(dstPath), dirPerms); err != nil {
			return classify(dst, err)
		}
	}

	if srcInfo.IsDir() {
		return f.copyTree(ctx, srcPath, dstPath, dstDisplay)
	}

	if err := f.copyFile(ctx, srcPath, dstPath, srcInfo.Mode().Perm()); err != nil {
		return classify(dstDisplay, err)
	}

	return nil
}

// copyTree copies the directory tree at srcPath to dstPath. Directories that
// already exist at the destination are merged into, symlinks are skipped.
func (f *Handler) copyTree(ctx context.Context, srcPath, dstPath, dstDisplay string) error {
	return f.WalkOps.WalkDir(srcPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return classify(path, err)
		}

		if ctx.Err() != nil {
			return classify(dstDisplay, ctx.Err())
		}

		rel, err := filepath.Rel(srcPath, path)
		if err != nil {
			return fmt.Errorf("(fs-copytree) failed to rel path: %w", err)
		}

		target := filepath.Join(dstPath, rel)
		display := filepath.Join(dstDisplay, rel)

		info, err := d.Info()
		if err != nil {
			return classify(path, err)
		}

		switch {
		case d.IsDir():
			if err := f.UnixOps.Mkdir(target, uint32(info.Mode().Perm()|0o700)); err != nil && !errors.Is(err, unix.EEXIST) {
				return classify(display, err)
			}

		case info.Mode().IsRegular():
			if err := f.copyFile(ctx, path, target, info.Mode().Perm()); err != nil {
				return classify(display, err)
			}

		default:
			slog.Warn("Skipped non-regular file during copy.",
				"path", path,
				"mode", info.Mode().String(),
			)
		}

		return nil
	})
}

// copyFile copies srcPath to a temporary file next to dstPath, verifies the
// content by checksum, syncs it and renames it into place.
func (f *Handler) copyFile(ctx context.Context, srcPath, dstPath string, perm fs.FileMode) error {
	var transferComplete bool

	srcFile, err := f.OSOps.Open(srcPath)
	if err != nil {
		return fmt.Errorf("(fs-copyfile) failed to open src: %w", err)
	}
	defer srcFile.Close()

	tmpPath := dstPath + tmpSuffix
	defer func() {
		if !transferComplete {
			f.OSOps.Remove(tmpPath) //nolint:errcheck
		}
	}()

	dstFile, err := f.OSOps.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("(fs-copyfile) failed to open dst: %w", err)
	}
	defer dstFile.Close()

	srcHasher := blake3.New()
	dstHasher := blake3.New()

	ctxReader := &contextReader{
		ctx:    ctx,
		reader: io.TeeReader(srcFile, srcHasher),
	}
	multiWriter := io.MultiWriter(dstFile, dstHasher)

	if _, err := io.Copy(multiWriter, ctxReader); err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("(fs-copyfile) canceled: %w", err)
		}

		return fmt.Errorf("(fs-copyfile) failed to copy: %w", err)
	}

	if err := dstFile.Sync(); err != nil {
		return fmt.Errorf("(fs-copyfile) failed to sync dst: %w", err)
	}

	srcChecksum := hex.EncodeToString(srcHasher.Sum(nil))
	dstChecksum := hex.EncodeToString(dstHasher.Sum(nil))

	if srcChecksum != dstChecksum {
		return fmt.Errorf("(fs-copyfile) %w: %s (src) != %s (dst)", ErrHashMismatch, srcChecksum, dstChecksum)
	}

	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("(fs-copyfile) failed to close dst: %w", err)
	}

	if err := f.OSOps.Rename(tmpPath, dstPath); err != nil {
		return fmt.Errorf("(fs-copyfile) failed to rename tmp file to dst file: %w", err)
	}

	transferComplete = true

	return nil
}
