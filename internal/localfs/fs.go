// Package localfs is the shell's view of the host filesystem.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

var (
	ErrNotFound   = errors.New("no such file or directory")
	ErrExists     = errors.New("already exists")
	ErrNotEmpty   = errors.New("directory is not empty")
	ErrNotDir     = errors.New("not a directory")
	ErrIsDir      = errors.New("is a directory")
	ErrBadPattern = errors.New("bad pattern")
)

// Entry describes one local file or directory.
type Entry struct {
	Name     string
	Path     string
	IsDir    bool
	Size     int64
	Modified time.Time
}

// FS is the set of local operations the shell performs.
type FS interface {
	Exists(path string) bool
	IsDir(path string) bool
	Stat(path string) (*Entry, error)
	List(path string) ([]Entry, error)
	Copy(ctx context.Context, src, dst string) (int64, error)
	Remove(path string) error
	Rename(from, to string) error
	Mkdir(path string) error
	RemoveDir(path string) error
	Find(ctx context.Context, root, pattern string) ([]string, error)
	Open(path string) (io.ReadCloser, int64, error)
	Create(path string) (io.WriteCloser, error)
	DetectType(path string) string
}

// OS implements FS on the host filesystem.
type OS struct {
	logger *zap.Logger
}

var _ FS = (*OS)(nil)

// New returns the host filesystem.
func New(logger *zap.Logger) *OS {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OS{logger: logger}
}

// pathError maps os errors onto the package sentinels while keeping the path.
func pathError(op, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		err = ErrNotFound
	case errors.Is(err, fs.ErrExist):
		err = ErrExists
	}
	return &fs.PathError{Op: op, Path: path, Err: err}
}

func toEntry(path string, info fs.FileInfo) Entry {
	return Entry{
		Name:     info.Name(),
		Path:     path,
		IsDir:    info.IsDir(),
		Size:     info.Size(),
		Modified: info.ModTime(),
	}
}

// Exists reports whether path names anything.
func (o *OS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsDir reports whether path is a directory.
func (o *OS) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Stat describes path.
func (o *OS) Stat(path string) (*Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, pathError("stat", path, err)
	}
	e := toEntry(path, info)
	return &e, nil
}

// List returns the entries of a directory sorted by name.
func (o *OS) List(path string) ([]Entry, error) {
	dirents, err := os.ReadDir(path)
	if err != nil {
		if o.Exists(path) && !o.IsDir(path) {
			return nil, pathError("list", path, ErrNotDir)
		}
		return nil, pathError("list", path, err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		info, err := d.Info()
		if err != nil {
			// removed while listing
			continue
		}
		entries = append(entries, toEntry(filepath.Join(path, d.Name()), info))
	}
	return entries, nil
}

// Copy copies a file, or a directory tree, to dst. dst must not exist.
// It returns the number of file bytes copied.
func (o *OS) Copy(ctx context.Context, src, dst string) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, pathError("copy", src, err)
	}
	if o.Exists(dst) {
		return 0, pathError("copy", dst, ErrExists)
	}
	if !info.IsDir() {
		return copyFile(src, dst, info.Mode().Perm())
	}

	if err := os.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
		return 0, pathError("copy", dst, err)
	}

	var copied atomic.Int64
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			o.logger.Debug("skipping non-regular file", zap.String("path", p))
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		n, err := copyFile(p, target, fi.Mode().Perm())
		copied.Add(n)
		return err
	})
	if err != nil {
		return copied.Load(), fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return copied.Load(), nil
}

func copyFile(src, dst string, perm fs.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, pathError("copy", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return 0, pathError("copy", dst, err)
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, pathError("copy", dst, err)
	}
	return n, nil
}

// Remove deletes a file. Directories are rejected; use RemoveDir.
func (o *OS) Remove(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return pathError("remove", path, err)
	}
	if info.IsDir() {
		return pathError("remove", path, ErrIsDir)
	}
	if err := os.Remove(path); err != nil {
		return pathError("remove", path, err)
	}
	return nil
}

// Rename moves from to to. to must not exist.
func (o *OS) Rename(from, to string) error {
	if !o.Exists(from) {
		return pathError("rename", from, ErrNotFound)
	}
	if o.Exists(to) {
		return pathError("rename", to, ErrExists)
	}
	if err := os.Rename(from, to); err != nil {
		return pathError("rename", from, err)
	}
	return nil
}

// Mkdir creates a directory and any missing parents. path must not exist.
func (o *OS) Mkdir(path string) error {
	if o.Exists(path) {
		return pathError("mkdir", path, ErrExists)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return pathError("mkdir", path, err)
	}
	return nil
}

// RemoveDir deletes an empty directory.
func (o *OS) RemoveDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return pathError("rmdir", path, err)
	}
	if !info.IsDir() {
		return pathError("rmdir", path, ErrNotDir)
	}

	f, err := os.Open(path)
	if err != nil {
		return pathError("rmdir", path, err)
	}
	_, err = f.Readdirnames(1)
	f.Close()
	if err == nil {
		return pathError("rmdir", path, ErrNotEmpty)
	}
	if !errors.Is(err, io.EOF) {
		return pathError("rmdir", path, err)
	}

	if err := os.Remove(path); err != nil {
		return pathError("rmdir", path, err)
	}
	return nil
}

// Find walks root and returns the sorted paths matching a glob pattern.
// A pattern without a separator is matched against base names, otherwise
// against the slash-separated path relative to root. "**" crosses directories.
func (o *OS) Find(ctx context.Context, root, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}
	if !o.IsDir(root) {
		if o.Exists(root) {
			return nil, pathError("find", root, ErrNotDir)
		}
		return nil, pathError("find", root, ErrNotFound)
	}
	byName := !strings.Contains(pattern, "/")

	var (
		mu      sync.Mutex
		matches []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil || p == root {
			// unreadable subtrees are skipped
			return nil
		}

		subject := d.Name()
		if !byName {
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return nil
			}
			subject = filepath.ToSlash(rel)
		}
		if ok, _ := doublestar.Match(pattern, subject); ok {
			mu.Lock()
			matches = append(matches, p)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", root, err)
	}

	sort.Strings(matches)
	return matches, nil
}

// Open opens a regular file for reading and returns its size.
func (o *OS) Open(path string) (io.ReadCloser, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, pathError("open", path, err)
	}
	if info.IsDir() {
		return nil, 0, pathError("open", path, ErrIsDir)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, pathError("open", path, err)
	}
	return f, info.Size(), nil
}

// Create creates a new file. An existing file is never truncated.
func (o *OS) Create(path string) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, pathError("create", path, err)
	}
	return f, nil
}

// DetectType sniffs the MIME type of a file, "" if unreadable.
func (o *OS) DetectType(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	return mtype.String()
}
