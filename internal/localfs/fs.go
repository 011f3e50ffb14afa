// Package localfs is the destination filesystem for downloaded objects.
//
// It wraps a go-billy filesystem so downloads can be written to the native
// filesystem in production and to an in-memory filesystem in tests.
package localfs

import (
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// FS writes downloads through a go-billy filesystem.
type FS struct {
	fs billy.Filesystem
}

// Exists reports whether path exists.
func (b *FS) Exists(path string) (bool, error) {
	_, err := b.fs.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("billy: stat %q: %w", path, err)
	}
}

// MkdirAll creates path and any missing parents.
func (b *FS) MkdirAll(path string, perm os.FileMode) error {
	if err := b.fs.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("billy: mkdirall %q: %w", path, err)
	}
	return nil
}

// TempFile creates a new temporary file in dir. The caller renames it into
// place or removes it.
func (b *FS) TempFile(dir, prefix string) (*File, error) {
	f, err := b.fs.TempFile(dir, prefix)
	if err != nil {
		return nil, fmt.Errorf("billy: tempfile dir=%q prefix=%q: %w", dir, prefix, err)
	}
	return &File{file: f}, nil
}

// Rename moves from to to, replacing any existing file.
func (b *FS) Rename(from, to string) error {
	if err := b.fs.Rename(from, to); err != nil {
		return fmt.Errorf("billy: rename %q -> %q: %w", from, to, err)
	}
	return nil
}

// Remove deletes name.
func (b *FS) Remove(name string) error {
	if err := b.fs.Remove(name); err != nil {
		return fmt.Errorf("billy: remove %q: %w", name, err)
	}
	return nil
}

// Stat returns file info for name.
func (b *FS) Stat(name string) (os.FileInfo, error) {
	info, err := b.fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("billy: stat %q: %w", name, err)
	}
	return info, nil
}

// ReadDir lists the entries of dirname.
func (b *FS) ReadDir(dirname string) ([]os.FileInfo, error) {
	list, err := b.fs.ReadDir(dirname)
	if err != nil {
		return nil, fmt.Errorf("billy: readdir %q: %w", dirname, err)
	}
	return list, nil
}

// ReadFile returns the contents of path.
func (b *FS) ReadFile(path string) ([]byte, error) {
	bts, err := util.ReadFile(b.fs, path)
	if err != nil {
		return nil, fmt.Errorf("billy: readfile %q: %w", path, err)
	}
	return bts, nil
}

// WriteFile writes data to filename, creating it if needed.
func (b *FS) WriteFile(filename string, data []byte, perm os.FileMode) error {
	if err := util.WriteFile(b.fs, filename, data, perm); err != nil {
		return fmt.Errorf("billy: writefile %q: %w", filename, err)
	}
	return nil
}

// New creates an FS over the given go-billy filesystem.
func New(fsys billy.Filesystem) *FS {
	return &FS{
		fs: fsys,
	}
}

// NewInMemory creates an FS backed by memory.
func NewInMemory() *FS {
	return &FS{
		fs: memfs.New(),
	}
}

// NewRooted creates an FS confined to root.
func NewRooted(root string) *FS {
	return &FS{
		fs: osfs.New(root),
	}
}
