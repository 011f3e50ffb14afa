package localfs

import (
	"fmt"

	"github.com/go-git/go-billy/v5"
)

// File is a writable handle returned by FS.TempFile.
type File struct {
	file billy.File
}

// Name returns the path the file was created with.
func (f *File) Name() string {
	return f.file.Name()
}

// Write implements io.Writer.
func (f *File) Write(p []byte) (n int, err error) {
	n, err = f.file.Write(p)
	if err != nil {
		return n, fmt.Errorf("billy: write %q: %w", f.file.Name(), err)
	}
	return n, nil
}

// Close implements io.Closer.
func (f *File) Close() error {
	if err := f.file.Close(); err != nil {
		return fmt.Errorf("billy: close %q: %w", f.file.Name(), err)
	}
	return nil
}
