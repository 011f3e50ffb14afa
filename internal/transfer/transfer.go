package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/S-Muro0526/wasabi/internal/errors"
	"github.com/S-Muro0526/wasabi/internal/localfs"
	"github.com/S-Muro0526/wasabi/internal/storage"
)

const (
	dirPerm    = 0o755
	tempPrefix = ".part-"
)

// Target is one object to download and where to put it.
type Target struct {
	Key       string
	VersionID string
	LocalPath string

	// Size is the listed size, used for summaries before any transfer
	Size int64
}

// Result describes a completed download.
type Result struct {
	Target Target

	// Bytes is the number of bytes written to LocalPath
	Bytes int64
}

// Fetcher downloads objects from one bucket into a local filesystem.
type Fetcher struct {
	client storage.Client
	fs     *localfs.FS
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger configures the fetcher with a custom logger.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher writing through fs.
func New(client storage.Client, fs *localfs.FS, opts ...Option) *Fetcher {
	f := &Fetcher{
		client: client,
		fs:     fs,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads target.
//
// Remote errors are returned as reported by the storage client, so a missing
// object matches errors.ErrObjectNotFound. Failures writing the destination
// match errors.ErrLocalIO. Nothing is created locally unless the object
// exists, and a failed transfer never leaves a file at LocalPath.
func (f *Fetcher) Fetch(ctx context.Context, target Target, progress ProgressFactory) (*Result, error) {
	bucket := f.client.Bucket()

	info, err := f.client.Head(ctx, target.Key, target.VersionID)
	if err != nil {
		return nil, err
	}

	body, err := f.client.Get(ctx, target.Key, target.VersionID)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	dir := filepath.Dir(target.LocalPath)
	if err := f.fs.MkdirAll(dir, dirPerm); err != nil {
		return nil, localError(bucket, target, err)
	}

	tmp, err := f.fs.TempFile(dir, tempPrefix+filepath.Base(target.LocalPath)+"-")
	if err != nil {
		return nil, localError(bucket, target, err)
	}

	var sink Progress
	if progress != nil {
		sink = progress(target, info.Size)
	}
	defer finish(sink)

	w := &errWriter{w: tmp}
	n, err := io.Copy(w, &progressReader{ctx: ctx, reader: body, sink: sink})
	if err != nil {
		f.discard(tmp)
		if w.err != nil {
			return nil, localError(bucket, target, w.err)
		}
		return nil, errors.NewObjectError("get", bucket, target.Key, err).WithVersion(target.VersionID)
	}

	if err := tmp.Close(); err != nil {
		f.remove(tmp.Name())
		return nil, localError(bucket, target, err)
	}
	if err := f.fs.Rename(tmp.Name(), target.LocalPath); err != nil {
		f.remove(tmp.Name())
		return nil, localError(bucket, target, err)
	}

	if f.logger != nil {
		f.logger.DebugContext(ctx, "object downloaded",
			"key", target.Key,
			"version_id", target.VersionID,
			"path", target.LocalPath,
			"bytes", n)
	}

	return &Result{Target: target, Bytes: n}, nil
}

func (f *Fetcher) discard(tmp *localfs.File) {
	_ = tmp.Close()
	f.remove(tmp.Name())
}

func (f *Fetcher) remove(name string) {
	if err := f.fs.Remove(name); err != nil && f.logger != nil {
		f.logger.Warn("failed to remove temporary file", "path", name, "error", err)
	}
}

func localError(bucket string, target Target, err error) error {
	return errors.NewObjectError("write", bucket, target.Key,
		fmt.Errorf("%w: %s: %w", errors.ErrLocalIO, target.LocalPath, err)).WithVersion(target.VersionID)
}
