package transfer

import (
	"context"
	"io"
)

// Progress receives incremental counts: bytes for a single transfer, or
// completed objects for a batch. It is observational only.
type Progress interface {
	Add(n int64)
}

// Finisher is implemented by sinks that need to know a transfer ended.
type Finisher interface {
	Finish()
}

// ProgressFactory returns the byte sink for one object of the given size.
// A nil factory, or a nil Progress from it, disables reporting.
type ProgressFactory func(target Target, size int64) Progress

// tee forwards counts to both sinks but only finishes primary, which is
// owned by a single transfer.
type tee struct {
	primary Progress
	shared  Progress
}

func (t tee) Add(n int64) {
	t.primary.Add(n)
	t.shared.Add(n)
}

func (t tee) Finish() {
	finish(t.primary)
}

func combine(primary, shared Progress) Progress {
	switch {
	case shared == nil:
		return primary
	case primary == nil:
		return unfinished{shared}
	default:
		return tee{primary: primary, shared: shared}
	}
}

// unfinished hides Finish from a sink that outlives one transfer.
type unfinished struct {
	Progress
}

func finish(p Progress) {
	if f, ok := p.(Finisher); ok {
		f.Finish()
	}
}

// progressReader reports every read to sink and stops once ctx is done.
type progressReader struct {
	ctx    context.Context
	reader io.Reader
	sink   Progress
}

func (r *progressReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := r.reader.Read(p)
	if n > 0 && r.sink != nil {
		r.sink.Add(int64(n))
	}
	//nolint:wrapcheck // io.Reader interface contract - error comes from underlying reader
	return n, err
}

// errWriter remembers the first write error so a failed copy can be
// attributed to the destination rather than the remote body.
type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	if err != nil && w.err == nil {
		w.err = err
	}
	//nolint:wrapcheck // io.Writer interface contract
	return n, err
}
