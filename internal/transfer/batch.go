package transfer

import (
	"context"

	"github.com/S-Muro0526/wasabi/internal/errors"
)

// BatchOptions configures FetchAll. Every field is optional.
type BatchOptions struct {
	// Files advances by one for each finished object, failed or not
	Files Progress

	// Bytes receives every byte written across the batch
	Bytes Progress

	// Object creates the byte sink for each object
	Object ProgressFactory
}

// Failure is one object that could not be downloaded.
type Failure struct {
	Target Target
	Err    error
}

// Tally is the outcome of a batch.
type Tally struct {
	Succeeded int
	Failed    int

	// Bytes is the total written by successful transfers
	Bytes int64

	Failures []Failure
}

// Total returns the number of objects attempted.
func (t *Tally) Total() int {
	return t.Succeeded + t.Failed
}

// OK reports whether every attempted object succeeded.
func (t *Tally) OK() bool {
	return t.Failed == 0
}

// FetchAll downloads targets in order. A failed object is logged, recorded
// and skipped; the remaining targets are still attempted. Only cancellation
// of ctx ends the batch early, in which case the tally so far is returned
// with ctx's error.
func (f *Fetcher) FetchAll(ctx context.Context, targets []Target, opts BatchOptions) (*Tally, error) {
	tally := &Tally{}

	factory := func(target Target, size int64) Progress {
		var object Progress
		if opts.Object != nil {
			object = opts.Object(target, size)
		}
		return combine(object, opts.Bytes)
	}

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return tally, err
		}

		result, err := f.Fetch(ctx, target, factory)
		if opts.Files != nil {
			opts.Files.Add(1)
		}
		if err != nil {
			if ctx.Err() != nil {
				tally.Failed++
				tally.Failures = append(tally.Failures, Failure{Target: target, Err: err})
				return tally, ctx.Err()
			}
			if f.logger != nil {
				f.logger.ErrorContext(ctx, "object download failed",
					"key", target.Key,
					"version_id", target.VersionID,
					"code", errors.CodeOf(err),
					"error", err)
			}
			tally.Failed++
			tally.Failures = append(tally.Failures, Failure{Target: target, Err: err})
			continue
		}

		tally.Succeeded++
		tally.Bytes += result.Bytes
	}

	return tally, nil
}
