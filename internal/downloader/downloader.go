// Package downloader implements the three download modes: a single object,
// every object under a prefix, and the state of a prefix at the end of a
// given day.
//
// Each bulk mode is split into a plan (listing, version resolution and path
// mapping, with no local side effects) and its execution, so callers can
// report what will be downloaded before any transfer starts.
package downloader

import (
	"context"
	"log/slog"
	"time"

	"github.com/S-Muro0526/wasabi/internal/errors"
	"github.com/S-Muro0526/wasabi/internal/localfs"
	"github.com/S-Muro0526/wasabi/internal/pathmap"
	"github.com/S-Muro0526/wasabi/internal/storage"
	"github.com/S-Muro0526/wasabi/internal/transfer"
	"github.com/S-Muro0526/wasabi/internal/version"
)

// DefaultDir is the destination root used when none is configured.
const DefaultDir = "Download"

// Service downloads from a single bucket.
type Service struct {
	client      storage.Client
	fetcher     *transfer.Fetcher
	logger      *slog.Logger
	downloadDir string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger configures the service with a custom logger.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithDownloadDir sets the destination root used when a request has none.
func WithDownloadDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.downloadDir = dir
		}
	}
}

// New creates a Service that writes through fs.
func New(client storage.Client, fs *localfs.FS, opts ...Option) *Service {
	s := &Service{
		client:      client,
		downloadDir: DefaultDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.fetcher = transfer.New(client, fs, transfer.WithLogger(s.logger))
	return s
}

// Bucket returns the bucket the service downloads from.
func (s *Service) Bucket() string {
	return s.client.Bucket()
}

// FileRequest selects a single object.
type FileRequest struct {
	Source string

	// Destination is the local file path; empty means <download dir>/<basename>
	Destination string

	// VersionID selects a historical version; empty means current
	VersionID string
}

// FileTarget maps req to its transfer target without touching the network.
func (s *Service) FileTarget(req FileRequest) (transfer.Target, error) {
	if req.Source == "" {
		return transfer.Target{}, errors.NewError("downloadFile", errors.ErrInvalidInput).
			WithMessage("source key cannot be empty")
	}

	local := req.Destination
	if local == "" {
		p, err := pathmap.FilePath(req.Source, s.downloadDir)
		if err != nil {
			return transfer.Target{}, err
		}
		local = p
	}

	return transfer.Target{
		Key:       req.Source,
		VersionID: req.VersionID,
		LocalPath: local,
	}, nil
}

// DownloadFile downloads one object. Any failure, including a missing
// object, is returned to the caller.
func (s *Service) DownloadFile(ctx context.Context, req FileRequest, progress transfer.ProgressFactory) (*transfer.Result, error) {
	target, err := s.FileTarget(req)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "downloading file",
			"bucket", s.client.Bucket(),
			"key", target.Key,
			"version_id", target.VersionID,
			"path", target.LocalPath)
	}

	return s.fetcher.Fetch(ctx, target, progress)
}

// Plan is the set of objects a bulk download will fetch.
type Plan struct {
	// Source is the prefix the plan was built from
	Source string

	// Destination is the local root every target is placed under
	Destination string

	// Cutoff is the point in time for versioned plans; zero otherwise
	Cutoff time.Time

	Targets []transfer.Target

	// Rejected holds listed keys that cannot be placed under Destination
	Rejected []transfer.Failure
}

// Count returns the number of objects that will be attempted.
func (p *Plan) Count() int {
	return len(p.Targets) + len(p.Rejected)
}

// TotalSize returns the summed listed size of all targets.
func (p *Plan) TotalSize() int64 {
	var total int64
	for _, t := range p.Targets {
		total += t.Size
	}
	return total
}

// Empty reports whether there is nothing to download.
func (p *Plan) Empty() bool {
	return p.Count() == 0
}

// SourceLabel names the source for messages: the prefix, or "bucket root".
func (p *Plan) SourceLabel() string {
	if p.Source == "" {
		return "bucket root"
	}
	return p.Source
}

// PlanDir lists the current objects under prefix. Directory placeholders are
// skipped. A listing error aborts planning.
func (s *Service) PlanDir(ctx context.Context, prefix, destination string) (*Plan, error) {
	plan := s.newPlan(prefix, destination)

	err := storage.WalkObjects(ctx, s.client.ListObjects(prefix), func(obj storage.Object) {
		plan.add(obj.Key, "", obj.Size)
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "planned directory download",
			"prefix", prefix,
			"objects", len(plan.Targets),
			"rejected", len(plan.Rejected))
	}
	return plan, nil
}

// PlanVersioned resolves, per key under prefix, the version that was current
// at cutoff. Keys deleted or empty at cutoff are left out. A listing error,
// including a bucket without versioning, aborts planning.
func (s *Service) PlanVersioned(ctx context.Context, prefix, destination string, cutoff time.Time) (*Plan, error) {
	plan := s.newPlan(prefix, destination)
	plan.Cutoff = cutoff.UTC()

	resolver := version.NewResolver(plan.Cutoff)
	if err := version.Collect(ctx, s.client.ListVersions(prefix), resolver); err != nil {
		return nil, err
	}

	for _, e := range version.Sorted(resolver.Result()) {
		plan.add(e.Key, e.VersionID, e.Size)
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "planned versioned download",
			"prefix", prefix,
			"cutoff", plan.Cutoff,
			"keys_seen", resolver.Len(),
			"objects", len(plan.Targets),
			"rejected", len(plan.Rejected))
	}
	return plan, nil
}

// Execute downloads every target of plan. Rejected keys count as failures.
func (s *Service) Execute(ctx context.Context, plan *Plan, opts transfer.BatchOptions) (*transfer.Tally, error) {
	tally, err := s.fetcher.FetchAll(ctx, plan.Targets, opts)
	if tally == nil {
		tally = &transfer.Tally{}
	}

	for _, f := range plan.Rejected {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "object skipped",
				"key", f.Target.Key,
				"code", errors.CodeOf(f.Err),
				"error", f.Err)
		}
		tally.Failed++
		tally.Failures = append(tally.Failures, f)
		if opts.Files != nil {
			opts.Files.Add(1)
		}
	}

	return tally, err
}

func (s *Service) newPlan(prefix, destination string) *Plan {
	if destination == "" {
		destination = s.downloadDir
	}
	return &Plan{Source: prefix, Destination: destination}
}

func (p *Plan) add(key, versionID string, size int64) {
	target := transfer.Target{Key: key, VersionID: versionID, Size: size}

	local, err := pathmap.LocalPath(key, p.Source, p.Destination)
	if err != nil {
		p.Rejected = append(p.Rejected, transfer.Failure{Target: target, Err: err})
		return
	}
	target.LocalPath = local
	p.Targets = append(p.Targets, target)
}
