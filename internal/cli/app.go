// Package cli implements the wasabi-downloader command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/S-Muro0526/wasabi/internal/auth"
	"github.com/S-Muro0526/wasabi/internal/config"
	"github.com/S-Muro0526/wasabi/internal/errors"
	"github.com/S-Muro0526/wasabi/internal/localfs"
	"github.com/S-Muro0526/wasabi/internal/storage"
	"github.com/S-Muro0526/wasabi/internal/storage/miniostore"
	"github.com/S-Muro0526/wasabi/internal/storage/s3store"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFatal   = 1
	ExitPartial = 2
)

// StorageFactory builds the storage client for cfg. creds is nil unless an
// MFA session was established.
type StorageFactory func(ctx context.Context, cfg *config.Config, creds *auth.Credentials, logger *slog.Logger) (storage.Client, error)

// STSFactory builds the STS client used for the MFA exchange.
type STSFactory func(ctx context.Context, settings auth.Settings) (auth.STSAPI, error)

// App holds the process environment the commands run against.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// FS is the destination filesystem
	FS *localfs.FS

	NewStorage StorageFactory
	NewSTS     STSFactory

	// Progress forces progress bars on or off; nil shows them when stderr
	// is a terminal
	Progress *bool
}

// NewApp returns an App wired to the real process environment.
func NewApp() *App {
	return &App{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		FS:         localfs.NewOS(),
		NewStorage: NewStorage,
		NewSTS: func(ctx context.Context, settings auth.Settings) (auth.STSAPI, error) {
			client, err := auth.NewSTSClient(ctx, settings)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
	}
}

// NewStorage builds the backend selected by cfg.Backend.
//
//nolint:ireturn // storage.Client is the backend-neutral contract.
func NewStorage(ctx context.Context, cfg *config.Config, creds *auth.Credentials, logger *slog.Logger) (storage.Client, error) {
	settings := cfg.Storage(creds)

	switch cfg.Backend {
	case config.BackendMinio:
		client, err := miniostore.New(settings, miniostore.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.BackendS3, "":
		client, err := s3store.New(ctx, settings,
			s3store.WithLogger(logger),
			s3store.WithRetryer(s3store.NewRetryer(0, 0, 0)))
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, errors.NewError("client initialization", errors.ErrInvalidConfig).
			WithMessage(fmt.Sprintf("unknown backend %q", cfg.Backend))
	}
}

// Run executes the command line in args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)

	err := root.ExecuteContext(ctx)
	return a.exitCode(err)
}

// connect loads configuration, performs the MFA exchange when configured
// and returns the storage client.
//
//nolint:ireturn // storage.Client is the backend-neutral contract.
func (a *App) connect(ctx context.Context, opts *rootOptions) (*config.Config, storage.Client, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	opts.logger.DebugContext(ctx, "configuration loaded", "config", cfg)

	var creds *auth.Credentials
	if cfg.HasMFA() {
		api, err := a.NewSTS(ctx, cfg.STS())
		if err != nil {
			return nil, nil, err
		}
		code, err := auth.ReadCode(a.Stdin, a.Stderr)
		if err != nil {
			return nil, nil, err
		}
		creds, err = auth.ExchangeMFA(ctx, api, cfg.MFASerialNumber, code, auth.WithLogger(opts.logger))
		if err != nil {
			return nil, nil, err
		}
	}

	client, err := a.NewStorage(ctx, cfg, creds, opts.logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

func (a *App) showProgress() bool {
	if a.Progress != nil {
		return *a.Progress
	}
	return isTerminal(a.Stderr)
}
