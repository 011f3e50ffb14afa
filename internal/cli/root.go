package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/S-Muro0526/wasabi/internal/config"
	"github.com/S-Muro0526/wasabi/internal/errors"
)

type rootOptions struct {
	configPath string
	verbose    bool
	logFormat  string
	noProgress bool

	logger *slog.Logger
}

func (a *App) rootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "wasabi-downloader",
		Short: "Download files from Wasabi Hot Cloud Storage",
		Long: `wasabi-downloader downloads objects from a Wasabi (or other S3-compatible)
bucket: a single file, everything under a prefix, or the state of a prefix
at the end of a given day using object versioning.

Connection settings are read from config.csv, two columns of key,value:

  aws_access_key_id, aws_secret_access_key, endpoint_url, bucket_name
  mfa_serial_number (optional)

Every key can be overridden with a WASABI_<KEY> environment variable.`,
		SilenceErrors: true,
		// Usage is printed for flag errors only; failures from RunE are
		// reported by Run.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			logger, err := newLogger(a.Stderr, opts.verbose, opts.logFormat)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "path to the configuration file (.csv, .yaml, .json or .toml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "disable progress bars")

	root.AddCommand(
		a.fileCommand(opts),
		a.dirCommand(opts),
		a.versionedCommand(opts),
	)
	return root
}

func newLogger(w io.Writer, verbose bool, format string) (*slog.Logger, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	switch format {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, errors.NewError("newLogger", errors.ErrInvalidInput).
			WithMessage("log format must be text or json, got " + format)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (a *App) progressEnabled(opts *rootOptions) bool {
	return !opts.noProgress && a.showProgress()
}
