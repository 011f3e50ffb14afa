package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/S-Muro0526/wasabi/internal/downloader"
	"github.com/S-Muro0526/wasabi/internal/version"
)

func (a *App) versionedCommand(root *rootOptions) *cobra.Command {
	var timestamp, source, destination string

	cmd := &cobra.Command{
		Use:   "download_versioned",
		Short: "Download the latest versions of files as of the end of a given day",
		Long: `download_versioned restores a prefix to its state at 23:59:59.999999 UTC of
the given day. For every key the newest version modified on or before that
moment is downloaded; keys that were deleted or empty at that moment are
skipped. The bucket must have versioning enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Validate before any configuration or network access.
			cutoff, err := version.Cutoff(timestamp)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, client, err := a.connect(ctx, root)
			if err != nil {
				return err
			}
			svc := downloader.New(client, a.FS,
				downloader.WithLogger(root.logger),
				downloader.WithDownloadDir(cfg.DownloadDir))

			fmt.Fprintf(a.Stdout, "Fetching versions as of end-of-day %s UTC...\n", cutoff.Format("2006-01-02"))

			plan, err := svc.PlanVersioned(ctx, source, destination, cutoff)
			if err != nil {
				return err
			}
			if plan.Empty() {
				fmt.Fprintf(a.Stdout, "No file versions found for the specified timestamp '%s'.\n", timestamp)
				return nil
			}

			fmt.Fprintf(a.Stdout, "Found %d file(s) to download for the state at %s (total size %s).\n",
				plan.Count(), timestamp, humanSize(plan.TotalSize()))

			tally, err := a.execute(ctx, root, svc, plan, "Downloading versions")
			if tally != nil {
				fmt.Fprintf(a.Stdout, "\nVersioned download complete. %d file(s) succeeded, %d file(s) failed.\n",
					tally.Succeeded, tally.Failed)
			}
			if err != nil {
				return err
			}
			return batchResult(tally)
		},
	}

	cmd.Flags().StringVar(&timestamp, "timestamp", "", "date for versioning, in YYYYMMDD format")
	cmd.Flags().StringVar(&source, "source", "", "directory (prefix) on Wasabi (default: entire bucket)")
	cmd.Flags().StringVar(&destination, "destination", "", "local directory to save files (default <download_dir>)")
	_ = cmd.MarkFlagRequired("timestamp")
	return cmd
}
