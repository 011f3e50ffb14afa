package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/S-Muro0526/wasabi/internal/downloader"
)

func (a *App) dirCommand(root *rootOptions) *cobra.Command {
	var source, destination string

	cmd := &cobra.Command{
		Use:   "download_dir",
		Short: "Download an entire directory (or bucket) from Wasabi",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, client, err := a.connect(ctx, root)
			if err != nil {
				return err
			}
			svc := downloader.New(client, a.FS,
				downloader.WithLogger(root.logger),
				downloader.WithDownloadDir(cfg.DownloadDir))

			plan, err := svc.PlanDir(ctx, source, destination)
			if err != nil {
				return err
			}
			if plan.Empty() {
				fmt.Fprintf(a.Stdout, "No files found in '%s'.\n", plan.SourceLabel())
				return nil
			}

			fmt.Fprintf(a.Stdout, "Found %d files to download from '%s' (total size %s).\n",
				plan.Count(), plan.SourceLabel(), humanSize(plan.TotalSize()))

			tally, err := a.execute(ctx, root, svc, plan, "Downloading directory")
			if tally != nil {
				fmt.Fprintf(a.Stdout, "\nDirectory download complete. %d files succeeded, %d files failed.\n",
					tally.Succeeded, tally.Failed)
			}
			if err != nil {
				return err
			}
			return batchResult(tally)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "directory (prefix) on Wasabi to download (default: entire bucket)")
	cmd.Flags().StringVar(&destination, "destination", "", "local directory to save files (default <download_dir>)")
	return cmd
}
