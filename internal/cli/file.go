package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/S-Muro0526/wasabi/internal/downloader"
	"github.com/S-Muro0526/wasabi/internal/transfer"
)

func (a *App) fileCommand(root *rootOptions) *cobra.Command {
	var req downloader.FileRequest

	cmd := &cobra.Command{
		Use:   "download_file",
		Short: "Download a single file from Wasabi",
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

			fmt.Fprintf(a.Stdout, "Starting download of '%s'...\n", req.Source)

			var progress transfer.ProgressFactory
			if a.progressEnabled(root) {
				progress = byteBars(a.Stderr)
			}
			result, err := svc.DownloadFile(ctx, req, progress)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.Stdout, "\nSuccessfully downloaded to '%s' (%s)\n",
				result.Target.LocalPath, humanSize(result.Bytes))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Source, "source", "", "object key (file path) on Wasabi")
	cmd.Flags().StringVar(&req.Destination, "destination", "", "local path to save the file (default <download_dir>/<filename>)")
	cmd.Flags().StringVar(&req.VersionID, "version-id", "", "download a specific version of the object")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
