package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func DownloadCmd() *cobra.Command {
	var (
		outputDir string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download the audio track of a remote URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := newApp(verbose)

			path, err := app.Service.Download(cmd.Context(), args[0], outputDir)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for the downloaded file (default: staging dir)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}
