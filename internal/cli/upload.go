package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/audioscribe/audioscribe/internal/core/domain"
)

func UploadCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "upload <local_path> [remote_name] [expires_seconds]",
		Short: "Stage a local file in object storage and print its signed link",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.UploadRequest{FilePath: args[0]}
			if len(args) > 1 {
				req.RemoteName = args[1]
			}
			if len(args) > 2 {
				expires, err := strconv.ParseInt(args[2], 10, 64)
				if err != nil {
					return fmt.Errorf("parse expires %q: %w", args[2], err)
				}
				req.Expires = expires
			}

			app := newApp(verbose)

			result, err := app.Service.Upload(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Link:", result.DirectLink)
			fmt.Fprintln(out, "Key:", result.FileKey)
			fmt.Fprintln(out, "Hash:", result.Hash)
			fmt.Fprintf(out, "Expires in %d seconds\n", result.Expires)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}
