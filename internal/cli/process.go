package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/audioscribe/audioscribe/internal/core/domain"
)

func ProcessCmd() *cobra.Command {
	var (
		outputDir   string
		language    string
		keepTags    bool
		linkExpires int64
		saveJSON    string
		noCleanup   bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "process <url>",
		Short: "Run the full pipeline: download, stage, transcribe, clean up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := newApp(verbose)

			result := app.Service.Process(cmd.Context(), domain.WorkflowRequest{
				URL:         args[0],
				OutputDir:   outputDir,
				Language:    language,
				KeepTags:    keepTags,
				LinkExpires: linkExpires,
				Cleanup:     !noCleanup,
				SaveJSON:    saveJSON,
			})

			if !result.Success {
				if len(result.StepsCompleted) > 0 {
					fmt.Fprintln(cmd.ErrOrStderr(), "Steps completed:", strings.Join(result.StepsCompleted, ", "))
				}
				return errors.New(result.Error)
			}

			out := cmd.OutOrStdout()
			if verbose {
				fmt.Fprintln(out, "Steps completed:", strings.Join(result.StepsCompleted, ", "))
				if result.UploadResult != nil {
					fmt.Fprintln(out, "Staged link:", result.UploadResult.DirectLink)
				}
				fmt.Fprintln(out, "Transcript:")
			}
			fmt.Fprintln(out, result.Text)
			if verbose && result.OriginalText != "" && result.OriginalText != result.Text {
				fmt.Fprintln(out, "Original:")
				fmt.Fprintln(out, result.OriginalText)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for the downloaded file (default: staging dir)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "language hint (default: auto)")
	cmd.Flags().BoolVar(&keepTags, "keep-tags", false, "keep emotion and event tags in the transcript")
	cmd.Flags().Int64VarP(&linkExpires, "link-expires", "e", 0, "signed link lifetime in seconds (default 3600)")
	cmd.Flags().StringVarP(&saveJSON, "save-json", "s", "", "write the recognition result to a JSON file")
	cmd.Flags().BoolVar(&noCleanup, "no-cleanup", false, "keep the staged object and local file after recognition")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging and detailed output")

	return cmd
}
