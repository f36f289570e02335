package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/audioscribe/audioscribe/internal/core/domain"
)

func RecognizeCmd() *cobra.Command {
	var (
		language string
		apiKey   string
		keepTags bool
		output   string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "recognize <file_url>",
		Short: "Transcribe an audio file reachable over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := newApp(verbose)

			rec, err := app.Service.Recognize(cmd.Context(), domain.RecognizeRequest{
				FileURL:     args[0],
				Language:    language,
				KeepTags:    keepTags,
				Credentials: domain.Credentials{DashScopeAPIKey: apiKey},
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, rec.Text)

			if output != "" {
				if err := writeRecognitionJSON(output, rec); err != nil {
					return err
				}
				fmt.Fprintln(out, "Saved:", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "language hint (default: auto)")
	cmd.Flags().StringVarP(&apiKey, "api-key", "k", "", "speech recognition API key override")
	cmd.Flags().BoolVar(&keepTags, "keep-tags", false, "keep emotion and event tags in the transcript")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the full recognition result to a JSON file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func writeRecognitionJSON(path string, rec *domain.Recognition) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode recognition: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
