package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/audioscribe/audioscribe/internal/bootstrap"
	"github.com/audioscribe/audioscribe/internal/config"
	"github.com/audioscribe/audioscribe/internal/observability/logging"
)

// Execute runs the root command and maps a failed subcommand to exit code 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "audioscribe",
		Short:         "Download remote audio, stage it in object storage and transcribe it",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		DownloadCmd(),
		UploadCmd(),
		RecognizeCmd(),
		ProcessCmd(),
	)

	return root
}

// newApp loads configuration, installs the command-line logger and wires the
// workflow service. Verbose drops the log level to debug.
func newApp(verbose bool) *bootstrap.App {
	cfg := config.Load()

	logger, level := logging.NewTextLogger("cli", cfg.LogLevel)
	if verbose {
		level.Set(slog.LevelDebug)
	}
	slog.SetDefault(logger)

	return bootstrap.New(cfg, "cli", nil)
}
