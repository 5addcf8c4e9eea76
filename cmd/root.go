package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user/contextclips/internal/config"
	"github.com/user/contextclips/internal/logging"
	"github.com/user/contextclips/internal/tui"
)

// cfg is loaded once per invocation, before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "contextclips",
	Short: "Clipboard history with page context",
	Long: "Keeps a history of copied text together with the page it was copied from. " +
		"Without a subcommand it opens the clip panel, which follows writes made by " +
		"other contextclips processes.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(viper.GetViper())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logging.Setup(os.Stderr, logging.ParseFormat(cfg.Log.Format), logging.ParseLevel(cfg.Log.Level))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// The panel owns the terminal, so logs go to a file.
		logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "contextclips.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer logFile.Close()
		logging.Setup(logFile, logging.FormatJSON, logging.ParseLevel(cfg.Log.Level))

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		watch, _ := cmd.Flags().GetBool("watch")
		stop := a.background(cmd.Context(), watch)
		defer stop()

		return tui.Run(cmd.Context(), a.store, a.hub)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("data-dir", "", "Data directory (default: ~/.contextclips)")
	flags.String("backend", "", "Storage backend: sqlite, file, memory or postgres")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: auto, text or json")

	_ = viper.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = viper.BindPFlag("storage.backend", flags.Lookup("backend"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))

	rootCmd.Flags().Bool("watch", false, "Also capture the system clipboard while the panel is open")
}
