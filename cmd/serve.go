package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/contextclips/internal/message"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser extension over stdin/stdout",
	Long: "Speaks the newline-delimited JSON clip protocol on stdin and stdout, " +
		"for use as a native messaging host. Logs go to stderr.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		stop := a.background(cmd.Context(), false)
		defer stop()

		bridge := message.NewBridge(message.NewRouter(a.store, a.coord), a.hub)
		slog.Info("serving clip protocol on stdio", "backend", cfg.Storage.Backend)
		return bridge.Serve(cmd.Context(), cmd.InOrStdin(), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
