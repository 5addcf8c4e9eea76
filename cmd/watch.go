package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user/contextclips/internal/capture"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Capture everything copied to the system clipboard",
	Long: "Polls the system clipboard and saves each new copy as a clip until " +
		"interrupted. Clips saved this way have no page context.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), capture.WithOutcomeHandler(func(out capture.Outcome) {
			if out.Kind == capture.Created {
				slog.Info("saved", "id", out.Clip.ID, "type", out.Clip.ContentType)
			}
		}))
		if err != nil {
			return err
		}
		defer a.Close()

		return capture.NewWatcher(a.coord, cfg.Watch.Interval, nil).Run(cmd.Context())
	},
}

func init() {
	watchCmd.Flags().Duration("interval", 0, "Polling interval (default 500ms)")
	_ = viper.BindPFlag("watch.interval", watchCmd.Flags().Lookup("interval"))
	rootCmd.AddCommand(watchCmd)
}
