package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

var copyCmd = &cobra.Command{
	Use:   "copy <id>",
	Short: "Copy a clip back to the system clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		clip, err := a.store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := writeClipboard(clip.Content); err != nil {
			return fmt.Errorf("failed to write clipboard: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Copied: %s\n", truncate(oneLine(clip.Content), 60))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(copyCmd)
}
