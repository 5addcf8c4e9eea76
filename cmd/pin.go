package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var unpin bool

var pinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Pin or unpin a clip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.SetPinned(cmd.Context(), args[0], !unpin); err != nil {
			return fmt.Errorf("failed to update %s: %w", args[0], err)
		}

		verb := "Pinned"
		if unpin {
			verb = "Unpinned"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", verb, args[0])
		return nil
	},
}

func init() {
	pinCmd.Flags().BoolVarP(&unpin, "unpin", "u", false, "Remove the pin instead")
	rootCmd.AddCommand(pinCmd)
}
