package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Aliases: []string{"rm"},
	Short:   "Delete clips by id",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		w := cmd.OutOrStdout()
		for _, id := range args {
			removed, err := a.store.Delete(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to delete %s: %w", id, err)
			}
			if removed {
				fmt.Fprintf(w, "Deleted: %s\n", id)
			} else {
				fmt.Fprintf(w, "Not found: %s\n", id)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
