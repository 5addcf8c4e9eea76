package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every clip",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearForce {
			fmt.Fprint(cmd.OutOrStdout(), "Delete all clips? [y/N] ")
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear clips: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All clips deleted.")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "Do not ask for confirmation")
	rootCmd.AddCommand(clearCmd)
}
