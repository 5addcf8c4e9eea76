package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/contextclips/internal/enrich"
)

var suggestTags bool

var tagCmd = &cobra.Command{
	Use:   "tag <id> [tag...]",
	Short: "Set the tags of a clip",
	Long: "Replace the tags of a clip. With --suggest the tags are generated by the " +
		"configured LLM provider instead.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, tags := args[0], args[1:]
		if suggestTags && len(tags) > 0 {
			return fmt.Errorf("give either tags or --suggest, not both")
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if suggestTags {
			clip, err := a.store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			tags, err = enrich.NewTagger(cfg.LLM).Suggest(cmd.Context(), clip)
			if err != nil {
				return fmt.Errorf("failed to suggest tags: %w", err)
			}
		}

		if err := a.store.SetTags(cmd.Context(), id, tags); err != nil {
			return fmt.Errorf("failed to tag %s: %w", id, err)
		}

		if len(tags) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared tags: %s\n", id)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Tagged %s: %s\n", id, strings.Join(tags, ", "))
		return nil
	},
}

func init() {
	tagCmd.Flags().BoolVarP(&suggestTags, "suggest", "s", false, "Ask the LLM for tags")
	rootCmd.AddCommand(tagCmd)
}
