package cmd

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/contextclips/internal/capture"
	"github.com/user/contextclips/internal/enrich"
)

var (
	addURL        string
	addTitle      string
	addDomain     string
	addFetchTitle bool
)

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Save a clip",
	Long:  "Save text as a clip, optionally with the page it came from. Reads stdin when text is -.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if text == "-" {
			data, err := readAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = data
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		title := addTitle
		if title == "" && addFetchTitle && addURL != "" {
			fetched, err := enrich.NewPageReader().Title(cmd.Context(), addURL)
			if err != nil {
				slog.Warn("could not fetch page title", "url", addURL, "err", err)
			} else {
				title = fetched
			}
		}

		domain := addDomain
		if domain == "" {
			domain = domainOf(addURL)
		}

		page := capture.Page{URL: addURL, Title: title, Domain: domain}
		out := a.coord.Capture(cmd.Context(), text, page)

		w := cmd.OutOrStdout()
		switch out.Kind {
		case capture.Created:
			fmt.Fprintf(w, "Added: %s %s\n", out.Clip.ID, typeIcon(out.Clip.ContentType))
		case capture.RejectedEmpty:
			return fmt.Errorf("nothing to save: text is empty")
		case capture.RejectedDuplicate:
			fmt.Fprintln(w, "Skipped: same text was saved recently")
		case capture.Failed:
			return fmt.Errorf("failed to save clip: %w", out.Err)
		}
		return nil
	},
}

// domainOf returns the host of rawURL, or "" when it has none.
func domainOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func init() {
	addCmd.Flags().StringVar(&addURL, "url", "", "URL of the page the text came from")
	addCmd.Flags().StringVar(&addTitle, "title", "", "Title of the page the text came from")
	addCmd.Flags().StringVar(&addDomain, "domain", "", "Domain of the page (default: host of --url)")
	addCmd.Flags().BoolVar(&addFetchTitle, "fetch-title", false, "Look up the page title when --title is not given")
	rootCmd.AddCommand(addCmd)
}
