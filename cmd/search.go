package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/contextclips/internal/clips"
)

var (
	jsonOutput      bool
	plaintextOutput bool
)

// queryFlags are shared by list and search.
type queryFlags struct {
	domain      string
	contentType string
	dateRange   string
	pinned      bool
	unpinned    bool
	group       string
	limit       int
}

func (q *queryFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&q.domain, "domain", "", "Only clips from this domain")
	f.StringVarP(&q.contentType, "type", "t", "", "Only clips of this type: text, code, url, image, html")
	f.StringVar(&q.dateRange, "range", "", "Only clips from: today, yesterday, week, month")
	f.BoolVar(&q.pinned, "pinned", false, "Only pinned clips")
	f.BoolVar(&q.unpinned, "unpinned", false, "Only unpinned clips")
	f.StringVarP(&q.group, "group", "g", "", "Group output by: domain, time, content")
	f.IntVarP(&q.limit, "limit", "n", 0, "Maximum number of clips (0 = all)")
	f.BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	f.BoolVarP(&plaintextOutput, "plaintext", "p", false, "Output as plaintext")
}

func (q *queryFlags) filter() (clips.Filter, error) {
	ct, err := clips.ParseContentType(q.contentType)
	if err != nil {
		return clips.Filter{}, err
	}
	r, err := clips.ParseRange(q.dateRange)
	if err != nil {
		return clips.Filter{}, err
	}
	f := clips.Filter{Domain: q.domain, ContentType: ct, Range: r}
	switch {
	case q.pinned && q.unpinned:
		return clips.Filter{}, fmt.Errorf("--pinned and --unpinned are mutually exclusive")
	case q.pinned:
		f.Pinned = &q.pinned
	case q.unpinned:
		pinned := false
		f.Pinned = &pinned
	}
	return f, nil
}

func (q *queryFlags) run(cmd *cobra.Command, query string) error {
	f, err := q.filter()
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.store.Query(cmd.Context(), query, f)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if q.limit > 0 && len(results) > q.limit {
		results = results[:q.limit]
	}

	return q.output(cmd.OutOrStdout(), results)
}

func (q *queryFlags) output(w io.Writer, results []clips.Clip) error {
	if q.group != "" {
		var groups []clips.Group
		switch q.group {
		case "domain":
			groups = clips.GroupByDomain(results)
		case "time":
			groups = clips.GroupByTime(results, timeNow())
		case "content", "type":
			groups = clips.GroupByContentType(results)
		default:
			return fmt.Errorf("unknown grouping %q (want domain|time|content)", q.group)
		}
		if jsonOutput {
			return outputJSON(w, groups)
		}
		return outputGroups(w, groups)
	}

	if jsonOutput {
		return outputJSON(w, results)
	}
	if plaintextOutput {
		return outputPlaintext(w, results)
	}
	return outputDefault(w, results)
}

var searchFlags queryFlags

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search clips",
	Long:  "Case-insensitive search over clip content, page titles and domains.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return searchFlags.run(cmd, strings.Join(args, " "))
	},
}

var listFlags queryFlags

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List clips, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listFlags.run(cmd, "")
	},
}

func init() {
	searchFlags.register(searchCmd)
	listFlags.register(listCmd)
	rootCmd.AddCommand(searchCmd, listCmd)
}
