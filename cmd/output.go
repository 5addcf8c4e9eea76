package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/user/contextclips/internal/clips"
)

func outputJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func outputPlaintext(w io.Writer, results []clips.Clip) error {
	for _, c := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.ContentType, c.Domain, oneLine(c.Content))
	}
	return nil
}

func outputDefault(w io.Writer, results []clips.Clip) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No clips found.")
		return nil
	}
	for i, c := range results {
		pin := ""
		if c.Pinned {
			pin = " (pinned)"
		}
		fmt.Fprintf(w, "%d. %s %s%s\n", i+1, typeIcon(c.ContentType), truncate(oneLine(c.Content), 100), pin)
		fmt.Fprintf(w, "   %s  %s", c.ID, c.Time().Format(time.DateTime))
		if c.Domain != "" {
			fmt.Fprintf(w, "  %s", c.Domain)
		}
		fmt.Fprintln(w)
		if c.PageTitle != "" {
			fmt.Fprintf(w, "   %s\n", truncate(c.PageTitle, 100))
		}
		if len(c.Tags) > 0 {
			fmt.Fprintf(w, "   #%s\n", strings.Join(c.Tags, " #"))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func outputGroups(w io.Writer, groups []clips.Group) error {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No clips found.")
		return nil
	}
	for _, g := range groups {
		fmt.Fprintf(w, "== %s (%d)\n", g.Title, len(g.Clips))
		for _, c := range g.Clips {
			fmt.Fprintf(w, "  %s %s  %s\n", typeIcon(c.ContentType), truncate(oneLine(c.Content), 90), c.ID)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func typeIcon(t clips.ContentType) string {
	switch t {
	case clips.TypeText:
		return "[T]"
	case clips.TypeCode:
		return "[C]"
	case clips.TypeURL:
		return "[L]"
	case clips.TypeImage:
		return "[I]"
	case clips.TypeHTML:
		return "[H]"
	default:
		return "[?]"
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
