package clips

import (
	"sort"
	"time"
)

type GroupKind string

const (
	GroupDomain  GroupKind = "domain"
	GroupTime    GroupKind = "time"
	GroupContent GroupKind = "content"
)

// Group is a titled bucket of clips, newest-first inside.
type Group struct {
	Title string    `json:"title"`
	Kind  GroupKind `json:"kind"`
	Clips []Clip    `json:"clips"`
}

// GroupByDomain buckets clips by domain, largest bucket first.
func GroupByDomain(clips []Clip) []Group {
	return groupBy(clips, GroupDomain, func(c Clip) string { return c.Domain })
}

// GroupByContentType buckets clips by content type, largest bucket first.
func GroupByContentType(clips []Clip) []Group {
	return groupBy(clips, GroupContent, func(c Clip) string { return c.ContentType.Label() })
}

// GroupByTime buckets clips into Today, Yesterday, This Week and Older.
// Empty buckets are left out.
func GroupByTime(clips []Clip, now time.Time) []Group {
	titles := []string{"Today", "Yesterday", "This Week", "Older"}
	buckets := make([][]Clip, len(titles))

	for _, c := range clips {
		age := now.Sub(c.Time())
		var i int
		switch {
		case age < day:
			i = 0
		case age < 2*day:
			i = 1
		case age < 7*day:
			i = 2
		default:
			i = 3
		}
		buckets[i] = append(buckets[i], c)
	}

	var out []Group
	for i, b := range buckets {
		if len(b) == 0 {
			continue
		}
		out = append(out, Group{Title: titles[i], Kind: GroupTime, Clips: newestFirst(b)})
	}
	return out
}

func groupBy(clips []Clip, kind GroupKind, key func(Clip) string) []Group {
	index := make(map[string]int)
	var out []Group
	for _, c := range clips {
		k := key(c)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Group{Title: k, Kind: kind})
		}
		out[i].Clips = append(out[i].Clips, c)
	}

	for i := range out {
		out[i].Clips = newestFirst(out[i].Clips)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Clips) > len(out[j].Clips)
	})
	return out
}

func newestFirst(clips []Clip) []Clip {
	sort.SliceStable(clips, func(i, j int) bool {
		return clips[i].CreatedAt > clips[j].CreatedAt
	})
	return clips
}
