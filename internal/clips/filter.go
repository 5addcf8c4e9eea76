package clips

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Range restricts clips by age relative to now.
type Range string

const (
	RangeAny       Range = ""
	RangeToday     Range = "today"     // younger than 1 day
	RangeYesterday Range = "yesterday" // 1 to 2 days old
	RangeWeek      Range = "week"      // younger than 7 days
	RangeMonth     Range = "month"     // younger than 30 days
)

// ParseRange validates s as a Range.
func ParseRange(s string) (Range, error) {
	switch r := Range(s); r {
	case RangeAny, RangeToday, RangeYesterday, RangeWeek, RangeMonth:
		return r, nil
	}
	return RangeAny, fmt.Errorf("unknown date range %q (want today|yesterday|week|month)", s)
}

// ParseContentType validates s as a ContentType; empty is allowed.
func ParseContentType(s string) (ContentType, error) {
	t := ContentType(s)
	if s == "" || t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("unknown content type %q", s)
}

// Filter narrows a clip list. Zero-valued fields match everything.
type Filter struct {
	Domain      string
	ContentType ContentType
	Pinned      *bool
	Range       Range
}

// IsZero reports whether f matches every clip.
func (f Filter) IsZero() bool {
	return f.Domain == "" && f.ContentType == "" && f.Pinned == nil && f.Range == RangeAny
}

// Match reports whether c passes f at time now.
func (f Filter) Match(c Clip, now time.Time) bool {
	if f.Domain != "" && c.Domain != f.Domain {
		return false
	}
	if f.ContentType != "" && c.ContentType != f.ContentType {
		return false
	}
	if f.Pinned != nil && c.Pinned != *f.Pinned {
		return false
	}

	age := now.Sub(c.Time())
	switch f.Range {
	case RangeToday:
		return age < day
	case RangeYesterday:
		return age >= day && age < 2*day
	case RangeWeek:
		return age < 7*day
	case RangeMonth:
		return age < 30*day
	}
	return true
}

// Apply returns the clips that pass f, preserving order.
func (f Filter) Apply(clips []Clip, now time.Time) []Clip {
	if f.IsZero() {
		return clips
	}
	out := make([]Clip, 0, len(clips))
	for _, c := range clips {
		if f.Match(c, now) {
			out = append(out, c)
		}
	}
	return out
}
