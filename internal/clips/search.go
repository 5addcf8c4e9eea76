package clips

import (
	"context"
	"strings"
)

// Search returns clips whose content, page title or domain contains query,
// ignoring case. A blank query returns List unchanged. Order is newest-first.
func (s *Store) Search(ctx context.Context, query string) ([]Clip, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return all, nil
	}

	q := strings.ToLower(query)
	matched := make([]Clip, 0, len(all))
	for _, c := range all {
		if matches(c, q) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

// Query is Search followed by Filter.
func (s *Store) Query(ctx context.Context, query string, f Filter) ([]Clip, error) {
	found, err := s.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return f.Apply(found, s.now()), nil
}

func matches(c Clip, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(c.Content), lowerQuery) ||
		strings.Contains(strings.ToLower(c.PageTitle), lowerQuery) ||
		strings.Contains(strings.ToLower(c.Domain), lowerQuery)
}
