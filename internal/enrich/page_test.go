package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTitle(t *testing.T) {
	cases := []struct {
		name     string
		content  string
		fallback string
		want     string
	}{
		{
			name:     "prefix normalized",
			content:  "TITLE: Hello World\nBody",
			fallback: "https://example.com",
			want:     "Hello World",
		},
		{
			name:     "no prefix unchanged",
			content:  "Hello World\nBody",
			fallback: "https://example.com",
			want:     "Hello World",
		},
		{
			name:     "empty after stripping falls back",
			content:  "Title:   \nBody",
			fallback: "https://example.com",
			want:     "https://example.com",
		},
		{
			name:     "long title capped",
			content:  strings.Repeat("a", 150),
			fallback: "x",
			want:     strings.Repeat("a", 100),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractTitle(tc.content, tc.fallback)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPageReader_Title(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/plain", r.Header.Get("Accept"))
		assert.Contains(t, r.URL.RawPath+r.URL.Path, "go.dev")
		if strings.Contains(r.URL.Path, "missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("Title: The Go Programming Language\n\nURL Source: https://go.dev\n"))
	}))
	defer srv.Close()

	p := NewPageReader()
	p.baseURL = srv.URL + "/"

	title, err := p.Title(context.Background(), "https://go.dev")
	require.NoError(t, err)
	assert.Equal(t, "The Go Programming Language", title)

	_, err = p.Title(context.Background(), "https://go.dev/missing")
	assert.ErrorContains(t, err, "status 404")
}
