package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	jinaReaderURL  = "https://r.jina.ai/"
	maxPageLen     = 50000
	maxTitleLength = 100
)

// PageReader fetches readable page text using Jina Reader
type PageReader struct {
	client  *http.Client
	baseURL string
}

func NewPageReader() *PageReader {
	return &PageReader{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: jinaReaderURL,
	}
}

// Read returns the text content of targetURL, capped at 50k bytes.
func (p *PageReader) Read(ctx context.Context, targetURL string) (string, error) {
	readerURL := p.baseURL + url.QueryEscape(targetURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, readerURL, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("Accept", "text/plain")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("jina reader returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageLen))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Title returns the page title of targetURL, or targetURL itself when the
// page has none.
func (p *PageReader) Title(ctx context.Context, targetURL string) (string, error) {
	content, err := p.Read(ctx, targetURL)
	if err != nil {
		return "", err
	}
	return extractTitle(content, targetURL), nil
}

// extractTitle takes the first line of reader output, minus a "Title:" prefix.
func extractTitle(content, fallback string) string {
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if len(line) >= len("title:") && strings.EqualFold(line[:len("title:")], "title:") {
		line = strings.TrimSpace(line[len("title:"):])
	}
	if r := []rune(line); len(r) > maxTitleLength {
		line = string(r[:maxTitleLength])
	}
	if line == "" {
		return fallback
	}
	return line
}
