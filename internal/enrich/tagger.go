// Package enrich suggests tags for clips with an LLM.
package enrich

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"

	"github.com/user/contextclips/internal/clips"
	"github.com/user/contextclips/internal/config"
)

const (
	maxContentLen = 4000
	maxTags       = 5
)

const defaultTagPrompt = `Suggest 3-5 short lowercase tags for this clipboard snippet.
Consider where it was copied from.

Format your response exactly as:
TAGS: <tag1>, <tag2>, <tag3>

Page: %s (%s)
Snippet:
%s`

// completeFunc sends prompt to a model and returns its text reply.
type completeFunc func(ctx context.Context, prompt string) (string, error)

// Tagger generates tag suggestions using the configured LLM provider.
type Tagger struct {
	cfg      config.LLMConfig
	complete completeFunc
}

func NewTagger(cfg config.LLMConfig) *Tagger {
	t := &Tagger{cfg: cfg}
	switch cfg.Provider {
	case "anthropic":
		t.complete = t.completeWithAnthropic
	case "openai", "openrouter":
		t.complete = t.completeWithOpenAI
	}
	return t
}

// Suggest returns up to five normalized tags for clip.
func (t *Tagger) Suggest(ctx context.Context, clip clips.Clip) ([]string, error) {
	if t.complete == nil {
		return nil, fmt.Errorf("unsupported LLM provider: %s", t.cfg.Provider)
	}

	content := truncate(clip.Content, maxContentLen)

	tmpl := t.cfg.TagPrompt
	if tmpl == "" {
		tmpl = defaultTagPrompt
	}
	prompt := fmt.Sprintf(tmpl, clip.PageTitle, clip.Domain, content)

	response, err := t.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	tags := parseTags(response)
	if len(tags) == 0 {
		return nil, fmt.Errorf("no tags in LLM response")
	}
	return tags, nil
}

func (t *Tagger) apiKey(envVar string) string {
	if t.cfg.APIKey != "" {
		return t.cfg.APIKey
	}
	return os.Getenv(envVar)
}

func (t *Tagger) completeWithAnthropic(ctx context.Context, prompt string) (string, error) {
	apiKey := t.apiKey("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	var opts []anthropic.ClientOption
	if t.cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(t.cfg.BaseURL))
	}
	if len(t.cfg.Headers) > 0 {
		opts = append(opts, anthropic.WithHTTPClient(t.httpClient()))
	}
	client := anthropic.NewClient(apiKey, opts...)

	resp, err := client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(t.cfg.Model),
		MaxTokens: 200,
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{{Type: "text", Text: &prompt}},
			},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("empty response from Anthropic")
	}

	return resp.Content[0].GetText(), nil
}

func (t *Tagger) completeWithOpenAI(ctx context.Context, prompt string) (string, error) {
	var apiKey string
	baseURL := t.cfg.BaseURL

	if t.cfg.Provider == "openrouter" {
		apiKey = t.apiKey("OPENROUTER_API_KEY")
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1"
		}
	} else {
		apiKey = t.apiKey("OPENAI_API_KEY")
	}

	if apiKey == "" {
		return "", fmt.Errorf("API key not set for provider %s", t.cfg.Provider)
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if len(t.cfg.Headers) > 0 {
		config.HTTPClient = t.httpClient()
	}

	client := openai.NewClientWithConfig(config)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     t.cfg.Model,
		MaxTokens: 200,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

// httpClient adds the configured extra headers to every request.
func (t *Tagger) httpClient() *http.Client {
	return &http.Client{Transport: headerTransport{headers: t.cfg.Headers, next: http.DefaultTransport}}
}

type headerTransport struct {
	headers map[string]string
	next    http.RoundTripper
}

func (h headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	return h.next.RoundTrip(req)
}

// parseTags reads the TAGS: line, lowercasing and de-duplicating.
func parseTags(response string) []string {
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToUpper(line), "TAGS:") {
			continue
		}

		seen := map[string]bool{}
		var tags []string
		for _, raw := range strings.Split(line[len("TAGS:"):], ",") {
			tag := strings.ToLower(strings.Trim(strings.TrimSpace(raw), `"'#.`))
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
			if len(tags) == maxTags {
				break
			}
		}
		return tags
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
