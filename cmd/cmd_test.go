package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/contextclips/internal/clips"
)

// run executes the root command against a file backend in dataDir.
func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	jsonOutput, plaintextOutput = false, false
	addURL, addTitle, addDomain, addFetchTitle = "", "", "", false
	unpin, clearForce, suggestTags = false, false, false
	listFlags, searchFlags = queryFlags{}, queryFlags{}

	var out bytes.Buffer
	rootCmd.SetArgs(append(args, "--data-dir", dataDir, "--backend", "file", "--log-level", "error"))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func listJSON(t *testing.T, dataDir string) []clips.Clip {
	t.Helper()
	out, err := run(t, dataDir, "list", "--json")
	require.NoError(t, err)
	var got []clips.Clip
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	return got
}

func TestCLI_ClipLifecycle(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	out, err := run(t, dir, "add", "hello", "world", "--url", "https://www.example.com/a", "--title", "Example")
	require.NoError(t, err)
	assert.Contains(t, out, "Added:")

	out, err = run(t, dir, "add", "hello world")
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped", "duplicate window applies across invocations")

	got := listJSON(t, dir)
	require.Len(t, got, 1)
	clip := got[0]
	assert.Equal(t, "hello world", clip.Content)
	assert.Equal(t, "www.example.com", clip.Domain)
	assert.Equal(t, "Example", clip.PageTitle)

	_, err = run(t, dir, "pin", clip.ID)
	require.NoError(t, err)
	_, err = run(t, dir, "tag", clip.ID, "Greeting", "demo")
	require.NoError(t, err)

	got = listJSON(t, dir)
	assert.True(t, got[0].Pinned)
	assert.Equal(t, []string{"Greeting", "demo"}, got[0].Tags)

	out, err = run(t, dir, "search", "WORLD", "--plaintext")
	require.NoError(t, err)
	assert.Contains(t, out, clip.ID)

	out, err = run(t, dir, "delete", clip.ID, "missing-id")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted: "+clip.ID)
	assert.Contains(t, out, "Not found: missing-id")
	assert.Empty(t, listJSON(t, dir))
}

func TestCLI_CopyAndClear(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { writeClipboard = orig })

	_, err := run(t, dir, "add", "SELECT 1")
	require.NoError(t, err)
	id := listJSON(t, dir)[0].ID

	_, err = run(t, dir, "copy", id)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", copied)

	rootCmd.SetIn(strings.NewReader("n\n"))
	out, err := run(t, dir, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted")
	assert.Len(t, listJSON(t, dir), 1)

	_, err = run(t, dir, "clear", "--force")
	require.NoError(t, err)
	assert.Empty(t, listJSON(t, dir))
}

func TestCLI_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	_, err := run(t, dir, "add", "   ")
	assert.ErrorContains(t, err, "empty")

	_, err = run(t, dir, "pin", "nope")
	assert.ErrorIs(t, err, clips.ErrNotFound)

	_, err = run(t, dir, "list", "--type", "video")
	assert.ErrorContains(t, err, "unknown content type")
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "go.dev", domainOf("https://go.dev/doc?x=1"))
	assert.Equal(t, "", domainOf(""))
	assert.Equal(t, "", domainOf("::bad"))
}

func TestVersion(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "contextclips dev\n", out)
}
