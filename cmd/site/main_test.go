package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isidrok/site"
	"github.com/isidrok/site/content"
)

// project writes a config and collection into a temp dir and returns the
// config path.
func project(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	base := filepath.Join(dir, "posts")
	require.NoError(t, os.MkdirAll(base, 0o755))
	for rel, src := range files {
		path := filepath.Join(base, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	}
	cfg := fmt.Sprintf("database: %s\ncollection:\n  base: %s\nlog_level: error\n",
		filepath.Join(dir, "data", "content.db"), base)
	path := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func post(slug, date string, draft bool) string {
	return fmt.Sprintf("---\ntitle: Post %s\ndate: %s\ndescription: About %s\nslug: %s\ndraft: %t\n---\n", slug, date, slug, slug, draft)
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "site dev\n", out)
}

func TestCheck(t *testing.T) {
	cfg := project(t, map[string]string{
		"a.md": post("a", "2024-01-01", false),
		"b.md": post("b", "2024-02-01", true),
	})

	out, err := run(t, "", "check", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "2 entries (1 drafts), 0 issues\n", out)
}

func TestCheckReportsIssues(t *testing.T) {
	cfg := project(t, map[string]string{
		"a.md":   post("a", "2024-01-01", false),
		"bad.md": "---\ntitle: Bad\ndate: 2024-01-01\ndescription: x\nslug: bad\nrepository: nope\n---\n",
	})

	out, err := run(t, "", "check", "--config", cfg)
	assert.ErrorIs(t, err, errIssues)
	assert.Contains(t, out, "bad.md: repository: invalid url\n")
	assert.Contains(t, out, "1 entries (0 drafts), 1 issues\n")
}

func TestSyncAndList(t *testing.T) {
	cfg := project(t, map[string]string{
		"a.md": post("a", "2024-01-01", false),
		"b.md": post("b", "2024-02-01", true),
	})

	out, err := run(t, "", "sync", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "2 entries (1 drafts), 0 issues\n", out)

	out, err = run(t, "", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Post a")
	assert.NotContains(t, out, "Post b")
	assert.Contains(t, strings.ToLower(out), "1 entries", "footer")
	assert.Contains(t, out, "800ms", "title animation of \"Post a\"")

	out, err = run(t, "", "list", "--drafts", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Post b")
	assert.Less(t, strings.Index(out, "Post b"), strings.Index(out, "Post a"))
}

func TestDuration(t *testing.T) {
	cfg := project(t, nil)

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"defaults", "", []string{"hello"}, "700\n"},
		{"joined args", "", []string{"a", "b"}, "500\n"},
		{"flags", "", []string{"--speed", "10ms", "--delay", "50ms", "hello"}, "100\n"},
		{"stdin", "hey\n", nil, "500\n"},
		{"graphemes", "", []string{"--counter", "graphemes", "--speed", "10ms", "--delay", "0s", "\U0001F1EA\U0001F1F8"}, "10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"duration", "--config", cfg}, tt.args...)
			out, err := run(t, tt.stdin, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	_, err := run(t, "", "duration", "--config", cfg, "--counter", "bytes", "x")
	assert.Error(t, err)
}

func TestRunNew(t *testing.T) {
	base := filepath.Join(t.TempDir(), "posts")
	var cfg site.Config
	cfg.Collection = site.CollectionConfig{Base: base, Pattern: content.DefaultPattern}
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	path, err := runNew(cfg, `Hello, "World"!`, newOptions{format: "md", description: "Greeting", draft: true}, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "hello-world.md"), path)

	src, err := os.ReadFile(path)
	require.NoError(t, err)
	e, err := content.Parse("hello-world.md", src)
	require.NoError(t, err)
	assert.Equal(t, `Hello, "World"!`, e.Title)
	assert.Equal(t, "hello-world", e.Slug)
	assert.Equal(t, "Greeting", e.Description)
	assert.True(t, e.Draft)
	assert.Equal(t, "2024-03-05", e.Date.Format("2006-01-02"))

	_, err = runNew(cfg, "Hello World", newOptions{format: "md"}, now)
	assert.ErrorContains(t, err, "already exists")
}

func TestRunNewOptions(t *testing.T) {
	base := filepath.Join(t.TempDir(), "posts")
	var cfg site.Config
	cfg.Collection = site.CollectionConfig{Base: base, Pattern: content.DefaultPattern}
	now := time.Now()

	path, err := runNew(cfg, "Demo", newOptions{format: "mdx", slug: "custom", date: "2023-12-31"}, now)
	require.NoError(t, err)
	src, err := os.ReadFile(path)
	require.NoError(t, err)
	e, err := content.Parse("custom.mdx", src)
	require.NoError(t, err)
	assert.Equal(t, "custom", e.Slug)
	assert.False(t, e.Draft)
	assert.Equal(t, 2023, e.Date.Year())

	_, err = runNew(cfg, "Demo", newOptions{format: "txt"}, now)
	assert.ErrorContains(t, err, "unknown format")

	_, err = runNew(cfg, "!!!", newOptions{format: "md"}, now)
	assert.ErrorContains(t, err, "--slug")

	_, err = runNew(cfg, "Demo", newOptions{format: "md", date: "yesterday"}, now)
	assert.ErrorContains(t, err, "invalid date")
}

func TestNewCommand(t *testing.T) {
	cfg := project(t, nil)

	out, err := run(t, "", "new", "--config", cfg, "--description", "d", "My First Post")
	require.NoError(t, err)
	assert.Contains(t, out, "my-first-post.md")

	out, err = run(t, "", "check", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "1 entries (1 drafts), 0 issues\n", out)
}
