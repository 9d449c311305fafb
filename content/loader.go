package content

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/multierr"
)

// Collection defaults.
const (
	DefaultBase    = "./src/posts"
	DefaultPattern = "**/*.{md,mdx}"
)

// Load reads every file under base matching pattern. Valid entries are
// returned newest first; invalid files are reported as *Issue values combined
// into the error, which is nil when the whole collection is valid. A failure
// to read the collection itself is returned with no entries.
func Load(ctx context.Context, base, pattern string) ([]Entry, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("content: open collection: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content: collection base %s is not a directory", base)
	}
	return LoadFS(ctx, os.DirFS(base), pattern)
}

// LoadFS is Load over an fs.FS rooted at the collection base.
func LoadFS(ctx context.Context, fsys fs.FS, pattern string) ([]Entry, error) {
	paths, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("content: glob %q: %w", pattern, err)
	}
	sort.Strings(paths)

	var (
		entries []Entry
		issues  error
		slugs   = make(map[string]string)
	)
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := fs.ReadFile(fsys, rel)
		if err != nil {
			issues = multierr.Append(issues, &Issue{Path: rel, Message: err.Error()})
			continue
		}
		entry, err := Parse(rel, src)
		if err != nil {
			issues = multierr.Append(issues, err)
			continue
		}
		if other, ok := slugs[entry.Slug]; ok {
			issues = multierr.Append(issues, &Issue{
				Path:    rel,
				Field:   "slug",
				Message: fmt.Sprintf("duplicate slug %q, already used by %s", entry.Slug, other),
			})
			continue
		}
		slugs[entry.Slug] = rel
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, issues
}

// Match reports whether rel, a path relative to the collection base, is part
// of the collection described by pattern.
func Match(pattern, rel string) bool {
	if pattern == "" {
		pattern = DefaultPattern
	}
	ok, err := doublestar.Match(pattern, filepath.ToSlash(rel))
	return err == nil && ok
}
