// Package content loads the blog collection: markdown and MDX posts with YAML
// frontmatter, validated against the post schema.
package content

import (
	"fmt"
	"time"
)

// Entry is a validated post from the collection.
type Entry struct {
	ID          string    `json:"id"`     // path relative to the collection base, without extension
	Path        string    `json:"path"`   // path relative to the collection base
	Format      string    `json:"format"` // "md" or "mdx"
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Draft       bool      `json:"draft"`
	Repository  string    `json:"repository,omitempty"`
	LiveDemo    string    `json:"liveDemo,omitempty"`
	Body        string    `json:"-"`
}

// Link returns the site path of the entry.
func (e Entry) Link() string {
	return "/blog/" + e.Slug
}

// Issue is a schema violation found while loading an entry.
type Issue struct {
	Path    string `json:"path"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i *Issue) Error() string {
	if i.Field == "" {
		return fmt.Sprintf("%s: %s", i.Path, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Path, i.Field, i.Message)
}

// Published returns the entries that are not drafts, keeping their order.
func Published(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if !e.Draft {
			out = append(out, e)
		}
	}
	return out
}
