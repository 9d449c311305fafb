package content

import (
	"errors"
	"net/url"
	"path"
	"strings"

	"go.uber.org/multierr"
)

// Parse decodes and validates one collection file. rel is the path relative
// to the collection base. All schema violations are returned as *Issue values
// combined with multierr.
func Parse(rel string, src []byte) (Entry, error) {
	entry := Entry{
		ID:     entryID(rel),
		Path:   rel,
		Format: strings.TrimPrefix(path.Ext(rel), "."),
	}

	meta, body, err := splitFrontmatter(string(src))
	if err != nil {
		return Entry{}, &Issue{Path: rel, Message: err.Error()}
	}
	entry.Body = body

	fm, errs, err := decodeFrontmatter(rel, meta)
	if err != nil {
		return Entry{}, err
	}

	// Fields that failed to decode already have an issue.
	required := func(field string, v *text, dst *string) {
		if v != nil {
			*dst = string(*v)
		} else if !fm.invalid[field] {
			errs = multierr.Append(errs, &Issue{Path: rel, Field: field, Message: "required"})
		}
	}
	optionalURL := func(field string, v *text, dst *string) {
		if v == nil {
			return
		}
		if !isURL(string(*v)) {
			errs = multierr.Append(errs, &Issue{Path: rel, Field: field, Message: "invalid url"})
			return
		}
		*dst = string(*v)
	}

	required("title", fm.Title, &entry.Title)
	if fm.Date != nil {
		entry.Date = fm.Date.Time
	} else if !fm.invalid["date"] {
		errs = multierr.Append(errs, &Issue{Path: rel, Field: "date", Message: "required"})
	}
	required("description", fm.Description, &entry.Description)
	required("slug", fm.Slug, &entry.Slug)
	if fm.Draft != nil {
		entry.Draft = *fm.Draft
	}
	optionalURL("repository", fm.Repository, &entry.Repository)
	optionalURL("liveDemo", fm.LiveDemo, &entry.LiveDemo)

	if errs != nil {
		return Entry{}, errs
	}
	return entry, nil
}

// Issues extracts every *Issue combined into err.
func Issues(err error) []*Issue {
	var out []*Issue
	for _, e := range multierr.Errors(err) {
		var issue *Issue
		if errors.As(e, &issue) {
			out = append(out, issue)
		}
	}
	return out
}

// isURL reports whether s is an absolute URL.
func isURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}

func entryID(rel string) string {
	return strings.TrimSuffix(rel, path.Ext(rel))
}
