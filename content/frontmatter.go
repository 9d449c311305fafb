package content

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

var (
	errNoFrontmatter   = errors.New("missing frontmatter")
	errOpenFrontmatter = errors.New("frontmatter is not closed")
)

// dateLayouts are the string forms accepted for the date field.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"January 2, 2006",
	"Jan 2, 2006",
}

// Date is a frontmatter date coerced from a YAML timestamp, a date string or
// a number of milliseconds since the Unix epoch.
type Date struct {
	time.Time
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected a date, got %s", describe(node))
	}
	t, err := parseDate(node.Value)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// text is a frontmatter string. Unlike a plain string it rejects numbers,
// booleans and other non-string scalars instead of converting them.
type text string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *text) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!str" {
		return fmt.Errorf("expected a string, got %s", describe(node))
	}
	*s = text(node.Value)
	return nil
}

func parseDate(raw string) (time.Time, error) {
	val := strings.TrimSpace(raw)
	if val == "" {
		return time.Time{}, errors.New("expected a date, got an empty value")
	}
	if ms, err := strconv.ParseInt(val, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", val)
}

// describe names the kind of value held by node for error messages.
func describe(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "a list"
	case yaml.MappingNode:
		return "a mapping"
	case yaml.AliasNode:
		return "an alias"
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!int", "!!float":
			return "a number"
		case "!!bool":
			return "a boolean"
		case "!!null":
			return "null"
		case "!!timestamp":
			return "a timestamp"
		case "!!str":
			return "a string"
		}
	}
	return "an unsupported value"
}

// frontmatter mirrors the post schema. Pointer fields distinguish missing
// keys from empty values.
type frontmatter struct {
	Title       *text
	Date        *Date
	Description *text
	Slug        *text
	Draft       *bool
	Repository  *text
	LiveDemo    *text

	// invalid holds the keys whose values failed to decode.
	invalid map[string]bool
}

func (fm *frontmatter) fields() map[string]any {
	return map[string]any{
		"title":       &fm.Title,
		"date":        &fm.Date,
		"description": &fm.Description,
		"slug":        &fm.Slug,
		"draft":       &fm.Draft,
		"repository":  &fm.Repository,
		"liveDemo":    &fm.LiveDemo,
	}
}

// splitFrontmatter separates the YAML block delimited by "---" lines at the
// start of src from the body that follows it.
func splitFrontmatter(src string) (meta, body string, err error) {
	src = strings.TrimPrefix(src, "\ufeff")
	src = strings.ReplaceAll(src, "\r\n", "\n")
	if !strings.HasPrefix(src, "---\n") {
		return "", "", errNoFrontmatter
	}
	rest := src[len("---\n"):]
	if strings.HasPrefix(rest, "---\n") || rest == "---" {
		return "", strings.TrimPrefix(strings.TrimPrefix(rest, "---"), "\n"), nil
	}
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		if strings.HasSuffix(rest, "\n---") {
			return rest[:len(rest)-len("\n---")], "", nil
		}
		return "", "", errOpenFrontmatter
	}
	return rest[:end], rest[end+len("\n---\n"):], nil
}

// decodeFrontmatter decodes each known key of meta on its own, so a bad value
// in one field does not hide problems in the others. Field failures are
// returned as issues; err is set only when meta is not a YAML mapping.
func decodeFrontmatter(rel, meta string) (fm frontmatter, issues error, err error) {
	fm.invalid = make(map[string]bool)
	if strings.TrimSpace(meta) == "" {
		return fm, nil, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(meta), &doc); err != nil {
		return fm, nil, &Issue{Path: rel, Message: "invalid frontmatter: " + err.Error()}
	}
	if len(doc.Content) == 0 {
		return fm, nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fm, nil, &Issue{Path: rel, Message: "frontmatter must be a mapping, got " + describe(root)}
	}

	fields := fm.fields()
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		dst, ok := fields[key]
		if !ok {
			continue
		}
		if err := val.Decode(dst); err != nil {
			fm.invalid[key] = true
			issues = multierr.Append(issues, &Issue{Path: rel, Field: key, Message: decodeMessage(val, err)})
		}
	}
	return fm, issues, nil
}

func decodeMessage(node *yaml.Node, err error) string {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return strings.Join(typeErr.Errors, "; ")
	}
	return fmt.Sprintf("line %d: %v", node.Line, err)
}
