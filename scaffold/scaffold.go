// Package scaffold provides the embedded templates used by `site new` to
// start a post.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// Post holds the template variables for a new post.
type Post struct {
	Title       string
	Slug        string
	Description string
	Date        time.Time
	Draft       bool
}

// Formats lists the post formats a template exists for.
var Formats = []string{"md", "mdx"}

var funcs = template.FuncMap{
	"quote": func(s string) string {
		return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
	},
}

// Render executes the post template for format ("md" or "mdx").
func Render(format string, p Post) ([]byte, error) {
	name := "templates/post." + format + ".tmpl"
	src, err := Templates.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("scaffold: unknown format %q", format)
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
