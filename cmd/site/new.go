package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/isidrok/site"
	"github.com/isidrok/site/content"
	"github.com/isidrok/site/scaffold"
)

type newOptions struct {
	format      string
	slug        string
	description string
	date        string
	draft       bool
}

func newNewCmd(c *cli) *cobra.Command {
	var o newOptions
	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a post in the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := runNew(c.cfg, args[0], o, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&o.format, "format", "md", "post format: md or mdx")
	cmd.Flags().StringVar(&o.slug, "slug", "", "post slug (default derived from the title)")
	cmd.Flags().StringVar(&o.description, "description", "", "post description")
	cmd.Flags().StringVar(&o.date, "date", "", "publication date, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&o.draft, "draft", true, "mark the post as a draft")
	return cmd
}

// runNew writes a new post under the collection base and returns its path.
func runNew(cfg site.Config, title string, o newOptions, now time.Time) (string, error) {
	if !slices.Contains(scaffold.Formats, o.format) {
		return "", fmt.Errorf("unknown format %q (want md or mdx)", o.format)
	}

	slug := o.slug
	if slug == "" {
		slug = site.Slugify(title)
	}
	if slug == "" {
		return "", fmt.Errorf("cannot derive a slug from %q; pass --slug", title)
	}

	date := now
	if o.date != "" {
		d, err := time.Parse("2006-01-02", o.date)
		if err != nil {
			return "", fmt.Errorf("invalid date %q: %w", o.date, err)
		}
		date = d
	}

	rel := slug + "." + o.format
	if !content.Match(cfg.Collection.Pattern, rel) {
		return "", fmt.Errorf("%s does not match collection pattern %q", rel, cfg.Collection.Pattern)
	}
	path := filepath.Join(cfg.Collection.Base, rel)

	// Check if the file already exists.
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}

	src, err := scaffold.Render(o.format, scaffold.Post{
		Title:       title,
		Slug:        slug,
		Description: o.description,
		Date:        date,
		Draft:       o.draft,
	})
	if err != nil {
		return "", err
	}

	// The template must produce a valid entry.
	if _, err := content.Parse(rel, src); err != nil {
		return "", fmt.Errorf("generated post is invalid: %w", err)
	}

	if err := os.MkdirAll(cfg.Collection.Base, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
