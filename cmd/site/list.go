package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newListCmd(c *cli) *cobra.Command {
	var drafts bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed entries, newest first",
		Long:  "List the entries in the index. Run sync first to pick up collection changes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.Cache.ListEntries(cmd.Context(), drafts)
			if err != nil {
				return err
			}
			calc := a.Calculator()

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"Date", "Slug", "Title", "Draft", "Title animation"})
			for _, e := range entries {
				draft := ""
				if e.Draft {
					draft = "yes"
				}
				t.AppendRow(table.Row{
					e.Date.Format("2006-01-02"),
					e.Slug,
					e.Title,
					draft,
					calc.Duration(e.Title).String(),
				})
			}
			t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d entries", len(entries)), "", ""})
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&drafts, "drafts", false, "include drafts")
	return cmd
}
