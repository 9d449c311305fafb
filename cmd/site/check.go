package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/isidrok/site"
)

func newCheckCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the collection against the post schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, report, err := c.app().Check(cmd.Context())
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}
}

// printReport writes each issue and a summary line. It returns errIssues
// when the report is not OK.
func printReport(w io.Writer, r site.Report) error {
	for _, issue := range r.Issues {
		fmt.Fprintln(w, issue.Error())
	}
	fmt.Fprintf(w, "%d entries (%d drafts), %d issues\n", r.Entries, r.Drafts, len(r.Issues))
	if !r.OK() {
		return errIssues
	}
	return nil
}
