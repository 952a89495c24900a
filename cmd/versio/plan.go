package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the version plan without applying it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		wide, _ := cmd.Flags().GetBool("wide")
		showAll, _ := cmd.Flags().GetBool("show-all")

		m, _, err := openMono(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		pl, err := m.BuildPlan(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		closeOut := func() {}
		if wide {
			out, closeOut = pagedOutput(cmd)
		}
		defer closeOut()
		for _, incr := range pl.Incrs {
			fmt.Fprintf(out, "%s: %s\n", incr.Project.Name, incr.Size)
			if !wide {
				continue
			}
			for _, entry := range incr.Log.Entries {
				printChangelogEntry(out, entry)
			}
		}

		if showAll {
			for _, pr := range pl.Ineffective {
				fmt.Fprintf(out, "(ineffective) PR #%d %s\n", pr.Number, pr.Title)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().Bool("wide", false, "show each project's changelog entries")
	planCmd.Flags().Bool("show-all", false, "also list PRs that produced no effective size change")
}
