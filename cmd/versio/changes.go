package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/versioio/versio/internal/changes"
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Dump the raw PR/commit discovery result for (prev_tag, HEAD].",
	RunE: func(cmd *cobra.Command, args []string) error {
		showAll, _ := cmd.Flags().GetBool("show-all")

		m, _, err := openMono(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		ch, err := m.Changes(cmd.Context())
		if err != nil {
			return err
		}

		numbers := make([]int, 0, len(ch.Groups))
		for n := range ch.Groups {
			numbers = append(numbers, n)
		}
		sort.Ints(numbers)

		out := cmd.OutOrStdout()
		for _, n := range numbers {
			pr := ch.Groups[n]
			if n == 0 {
				fmt.Fprintln(out, "(no PR)")
			} else {
				fmt.Fprintf(out, "PR #%d: %s\n", pr.Number, pr.Title)
			}
			printCommits(out, pr, showAll)
		}
		return nil
	},
}

func printCommits(out io.Writer, pr *changes.FullPr, showAll bool) {
	for _, c := range pr.Commits {
		excluded := pr.IsExcluded(c.Oid)
		if excluded && !showAll {
			continue
		}
		tag := ""
		if excluded {
			tag = " (excluded)"
		}
		fmt.Fprintf(out, "  %s %s%s\n", shortOid(c.Oid), c.Summary, tag)
	}
}

func init() {
	rootCmd.AddCommand(changesCmd)
	changesCmd.Flags().Bool("show-all", false, "also list commits excluded by squash-merge detection")
}
