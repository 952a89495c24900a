package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/versioio/versio/internal/changelog"
	"github.com/versioio/versio/internal/changes"
	"github.com/versioio/versio/internal/output"
)

// pagedOutput returns cmd's configured writer, paged through
// output.NewAutoPager when stdout is a real terminal. The returned
// close func must be called once writing is done; it is a no-op when
// no pager was started.
func pagedOutput(cmd *cobra.Command) (io.Writer, func()) {
	out := cmd.OutOrStdout()
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return out, func() {}
	}
	pager, err := output.NewAutoPager()
	if err != nil {
		log.Debugf("paging disabled: %v", err)
		return out, func() {}
	}
	return pager, func() { pager.Close() }
}

// printChangelogEntry renders one changelog entry in a terse one-line-
// per-commit form, used by `plan --wide`.
func printChangelogEntry(out io.Writer, entry *changelog.ChangelogEntry) {
	switch entry.Kind {
	case changelog.PrEntry:
		label := "Commits"
		if entry.Pr.Number != 0 {
			label = fmt.Sprintf("PR #%d", entry.Pr.Number)
		}
		fmt.Fprintf(out, "  %s (%s)\n", label, entry.Size)
		for _, c := range entry.Commits {
			if !c.Commit.Included {
				continue
			}
			dup := ""
			if c.Duplicate {
				dup = " (dup)"
			}
			fmt.Fprintf(out, "    %s %s (%s)%s\n", shortOid(c.Commit.Oid), c.Commit.Summary, c.Size, dup)
		}
	case changelog.DepEntry:
		fmt.Fprintf(out, "  dependency bump from %s\n", entry.DepName)
	}
}

func shortOid(oid changes.Oid) string {
	s := string(oid)
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
