package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/versioio/versio/internal/vcs"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute the plan and apply it: bump versions, place tags.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		noFetch, _ := cmd.Flags().GetBool("no-fetch")

		m, level, err := openMono(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		if !noFetch && level >= vcs.Remote {
			log.Debug("fetching from remote before planning")
			if err := m.Vcs.Fetch(cmd.Context(), level); err != nil {
				return err
			}
		}
		pl, err := m.BuildPlan(cmd.Context())
		if err != nil {
			return err
		}
		log.Debugf("plan computed: %d project(s), %d ineffective PR(s)", len(pl.Incrs), len(pl.Ineffective))
		wrote, err := m.Commit(cmd.Context(), pl, dryRun)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, incr := range pl.Incrs {
			if incr.Size > 0 {
				fmt.Fprintf(out, "%s: %s\n", incr.Project.Name, incr.Size)
			}
		}
		if dryRun {
			fmt.Fprintln(out, "(dry run, nothing written)")
		} else if !wrote {
			fmt.Fprintln(out, "nothing to do")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("dry-run", false, "compute the plan but don't write anything")
	runCmd.Flags().Bool("no-fetch", false, "skip fetching from the remote before planning")
}
