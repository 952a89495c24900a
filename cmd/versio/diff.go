package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the live config against the prev_tag snapshot.",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := openMono(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		a, err := m.Diff(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, p := range a.Older {
			fmt.Fprintf(out, "- %s (id %d)\n", p.Name, p.ID)
		}
		for _, p := range a.Newer {
			fmt.Fprintf(out, "+ %s (id %d)\n", p.Name, p.ID)
		}
		for _, c := range a.Changes {
			if oldName, newName, changed := c.Name(); changed {
				fmt.Fprintf(out, "~ renamed: %s -> %s\n", oldName, newName)
			}
			if oldValue, newValue, changed := c.Value(); changed {
				fmt.Fprintf(out, "~ %s: %s -> %s\n", c.New.Name, oldValue, newValue)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
