package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the repository's .versio.yaml without planning anything.",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := openMono(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d project(s) configured\n", len(m.Config.Projects))
		for _, w := range m.Config.Warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
