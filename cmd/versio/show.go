package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show every project's current version.",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := openMono(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		for _, p := range m.Config.Projects {
			version, _, err := p.CurrentVersion(m.Current)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", p.ID, p.Name, version)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
