package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List every file touched by discovered PRs, tagged by commit kind.",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := openMono(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		keyed, err := m.KeyedFiles(cmd.Context())
		if err != nil {
			return err
		}
		for _, kf := range keyed {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", kf.Kind, kf.File)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)
}
