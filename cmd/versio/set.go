package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/versioio/versio/internal/config"
	"github.com/versioio/versio/internal/verr"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Set a project's version explicitly.",
	RunE: func(cmd *cobra.Command, args []string) error {
		idStr, _ := cmd.Flags().GetString("id")
		name, _ := cmd.Flags().GetString("name")
		value, _ := cmd.Flags().GetString("value")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		if idStr == "" && name == "" {
			return verr.New(verr.ConfigInvalid, "set requires --id or --name")
		}
		if value == "" {
			return verr.New(verr.ConfigInvalid, "set requires --value")
		}

		m, _, err := openMono(cmd.Context(), cmd)
		if err != nil {
			return err
		}

		var wrote bool
		if idStr != "" {
			n, convErr := strconv.Atoi(idStr)
			if convErr != nil {
				return verr.Wrap(verr.ConfigInvalid, convErr, "invalid --id %q", idStr)
			}
			if wrote, err = m.SetByID(cmd.Context(), config.ProjectId(n), value, dryRun); err != nil {
				return err
			}
		} else {
			if wrote, err = m.SetByName(cmd.Context(), name, value, dryRun); err != nil {
				return err
			}
		}

		if wrote {
			fmt.Fprintln(cmd.OutOrStdout(), "set:", value)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.Flags().StringP("id", "i", "", "project id to set")
	setCmd.Flags().StringP("name", "n", "", "project name to set")
	setCmd.Flags().String("value", "", "the version value to set")
	setCmd.Flags().Bool("dry-run", false, "compute but don't write the change")
}
