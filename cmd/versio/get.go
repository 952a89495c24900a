package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/versioio/versio/internal/config"
	"github.com/versioio/versio/internal/verr"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Show one project's current version.",
	RunE: func(cmd *cobra.Command, args []string) error {
		idStr, _ := cmd.Flags().GetString("id")
		name, _ := cmd.Flags().GetString("name")
		versionOnly, _ := cmd.Flags().GetBool("version-only")
		prev, _ := cmd.Flags().GetBool("prev")

		if idStr == "" && name == "" {
			return verr.New(verr.ConfigInvalid, "get requires --id or --name")
		}

		m, _, err := openMono(cmd.Context(), cmd)
		if err != nil {
			return err
		}

		var p *config.Project
		if idStr != "" {
			n, convErr := strconv.Atoi(idStr)
			if convErr != nil {
				return verr.Wrap(verr.ConfigInvalid, convErr, "invalid --id %q", idStr)
			}
			if p, err = m.Project(config.ProjectId(n)); err != nil {
				return err
			}
		} else {
			if p, err = m.ProjectByName(name); err != nil {
				return err
			}
		}

		if prev {
			return verr.New(verr.Internal, "get --prev is not implemented")
		}

		version, _, err := p.CurrentVersion(m.Current)
		if err != nil {
			return err
		}
		if versionOnly {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", p.Name, version)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringP("id", "i", "", "project id to get")
	getCmd.Flags().StringP("name", "n", "", "project name to get")
	getCmd.Flags().BoolP("version-only", "V", false, "print only the version string")
	getCmd.Flags().Bool("prev", false, "get the version as of the prev_tag snapshot (not implemented)")
}
