package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/versioio/versio/internal/changelog"
	"github.com/versioio/versio/internal/sizer"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Render each project's pending changelog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		templateURL, _ := cmd.Flags().GetString("template")

		m, _, err := openMono(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		pl, err := m.BuildPlan(cmd.Context())
		if err != nil {
			return err
		}

		src, err := changelog.LoadTemplate(cmd.Context(), templateURL, "")
		if err != nil {
			return err
		}
		renderer, err := changelog.NewRenderer(templateURL, src)
		if err != nil {
			return err
		}

		out, closeOut := pagedOutput(cmd)
		defer closeOut()
		now := time.Now()
		for _, incr := range pl.Incrs {
			if len(incr.Log.Entries) == 0 {
				continue
			}
			current, _, err := incr.Project.CurrentVersion(m.Current)
			if err != nil {
				return err
			}
			newVersion := current
			if incr.Size > sizer.None {
				if bumped, err := sizer.Apply(incr.Size, current); err == nil {
					newVersion = bumped
				}
			}
			data := changelog.BuildTemplateData(incr.Project, newVersion, incr.Log, "", now)
			rendered, err := renderer.Render(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, rendered)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().String("template", "builtin:html", "changelog template URL (builtin:html, builtin:json, file:..., http(s)://...)")
}
