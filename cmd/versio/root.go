// Command versio is the CLI front end for the planning engine: it
// opens a repository, wires a VCS/PR-API pair, and dispatches to one of
// the subcommands that drive internal/mono.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/versioio/versio/internal/verr"
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:           "versio",
	Short:         "Manage version numbers across a monorepo.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("vcs-level", "auto", `VCS capability level: "auto", "max", "none", "local", "remote", or "smart"`)
	rootCmd.PersistentFlags().String("vcs-level-min", "", "minimum preferred VCS level, overriding --vcs-level")
	rootCmd.PersistentFlags().String("vcs-level-max", "", "maximum preferred VCS level, overriding --vcs-level")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("repo", ".", "path to the repository working directory")

	viper.SetEnvPrefix("VERSIO")
	viper.AutomaticEnv()
	viper.BindEnv("prev_tag", "VERSIO_PREV_TAG")
	viper.BindEnv("github_token", "VERSIO_GITHUB_TOKEN")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "versio:", err)
		os.Exit(verr.KindOf(err).ExitCode())
	}
}
