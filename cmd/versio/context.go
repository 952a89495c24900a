package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/versioio/versio/internal/mono"
	"github.com/versioio/versio/internal/prdiscovery"
	"github.com/versioio/versio/internal/vcs"
)

// flagLevelRange reads the global --vcs-level(-min|-max) flags into a
// preferred vcs.Range, defaulting to Local..Smart per spec.md §6.
func flagLevelRange(cmd *cobra.Command) (vcs.Range, error) {
	base, _ := cmd.Flags().GetString("vcs-level")
	min, _ := cmd.Flags().GetString("vcs-level-min")
	max, _ := cmd.Flags().GetString("vcs-level-max")

	rng := vcs.Range{Min: vcs.Local, Max: vcs.Smart}
	if base != "" && base != "auto" {
		lvl, err := vcs.ParseLevel(base)
		if err != nil {
			return rng, err
		}
		rng = vcs.Range{Min: lvl, Max: lvl}
	}
	if min != "" {
		lvl, err := vcs.ParseLevel(min)
		if err != nil {
			return rng, err
		}
		rng.Min = lvl
	}
	if max != "" {
		lvl, err := vcs.ParseLevel(max)
		if err != nil {
			return rng, err
		}
		rng.Max = lvl
	}
	return rng, nil
}

// openMono opens the repository at --repo, negotiates the effective
// VCS level, wires a GithubApi when the remote and a token are both
// available, and loads the live config through mono.Open.
func openMono(ctx context.Context, cmd *cobra.Command) (*mono.Mono, vcs.Level, error) {
	dir, _ := cmd.Flags().GetString("repo")
	repo, err := vcs.Open(dir)
	if err != nil {
		return nil, vcs.None, err
	}

	preferred, err := flagLevelRange(cmd)
	if err != nil {
		return nil, vcs.None, err
	}

	ghInfo, err := repo.GithubInfo(ctx)
	if err != nil {
		return nil, vcs.None, err
	}
	token := viper.GetString("github_token")

	negotiatedMax := vcs.Local
	if ghInfo != nil {
		negotiatedMax = vcs.Remote
		if token != "" {
			negotiatedMax = vcs.Smart
		}
	}

	effective, err := vcs.Negotiate(preferred, vcs.Range{Min: vcs.None, Max: vcs.Smart}, negotiatedMax)
	if err != nil {
		return nil, vcs.None, err
	}
	log.Debugf("negotiated vcs level %s (preferred %s..%s, remote cap %s)", effective, preferred.Min, preferred.Max, negotiatedMax)

	var prApi prdiscovery.PrApi
	if effective >= vcs.Smart && ghInfo != nil && token != "" {
		branch, err := repo.BranchName()
		if err != nil {
			return nil, vcs.None, err
		}
		log.Debugf("wiring github pr discovery for %s/%s (branch %s)", ghInfo.Owner, ghInfo.Repo, branch)
		prApi = prdiscovery.NewGithubApi(ctx, ghInfo.Owner, ghInfo.Repo, branch, token)
	} else {
		log.Debug("no github pr discovery: falling back to commit-only history")
	}

	m, err := mono.Open(ctx, repo, prApi)
	if err != nil {
		return nil, vcs.None, err
	}
	for _, w := range m.Config.Warnings {
		log.Warn(w)
	}

	if prevTag := viper.GetString("prev_tag"); prevTag != "" {
		m.Config.Options.PrevTag = prevTag
	}

	return m, effective, nil
}
