// Package mono ties every other internal package together into the
// single orchestration object a CLI command operates on: open a
// repository, read its current and previous configs, build a plan,
// diff two snapshots, and commit a write-set (spec.md §3's Mono type).
package mono

import (
	"context"

	"github.com/versioio/versio/internal/analyze"
	"github.com/versioio/versio/internal/changes"
	"github.com/versioio/versio/internal/config"
	"github.com/versioio/versio/internal/mark"
	"github.com/versioio/versio/internal/plan"
	"github.com/versioio/versio/internal/prdiscovery"
	"github.com/versioio/versio/internal/sizer"
	"github.com/versioio/versio/internal/state"
	"github.com/versioio/versio/internal/vcs"
	"github.com/versioio/versio/internal/verr"
)

const configPath = ".versio.yaml"

// Mono is a repository opened for version planning: its live config,
// tag index, and the VCS/PR-API ports needed to discover changes and
// apply a plan.
type Mono struct {
	Vcs     vcs.Vcs
	PrApi   prdiscovery.PrApi
	Config  *config.Config
	Current *state.CurrentState
}

// Open takes an already-opened repository, indexes its tags, and loads
// its live .versio.yaml. prApi may be nil, in which case PR discovery degrades
// to pr_zero only (spec.md §4.4's failure-mode contract).
func Open(ctx context.Context, v vcs.Vcs, prApi prdiscovery.PrApi) (*Mono, error) {
	refs, err := v.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]state.TagEntry, 0, len(refs))
	for _, r := range refs {
		entries = append(entries, state.TagEntry{Name: r.Name, Oid: r.Oid})
	}

	current, err := state.NewCurrentState(ctx, v, entries)
	if err != nil {
		return nil, err
	}

	data, err := current.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.CheckOverlappingRanges(current); err != nil {
		return nil, err
	}

	return &Mono{Vcs: v, PrApi: prApi, Config: cfg, Current: current}, nil
}

// headOid resolves the current branch tip.
func (m *Mono) headOid(ctx context.Context) (changes.Oid, error) {
	return m.Vcs.RevparseOid(ctx, "HEAD")
}

// prevOid resolves the configured prev_tag to a commit oid.
func (m *Mono) prevOid(ctx context.Context) (changes.Oid, error) {
	return m.Vcs.RevparseOid(ctx, m.Config.Options.PrevTag)
}

// prevConfig loads .versio.yaml as it stood at the prev_tag commit.
func (m *Mono) prevConfig(ctx context.Context, prevOid changes.Oid) (*config.Config, *state.PrevState, error) {
	prev, err := state.NewPrevState(ctx, m.Vcs, m.Current.Tags, prevOid)
	if err != nil {
		return nil, nil, err
	}
	data, err := prev.ReadFile(configPath)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(data)
	if err != nil {
		return nil, nil, err
	}
	return cfg, prev, nil
}

// Changes runs PR discovery over (prev_tag, HEAD]. With no PR API,
// pr_zero carries every commit in that range.
func (m *Mono) Changes(ctx context.Context) (*changes.Changes, error) {
	head, err := m.headOid(ctx)
	if err != nil {
		return nil, err
	}
	prev, err := m.prevOid(ctx)
	if err != nil {
		return nil, err
	}
	d := &prdiscovery.Discoverer{Api: m.PrApi, Vcs: m.Vcs}
	ch, err := d.Discover(ctx, prev, head)
	if err != nil {
		return nil, err
	}
	if m.PrApi == nil {
		commits, err := m.Vcs.CommitsBetween(ctx, prev, head)
		if err != nil {
			return nil, err
		}
		ch.Groups[0].Commits = commits
	}
	return ch, nil
}

// BuildPlan runs Changes, then plans size increments and changelogs
// for the live project set (spec.md §4.6).
func (m *Mono) BuildPlan(ctx context.Context) (*plan.Plan, error) {
	ch, err := m.Changes(ctx)
	if err != nil {
		return nil, err
	}
	return plan.BuildPlan(m.Config, ch)
}

// Diff compares the live config's resolved versions against the
// prev_tag snapshot's, per spec.md §4.8.
func (m *Mono) Diff(ctx context.Context) (*analyze.Analysis, error) {
	prevOid, err := m.prevOid(ctx)
	if err != nil {
		return nil, err
	}
	prevCfg, prevState, err := m.prevConfig(ctx, prevOid)
	if err != nil {
		return nil, err
	}

	olds, err := annotateProjects(prevCfg, prevState)
	if err != nil {
		return nil, err
	}
	news, err := annotateProjects(m.Config, m.Current)
	if err != nil {
		return nil, err
	}

	a := analyze.Analyze(olds, news)
	return &a, nil
}

// markedDataOf synthesizes a MarkedData for a TagsSource project's
// resolved version, which has no located byte range to attach.
func markedDataOf(version string) mark.MarkedData {
	return mark.MarkedData{Mark: mark.Mark{Value: version}}
}

func annotateProjects(cfg *config.Config, read config.VersionReader) ([]analyze.AnnotatedMark, error) {
	out := make([]analyze.AnnotatedMark, 0, len(cfg.Projects))
	for _, p := range cfg.Projects {
		version, md, err := p.CurrentVersion(read)
		if err != nil {
			return nil, err
		}
		if md == nil {
			out = append(out, analyze.NewAnnotatedMark(int(p.ID), p.Name, markedDataOf(version)))
		} else {
			out = append(out, analyze.NewAnnotatedMark(int(p.ID), p.Name, *md))
		}
	}
	return out, nil
}

// Project looks up a project by id, reporting verr.ConfigInvalid if
// none exists.
func (m *Mono) Project(id config.ProjectId) (*config.Project, error) {
	p, ok := m.Config.Project(id)
	if !ok {
		return nil, verr.New(verr.ConfigInvalid, "no such project %d", id)
	}
	return p, nil
}

// ProjectByName finds the project with the given exact name.
func (m *Mono) ProjectByName(name string) (*config.Project, error) {
	var found *config.Project
	for _, p := range m.Config.Projects {
		if p.Name == name {
			if found != nil {
				return nil, verr.New(verr.ConfigInvalid, "project name %q is not unique", name)
			}
			found = p
		}
	}
	if found == nil {
		return nil, verr.New(verr.ConfigInvalid, "no project named %q", name)
	}
	return found, nil
}

// GetByID resolves a project's current version. prev is not supported:
// the original's "get --prev" reads an explicit historical revision
// rather than the prev_tag snapshot, which this port does not expose
// (see DESIGN.md Open Question #1).
func (m *Mono) GetByID(id config.ProjectId, prev bool) (string, error) {
	if prev {
		return "", verr.New(verr.Internal, "get --prev is not implemented")
	}
	p, err := m.Project(id)
	if err != nil {
		return "", err
	}
	version, _, err := p.CurrentVersion(m.Current)
	return version, err
}

// sizePassesThreshold mirrors plan's ineffective-PR threshold: a
// project is only worth bumping if its size exceeds None.
func sizePassesThreshold(s sizer.Size) bool { return s > sizer.None }
