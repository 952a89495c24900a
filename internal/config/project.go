package config

import (
	"path/filepath"
	"strings"

	"github.com/versioio/versio/internal/mark"
	"github.com/versioio/versio/internal/verr"
)

// ProjectId is an opaque small integer identifying a project, stable
// across edits to the config file.
type ProjectId int

// TagSeparator is the literal joiner between a project's tag_prefix
// and its version when forming a full tag name, e.g. "myproj" + "-" +
// "1.2.3". versio does not make this configurable.
const TagSeparator = "-"

// VersionSource is the closed sum type a Project's version comes from:
// either a File (located by a Picker) or a Tags baseline.
type VersionSource interface {
	isVersionSource()
}

// FileSource locates a project's version inside a structured file.
type FileSource struct {
	Path   string
	Picker mark.Picker
}

func (FileSource) isVersionSource() {}

// TagsSource versions a project purely by VCS tag, with Default used
// when no matching tag exists yet.
type TagsSource struct {
	Default string
}

func (TagsSource) isVersionSource() {}

// Project is one versioned unit in the monorepo.
type Project struct {
	ID        ProjectId
	Name      string
	Root      string
	Source    VersionSource
	TagPrefix string
	Labels    map[string]bool
	Depends   map[ProjectId]bool
	Subs      bool
	Hooks     map[string]string
}

// AcceptsLabel reports whether p's label filter (if any) admits a
// commit bearing the given labels. An empty label set on the project
// accepts every commit.
func (p *Project) AcceptsLabel(commitLabels []string) bool {
	if len(p.Labels) == 0 {
		return true
	}
	for _, l := range commitLabels {
		if p.Labels[l] {
			return true
		}
	}
	return false
}

// SubRoot reports whether path falls under p.Root when p.Subs is set
// (see DESIGN.md Open Question #2). It is false for every path when
// p.Subs is unset, and false for any path outside p.Root regardless of
// p.Subs. It only answers this path question: no subproject is
// registered and no picker is assigned to files under the root.
func (p *Project) SubRoot(path string) bool {
	if !p.Subs {
		return false
	}
	if p.Root == "" || p.Root == "." {
		return true
	}
	rel, err := filepath.Rel(filepath.Clean(p.Root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// VersionReader is the narrow StateRead surface a Project needs to
// resolve its current version. It is declared here rather than
// imported from internal/state to avoid a state->config->state cycle
// (state.StateRead already satisfies this interface structurally).
type VersionReader interface {
	ReadFile(path string) ([]byte, error)
	LatestTag(prefix string) (string, bool)
}

// CurrentVersion resolves p's version against read: for a FileSource,
// it scans the source file for the located mark; for a TagsSource, it
// looks up the newest tag_prefix tag and strips prefix+separator,
// falling back to Default when no such tag exists yet. The returned
// *mark.MarkedData is nil for a TagsSource, since there is no located
// byte range to rewrite.
func (p *Project) CurrentVersion(read VersionReader) (string, *mark.MarkedData, error) {
	switch src := p.Source.(type) {
	case FileSource:
		data, err := read.ReadFile(src.Path)
		if err != nil {
			return "", nil, err
		}
		md, err := src.Picker.Scan(mark.NamedData{Path: src.Path, Data: data})
		if err != nil {
			return "", nil, err
		}
		return md.Mark.Value, md, nil
	case TagsSource:
		lookup := p.TagLookupPrefix()
		if tag, ok := read.LatestTag(lookup); ok {
			return tag[len(lookup):], nil, nil
		}
		return src.Default, nil, nil
	default:
		return "", nil, verr.New(verr.Internal, "project %q has no version source", p.Name)
	}
}

// TagLookupPrefix is the prefix OldTags indexes a project's version
// tags under: tag_prefix plus TagSeparator when tag_prefix is set
// (since OldTags recovers a tag's prefix as everything before the
// first digit that begins a SemVer run, which includes the
// separator), or the empty string for an unprefixed project.
func (p *Project) TagLookupPrefix() string {
	if p.TagPrefix == "" {
		return ""
	}
	return p.TagPrefix + TagSeparator
}

// FullTagName is the literal tag name to place for newVersion.
func (p *Project) FullTagName(newVersion string) string {
	return p.TagLookupPrefix() + newVersion
}
