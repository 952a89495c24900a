package config

import (
	"github.com/versioio/versio/internal/verr"
)

// FileReader is the narrow slice of StateRead the overlap check needs;
// kept separate from internal/state to avoid a state->config->state
// import cycle (config is the lower-level package here).
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// CheckOverlappingRanges resolves every FileSource's Mark against fr
// and rejects a config where two locations in the same file claim
// intersecting byte ranges (spec.md §9 Open Questions: "undefined by
// the source; disallow at config load" — see DESIGN.md Open Question
// #3).
func (c *Config) CheckOverlappingRanges(fr FileReader) error {
	type claim struct {
		project string
		start   int
		end     int
	}
	byFile := map[string][]claim{}

	for _, p := range c.Projects {
		fs, ok := p.Source.(FileSource)
		if !ok {
			continue
		}
		data, err := fr.ReadFile(fs.Path)
		if err != nil {
			return verr.Wrap(verr.FileNotFound, err, "reading %q for project %q", fs.Path, p.Name)
		}
		m, err := fs.Picker.Find(data)
		if err != nil {
			return err
		}
		byFile[fs.Path] = append(byFile[fs.Path], claim{
			project: p.Name,
			start:   m.ByteOffset,
			end:     m.ByteOffset + len(m.Value),
		})
	}

	for path, claims := range byFile {
		for i := 0; i < len(claims); i++ {
			for j := i + 1; j < len(claims); j++ {
				a, b := claims[i], claims[j]
				if a.start < b.end && b.start < a.end {
					return verr.New(verr.ConfigInvalid, "projects %q and %q claim overlapping byte ranges in %q", a.project, b.project, path)
				}
			}
		}
	}
	return nil
}
