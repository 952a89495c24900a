package scan

import (
	"regexp"

	"github.com/versioio/versio/internal/mark"
	"github.com/versioio/versio/internal/verr"
)

// LinePicker locates a value via a regular expression with exactly one
// capture group.
type LinePicker struct {
	Pattern *regexp.Regexp
}

// NewLinePicker compiles pattern and validates it has exactly one
// capturing group.
func NewLinePicker(pattern string) (*LinePicker, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, verr.Wrap(verr.ConfigInvalid, err, "compiling line pattern %q", pattern)
	}
	if re.NumSubexp() != 1 {
		return nil, verr.New(verr.ConfigInvalid, "line pattern %q must have exactly one capture group, has %d", pattern, re.NumSubexp())
	}
	return &LinePicker{Pattern: re}, nil
}

// Find implements mark.Picker.
func (p *LinePicker) Find(data []byte) (mark.Mark, error) {
	matches := p.Pattern.FindAllSubmatchIndex(data, 2)
	if len(matches) == 0 {
		return mark.Mark{}, verr.New(verr.PathNotResolved, "line pattern %q matched nothing", p.Pattern.String())
	}
	if len(matches) > 1 {
		return mark.Mark{}, verr.New(verr.PathNotResolved, "line pattern %q matched more than once", p.Pattern.String())
	}
	m := matches[0]
	start, end := m[2], m[3]
	if start < 0 {
		return mark.Mark{}, verr.New(verr.PathNotResolved, "line pattern %q capture group did not participate", p.Pattern.String())
	}
	return mark.Mark{Value: string(data[start:end]), ByteOffset: start}, nil
}

// Scan implements mark.Picker.
func (p *LinePicker) Scan(nd mark.NamedData) (*mark.MarkedData, error) {
	m, err := p.Find(nd.Data)
	if err != nil {
		return nil, err
	}
	return mark.NewMarkedData(nd.Path, nd.Data, m)
}

// Rewrite implements mark.Picker by byte splice.
func (p *LinePicker) Rewrite(data []byte, m mark.Mark, newValue string) ([]byte, error) {
	return splice(data, m.ByteOffset, len(m.Value), newValue), nil
}
