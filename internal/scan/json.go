package scan

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/versioio/versio/internal/mark"
	"github.com/versioio/versio/internal/verr"
)

// JSONPicker locates a scalar value at a dotted path inside a JSON
// document, driven by gjson so the document is walked once without
// building an intermediate tree.
type JSONPicker struct {
	Parts []mark.Part
}

func (p JSONPicker) gjsonPath() string {
	segs := make([]string, len(p.Parts))
	for i, part := range p.Parts {
		segs[i] = part.String()
	}
	return strings.Join(segs, ".")
}

// Find implements mark.Picker.
func (p JSONPicker) Find(data []byte) (mark.Mark, error) {
	path := p.gjsonPath()
	result := gjson.GetBytes(data, path)
	if !result.Exists() {
		return mark.Mark{}, verr.New(verr.PathNotResolved, "json path %q not found", path)
	}
	if result.IsArray() || result.IsObject() {
		return mark.Mark{}, verr.New(verr.NotAScalar, "json path %q is not a scalar", path)
	}

	offset := result.Index
	value := result.String()
	if result.Type == gjson.String {
		// Index lands on the opening quote; the value starts one byte in.
		offset++
	}
	if offset <= 0 {
		return mark.Mark{}, verr.New(verr.Internal, "gjson did not report a usable byte offset for %q", path)
	}
	return mark.Mark{Value: value, ByteOffset: offset}, nil
}

// Scan implements mark.Picker.
func (p JSONPicker) Scan(nd mark.NamedData) (*mark.MarkedData, error) {
	m, err := p.Find(nd.Data)
	if err != nil {
		return nil, err
	}
	return mark.NewMarkedData(nd.Path, nd.Data, m)
}

// Rewrite implements mark.Picker, using sjson to replace the value
// in place without re-marshaling the rest of the document.
func (p JSONPicker) Rewrite(data []byte, m mark.Mark, newValue string) ([]byte, error) {
	out, err := sjson.SetBytes(data, p.gjsonPath(), newValue)
	if err != nil {
		return nil, verr.Wrap(verr.Internal, err, "rewriting json path %q", p.gjsonPath())
	}
	return out, nil
}
