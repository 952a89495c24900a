package scan

import (
	"bytes"

	"github.com/versioio/versio/internal/mark"
)

// WholeFilePicker treats the entire file, minus trailing newlines, as
// the version value — used for files like a bare VERSION file.
type WholeFilePicker struct{}

// Find implements mark.Picker.
func (p WholeFilePicker) Find(data []byte) (mark.Mark, error) {
	trimmed := bytes.TrimRight(data, "\n")
	return mark.Mark{Value: string(trimmed), ByteOffset: 0}, nil
}

// Scan implements mark.Picker.
func (p WholeFilePicker) Scan(nd mark.NamedData) (*mark.MarkedData, error) {
	m, err := p.Find(nd.Data)
	if err != nil {
		return nil, err
	}
	return mark.NewMarkedData(nd.Path, nd.Data, m)
}

// Rewrite implements mark.Picker by replacing the value at the start of
// the file, keeping every byte after it (all trailing newlines).
func (p WholeFilePicker) Rewrite(data []byte, m mark.Mark, newValue string) ([]byte, error) {
	trailing := data[len(m.Value):]
	out := append([]byte(newValue), trailing...)
	return out, nil
}
