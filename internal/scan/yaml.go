package scan

import (
	"bytes"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/versioio/versio/internal/mark"
	"github.com/versioio/versio/internal/verr"
)

// YAMLPicker locates a scalar value at a dotted path inside a YAML
// document, driven by yaml.v3's Node tree so every visited node keeps
// its source Line/Column, which the picker converts to a byte offset.
type YAMLPicker struct {
	Parts []mark.Part
}

// Find implements mark.Picker.
func (p YAMLPicker) Find(data []byte) (mark.Mark, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return mark.Mark{}, verr.Wrap(verr.ConfigInvalid, err, "parsing yaml")
	}
	if len(doc.Content) == 0 {
		return mark.Mark{}, verr.New(verr.PathNotResolved, "empty yaml document")
	}

	node, err := walkYAML(doc.Content[0], p.Parts)
	if err != nil {
		return mark.Mark{}, err
	}
	if node.Kind != yaml.ScalarNode {
		return mark.Mark{}, verr.New(verr.NotAScalar, "yaml path is not a scalar")
	}

	offset, err := byteOffsetOfLineCol(data, node.Line, node.Column)
	if err != nil {
		return mark.Mark{}, verr.Wrap(verr.Internal, err, "converting yaml position to byte offset")
	}
	return mark.Mark{Value: node.Value, ByteOffset: offset}, nil
}

// Scan implements mark.Picker.
func (p YAMLPicker) Scan(nd mark.NamedData) (*mark.MarkedData, error) {
	m, err := p.Find(nd.Data)
	if err != nil {
		return nil, err
	}
	return mark.NewMarkedData(nd.Path, nd.Data, m)
}

// Rewrite implements mark.Picker by byte splice: plain scalar version
// strings never need requoting, so no reserialization is required.
func (p YAMLPicker) Rewrite(data []byte, m mark.Mark, newValue string) ([]byte, error) {
	return splice(data, m.ByteOffset, len(m.Value), newValue), nil
}

func walkYAML(n *yaml.Node, parts []mark.Part) (*yaml.Node, error) {
	if len(parts) == 0 {
		return n, nil
	}
	part := parts[0]
	if part.IsSeq() {
		if n.Kind != yaml.SequenceNode {
			return nil, verr.New(verr.PathNotResolved, "expected a sequence at %q", part.String())
		}
		idx := part.Index()
		if idx < 0 || idx >= len(n.Content) {
			return nil, verr.New(verr.PathNotResolved, "sequence index %d out of range", idx)
		}
		return walkYAML(n.Content[idx], parts[1:])
	}

	if n.Kind != yaml.MappingNode {
		return nil, verr.New(verr.PathNotResolved, "expected a mapping at key %q", part.Key())
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if key.Value == part.Key() {
			return walkYAML(n.Content[i+1], parts[1:])
		}
	}
	return nil, verr.New(verr.PathNotResolved, "key %q not found", part.Key())
}

// byteOffsetOfLineCol converts yaml.v3's 1-based Line/Column (Column is
// a rune count within the line) into a byte offset within data.
func byteOffsetOfLineCol(data []byte, line, col int) (int, error) {
	lineStart := 0
	curLine := 1
	for curLine < line {
		idx := bytes.IndexByte(data[lineStart:], '\n')
		if idx < 0 {
			return 0, verr.New(verr.Internal, "line %d not found in document", line)
		}
		lineStart += idx + 1
		curLine++
	}

	rest := data[lineStart:]
	runeCount := 0
	byteIdx := 0
	for byteIdx < len(rest) {
		if runeCount == col-1 {
			break
		}
		_, size := utf8.DecodeRune(rest[byteIdx:])
		byteIdx += size
		runeCount++
	}
	return lineStart + byteIdx, nil
}
