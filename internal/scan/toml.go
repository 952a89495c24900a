package scan

import (
	"strings"

	toml "github.com/pelletier/go-toml"

	"github.com/versioio/versio/internal/mark"
	"github.com/versioio/versio/internal/verr"
)

// TOMLPicker locates a scalar value at a dotted path inside a TOML
// document, driven by pelletier/go-toml's Tree, whose GetPositionPath
// reports a line/column for the resolved key the same way yaml.v3 does
// for YAML.
type TOMLPicker struct {
	Parts []mark.Part
}

// Find implements mark.Picker.
func (p TOMLPicker) Find(data []byte) (mark.Mark, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return mark.Mark{}, verr.Wrap(verr.ConfigInvalid, err, "parsing toml")
	}

	curTree := tree
	var keyPath []string
	var node interface{} = tree

	for i, part := range p.Parts {
		if part.IsSeq() {
			arrNode := node
			if len(keyPath) > 0 {
				arrNode = curTree.GetPath(keyPath)
				keyPath = nil
			}
			idx := part.Index()
			switch arr := arrNode.(type) {
			case []*toml.Tree:
				if idx < 0 || idx >= len(arr) {
					return mark.Mark{}, verr.New(verr.PathNotResolved, "toml array index %d out of range", idx)
				}
				curTree = arr[idx]
				node = curTree
			case []interface{}:
				if idx < 0 || idx >= len(arr) {
					return mark.Mark{}, verr.New(verr.PathNotResolved, "toml array index %d out of range", idx)
				}
				node = arr[idx]
			default:
				return mark.Mark{}, verr.New(verr.PathNotResolved, "expected a toml array at part %d", i)
			}
			continue
		}

		keyPath = append(keyPath, part.Key())
		node = curTree.GetPath(keyPath)
		if node == nil {
			return mark.Mark{}, verr.New(verr.PathNotResolved, "toml key %q not found", strings.Join(keyPath, "."))
		}
	}

	switch node.(type) {
	case *toml.Tree, []*toml.Tree, []interface{}:
		return mark.Mark{}, verr.New(verr.NotAScalar, "toml path is not a scalar")
	}

	var pos toml.Position
	if len(keyPath) > 0 {
		pos = curTree.GetPositionPath(keyPath)
	} else {
		pos = curTree.Position()
	}
	if pos.Line == 0 {
		return mark.Mark{}, verr.New(verr.Internal, "toml did not report a position for the resolved path")
	}

	lineOffset, err := byteOffsetOfLineCol(data, pos.Line, 1)
	if err != nil {
		return mark.Mark{}, verr.Wrap(verr.Internal, err, "converting toml position to byte offset")
	}

	value, valueOffset, err := readTOMLScalarToken(data, lineOffset)
	if err != nil {
		return mark.Mark{}, err
	}
	return mark.Mark{Value: value, ByteOffset: valueOffset}, nil
}

// Scan implements mark.Picker.
func (p TOMLPicker) Scan(nd mark.NamedData) (*mark.MarkedData, error) {
	m, err := p.Find(nd.Data)
	if err != nil {
		return nil, err
	}
	return mark.NewMarkedData(nd.Path, nd.Data, m)
}

// Rewrite implements mark.Picker by byte splice.
func (p TOMLPicker) Rewrite(data []byte, m mark.Mark, newValue string) ([]byte, error) {
	return splice(data, m.ByteOffset, len(m.Value), newValue), nil
}

// readTOMLScalarToken scans forward from the start of a `key = value`
// line (or a bare array-element line) to find the value token, handling
// both quoted and bare scalars.
func readTOMLScalarToken(data []byte, lineStart int) (string, int, error) {
	lineEnd := len(data)
	if idx := indexByteFrom(data, lineStart, '\n'); idx >= 0 {
		lineEnd = idx
	}
	line := data[lineStart:lineEnd]

	valueStart := lineStart
	if eq := indexOf(line, '='); eq >= 0 {
		valueStart = lineStart + eq + 1
	}
	for valueStart < lineEnd && (data[valueStart] == ' ' || data[valueStart] == '\t') {
		valueStart++
	}
	if valueStart >= lineEnd {
		return "", 0, verr.New(verr.Internal, "no value found on toml line")
	}

	if data[valueStart] == '"' || data[valueStart] == '\'' {
		quote := data[valueStart]
		close := indexByteFrom(data, valueStart+1, quote)
		if close < 0 {
			return "", 0, verr.New(verr.Internal, "unterminated toml quoted value")
		}
		return string(data[valueStart+1 : close]), valueStart + 1, nil
	}

	end := valueStart
	for end < lineEnd {
		c := data[end]
		if c == ' ' || c == '\t' || c == ',' || c == ']' || c == '}' || c == '#' {
			break
		}
		end++
	}
	return string(data[valueStart:end]), valueStart, nil
}

func indexOf(line []byte, b byte) int {
	for i, c := range line {
		if c == b {
			return i
		}
	}
	return -1
}

func indexByteFrom(data []byte, from int, b byte) int {
	for i := from; i < len(data); i++ {
		if data[i] == b {
			return i
		}
	}
	return -1
}
