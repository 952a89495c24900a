package scan

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/versioio/versio/internal/mark"
	"github.com/versioio/versio/internal/verr"
)

// XMLPicker locates a scalar value inside an XML document by walking
// element names (map parts) or positional child indices (seq parts)
// against the standard library's token stream, using
// xml.Decoder.InputOffset to recover byte positions — no XML parsing
// library appears anywhere in the retrieved corpus, so this is the one
// picker grounded on the standard library (see DESIGN.md).
type XMLPicker struct {
	Parts []mark.Part
}

type xmlFrame struct {
	partIdx    int
	childCount int
}

// Find implements mark.Picker.
func (p XMLPicker) Find(data []byte) (mark.Mark, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	stack := []xmlFrame{{partIdx: 0}}
	matchedDepth := -1
	value := ""
	offset := -1

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return mark.Mark{}, verr.Wrap(verr.Internal, err, "parsing xml")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			top := &stack[len(stack)-1]
			matched := false
			if top.partIdx < len(p.Parts) {
				part := p.Parts[top.partIdx]
				if part.IsSeq() {
					if top.childCount == part.Index() {
						matched = true
					}
					top.childCount++
				} else if t.Name.Local == part.Key() {
					matched = true
				}
			}
			nextIdx := top.partIdx
			if matched {
				nextIdx = top.partIdx + 1
			}
			stack = append(stack, xmlFrame{partIdx: nextIdx})
			if nextIdx == len(p.Parts) && matchedDepth == -1 {
				matchedDepth = len(stack)
			}

		case xml.CharData:
			if matchedDepth == len(stack) && offset == -1 {
				text := strings.TrimSpace(string(t))
				if text != "" {
					start := dec.InputOffset() - int64(len(t))
					offset = int(start) + strings.Index(string(t), text)
					value = text
				}
			}

		case xml.EndElement:
			stack = stack[:len(stack)-1]
			if len(stack) < matchedDepth {
				matchedDepth = -1
			}
		}
	}

	if offset == -1 {
		return mark.Mark{}, verr.New(verr.PathNotResolved, "xml path did not resolve to a scalar")
	}
	return mark.Mark{Value: value, ByteOffset: offset}, nil
}

// Scan implements mark.Picker.
func (p XMLPicker) Scan(nd mark.NamedData) (*mark.MarkedData, error) {
	m, err := p.Find(nd.Data)
	if err != nil {
		return nil, err
	}
	return mark.NewMarkedData(nd.Path, nd.Data, m)
}

// Rewrite implements mark.Picker by byte splice.
func (p XMLPicker) Rewrite(data []byte, m mark.Mark, newValue string) ([]byte, error) {
	return splice(data, m.ByteOffset, len(m.Value), newValue), nil
}
