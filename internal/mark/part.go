package mark

import (
	"strconv"
	"strings"
)

// Part is one step of a structured-file path: either a map key or a
// sequence index. JSON/YAML/TOML/XML pickers all address their target
// scalar with a []Part.
type Part struct {
	key    string
	index  int
	is_seq bool
}

// MapPart builds a map-key part.
func MapPart(key string) Part { return Part{key: key} }

// SeqPart builds a sequence-index part.
func SeqPart(index int) Part { return Part{index: index, is_seq: true} }

// IsSeq reports whether p addresses a sequence element.
func (p Part) IsSeq() bool { return p.is_seq }

// Key returns the map key p addresses; only meaningful when !p.IsSeq().
func (p Part) Key() string { return p.key }

// Index returns the sequence index p addresses; only meaningful when
// p.IsSeq().
func (p Part) Index() int { return p.index }

func (p Part) String() string {
	if p.is_seq {
		return strconv.Itoa(p.index)
	}
	return p.key
}

// ParseParts splits a dotted path string ("release.0.version") into
// Parts, classifying each dot-separated segment as a sequence index if
// it parses as a non-negative integer, else as a map key.
func ParseParts(path string) []Part {
	segments := strings.Split(path, ".")
	parts := make([]Part, len(segments))
	for i, seg := range segments {
		if n, err := strconv.Atoi(seg); err == nil && n >= 0 {
			parts[i] = SeqPart(n)
		} else {
			parts[i] = MapPart(seg)
		}
	}
	return parts
}
