// Package mark defines the value a picker produces when it locates a
// version string inside a file: the string itself and the byte offset
// at which it starts, plus the small carrier types scanners pass around.
package mark

import (
	"bytes"
	"regexp"

	"github.com/versioio/versio/internal/verr"
)

// semverPattern is the validation regex spec.md §4.1 requires of any
// scalar being interpreted as a version.
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Mark is a located version value: the substring itself and the byte
// offset, in the owning file's raw bytes, at which it starts.
type Mark struct {
	Value      string
	ByteOffset int
}

// ValidateVersion reports an error if m.Value does not look like a
// bare SemVer triple (major.minor.patch, no prerelease/build metadata).
func (m Mark) ValidateVersion() error {
	if !semverPattern.MatchString(m.Value) {
		return verr.New(verr.NotAVersion, "value %q is not a bare x.y.z version", m.Value)
	}
	return nil
}

// NamedData is a file's path paired with its raw bytes, the input a
// Picker scans.
type NamedData struct {
	Path string
	Data []byte
}

// MarkedData is a NamedData with a Mark already located inside it,
// ready for in-place rewriting. The invariant
// Data[Mark.ByteOffset:Mark.ByteOffset+len(Mark.Value)] == Mark.Value
// must hold any time a MarkedData escapes a Picker.
type MarkedData struct {
	Path string
	Data []byte
	Mark Mark
}

// NewMarkedData builds a MarkedData, asserting the offset invariant
// the rest of the codebase relies on.
func NewMarkedData(path string, data []byte, m Mark) (*MarkedData, error) {
	end := m.ByteOffset + len(m.Value)
	if m.ByteOffset < 0 || end > len(data) {
		return nil, verr.New(verr.Internal, "mark offset %d..%d out of range for %q (%d bytes)", m.ByteOffset, end, path, len(data))
	}
	if !bytes.Equal(data[m.ByteOffset:end], []byte(m.Value)) {
		return nil, verr.New(verr.Internal, "mark value mismatch in %q at offset %d", path, m.ByteOffset)
	}
	return &MarkedData{Path: path, Data: data, Mark: m}, nil
}

// SetValue replaces the marked substring with newValue, updating Data
// and Mark.Value in place. The offsets of any other mark in the same
// byte buffer that lies entirely before this mark are unaffected; marks
// lying after it shift by len(newValue)-len(oldValue), which callers
// that hold multiple marks against the same buffer must account for by
// re-scanning rather than trusting stale offsets.
func (md *MarkedData) SetValue(newValue string) {
	start := md.Mark.ByteOffset
	end := start + len(md.Mark.Value)
	out := make([]byte, 0, len(md.Data)-len(md.Mark.Value)+len(newValue))
	out = append(out, md.Data[:start]...)
	out = append(out, newValue...)
	out = append(out, md.Data[end:]...)
	md.Data = out
	md.Mark.Value = newValue
}

// Picker locates a version Mark inside a file's raw bytes. It is a
// closed sum type (Json | Yaml | Toml | Xml | Line | File) dispatched
// explicitly by callers; see internal/config for the tagged variant and
// internal/scan for each concrete implementation.
type Picker interface {
	// Find scans data read-only and returns the located Mark.
	Find(data []byte) (Mark, error)
	// Scan is Find plus attaching path, ready for later rewrite via
	// MarkedData.SetValue and the picker's own Rewrite.
	Scan(nd NamedData) (*MarkedData, error)
	// Rewrite returns data with the marked region replaced by newValue.
	// The JSON picker rewrites through sjson; the other pickers replace
	// the marked bytes directly, leaving surrounding framing untouched.
	Rewrite(data []byte, m Mark, newValue string) ([]byte, error)
}
