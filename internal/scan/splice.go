package scan

// splice replaces the oldLen bytes at offset with newValue, for
// pickers (YAML/TOML/XML/Line) that rewrite by byte
// substitution rather than re-serializing through a format library.
func splice(data []byte, offset, oldLen int, newValue string) []byte {
	out := make([]byte, 0, len(data)-oldLen+len(newValue))
	out = append(out, data[:offset]...)
	out = append(out, newValue...)
	out = append(out, data[offset+oldLen:]...)
	return out
}
