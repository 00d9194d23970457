package change

import "bytes"

// splitLines splits content into lines, each retaining its trailing '\n' (the
// final line keeps whatever terminator, or none, it actually had), matching
// Python's bytes.splitlines(keepends=True) semantics the Repo-State contract
// is built on.
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, string(content[start:i+1]))
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, string(content[start:]))
	}
	return lines
}

func joinLines(lines []string) []byte {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
	}
	return buf.Bytes()
}
