package shell

import "strings"

// Terminator ends a statement
const Terminator = "!"

// Buffer accumulates input lines until a statement is terminated.
type Buffer struct {
	text strings.Builder
}

// Add appends a line. When the accumulated text ends with the terminator it
// returns the statement without it and resets the buffer.
func (b *Buffer) Add(line string) (string, bool) {
	b.text.WriteString(line)
	b.text.WriteByte(' ')

	stmt := strings.TrimSpace(b.text.String())
	if !strings.HasSuffix(stmt, Terminator) {
		return "", false
	}
	b.text.Reset()
	return strings.TrimSpace(strings.TrimSuffix(stmt, Terminator)), true
}

// Pending reports whether a statement has been started but not terminated
func (b *Buffer) Pending() bool {
	return strings.TrimSpace(b.text.String()) != ""
}

// Reset drops any unterminated input
func (b *Buffer) Reset() {
	b.text.Reset()
}
