package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/vegasq/flatdb/query"
)

// JSONFormatter outputs rows as JSON Lines format
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes one JSON object per row. Keys follow column order, which
// a map would not preserve.
func (j *JSONFormatter) Format(rs *query.ResultSet) error {
	bw := bufio.NewWriter(j.writer)

	keys := make([][]byte, len(rs.Columns))
	for i, c := range rs.Columns {
		k, err := json.Marshal(c)
		if err != nil {
			return err
		}
		keys[i] = k
	}

	for _, row := range rs.Rows {
		_ = bw.WriteByte('{')
		for i, v := range row {
			if i > 0 {
				_ = bw.WriteByte(',')
			}
			val, err := json.Marshal(v)
			if err != nil {
				return err
			}
			_, _ = bw.Write(keys[i])
			_ = bw.WriteByte(':')
			_, _ = bw.Write(val)
		}
		_, _ = bw.WriteString("}\n")
	}

	return bw.Flush()
}
