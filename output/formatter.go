package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vegasq/flatdb/query"
)

// Formatter defines the interface for result formatters.
type Formatter interface {
	// Format writes a result set in the formatter's specific format
	Format(rs *query.ResultSet) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Formats lists the accepted format names
var Formats = []string{"table", "csv", "jsonl"}

// New returns the formatter for a format name
func New(format string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "table":
		return NewTableFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "jsonl", "json":
		return NewJSONFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// WriteAggregate writes an aggregate as one labelled line, e.g. "Avg: 2".
// A min or max that never saw a number prints NULL.
func WriteAggregate(w io.Writer, res query.AggregateResult) error {
	value := "NULL"
	if res.Valid {
		value = FormatNumber(res.Value)
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", aggregateLabel(res.Spec.Func), value)
	return err
}

// FormatNumber prints integral values without a fraction
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func aggregateLabel(fn query.AggregateFunc) string {
	s := string(fn)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
