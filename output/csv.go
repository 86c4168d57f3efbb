package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/flatdb/query"
)

// CSVFormatter outputs a result set as CSV with a header row
type CSVFormatter struct {
	writer   io.Writer
	sanitize bool
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// SetSanitize enables escaping of values that spreadsheet applications
// would run as formulas
func (c *CSVFormatter) SetSanitize(on bool) {
	c.sanitize = on
}

// Format writes the result set as CSV
func (c *CSVFormatter) Format(rs *query.ResultSet) error {
	csvWriter := csv.NewWriter(c.writer)

	if len(rs.Columns) > 0 {
		if err := csvWriter.Write(rs.Columns); err != nil {
			return err
		}
	}

	record := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, v := range row {
			if c.sanitize {
				v = sanitizeValue(v)
			}
			record[i] = v
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// sanitizeValue prefixes values starting with a formula trigger with a quote
func sanitizeValue(val string) string {
	if len(val) > 0 {
		switch val[0] {
		case '=', '+', '-', '@', '\t', '\r', '\n', '|':
			return "'" + strings.ReplaceAll(val, "'", "''")
		}
	}
	return val
}
