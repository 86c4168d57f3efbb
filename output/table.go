package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/flatdb/query"
)

// TableFormatter draws a bordered table sized by the result set widths
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer
func (f *TableFormatter) SetOutput(w io.Writer) {
	f.writer = w
}

// Format writes the table and the memory footer
func (f *TableFormatter) Format(rs *query.ResultSet) error {
	if len(rs.Columns) > 0 {
		table := tablewriter.NewWriter(f.writer)
		table.SetHeader(rs.Columns)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		for i, w := range rs.Widths {
			table.SetColMinWidth(i, w)
		}
		table.AppendBulk(rs.Rows)
		table.Render()
	}

	if _, err := fmt.Fprintf(f.writer, "Estimated memory usage for query result: %d bytes\n", rs.MemoryUsage); err != nil {
		return err
	}
	if rs.Truncated {
		if _, err := fmt.Fprintf(f.writer, "Result truncated: memory budget of %d bytes reached\n", rs.Budget); err != nil {
			return err
		}
	}
	return nil
}
