package query

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	dberrors "github.com/vegasq/flatdb/internal/errors"
	"github.com/vegasq/flatdb/reader"
)

// DefaultMemoryBudget is the result size estimate, in bytes, a select may
// hold when the request does not set one
const DefaultMemoryBudget int64 = 1_000_000

// ResultSet is a projected, possibly truncated query result.
type ResultSet struct {
	Columns     []string
	Rows        [][]string
	MemoryUsage int64 // estimated bytes held by Rows
	Budget      int64 // negative means unlimited
	Truncated   bool  // the scan stopped at the budget
	Widths      []int // display width per column, header included
}

// Materializer projects rows into a ResultSet under a memory budget.
type Materializer struct {
	result   *ResultSet
	indexes  []int
	distinct bool
	seen     map[string]struct{}
	stopped  bool
}

// NewMaterializer resolves the projection against the header. "*" (or no
// columns at all) selects every column in header order. A negative budget
// disables the limit.
func NewMaterializer(h reader.Header, columns []string, distinct bool, budget int64) (*Materializer, error) {
	if len(columns) == 0 || (len(columns) == 1 && columns[0] == "*") {
		columns = h.Columns
	}

	indexes := make([]int, len(columns))
	labels := make([]string, len(columns))
	widths := make([]int, len(columns))
	for i, c := range columns {
		pos, ok := h.Index(c)
		if !ok {
			return nil, fmt.Errorf("%w: %s", dberrors.ErrColumnNotFound, c)
		}
		indexes[i] = pos
		labels[i] = c
		widths[i] = runewidth.StringWidth(c)
	}

	m := &Materializer{
		result: &ResultSet{
			Columns: labels,
			Rows:    [][]string{},
			Budget:  budget,
			Widths:  widths,
		},
		indexes:  indexes,
		distinct: distinct,
	}
	if distinct {
		m.seen = make(map[string]struct{})
	}
	return m, nil
}

// Add projects one row. It returns false once the budget is reached, after
// which the caller should stop scanning.
func (m *Materializer) Add(row reader.Row) bool {
	if m.stopped {
		return false
	}

	tuple := make([]string, len(m.indexes))
	for i, pos := range m.indexes {
		if pos < len(row) {
			tuple[i] = row[pos]
		}
	}

	// the budget is checked before dedup, so a duplicate that would not
	// fit still ends the scan
	size := reader.TupleSize(tuple)
	if m.result.Budget >= 0 && m.result.MemoryUsage+size > m.result.Budget {
		m.stopped = true
		m.result.Truncated = true
		return false
	}

	if m.distinct {
		key := tupleKey(tuple)
		if _, dup := m.seen[key]; dup {
			return true
		}
		m.seen[key] = struct{}{}
	}

	m.result.Rows = append(m.result.Rows, tuple)
	m.result.MemoryUsage += size
	for i, v := range tuple {
		if w := runewidth.StringWidth(v); w > m.result.Widths[i] {
			m.result.Widths[i] = w
		}
	}
	return true
}

// Result returns the result set built so far
func (m *Materializer) Result() *ResultSet {
	return m.result
}

// tupleKey encodes a tuple field-wise. Lengths prefix each field so that
// ("a,b") and ("a", "b") never collide.
func tupleKey(tuple []string) string {
	var b strings.Builder
	for _, v := range tuple {
		fmt.Fprintf(&b, "%d:%s|", len(v), v)
	}
	return b.String()
}
