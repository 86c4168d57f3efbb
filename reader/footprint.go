package reader

// Fixed overheads of the footprint estimate. They approximate the cost of a
// boxed string and a list header in a dynamic runtime and only need to be
// consistent between the materializer and the chunk splitter.
const (
	fieldOverhead = 49
	rowOverhead   = 56
	slotSize      = 8
)

// FieldSize estimates the in-memory size of one value
func FieldSize(v string) int64 {
	return fieldOverhead + int64(len(v))
}

// TupleSize is the sum of the field estimates
func TupleSize(fields []string) int64 {
	var n int64
	for _, f := range fields {
		n += FieldSize(f)
	}
	return n
}

// RowSize estimates a whole row including the container overhead
func RowSize(row Row) int64 {
	return rowOverhead + slotSize*int64(len(row)) + TupleSize(row)
}
