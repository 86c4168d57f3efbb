// Package output renders query results.
//
// Formatters write a query.ResultSet in one of three formats:
//
//   - table: a bordered fixed-width table followed by the memory estimate
//   - csv: header row then data rows
//   - jsonl: one JSON object per row, keys in column order
//
// Aggregate results are a single line such as "Count: 2", see WriteAggregate.
//
//	f, err := output.New("table", os.Stdout)
//	if err != nil {
//	    return err
//	}
//	if err := f.Format(res.ResultSet); err != nil {
//	    return err
//	}
package output
