// Package query implements the flatdb query engine.
//
// A select request is answered by streaming a table through three stages:
//
//   - the where predicate, parsed from a restricted clause grammar into an
//     Expression tree of comparison and like leaves joined by and/or
//   - an Aggregator for count, sum, avg, min and max over one column
//   - a Materializer that projects, deduplicates and stops once the
//     estimated result size would exceed the memory budget
//
// # Where clauses
//
// Leaves are written as column operator literal, with whitespace around
// the operator:
//
//	age >= 30
//	name = 'Mary Ann'
//	email like %@example.com
//
// Supported operators are = == != <> < <= > >= and like. All comparisons
// are textual, so "9" > "10". A clause is split on "or" first and every
// side on "and"; there are no parentheses:
//
//	a = 1 and b = 2 or c = 3    is    (a = 1 and b = 2) or (c = 3)
//
// The and part of a mixed clause is never folded into the literal of an or
// leaf: mixed clauses always evaluate as an or of and groups.
//
// Quoted literals are single tokens, so "and" or "or" inside quotes is
// never treated as a combinator. A quote opens a literal only as the first
// character of a word and only when it is closed later, so O'Brien and 5"
// are plain text.
//
// # Patterns
//
// In like patterns % matches any run of characters and _ matches exactly
// one character. Matching is case-sensitive and works on code points.
//
// # Example
//
//	engine := query.NewEngine(store)
//	res, err := engine.Select(query.SelectRequest{
//	    Table:   "shop/users",
//	    Columns: []string{"name", "age"},
//	    Where:   "age > 30",
//	})
package query
