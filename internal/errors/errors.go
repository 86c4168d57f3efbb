package errors

import (
	"errors"
)

// Query errors
var (
	// ErrTableNotFound is returned when the backing file of a table does not exist
	ErrTableNotFound = errors.New("table not found")

	// ErrColumnNotFound is returned when a predicate, projection or aggregate
	// names a column that is not in the table header
	ErrColumnNotFound = errors.New("column not found")

	// ErrPredicateSyntax is returned when a where-clause leaf cannot be parsed
	ErrPredicateSyntax = errors.New("invalid condition format")

	// ErrUnsupportedOperator is returned for a comparison operator outside
	// = == != <> < <= > >=
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrInvalidLikeClause is returned when a like leaf does not have exactly
	// one column and one pattern
	ErrInvalidLikeClause = errors.New("invalid LIKE condition format")

	// ErrInvalidAggregate is returned for an unknown aggregate function or a
	// select list mixing aggregates with columns
	ErrInvalidAggregate = errors.New("invalid aggregate")

	// ErrClauseTooLong is returned when a where clause exceeds the length limit
	ErrClauseTooLong = errors.New("where clause too long")

	// ErrTooManyTokens is returned when a where clause has too many tokens
	ErrTooManyTokens = errors.New("too many tokens in where clause")

	// ErrColumnNameTooLong is returned when a column name exceeds the length limit
	ErrColumnNameTooLong = errors.New("column name too long")
)

// Storage errors
var (
	// ErrRootNotFound is returned when the storage root directory is missing
	ErrRootNotFound = errors.New("storage root not found")

	// ErrDatabaseNotFound is returned when a database directory does not exist
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrDatabaseExists is returned when creating a database that already exists
	ErrDatabaseExists = errors.New("database already exists")

	// ErrTableExists is returned when creating a table that already exists
	ErrTableExists = errors.New("table already exists")

	// ErrNoDatabase is returned when a statement needs a current database and none is selected
	ErrNoDatabase = errors.New("no database selected")

	// ErrRowArity is returned when an inserted row does not match the header length
	ErrRowArity = errors.New("row length does not match table header")

	// ErrInvalidName is returned for empty names or names escaping the storage root
	ErrInvalidName = errors.New("invalid name")
)

// Chunking and shell errors
var (
	// ErrInsufficientRows is returned when a table has fewer data rows than
	// the chunk splitter samples
	ErrInsufficientRows = errors.New("not enough rows to estimate row size")

	// ErrUnknownCommand is returned by the shell for unrecognized statements
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidStatement is returned for a known command with missing or
	// malformed arguments
	ErrInvalidStatement = errors.New("invalid statement")

	// ErrInvalidBudget is returned when a chunk budget is zero or negative
	ErrInvalidBudget = errors.New("invalid memory budget")

	// ErrUnsupportedCodec is returned for chunk codecs other than none, zstd and snappy
	ErrUnsupportedCodec = errors.New("unsupported codec")
)
