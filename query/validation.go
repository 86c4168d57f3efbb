package query

import (
	"fmt"

	dberrors "github.com/vegasq/flatdb/internal/errors"
)

// Validation constants to prevent resource exhaustion
const (
	// MaxClauseLength is the maximum allowed where clause length (1MB)
	MaxClauseLength = 1024 * 1024

	// MaxTokens is the maximum number of tokens in a where clause
	MaxTokens = 1000

	// MaxColumnNameLength is the maximum length for a column name
	MaxColumnNameLength = 256
)

// ValidateClause checks the raw clause length
func ValidateClause(clause string) error {
	if len(clause) > MaxClauseLength {
		return fmt.Errorf("%w: %d bytes (max %d)", dberrors.ErrClauseTooLong, len(clause), MaxClauseLength)
	}
	return nil
}

// ValidateTokens validates token count
func ValidateTokens(tokens []Token) error {
	if len(tokens) > MaxTokens {
		return fmt.Errorf("%w: %d tokens (max %d)", dberrors.ErrTooManyTokens, len(tokens), MaxTokens)
	}
	return nil
}

// ValidateColumnName validates column name length
func ValidateColumnName(name string) error {
	if len(name) > MaxColumnNameLength {
		return fmt.Errorf("%w: %d chars (max %d)", dberrors.ErrColumnNameTooLong, len(name), MaxColumnNameLength)
	}
	return nil
}
