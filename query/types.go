package query

import (
	"fmt"

	dberrors "github.com/vegasq/flatdb/internal/errors"
	"github.com/vegasq/flatdb/reader"
)

// TokenType represents the type of a where-clause token
type TokenType int

const (
	// Combinators
	TokenAnd TokenType = iota
	TokenOr
	TokenLike

	// Operators
	TokenEqual        // = ==
	TokenNotEqual     // != <>
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=

	// Words
	TokenWord
	TokenString // quoted

	TokenEOF
)

var tokenNames = map[TokenType]string{
	TokenAnd:          "and",
	TokenOr:           "or",
	TokenLike:         "like",
	TokenEqual:        "=",
	TokenNotEqual:     "!=",
	TokenLess:         "<",
	TokenGreater:      ">",
	TokenLessEqual:    "<=",
	TokenGreaterEqual: ">=",
	TokenWord:         "word",
	TokenString:       "string",
	TokenEOF:          "EOF",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// isOperator reports whether t is a comparison operator
func (t TokenType) isOperator() bool {
	return t >= TokenEqual && t <= TokenGreaterEqual
}

// Token represents a lexical token. Raw is the exact source text,
// including quotes for strings.
type Token struct {
	Type  TokenType
	Value string
	Raw   string
}

// Expression represents a where predicate.
//
// Bind resolves column names against a header and must be called once
// before Evaluate.
type Expression interface {
	Bind(h reader.Header) error
	Evaluate(row reader.Row) (bool, error)
	Columns() []string
	String() string
}

// BinaryExpr joins two or more expressions with and/or. Evaluation
// short-circuits from left to right.
type BinaryExpr struct {
	Operator TokenType // TokenAnd or TokenOr
	Operands []Expression
}

// ComparisonExpr represents column op literal
type ComparisonExpr struct {
	Column   string
	Operator TokenType
	Value    string
	index    int
}

// LikeExpr represents column like pattern
type LikeExpr struct {
	Column  string
	Pattern string
	index   int
}

// Bind binds every operand
func (b *BinaryExpr) Bind(h reader.Header) error {
	for _, op := range b.Operands {
		if err := op.Bind(h); err != nil {
			return err
		}
	}
	return nil
}

// Evaluate evaluates the operands in order
func (b *BinaryExpr) Evaluate(row reader.Row) (bool, error) {
	for _, op := range b.Operands {
		ok, err := op.Evaluate(row)
		if err != nil {
			return false, err
		}
		switch b.Operator {
		case TokenAnd:
			if !ok {
				return false, nil
			}
		case TokenOr:
			if ok {
				return true, nil
			}
		default:
			return false, fmt.Errorf("%w: %s", dberrors.ErrUnsupportedOperator, b.Operator)
		}
	}
	return b.Operator == TokenAnd, nil
}

// Columns returns the referenced columns in clause order
func (b *BinaryExpr) Columns() []string {
	var cols []string
	for _, op := range b.Operands {
		cols = append(cols, op.Columns()...)
	}
	return cols
}

func (b *BinaryExpr) String() string {
	s := ""
	for i, op := range b.Operands {
		if i > 0 {
			s += " " + b.Operator.String() + " "
		}
		s += op.String()
	}
	return s
}

// Bind resolves the column position
func (c *ComparisonExpr) Bind(h reader.Header) error {
	i, err := resolveColumn(h, c.Column)
	if err != nil {
		return err
	}
	c.index = i
	return nil
}

// Evaluate compares the row value with the literal as text
func (c *ComparisonExpr) Evaluate(row reader.Row) (bool, error) {
	v, err := valueAt(row, c.index, c.Column)
	if err != nil {
		return false, err
	}
	return compareStrings(v, c.Operator, c.Value), nil
}

// Columns returns the single referenced column
func (c *ComparisonExpr) Columns() []string {
	return []string{c.Column}
}

func (c *ComparisonExpr) String() string {
	return fmt.Sprintf("%s %s %q", c.Column, c.Operator, c.Value)
}

// Bind resolves the column position
func (l *LikeExpr) Bind(h reader.Header) error {
	i, err := resolveColumn(h, l.Column)
	if err != nil {
		return err
	}
	l.index = i
	return nil
}

// Evaluate matches the row value against the pattern
func (l *LikeExpr) Evaluate(row reader.Row) (bool, error) {
	v, err := valueAt(row, l.index, l.Column)
	if err != nil {
		return false, err
	}
	return MatchLike(v, l.Pattern), nil
}

// Columns returns the single referenced column
func (l *LikeExpr) Columns() []string {
	return []string{l.Column}
}

func (l *LikeExpr) String() string {
	return fmt.Sprintf("%s like %q", l.Column, l.Pattern)
}

func resolveColumn(h reader.Header, name string) (int, error) {
	i, ok := h.Index(name)
	if !ok {
		return -1, fmt.Errorf("%w: %s", dberrors.ErrColumnNotFound, name)
	}
	return i, nil
}

// valueAt reads a bound position. index is -1 until Bind succeeds.
func valueAt(row reader.Row, index int, column string) (string, error) {
	if index < 0 || index >= len(row) {
		return "", fmt.Errorf("%w: %s", dberrors.ErrColumnNotFound, column)
	}
	return row[index], nil
}

// compareStrings compares byte-wise, which is code point order for UTF-8
func compareStrings(left string, operator TokenType, right string) bool {
	switch operator {
	case TokenEqual:
		return left == right
	case TokenNotEqual:
		return left != right
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}
