package query

import (
	"fmt"
	"strings"

	dberrors "github.com/vegasq/flatdb/internal/errors"
	"github.com/vegasq/flatdb/reader"
)

// Parser builds an Expression from where-clause tokens.
//
// The grammar has no nesting:
//
//	clause  = andList { "or" andList }
//	andList = leaf { "and" leaf }
//	leaf    = column "like" pattern | column operator literal
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a parser over a token list
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseWhere parses a where clause into an expression tree.
func ParseWhere(clause string) (Expression, error) {
	if err := ValidateClause(clause); err != nil {
		return nil, err
	}

	tokens := Tokenize(clause)
	if err := ValidateTokens(tokens); err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty where clause", dberrors.ErrPredicateSyntax)
	}

	return NewParser(tokens).Parse()
}

// ParseAndBind parses a clause and binds it to a header in one step.
func ParseAndBind(clause string, h reader.Header) (Expression, error) {
	expr, err := ParseWhere(clause)
	if err != nil {
		return nil, err
	}
	if err := expr.Bind(h); err != nil {
		return nil, err
	}
	return expr, nil
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

// advance moves to the next token
func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

// Parse parses the whole token list
func (p *Parser) Parse() (Expression, error) {
	return p.parseOr()
}

// parseOr parses and-lists separated by or
func (p *Parser) parseOr() (Expression, error) {
	var operands []Expression
	for {
		expr, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, expr)

		if p.current().Type != TokenOr {
			break
		}
		p.advance()
	}

	if len(operands) == 1 {
		return operands[0], nil
	}
	return &BinaryExpr{Operator: TokenOr, Operands: operands}, nil
}

// parseAnd parses leaves separated by and
func (p *Parser) parseAnd() (Expression, error) {
	var operands []Expression
	for {
		expr, err := p.parseLeaf()
		if err != nil {
			return nil, err
		}
		operands = append(operands, expr)

		if p.current().Type != TokenAnd {
			break
		}
		p.advance()
	}

	if len(operands) == 1 {
		return operands[0], nil
	}
	return &BinaryExpr{Operator: TokenAnd, Operands: operands}, nil
}

// parseLeaf collects tokens up to the next combinator and builds a
// comparison or like leaf from them
func (p *Parser) parseLeaf() (Expression, error) {
	var leaf []Token
	for {
		tok := p.current()
		if tok.Type == TokenEOF || tok.Type == TokenAnd || tok.Type == TokenOr {
			break
		}
		leaf = append(leaf, tok)
		p.advance()
	}

	for _, tok := range leaf {
		if tok.Type == TokenLike {
			return parseLike(leaf)
		}
	}
	return parseComparison(leaf)
}

func parseComparison(leaf []Token) (Expression, error) {
	if len(leaf) < 3 {
		return nil, fmt.Errorf("%w: %q", dberrors.ErrPredicateSyntax, joinRaw(leaf))
	}

	column := leaf[0]
	if column.Type != TokenWord {
		return nil, fmt.Errorf("%w: expected column name, got %q", dberrors.ErrPredicateSyntax, column.Raw)
	}
	if err := ValidateColumnName(column.Value); err != nil {
		return nil, err
	}

	op := leaf[1]
	if !op.Type.isOperator() {
		return nil, fmt.Errorf("%w: %s", dberrors.ErrUnsupportedOperator, op.Raw)
	}

	return &ComparisonExpr{
		Column:   column.Value,
		Operator: op.Type,
		Value:    literal(leaf[2:]),
		index:    -1,
	}, nil
}

// parseLike expects exactly: column like pattern...
func parseLike(leaf []Token) (Expression, error) {
	if len(leaf) < 3 || leaf[1].Type != TokenLike || leaf[0].Type != TokenWord {
		return nil, fmt.Errorf("%w: %q", dberrors.ErrInvalidLikeClause, joinRaw(leaf))
	}
	for _, tok := range leaf[2:] {
		if tok.Type == TokenLike {
			return nil, fmt.Errorf("%w: %q", dberrors.ErrInvalidLikeClause, joinRaw(leaf))
		}
	}
	if err := ValidateColumnName(leaf[0].Value); err != nil {
		return nil, err
	}

	return &LikeExpr{
		Column:  leaf[0].Value,
		Pattern: literal(leaf[2:]),
		index:   -1,
	}, nil
}

// literal joins the tail with single spaces and strips one layer of
// enclosing quotes from the result
func literal(tokens []Token) string {
	s, _ := unquote(joinRaw(tokens))
	return s
}

func joinRaw(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Raw
	}
	return strings.Join(parts, " ")
}
