package query

import (
	"errors"
	"strings"
	"testing"

	dberrors "github.com/vegasq/flatdb/internal/errors"
	"github.com/vegasq/flatdb/reader"
)

func TestParseWhere_Shape(t *testing.T) {
	tests := []struct {
		name   string
		clause string
		want   string
	}{
		{"single comparison", "age > 30", `age > "30"`},
		{"double equals", "age == 30", `age = "30"`},
		{"angle not equal", "age <> 30", `age != "30"`},
		{"quoted literal", "name = 'Mary Ann'", `name = "Mary Ann"`},
		{"double quoted literal", `name = "Mary Ann"`, `name = "Mary Ann"`},
		{"unquoted tail joined", "name = Mary   Ann", `name = "Mary Ann"`},
		{"like", "name like a%", `name like "a%"`},
		{"like uppercase", "name LIKE 'a b%'", `name like "a b%"`},
		{"and", "a = 1 and b = 2", `a = "1" and b = "2"`},
		{"or", "a = 1 or b = 2 or c = 3", `a = "1" or b = "2" or c = "3"`},
		{"or binds loosest", "a = 1 and b = 2 or c = 3", `a = "1" and b = "2" or c = "3"`},
		{"combinator inside quotes", "name = 'x or y'", `name = "x or y"`},
		{"uppercase AND is literal text", "name = Tom AND Jerry", `name = "Tom AND Jerry"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := ParseWhere(tt.clause)
			if err != nil {
				t.Fatalf("ParseWhere(%q) error = %v", tt.clause, err)
			}
			if got := expr.String(); got != tt.want {
				t.Errorf("ParseWhere(%q) = %s, want %s", tt.clause, got, tt.want)
			}
		})
	}
}

func TestParseWhere_OrOfAnds(t *testing.T) {
	expr, err := ParseWhere("a = 1 and b = 2 or c = 3")
	if err != nil {
		t.Fatalf("ParseWhere() error = %v", err)
	}

	or, ok := expr.(*BinaryExpr)
	if !ok || or.Operator != TokenOr || len(or.Operands) != 2 {
		t.Fatalf("top level = %#v, want or with 2 operands", expr)
	}
	and, ok := or.Operands[0].(*BinaryExpr)
	if !ok || and.Operator != TokenAnd || len(and.Operands) != 2 {
		t.Errorf("first operand = %#v, want and with 2 operands", or.Operands[0])
	}
	if _, ok := or.Operands[1].(*ComparisonExpr); !ok {
		t.Errorf("second operand = %#v, want comparison", or.Operands[1])
	}
}

func TestParseAndBind_ApostropheLiteral(t *testing.T) {
	h := reader.NewHeader([]string{"name", "age"})
	expr, err := ParseAndBind("name = O'Brien or age = 30", h)
	if err != nil {
		t.Fatalf("ParseAndBind() error = %v", err)
	}

	or, ok := expr.(*BinaryExpr)
	if !ok || or.Operator != TokenOr || len(or.Operands) != 2 {
		t.Fatalf("top level = %s, want or with 2 operands", expr)
	}

	tests := []struct {
		row  reader.Row
		want bool
	}{
		{reader.Row{"Smith", "30"}, true},
		{reader.Row{"O'Brien", "1"}, true},
		{reader.Row{"Smith", "1"}, false},
	}
	for _, tt := range tests {
		got, err := expr.Evaluate(tt.row)
		if err != nil {
			t.Fatalf("Evaluate(%v) error = %v", tt.row, err)
		}
		if got != tt.want {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.row, got, tt.want)
		}
	}
}

func TestParseWhere_Errors(t *testing.T) {
	tests := []struct {
		name    string
		clause  string
		wantErr error
	}{
		{"empty", "", dberrors.ErrPredicateSyntax},
		{"two tokens", "age >", dberrors.ErrPredicateSyntax},
		{"column only", "age", dberrors.ErrPredicateSyntax},
		{"dangling and", "a = 1 and", dberrors.ErrPredicateSyntax},
		{"leading or", "or a = 1", dberrors.ErrPredicateSyntax},
		{"quoted column", "'a' = 1", dberrors.ErrPredicateSyntax},
		{"unknown operator", "age => 30", dberrors.ErrUnsupportedOperator},
		{"word operator", "age is 30", dberrors.ErrUnsupportedOperator},
		{"like without pattern", "name like", dberrors.ErrInvalidLikeClause},
		{"like without column", "like a%", dberrors.ErrInvalidLikeClause},
		{"like with two columns", "first last like a%", dberrors.ErrInvalidLikeClause},
		{"double like", "name like a like b", dberrors.ErrInvalidLikeClause},
		{"column too long", strings.Repeat("c", MaxColumnNameLength+1) + " = 1", dberrors.ErrColumnNameTooLong},
		{"clause too long", "a = " + strings.Repeat("x", MaxClauseLength), dberrors.ErrClauseTooLong},
		{"too many tokens", strings.Repeat("a = 1 and ", 300) + "a = 1", dberrors.ErrTooManyTokens},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWhere(tt.clause)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseWhere() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseAndBind_UnknownColumn(t *testing.T) {
	h := reader.NewHeader([]string{"id", "name"})

	_, err := ParseAndBind("id = 1 and nickname = bob", h)
	if !errors.Is(err, dberrors.ErrColumnNotFound) {
		t.Errorf("error = %v, want ErrColumnNotFound", err)
	}

	_, err = ParseAndBind("nick like b%", h)
	if !errors.Is(err, dberrors.ErrColumnNotFound) {
		t.Errorf("error = %v, want ErrColumnNotFound", err)
	}
}

func TestEvaluate(t *testing.T) {
	h := reader.NewHeader([]string{"id", "name", "age"})
	row := reader.Row{"7", "Mary Ann", "9"}

	tests := []struct {
		clause string
		want   bool
	}{
		// textual comparison
		{"age > 10", true},
		{"age < 10", false},
		{"age >= 9", true},
		{"age <= 9", true},
		{"id = 7", true},
		{"id == 7", true},
		{"id != 7", false},
		{"id <> 8", true},
		{"name = 'Mary Ann'", true},
		{"name = Mary Ann", true},
		{"name = mary ann", false},

		// like
		{"name like M%", true},
		{"name like %Ann", true},
		{"name like M_ry%", true},
		{"name like m%", false},

		// combinators
		{"id = 7 and age = 9", true},
		{"id = 7 and age = 8", false},
		{"id = 8 or age = 9", true},
		{"id = 8 or age = 8", false},
		{"id = 8 and age = 9 or name like M%", true},
		{"id = 7 and age = 8 or name like X%", false},
	}

	for _, tt := range tests {
		t.Run(tt.clause, func(t *testing.T) {
			expr, err := ParseAndBind(tt.clause, h)
			if err != nil {
				t.Fatalf("ParseAndBind(%q) error = %v", tt.clause, err)
			}
			got, err := expr.Evaluate(row)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.clause, got, tt.want)
			}
		})
	}
}

func TestEvaluate_Unbound(t *testing.T) {
	expr, err := ParseWhere("id = 1")
	if err != nil {
		t.Fatalf("ParseWhere() error = %v", err)
	}
	if _, err := expr.Evaluate(reader.Row{"1"}); !errors.Is(err, dberrors.ErrColumnNotFound) {
		t.Errorf("Evaluate() before Bind error = %v, want ErrColumnNotFound", err)
	}
}

func TestCompareStrings_Lexicographic(t *testing.T) {
	tests := []struct {
		left, right string
		op          TokenType
		want        bool
	}{
		{"9", "10", TokenGreater, true},
		{"10", "9", TokenLess, true},
		{"abc", "abd", TokenLess, true},
		{"B", "a", TokenLess, true},
		{"", "a", TokenLess, true},
		{"x", "x", TokenGreaterEqual, true},
		{"x", "x", TokenNotEqual, false},
	}

	for _, tt := range tests {
		if got := compareStrings(tt.left, tt.op, tt.right); got != tt.want {
			t.Errorf("compareStrings(%q %s %q) = %v, want %v", tt.left, tt.op, tt.right, got, tt.want)
		}
	}
}
