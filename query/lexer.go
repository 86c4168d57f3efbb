package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer splits a where clause into whitespace separated tokens.
// A quoted run is kept inside one token even when it contains spaces.
type Lexer struct {
	input string
	pos   int // byte offset of ch
	next  int // byte offset after ch
	ch    rune
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	l.pos = l.next
	if l.next >= len(l.input) {
		l.ch = 0
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.next:])
	l.ch = r
	l.next += size
}

// skipWhitespace skips whitespace characters
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// readWord reads up to the next whitespace outside quotes. A quote opens
// only as the first character of a word and only when it is closed later
// in the input; any other quote is a literal character.
func (l *Lexer) readWord() string {
	start := l.pos
	var quote rune
	if (l.ch == '\'' || l.ch == '"') && strings.ContainsRune(l.input[l.next:], l.ch) {
		quote = l.ch
		l.readChar()
	}
	for l.pos < len(l.input) {
		switch {
		case quote != 0:
			if l.ch == quote {
				quote = 0
			}
		case unicode.IsSpace(l.ch):
			return l.input[start:l.pos]
		}
		l.readChar()
	}
	return l.input[start:l.pos]
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF}
	}

	raw := l.readWord()
	return classify(raw)
}

// Tokenize returns every token of input, excluding EOF
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == TokenEOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// classify maps a raw word to its token. The combinators are matched in
// lowercase only, like matches in any case.
func classify(raw string) Token {
	tok := Token{Type: TokenWord, Value: raw, Raw: raw}

	switch raw {
	case "and":
		tok.Type = TokenAnd
	case "or":
		tok.Type = TokenOr
	case "=", "==":
		tok.Type = TokenEqual
	case "!=", "<>":
		tok.Type = TokenNotEqual
	case "<":
		tok.Type = TokenLess
	case ">":
		tok.Type = TokenGreater
	case "<=":
		tok.Type = TokenLessEqual
	case ">=":
		tok.Type = TokenGreaterEqual
	default:
		if strings.EqualFold(raw, "like") {
			tok.Type = TokenLike
		} else if unquoted, ok := unquote(raw); ok {
			tok.Type = TokenString
			tok.Value = unquoted
		}
	}

	return tok
}

// unquote strips one layer of matching enclosing quotes
func unquote(s string) (string, bool) {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '\'' || first == '"') && first == last {
			return s[1 : len(s)-1], true
		}
	}
	return s, false
}
