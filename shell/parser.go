package shell

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	dberrors "github.com/vegasq/flatdb/internal/errors"
	"github.com/vegasq/flatdb/query"
)

// Kind identifies the command a statement runs
type Kind int

const (
	KindHelp Kind = iota
	KindExit
	KindCreateDatabase
	KindUseDatabase
	KindDropDatabase
	KindShowDatabases
	KindCreateTable
	KindDropTable
	KindShowTables
	KindInsert
	KindSelect
	KindChunk
	KindExport
	KindImport
)

var kindNames = map[Kind]string{
	KindHelp:           "help",
	KindExit:           "exit",
	KindCreateDatabase: "create database",
	KindUseDatabase:    "use database",
	KindDropDatabase:   "drop database",
	KindShowDatabases:  "show databases",
	KindCreateTable:    "create table",
	KindDropTable:      "drop table",
	KindShowTables:     "show tables",
	KindInsert:         "insert",
	KindSelect:         "select",
	KindChunk:          "chunk",
	KindExport:         "export",
	KindImport:         "import",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Statement is one parsed command. Only the fields its Kind uses are set.
type Statement struct {
	Kind    Kind
	Name    string   // database or table
	Columns []string // create table
	Values  []string // insert
	Select  query.SelectRequest
	Budget  *int64 // select and chunk
	Rows    int    // chunk
	Codec   string // chunk
	Path    string // export and import
	Line    string
}

// word is a whitespace separated run of the statement. Quoted runs stay in
// one word.
type word struct {
	text  string
	start int
}

func (w word) is(keyword string) bool {
	return strings.EqualFold(w.text, keyword)
}

// Parse parses one statement without its terminator. Keywords match in any
// case; names and values keep theirs.
func Parse(line string) (*Statement, error) {
	line = strings.TrimSpace(line)
	words := splitWords(line)
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: empty statement", dberrors.ErrInvalidStatement)
	}

	st := &Statement{Line: line}
	var err error
	switch strings.ToLower(words[0].text) {
	case "exit", "quit":
		st.Kind = KindExit
	case "help":
		st.Kind = KindHelp
	case "new", "create":
		err = parseCreate(st, line, words)
	case "use":
		err = parseUse(st, words)
	case "trash", "drop", "rem":
		err = parseDrop(st, words)
	case "show":
		err = parseShow(st, words)
	case "add":
		err = parseAdd(st, line, words)
	case "insert":
		err = parseInsert(st, line, words)
	case "get":
		err = parseProjection(st, line, words, projectionKeywords{distinct: "once", from: "->", where: "that"})
	case "select":
		err = parseProjection(st, line, words, projectionKeywords{distinct: "distinct", from: "from", where: "where"})
	case "chunk":
		err = parseChunk(st, words)
	case "export":
		err = parseExport(st, words)
	case "import":
		err = parseImport(st, words)
	default:
		return nil, fmt.Errorf("%w: %s", dberrors.ErrUnknownCommand, words[0].text)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

func usage(form string) error {
	return fmt.Errorf("%w: usage: %s", dberrors.ErrInvalidStatement, form)
}

func isDatabaseWord(w word) bool {
	return w.is("db") || w.is("database")
}

// parseCreate handles new/create db and new/create table
func parseCreate(st *Statement, line string, words []word) error {
	if len(words) < 3 {
		return usage("new db <name> | new table <name> [(<col>, ...)]")
	}

	switch {
	case isDatabaseWord(words[1]):
		if len(words) != 3 {
			return usage("new db <name>")
		}
		st.Kind = KindCreateDatabase
		st.Name = words[2].text
		return nil

	case words[1].is("table"):
		st.Kind = KindCreateTable
		name := words[2].text
		rest := ""
		if open := strings.IndexByte(name, '('); open >= 0 {
			rest = line[words[2].start+open:]
			name = name[:open]
		} else if len(words) > 3 {
			rest = line[words[3].start:]
		}
		if name == "" {
			return usage("new table <name> [(<col>, ...)]")
		}
		st.Name = name

		rest = strings.TrimSpace(rest)
		if rest == "" {
			return nil
		}
		if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
			return usage("new table <name> [(<col>, ...)]")
		}
		st.Columns = splitList(rest[1 : len(rest)-1])
		return nil
	}
	return usage("new db <name> | new table <name> [(<col>, ...)]")
}

func parseUse(st *Statement, words []word) error {
	st.Kind = KindUseDatabase
	switch {
	case len(words) == 2:
		st.Name = words[1].text
	case len(words) == 3 && isDatabaseWord(words[1]):
		st.Name = words[2].text
	default:
		return usage("use db <name>")
	}
	return nil
}

// parseDrop handles trash db, drop database, rem table and drop table
func parseDrop(st *Statement, words []word) error {
	if len(words) != 3 {
		return usage("trash db <name> | rem table <name>")
	}
	verb := strings.ToLower(words[0].text)
	switch {
	case isDatabaseWord(words[1]) && verb != "rem":
		st.Kind = KindDropDatabase
	case words[1].is("table") && verb != "trash":
		st.Kind = KindDropTable
	default:
		return usage("trash db <name> | rem table <name>")
	}
	st.Name = words[2].text
	return nil
}

func parseShow(st *Statement, words []word) error {
	if len(words) != 2 {
		return usage("show dbs | show tables")
	}
	switch strings.ToLower(words[1].text) {
	case "dbs", "databases":
		st.Kind = KindShowDatabases
	case "tables":
		st.Kind = KindShowTables
	default:
		return usage("show dbs | show tables")
	}
	return nil
}

// parseAdd handles add in <t> as (<v1>, <v2>, ...)
func parseAdd(st *Statement, line string, words []word) error {
	if len(words) < 5 || !words[1].is("in") || !words[3].is("as") {
		return usage("add in <table> as (<v1>, <v2>, ...)")
	}
	st.Kind = KindInsert
	st.Name = words[2].text
	st.Values = splitList(stripParens(line[words[4].start:]))
	return nil
}

// parseInsert handles insert into <t> values (...) and insert into <t> v1 v2 ...
func parseInsert(st *Statement, line string, words []word) error {
	if len(words) < 4 || !words[1].is("into") {
		return usage("insert into <table> values (<v1>, ...)")
	}
	st.Kind = KindInsert
	st.Name = words[2].text

	if words[3].is("values") {
		if len(words) < 5 {
			return usage("insert into <table> values (<v1>, ...)")
		}
		st.Values = splitList(stripParens(line[words[4].start:]))
		return nil
	}

	for _, w := range words[3:] {
		st.Values = append(st.Values, unquote(w.text))
	}
	return nil
}

type projectionKeywords struct {
	distinct string
	from     string
	where    string
}

// parseProjection handles both read forms:
//
//	select [distinct] <cols> from <t> [where <clause>] [budget <n>]
//	get [once] <cols> -> <t> [that <clause>] [budget <n>]
func parseProjection(st *Statement, line string, words []word, kw projectionKeywords) error {
	form := fmt.Sprintf("%s [%s] <cols> %s <table> [%s <clause>] [budget <n>]", strings.ToLower(words[0].text), kw.distinct, kw.from, kw.where)
	st.Kind = KindSelect

	end := len(line)
	if n := len(words); n >= 3 && words[n-2].is("budget") && !isOperator(words[n-3]) {
		budget, err := strconv.ParseInt(words[n-1].text, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: budget %q is not an integer", dberrors.ErrInvalidStatement, words[n-1].text)
		}
		st.Budget = &budget
		st.Select.MemoryBudget = &budget
		end = words[n-2].start
		words = words[:n-2]
	}

	i := 1
	if i < len(words) && words[i].is(kw.distinct) {
		st.Select.Distinct = true
		i++
	}

	from := -1
	for j := i; j < len(words); j++ {
		if words[j].is(kw.from) {
			from = j
			break
		}
	}
	if from < 0 || from == i || from+1 >= len(words) {
		return usage(form)
	}

	if err := parseColumnList(st, line[words[i].start:words[from].start]); err != nil {
		return err
	}
	st.Name = words[from+1].text
	st.Select.Table = st.Name

	rest := words[from+2:]
	if len(rest) == 0 {
		return nil
	}
	if !rest[0].is(kw.where) || len(rest) < 2 {
		return usage(form)
	}
	st.Select.Where = strings.TrimSpace(line[rest[1].start:end])
	return nil
}

// isOperator reports whether w is a where clause operator, in which case a
// following budget word is the literal being compared
func isOperator(w word) bool {
	switch w.text {
	case "=", "==", "!=", "<>", "<", ">", "<=", ">=":
		return true
	}
	return w.is("like")
}

// parseColumnList fills either the projection or the aggregate
func parseColumnList(st *Statement, raw string) error {
	items := splitList(raw)
	if len(items) == 0 {
		return fmt.Errorf("%w: empty column list", dberrors.ErrInvalidStatement)
	}

	for _, item := range items {
		spec, ok, err := query.ParseAggregate(item)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if len(items) > 1 {
			return fmt.Errorf("%w: %s cannot be combined with other columns", dberrors.ErrInvalidAggregate, item)
		}
		st.Select.Aggregate = &spec
		return nil
	}

	st.Select.Columns = items
	return nil
}

// parseChunk handles chunk <t> [budget <n>] [rows <n>] [codec <c>]
func parseChunk(st *Statement, words []word) error {
	const form = "chunk <table> [budget <n>] [rows <n>] [codec none|zstd|snappy]"
	if len(words) < 2 || len(words)%2 != 0 {
		return usage(form)
	}
	st.Kind = KindChunk
	st.Name = words[1].text

	for i := 2; i < len(words); i += 2 {
		key, val := strings.ToLower(words[i].text), words[i+1].text
		switch key {
		case "budget":
			budget, err := strconv.ParseInt(val, 10, 64)
			if err != nil || budget <= 0 {
				return fmt.Errorf("%w: budget must be a positive integer, got %q", dberrors.ErrInvalidStatement, val)
			}
			st.Budget = &budget
		case "rows":
			rows, err := strconv.Atoi(val)
			if err != nil || rows <= 0 {
				return fmt.Errorf("%w: rows must be a positive integer, got %q", dberrors.ErrInvalidStatement, val)
			}
			st.Rows = rows
		case "codec":
			st.Codec = strings.ToLower(val)
		default:
			return usage(form)
		}
	}
	return nil
}

func parseExport(st *Statement, words []word) error {
	if len(words) != 4 || !words[2].is("to") {
		return usage("export <table> to <path.parquet|path.db>")
	}
	st.Kind = KindExport
	st.Name = words[1].text
	st.Path = unquote(words[3].text)
	return nil
}

func parseImport(st *Statement, words []word) error {
	if len(words) != 4 || !words[2].is("into") {
		return usage("import <path.parquet> into <table>")
	}
	st.Kind = KindImport
	st.Path = unquote(words[1].text)
	st.Name = words[3].text
	return nil
}

// opensQuote reports whether the quote r at byte i of s starts a quoted
// run, which needs a matching quote later in s
func opensQuote(s string, i int, r rune) bool {
	return (r == '\'' || r == '"') && strings.ContainsRune(s[i+1:], r)
}

// splitWords splits on whitespace outside quotes, recording byte offsets.
// Only a quote that starts a word opens a quoted run.
func splitWords(s string) []word {
	var words []word
	start := -1
	var quote rune
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			continue
		case unicode.IsSpace(r):
			if start >= 0 {
				words = append(words, word{text: s[start:i], start: start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
			if opensQuote(s, i, r) {
				quote = r
			}
		}
	}
	if start >= 0 {
		words = append(words, word{text: s[start:], start: start})
	}
	return words
}

// splitList splits a comma separated list outside quotes, trimming each
// item and removing one layer of matching quotes. Only a quote that starts
// an item opens a quoted run.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var items []string
	var quote rune
	start := 0
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == ',':
			items = append(items, unquote(strings.TrimSpace(s[start:i])))
			start = i + 1
		case strings.TrimSpace(s[start:i]) == "" && opensQuote(s, i, r):
			quote = r
		}
	}
	return append(items, unquote(strings.TrimSpace(s[start:])))
}

func stripParens(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		return s[1 : len(s)-1]
	}
	return s
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
