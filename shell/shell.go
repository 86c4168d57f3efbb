// Package shell runs the flatdb command language against a storage root.
//
// Two dialects are accepted side by side:
//
//	new db shop!                      create database shop!
//	use db shop!                      use shop!
//	new table people (name, age)!     create table people (name, age)!
//	add in people as (ann, 31)!       insert into people values (ann, 31)!
//	get once name -> people that age > 30!
//	select distinct name from people where age > 30 budget 4096!
//
// Statements are parsed with Parse and run with Shell.Execute; multi-line
// input is joined with a Buffer.
package shell

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/vegasq/flatdb/chunk"
	"github.com/vegasq/flatdb/export"
	"github.com/vegasq/flatdb/query"
	"github.com/vegasq/flatdb/storage"
)

// Shell is one interactive session. It is not safe for concurrent use.
type Shell struct {
	store     *storage.Store
	engine    *query.Engine
	format    string
	budget    int64
	chunkOpts []chunk.Option
	logger    *slog.Logger
}

// Option configures a Shell
type Option func(*Shell)

// WithFormat sets the output format of query results
func WithFormat(format string) Option {
	return func(s *Shell) {
		s.format = format
	}
}

// WithMemoryBudget sets the budget used by select and chunk statements
// that do not name one
func WithMemoryBudget(budget int64) Option {
	return func(s *Shell) {
		s.budget = budget
	}
}

// WithChunkOptions sets the splitter options chunk statements start from
func WithChunkOptions(opts ...chunk.Option) Option {
	return func(s *Shell) {
		s.chunkOpts = append(s.chunkOpts, opts...)
	}
}

// WithLogger sets the session logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a session over store
func New(store *storage.Store, opts ...Option) *Shell {
	s := &Shell{
		store:  store,
		format: "table",
		budget: query.DefaultMemoryBudget,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = query.NewEngine(store, query.WithLogger(s.logger), query.WithDefaultBudget(s.budget))
	return s
}

// Store returns the session storage
func (s *Shell) Store() *storage.Store {
	return s.store
}

// ExecuteLine parses and runs one statement
func (s *Shell) ExecuteLine(line string) Result {
	st, err := Parse(line)
	if err != nil {
		s.logger.Warn("statement rejected", "statement", line, "error", err)
		return ErrorResult{Err: err}
	}
	return s.Execute(st)
}

// Execute runs a parsed statement. Failures come back as ErrorResult and
// leave the session usable.
func (s *Shell) Execute(st *Statement) Result {
	res, err := s.execute(st)
	if err != nil {
		s.logger.Warn("statement failed", "kind", st.Kind.String(), "statement", st.Line, "error", err)
		return ErrorResult{Err: err}
	}
	return res
}

func (s *Shell) execute(st *Statement) (Result, error) {
	switch st.Kind {
	case KindExit:
		return ExitResult{}, nil

	case KindHelp:
		return HelpResult{}, nil

	case KindCreateDatabase:
		if err := s.store.CreateDatabase(st.Name); err != nil {
			return nil, err
		}
		return MessageResult{Text: fmt.Sprintf("Database '%s' created successfully.", st.Name)}, nil

	case KindUseDatabase:
		if err := s.store.Use(st.Name); err != nil {
			return nil, err
		}
		return MessageResult{Text: fmt.Sprintf("Switched to database '%s'.", st.Name)}, nil

	case KindDropDatabase:
		if err := s.store.DropDatabase(st.Name); err != nil {
			return nil, err
		}
		return MessageResult{Text: fmt.Sprintf("Database '%s' has been deleted.", st.Name)}, nil

	case KindShowDatabases:
		dbs, err := s.store.ListDatabases()
		if err != nil {
			return nil, err
		}
		return ListResult{Title: "databases", Items: dbs}, nil

	case KindCreateTable:
		if err := s.store.CreateTable(st.Name, st.Columns); err != nil {
			return nil, err
		}
		return MessageResult{Text: fmt.Sprintf("Table '%s' created%s.", st.Name, s.inDatabase(st.Name))}, nil

	case KindDropTable:
		if err := s.store.DropTable(st.Name); err != nil {
			return nil, err
		}
		return MessageResult{Text: fmt.Sprintf("Table '%s' has been removed%s.", st.Name, s.inDatabase(st.Name))}, nil

	case KindShowTables:
		tables, err := s.store.ListTables("")
		if err != nil {
			return nil, err
		}
		return ListResult{Title: "tables", Items: tables}, nil

	case KindInsert:
		if err := s.engine.Insert(query.InsertRequest{Table: st.Name, Values: st.Values}); err != nil {
			return nil, err
		}
		return MessageResult{Text: fmt.Sprintf("Data added to table '%s'.", st.Name)}, nil

	case KindSelect:
		res, err := s.engine.Select(st.Select)
		if err != nil {
			return nil, err
		}
		return QueryResult{Result: res, Format: s.format}, nil

	case KindChunk:
		return s.chunk(st)

	case KindExport:
		n, err := export.Table(s.store, st.Name, st.Path)
		if err != nil {
			return nil, err
		}
		return MessageResult{Text: fmt.Sprintf("Exported %d rows from '%s' to %s.", n, st.Name, st.Path)}, nil

	case KindImport:
		n, err := export.FromParquet(s.store, st.Path, st.Name)
		if err != nil {
			return nil, err
		}
		return MessageResult{Text: fmt.Sprintf("Imported %d rows into '%s'.", n, st.Name)}, nil
	}
	return nil, fmt.Errorf("unhandled statement kind %s", st.Kind)
}

func (s *Shell) chunk(st *Statement) (Result, error) {
	opts := append([]chunk.Option{chunk.WithLogger(s.logger)}, s.chunkOpts...)
	if st.Codec != "" {
		codec, err := chunk.ParseCodec(st.Codec)
		if err != nil {
			return nil, err
		}
		opts = append(opts, chunk.WithCodec(codec))
	}
	splitter := chunk.NewSplitter(s.store, opts...)

	var (
		m   *chunk.Manifest
		err error
	)
	switch {
	case st.Rows > 0:
		m, err = splitter.SplitRows(st.Name, st.Rows)
	case st.Budget != nil:
		m, err = splitter.Split(st.Name, *st.Budget)
	default:
		m, err = splitter.Split(st.Name, s.chunkBudget())
	}
	if err != nil {
		return nil, err
	}
	return ChunkResult{Manifest: m}, nil
}

// chunkBudget is the session budget, falling back to the default when the
// session runs unlimited
func (s *Shell) chunkBudget() int64 {
	if s.budget <= 0 {
		return query.DefaultMemoryBudget
	}
	return s.budget
}

func (s *Shell) inDatabase(table string) string {
	if strings.Contains(table, "/") {
		return ""
	}
	if db := s.store.Current(); db != "" {
		return fmt.Sprintf(" in database '%s'", db)
	}
	return ""
}
