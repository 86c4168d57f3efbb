package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/vegasq/flatdb/chunk"
	"github.com/vegasq/flatdb/export"
	"github.com/vegasq/flatdb/internal/metrics"
	"github.com/vegasq/flatdb/output"
	"github.com/vegasq/flatdb/query"
	"github.com/vegasq/flatdb/reader"
	"github.com/vegasq/flatdb/shell"
)

const historyFile = ".flatdb_history"

func (a *app) shellCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("metrics-addr") {
				a.cfg.Metrics.Addr = metricsAddr
			}
			sh, err := a.newShell()
			if err != nil {
				return err
			}

			if a.cfg.Metrics.Addr != "" {
				stop := a.serveMetrics(a.cfg.Metrics.Addr)
				defer stop()
			}

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)

			histPath := filepath.Join(a.cfg.Root, historyFile)
			if f, err := os.Open(histPath); err == nil {
				_, _ = line.ReadHistory(f)
				_ = f.Close()
			}
			defer func() {
				if f, err := os.Create(histPath); err == nil {
					_, _ = line.WriteHistory(f)
					_ = f.Close()
				}
			}()

			fmt.Fprintln(a.out, "Enter your query and end with '!' to execute, enter exit! to exit console")
			return repl(sh, line, a.out)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")
	return cmd
}

// prompter reads one line of input. liner.State is the interactive one.
type prompter interface {
	Prompt(prompt string) (string, error)
}

type historyAppender interface {
	AppendHistory(item string)
}

// repl feeds lines into a statement buffer and runs every terminated
// statement until exit or end of input
func repl(sh *shell.Shell, p prompter, out io.Writer) error {
	var buf shell.Buffer
	for {
		prompt := "flatdb> "
		if buf.Pending() {
			prompt = "... > "
		}

		input, err := p.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			buf.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		stmt, done := buf.Add(input)
		if !done || stmt == "" {
			continue
		}
		if h, ok := p.(historyAppender); ok {
			h.AppendHistory(stmt + shell.Terminator)
		}

		res := sh.ExecuteLine(stmt)
		if res.IsExit() {
			return nil
		}
		res.Print(out)
	}
}

// serveMetrics starts the metrics listener and returns its shutdown func
func (a *app) serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func (a *app) execCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <statement>|-",
		Short: "Run one statement, or '!'-terminated statements from stdin with -",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := a.newShell()
			if err != nil {
				return err
			}

			if len(args) == 1 && args[0] == "-" {
				return runScript(sh, a.in, a.out)
			}

			stmt := strings.TrimSpace(strings.Join(args, " "))
			stmt = strings.TrimSpace(strings.TrimSuffix(stmt, shell.Terminator))
			res := sh.ExecuteLine(stmt)
			if e, ok := res.(shell.ErrorResult); ok {
				return e.Err
			}
			res.Print(a.out)
			return nil
		},
	}
}

// lineReader adapts an io.Reader to a prompter that prints no prompt
type lineReader struct {
	lines []string
	pos   int
}

func newLineReader(r io.Reader) (*lineReader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return &lineReader{lines: strings.Split(text, "\n")}, nil
}

func (l *lineReader) Prompt(string) (string, error) {
	if l.pos >= len(l.lines) {
		return "", io.EOF
	}
	line := l.lines[l.pos]
	l.pos++
	return line, nil
}

// runScript runs statements from r. The first failing statement stops the
// script and its error is returned.
func runScript(sh *shell.Shell, r io.Reader, out io.Writer) error {
	lr, err := newLineReader(r)
	if err != nil {
		return err
	}

	var buf shell.Buffer
	for {
		input, err := lr.Prompt("")
		if errors.Is(err, io.EOF) {
			break
		}
		stmt, done := buf.Add(input)
		if !done || stmt == "" {
			continue
		}
		res := sh.ExecuteLine(stmt)
		if res.IsExit() {
			return nil
		}
		if e, ok := res.(shell.ErrorResult); ok {
			return fmt.Errorf("%s: %w", stmt, e.Err)
		}
		res.Print(out)
	}
	if buf.Pending() {
		return fmt.Errorf("unterminated statement at end of input (missing %q)", shell.Terminator)
	}
	return nil
}

func (a *app) chunkCmd() *cobra.Command {
	var (
		budget       int64
		rows         int
		codec        string
		repeatHeader bool
	)

	cmd := &cobra.Command{
		Use:   "chunk <table>",
		Short: "Split a table into chunk files sized by a memory budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("codec") {
				a.cfg.Chunk.Codec = codec
			}
			if flags.Changed("repeat-header") {
				a.cfg.Chunk.RepeatHeader = repeatHeader
			}
			if !flags.Changed("budget") {
				budget = a.cfg.Query.MemoryBudget
			}
			if rows < 0 {
				return fmt.Errorf("--rows must be non-negative, got %d", rows)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			opts, err := a.chunkOptions()
			if err != nil {
				return err
			}
			splitter := chunk.NewSplitter(store, opts...)

			var m *chunk.Manifest
			if rows > 0 {
				m, err = splitter.SplitRows(args[0], rows)
			} else {
				m, err = splitter.Split(args[0], budget)
			}
			if err != nil {
				return err
			}
			shell.ChunkResult{Manifest: m}.Print(a.out)
			return nil
		},
	}
	cmd.Flags().Int64Var(&budget, "budget", query.DefaultMemoryBudget, "memory budget per chunk in bytes")
	cmd.Flags().IntVar(&rows, "rows", 0, "fixed rows per chunk (skips the estimate)")
	cmd.Flags().StringVar(&codec, "codec", "none", "chunk compression: none, zstd, snappy")
	cmd.Flags().BoolVar(&repeatHeader, "repeat-header", false, "write the header row into every chunk")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <table> <path.parquet|path.db>",
		Short: "Export a table to parquet or SQLite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			n, err := export.Table(store, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Exported %d rows from '%s' to %s.\n", n, args[0], args[1])
			return nil
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <path.parquet|glob> <table>",
		Short: "Import parquet files as a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			n, err := export.FromParquet(store, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Imported %d rows into '%s'.\n", n, args[1])
			return nil
		},
	}
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <file.parquet|glob>",
		Short: "Show the columns a parquet file imports as",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if strings.ContainsAny(path, "*?[") {
				matches, err := filepath.Glob(path)
				if err != nil {
					return fmt.Errorf("invalid glob pattern: %w", err)
				}
				if len(matches) == 0 {
					return fmt.Errorf("no files match pattern: %s", path)
				}
				path = matches[0]
				if len(matches) > 1 {
					fmt.Fprintf(a.errOut, "# Showing schema from: %s (%d files matched)\n", path, len(matches))
				}
			}

			infos, err := reader.DescribeParquet(path)
			if err != nil {
				return err
			}
			return a.printSchema(infos)
		},
	}
}

func (a *app) printSchema(infos []reader.ColumnInfo) error {
	rs := &query.ResultSet{Columns: []string{"name", "type", "optional", "repeated"}}
	for _, info := range infos {
		rs.Rows = append(rs.Rows, []string{
			info.Name,
			info.Type,
			strconv.FormatBool(info.Optional),
			strconv.FormatBool(info.Repeated),
		})
	}

	if a.cfg.Output.Format != "table" && a.cfg.Output.Format != "" {
		f, err := output.New(a.cfg.Output.Format, a.out)
		if err != nil {
			return err
		}
		return f.Format(rs)
	}

	table := tablewriter.NewWriter(a.out)
	table.SetHeader(rs.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rs.Rows)
	table.Render()
	return nil
}
