package shell

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/flatdb/chunk"
	"github.com/vegasq/flatdb/output"
	"github.com/vegasq/flatdb/query"
)

// Result is what a statement produced. The caller decides where it prints.
type Result interface {
	Print(w io.Writer)
	IsExit() bool
}

type ErrorResult struct {
	Err error
}

func (e ErrorResult) Print(w io.Writer) {
	fmt.Fprintf(w, "Error: %v\n", e.Err)
}

func (e ErrorResult) IsExit() bool {
	return false
}

type ExitResult struct{}

func (e ExitResult) Print(w io.Writer) {}

func (e ExitResult) IsExit() bool {
	return true
}

// MessageResult is a one line confirmation
type MessageResult struct {
	Text string
}

func (m MessageResult) Print(w io.Writer) {
	fmt.Fprintln(w, m.Text)
}

func (m MessageResult) IsExit() bool {
	return false
}

// ListResult prints names as a one column table
type ListResult struct {
	Title string
	Items []string
}

func (l ListResult) Print(w io.Writer) {
	if len(l.Items) == 0 {
		fmt.Fprintf(w, "No %s.\n", l.Title)
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{l.Title})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	for _, item := range l.Items {
		table.Append([]string{item})
	}
	table.Render()
}

func (l ListResult) IsExit() bool {
	return false
}

// QueryResult renders a select in the session output format
type QueryResult struct {
	Result *query.Result
	Format string
}

func (q QueryResult) Print(w io.Writer) {
	if q.Result.Aggregate != nil {
		if err := output.WriteAggregate(w, *q.Result.Aggregate); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
		}
		return
	}

	f, err := output.New(q.Format, w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	if err := f.Format(q.Result.ResultSet); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

func (q QueryResult) IsExit() bool {
	return false
}

// ChunkResult lists the chunk files a split produced
type ChunkResult struct {
	Manifest *chunk.Manifest
}

func (c ChunkResult) Print(w io.Writer) {
	for _, ci := range c.Manifest.Chunks {
		fmt.Fprintf(w, "Chunk %d saved for %s (%d rows, %s).\n", ci.Index, c.Manifest.Table, ci.Rows, ci.File)
	}
	fmt.Fprintf(w, "%d rows in %d chunks of up to %d rows.\n", c.Manifest.TotalRows, len(c.Manifest.Chunks), c.Manifest.RowsPerChunk)
}

func (c ChunkResult) IsExit() bool {
	return false
}

type HelpResult struct{}

func (h HelpResult) Print(w io.Writer) {
	fmt.Fprintln(w, "flatdb shell. End every statement with '!'; a statement may span lines.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Databases:")
	fmt.Fprintln(w, "  new db <name>                      Create database (also: create database)")
	fmt.Fprintln(w, "  use db <name>                      Select database (also: use <name>)")
	fmt.Fprintln(w, "  trash db <name>                    Delete database (also: drop database)")
	fmt.Fprintln(w, "  show dbs                           List databases")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tables:")
	fmt.Fprintln(w, "  new table <t> [(<c1>, <c2>)]       Create table (also: create table)")
	fmt.Fprintln(w, "  rem table <t>                      Delete table (also: drop table)")
	fmt.Fprintln(w, "  show tables                        List tables of the current database")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rows:")
	fmt.Fprintln(w, "  add in <t> as (<v1>, <v2>)         Append a row")
	fmt.Fprintln(w, "  insert into <t> values (<v1>, ..)  Append a row")
	fmt.Fprintln(w, "  insert into <t> <v1> <v2> ..       Append a row")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Queries:")
	fmt.Fprintln(w, "  get [once] <cols> -> <t> [that <clause>] [budget <n>]")
	fmt.Fprintln(w, "  select [distinct] <cols> from <t> [where <clause>] [budget <n>]")
	fmt.Fprintln(w, "    <cols> is *, a comma list, or one of count/sum/avg/min/max(<col>)")
	fmt.Fprintln(w, "    <clause> joins <col> <op> <value> and <col> like <pattern> with and/or")
	fmt.Fprintln(w, "    a trailing budget <n> sets the memory budget unless it follows an operator;")
	fmt.Fprintln(w, "    quote the literal to compare against it: note = 'budget 5'")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Files:")
	fmt.Fprintln(w, "  chunk <t> [budget <n>] [rows <n>] [codec none|zstd|snappy]")
	fmt.Fprintln(w, "  export <t> to <path.parquet|path.db>")
	fmt.Fprintln(w, "  import <path.parquet|glob> into <t>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  help                               Show this help")
	fmt.Fprintln(w, "  exit                               Leave the shell")
}

func (h HelpResult) IsExit() bool {
	return false
}
