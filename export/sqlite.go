package export

import (
	"database/sql"
	"fmt"
	"path"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vegasq/flatdb/reader"
)

// ToSQLite copies a table into a SQLite database file. The SQLite table is
// named after the last segment of the table id and is replaced if present.
func ToSQLite(src Source, table, dbPath string) (int, error) {
	r, err := src.OpenTable(table)
	if err != nil {
		return 0, err
	}
	defer func() { _ = r.Close() }()

	header := r.Header()
	if header.Len() == 0 {
		return 0, fmt.Errorf("table %s has no header", table)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	defer func() { _ = db.Close() }()

	name := quoteIdent(path.Base(table))
	cols := make([]string, header.Len())
	marks := make([]string, header.Len())
	for i, c := range header.Columns {
		cols[i] = quoteIdent(c) + " TEXT"
		marks[i] = "?"
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DROP TABLE IF EXISTS " + name); err != nil {
		return 0, fmt.Errorf("failed to drop table: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(cols, ", "))); err != nil {
		return 0, fmt.Errorf("failed to create table: %w", err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", name, strings.Join(marks, ", ")))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	written := 0
	err = scan(r, func(rows []reader.Row) error {
		args := make([]any, header.Len())
		for _, row := range rows {
			for i, v := range row {
				args[i] = v
			}
			if _, err := stmt.Exec(args...); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return written, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
