package materialize

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cinelake/internal/table"
)

// columnsTable records the column layout of a table file.
const columnsTable = "_cinelake_columns"

const timeLayout = time.RFC3339Nano

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func openDB(path string, readOnly bool) (*sql.DB, error) {
	dsn := path
	if readOnly {
		dsn = "file:" + path + "?mode=ro"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply busy_timeout: %w", err)
	}
	return db, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

func createTable(ctx context.Context, db execer, t *table.Table) error {
	defs := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		defs[i] = quoteIdent(col.Name) + " " + string(col.Type)
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(t.Name), strings.Join(defs, ", "))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", t.Name, err)
	}
	return nil
}

func insertRows(ctx context.Context, db execer, t *table.Table) error {
	if len(t.Rows) == 0 {
		return nil
	}
	names := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = quoteIdent(col.Name)
		marks[i] = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(t.Name), strings.Join(names, ", "), strings.Join(marks, ", "))
	stmt, err := db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", t.Name, err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns))
	for n, row := range t.Rows {
		for i, v := range row {
			args[i] = toSQL(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d into %s: %w", n, t.Name, err)
		}
	}
	return nil
}

func toSQL(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(timeLayout)
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	default:
		return v
	}
}

// fromSQL converts a scanned driver value back into the cell type of col.
func fromSQL(col table.Column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	switch col.Type {
	case table.Text:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case table.Real:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		}
	case table.Integer:
		if n, ok := v.(int64); ok {
			return n, nil
		}
	case table.Boolean:
		switch b := v.(type) {
		case int64:
			return b != 0, nil
		case bool:
			return b, nil
		}
	case table.Timestamp:
		switch ts := v.(type) {
		case time.Time:
			return ts.UTC(), nil
		case string:
			parsed, err := time.Parse(timeLayout, ts)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			return parsed.UTC(), nil
		}
	}
	return nil, fmt.Errorf("column %s (%s): unexpected stored value %T", col.Name, col.Type, v)
}

func writeColumns(ctx context.Context, db execer, t *table.Table) error {
	create := fmt.Sprintf("CREATE TABLE %s (table_name TEXT NOT NULL, position INTEGER NOT NULL, name TEXT NOT NULL, type TEXT NOT NULL)", columnsTable)
	if _, err := db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create column metadata: %w", err)
	}
	for i, col := range t.Columns {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO "+columnsTable+" (table_name, position, name, type) VALUES (?, ?, ?, ?)",
			t.Name, i, col.Name, string(col.Type),
		); err != nil {
			return fmt.Errorf("record column %s: %w", col.Name, err)
		}
	}
	return nil
}

func readColumns(ctx context.Context, db *sql.DB) (string, []table.Column, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT table_name, name, type FROM "+columnsTable+" ORDER BY position")
	if err != nil {
		return "", nil, fmt.Errorf("read column metadata: %w", err)
	}
	defer rows.Close()

	var (
		name    string
		columns []table.Column
	)
	for rows.Next() {
		var colName, colType string
		if err := rows.Scan(&name, &colName, &colType); err != nil {
			return "", nil, fmt.Errorf("scan column metadata: %w", err)
		}
		typ, err := table.ParseType(colType)
		if err != nil {
			return "", nil, err
		}
		columns = append(columns, table.Column{Name: colName, Type: typ})
	}
	if err := rows.Err(); err != nil {
		return "", nil, err
	}
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("table file has no column metadata")
	}
	return name, columns, nil
}

func selectRows(ctx context.Context, db *sql.DB, t *table.Table) error {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = quoteIdent(col.Name)
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(names, ", "), quoteIdent(t.Name))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("select %s: %w", t.Name, err)
	}
	defer rows.Close()

	raw := make([]any, len(t.Columns))
	dest := make([]any, len(t.Columns))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for n := 0; rows.Next(); n++ {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scan %s row %d: %w", t.Name, n, err)
		}
		row := make([]any, len(t.Columns))
		for i, col := range t.Columns {
			v, err := fromSQL(col, raw[i])
			if err != nil {
				return fmt.Errorf("%s row %d: %w", t.Name, n, err)
			}
			row[i] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return rows.Err()
}
