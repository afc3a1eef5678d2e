package materialize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cinelake/internal/table"
)

// LoadWarehouse replaces each table in the analytical database at path. All
// tables are swapped in one transaction: either every table is replaced or
// none is.
func LoadWarehouse(ctx context.Context, path string, tables ...*table.Table) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return writeFailure("warehouse", "create warehouse directory", err)
	}
	db, err := openDB(path, false)
	if err != nil {
		return writeFailure("warehouse", "open warehouse", err)
	}
	defer db.Close()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return writeFailure("warehouse", "apply journal mode", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return writeFailure("warehouse", "begin load", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for _, t := range tables {
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(t.Name))); err != nil {
			return writeFailure(t.Name, "drop warehouse table", err)
		}
		if err = createTable(ctx, tx, t); err != nil {
			return writeFailure(t.Name, "create warehouse table", err)
		}
		if err = insertRows(ctx, tx, t); err != nil {
			return writeFailure(t.Name, "load warehouse table", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return writeFailure("warehouse", "commit load", err)
	}
	return nil
}
