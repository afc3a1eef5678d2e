package materialize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cinelake/internal/fileutil"
	"cinelake/internal/services"
	"cinelake/internal/table"
)

// FileExt is the extension of a table file.
const FileExt = ".sqlite"

// TablePath returns <root>/<name>/<name>.sqlite.
func TablePath(root, name string) string {
	return filepath.Join(root, name, name+FileExt)
}

// WriteTable replaces dest with t. The table is written to a temp sibling of
// dest and renamed into place; on any failure dest is left untouched and the
// temp file removed. A missing or empty result is a write failure.
func WriteTable(ctx context.Context, t *table.Table, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return writeFailure(t.Name, "create table directory", err)
	}
	tmp := fileutil.TempSibling(dest)
	if err := writeTableFile(ctx, t, tmp); err != nil {
		removeDBFiles(tmp)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return writeFailure(t.Name, "write temp table", err)
	}
	if err := checkNonEmpty(tmp); err != nil {
		removeDBFiles(tmp)
		return writeFailure(t.Name, "verify temp table", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		removeDBFiles(tmp)
		return writeFailure(t.Name, "rename table into place", err)
	}
	if err := checkNonEmpty(dest); err != nil {
		return writeFailure(t.Name, "verify table", err)
	}
	return nil
}

func writeTableFile(ctx context.Context, t *table.Table, path string) (err error) {
	db, err := openDB(path, false)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close table file: %w", closeErr)
		}
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = writeColumns(ctx, tx, t); err != nil {
		return err
	}
	if err = createTable(ctx, tx, t); err != nil {
		return err
	}
	if err = insertRows(ctx, tx, t); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReadTable loads a table file written by WriteTable.
func ReadTable(ctx context.Context, path string) (*table.Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "materialize", "read table", path, err)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "materialize", "read table", path+" is a directory", nil)
	}

	db, err := openDB(path, true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	name, columns, err := readColumns(ctx, db)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "materialize", "read table", path, err)
	}
	t := table.New(name, columns...)
	if err := selectRows(ctx, db, t); err != nil {
		return nil, services.Wrap(services.ErrValidation, "materialize", "read table", path, err)
	}
	return t, nil
}

func checkNonEmpty(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s is empty", path)
	}
	return nil
}

// removeDBFiles deletes a database file and any journal left beside it.
func removeDBFiles(path string) {
	for _, suffix := range []string{"", "-journal", "-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
}

func writeFailure(tableName, operation string, err error) error {
	return services.Wrap(services.ErrWriteFailure, "materialize", operation, tableName, err)
}
