package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotLocked is returned by Record when the caller does not hold the writer lock.
var ErrNotLocked = errors.New("ledger writer lock not held")

// timestampLayout has a fixed width so created_at sorts correctly as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const recordColumns = "id, run_id, source, status, content_hash, row_count, byte_size, raw_path, reason, error, created_at"

// AlreadyIngested reports whether a completed record exists for exactly this
// (source, digest) pair. Skipped records do not count.
func (s *Store) AlreadyIngested(ctx context.Context, source, digest string) (bool, error) {
	var found int
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM ingestions WHERE source = ? AND content_hash = ? AND status = ?`,
			source, digest, StatusCompleted,
		).Scan(&found)
	})
	if err != nil {
		return false, fmt.Errorf("query ledger: %w", err)
	}
	return found > 0, nil
}

// Record appends rec to the ledger and returns the stored copy. CreatedAt is
// filled with the current UTC time when zero.
func (s *Store) Record(ctx context.Context, rec Record) (*Record, error) {
	if !s.lock.Locked() {
		return nil, ErrNotLocked
	}
	if strings.TrimSpace(rec.Source) == "" {
		return nil, errors.New("ledger record requires a source")
	}
	if strings.TrimSpace(rec.ContentHash) == "" {
		return nil, errors.New("ledger record requires a content hash")
	}
	if _, err := ParseStatus(string(rec.Status)); err != nil {
		return nil, err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx,
			`INSERT INTO ingestions (
                run_id, source, status, content_hash, row_count, byte_size,
                raw_path, reason, error, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.RunID,
			rec.Source,
			string(rec.Status),
			rec.ContentHash,
			rec.RowCount,
			rec.ByteSize,
			nullableString(rec.RawPath),
			nullableString(rec.Reason),
			nullableString(rec.Error),
			rec.CreatedAt.Format(timestampLayout),
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		rec.ID = id
		return tx.Commit()
	})
	if err != nil {
		return nil, fmt.Errorf("insert ledger record: %w", err)
	}
	return &rec, nil
}

// List returns records matching filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Record, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	query := `SELECT ` + recordColumns + ` FROM ingestions`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var records []Record
	err := retryOnBusy(ctx, func() error {
		records = records[:0]
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return err
			}
			records = append(records, *rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return records, nil
}

// Latest returns the most recent completed record for source, or nil when the
// source has never been ingested.
func (s *Store) Latest(ctx context.Context, source string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM ingestions WHERE source = ? AND status = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		source, StatusCompleted,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest ledger record: %w", err)
	}
	return rec, nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		rec        Record
		status     string
		rawPath    sql.NullString
		reason     sql.NullString
		errMessage sql.NullString
		createdRaw string
	)
	if err := scanner.Scan(
		&rec.ID,
		&rec.RunID,
		&rec.Source,
		&status,
		&rec.ContentHash,
		&rec.RowCount,
		&rec.ByteSize,
		&rawPath,
		&reason,
		&errMessage,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	rec.Status = Status(status)
	rec.RawPath = rawPath.String
	rec.Reason = reason.String
	rec.Error = errMessage.String
	if ts, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		rec.CreatedAt = ts
	}
	return &rec, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
