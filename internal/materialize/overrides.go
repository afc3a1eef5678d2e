package materialize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinelake/internal/reconcile"
	"cinelake/internal/services"
	"cinelake/internal/table"
)

const (
	// FilmOverridesTable holds user corrections keyed by film_id.
	FilmOverridesTable = "film_overrides"
	// FilmKey is the column film overrides are keyed on.
	FilmKey = "film_id"
)

// FilmOverrideColumns is the film override table layout.
var FilmOverrideColumns = []table.Column{
	{Name: "film_id", Type: table.Text},
	{Name: "box_office_usd", Type: table.Real},
	{Name: "audience_score", Type: table.Real},
	{Name: "updated_at", Type: table.Timestamp},
}

// FilmOverrideRow builds a one-row film override table.
func FilmOverrideRow(filmID string, boxOffice, audienceScore *float64, now time.Time) (*table.Table, error) {
	t := table.New(FilmOverridesTable, FilmOverrideColumns...)
	if err := t.Append(filmID, table.Opt(boxOffice), table.Opt(audienceScore), now.UTC()); err != nil {
		return nil, err
	}
	return t, nil
}

// MergeOverrides applies film overrides on top of films. For every override
// row whose film_id exists in films, each non-null override cell replaces the
// matching cell; later override rows win. Override columns unknown to films
// and override ids absent from films are ignored. revenue_per_minute is
// recomputed for every overridden film. films is not modified.
func MergeOverrides(films, overrides *table.Table) (*table.Table, error) {
	out := films.Clone()
	if overrides == nil || overrides.Len() == 0 {
		return out, nil
	}
	baseKey := out.ColumnIndex(FilmKey)
	overrideKey := overrides.ColumnIndex(FilmKey)
	if baseKey < 0 || overrideKey < 0 {
		return nil, services.Wrap(services.ErrValidation, "materialize", "merge overrides", "both tables need a film_id column", nil)
	}

	rowsByID := make(map[any]int, out.Len())
	for i, row := range out.Rows {
		if id := row[baseKey]; id != nil {
			if _, dup := rowsByID[id]; !dup {
				rowsByID[id] = i
			}
		}
	}

	type target struct{ from, to int }
	var targets []target
	for j, col := range overrides.Columns {
		if j == overrideKey {
			continue
		}
		if i := out.ColumnIndex(col.Name); i >= 0 {
			targets = append(targets, target{from: j, to: i})
		}
	}

	touched := make(map[int]struct{})
	for _, row := range overrides.Rows {
		i, ok := rowsByID[row[overrideKey]]
		if !ok {
			continue
		}
		touched[i] = struct{}{}
		for _, tg := range targets {
			v := row[tg.from]
			if v == nil {
				continue
			}
			cell, err := coerce(out.Columns[tg.to], v)
			if err != nil {
				return nil, services.Wrap(services.ErrValidation, "materialize", "merge overrides", "", err)
			}
			out.Rows[i][tg.to] = cell
		}
	}
	refreshRevenuePerMinute(out, touched)
	return out, nil
}

// refreshRevenuePerMinute recomputes the derived revenue column for rows, so
// an overridden box office never leaves a stale ratio behind.
func refreshRevenuePerMinute(films *table.Table, rows map[int]struct{}) {
	derived := films.ColumnIndex("revenue_per_minute")
	boxOffice := films.ColumnIndex("box_office_usd")
	runtime := films.ColumnIndex("runtime_minutes")
	if derived < 0 || boxOffice < 0 || runtime < 0 {
		return
	}
	for i := range rows {
		row := films.Rows[i]
		row[derived] = table.Opt(reconcile.RevenuePerMinute(realCell(row[boxOffice]), realCell(row[runtime])))
	}
}

func realCell(v any) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

// AppendReviews returns base followed by the user rows, aligned to base's
// columns by name. Columns user lacks are null; extra user columns are
// dropped.
func AppendReviews(base, user *table.Table) (*table.Table, error) {
	out := base.Clone()
	if user == nil {
		return out, nil
	}
	for n, row := range user.Rows {
		aligned := make([]any, len(out.Columns))
		for i, col := range out.Columns {
			j := user.ColumnIndex(col.Name)
			if j < 0 || row[j] == nil {
				continue
			}
			cell, err := coerce(col, row[j])
			if err != nil {
				return nil, services.Wrap(services.ErrValidation, "materialize", "append reviews", fmt.Sprintf("user row %d", n), err)
			}
			aligned[i] = cell
		}
		out.Rows = append(out.Rows, aligned)
	}
	return out, nil
}

// AppendOverride adds the rows of row to the override table file at path,
// creating it when absent. When key is set, existing rows whose key equals a
// new row's key are dropped first. Columns are the union of both tables.
func AppendOverride(ctx context.Context, path string, row *table.Table, key string) (*table.Table, error) {
	if key != "" && row.ColumnIndex(key) < 0 {
		return nil, services.Wrap(services.ErrValidation, "materialize", "append override", "row has no column "+key, nil)
	}
	existing, err := ReadTable(ctx, path)
	switch {
	case errors.Is(err, services.ErrNotFound):
		existing = table.New(row.Name, row.Columns...)
	case err != nil:
		return nil, err
	}

	merged, err := unionColumns(existing, row)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "materialize", "append override", path, err)
	}
	if key != "" {
		replaced := make(map[any]struct{}, row.Len())
		for i := range row.Rows {
			replaced[row.Value(i, key)] = struct{}{}
		}
		k := merged.ColumnIndex(key)
		kept := merged.Rows[:0]
		for _, r := range merged.Rows {
			if _, drop := replaced[r[k]]; !drop {
				kept = append(kept, r)
			}
		}
		merged.Rows = kept
	}
	for i := range row.Rows {
		aligned := make([]any, len(merged.Columns))
		for j, col := range merged.Columns {
			aligned[j] = row.Value(i, col.Name)
		}
		merged.Rows = append(merged.Rows, aligned)
	}

	if err := WriteTable(ctx, merged, path); err != nil {
		return nil, err
	}
	return merged, nil
}

// unionColumns returns a copy of base widened with the columns of extra that
// base lacks. Shared columns must agree on type.
func unionColumns(base, extra *table.Table) (*table.Table, error) {
	columns := append([]table.Column(nil), base.Columns...)
	for _, col := range extra.Columns {
		i := base.ColumnIndex(col.Name)
		if i < 0 {
			columns = append(columns, col)
			continue
		}
		if base.Columns[i].Type != col.Type {
			return nil, fmt.Errorf("column %s is %s, not %s", col.Name, base.Columns[i].Type, col.Type)
		}
	}
	out := table.New(base.Name, columns...)
	for _, row := range base.Rows {
		widened := make([]any, len(columns))
		copy(widened, row)
		out.Rows = append(out.Rows, widened)
	}
	return out, nil
}

// coerce validates v against col using the table's own rules.
func coerce(col table.Column, v any) (any, error) {
	scratch := table.New("", col)
	if err := scratch.Append(v); err != nil {
		return nil, err
	}
	return scratch.Rows[0][0], nil
}
