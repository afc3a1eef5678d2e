// Package etl runs the transform stage: it reads the newest raw copy of each
// source, reconciles films, extracts people, normalizes reviews, and
// materializes the curated tables.
package etl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"cinelake/internal/config"
	"cinelake/internal/logging"
	"cinelake/internal/materialize"
	"cinelake/internal/metrics"
	"cinelake/internal/people"
	"cinelake/internal/rawstore"
	"cinelake/internal/reconcile"
	"cinelake/internal/reviews"
	"cinelake/internal/services"
	"cinelake/internal/sources"
	"cinelake/internal/table"
)

// Source names the transform reads. Their file names come from config.
const (
	SourceRTMovies  = "rt_movies"
	SourceRTReviews = "rt_reviews"
	SourceIMDB      = "imdb_kaggle"
)

// Warehouse tables with user overrides applied.
const (
	EffectiveFilmsTable   = "films_effective"
	EffectiveReviewsTable = "reviews_effective"
)

// Output describes one transform run.
type Output struct {
	Tables []*table.Table
	// Paths maps table name to the curated file written.
	Paths  map[string]string
	Report reconcile.Report
}

// Transformer runs the transform stage for a config.
type Transformer struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewTransformer returns a Transformer. rec may be nil.
func NewTransformer(cfg *config.Config, logger *slog.Logger, rec *metrics.Recorder) *Transformer {
	return &Transformer{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "transform"),
		metrics: rec,
	}
}

// FilmOverridesPath is where user film corrections are kept.
func FilmOverridesPath(cfg *config.Config) string {
	return materialize.TablePath(cfg.Paths.OverridesDir, materialize.FilmOverridesTable)
}

// UserReviewsPath is where user-submitted reviews are kept.
func UserReviewsPath(cfg *config.Config) string {
	return materialize.TablePath(cfg.Paths.OverridesDir, reviews.UserTableName)
}

type inputs struct {
	rtMovies  []sources.RTMovie
	imdb      []sources.IMDBMovie
	rtReviews []sources.RTReview
}

// Run executes the transform. Inputs are read and every table is built before
// anything is written, so a read or parse failure leaves the curated tables
// untouched.
func (t *Transformer) Run(ctx context.Context) (*Output, error) {
	start := time.Now()
	ctx = services.WithStage(ctx, "transform")
	logger := logging.WithContext(ctx, t.logger)

	in, err := t.readInputs(ctx)
	if err != nil {
		return nil, err
	}

	films, report := reconcile.Reconcile(in.rtMovies, in.imdb)
	if len(report.Ambiguous) > 0 {
		logging.WarnWithContext(logger, "aggregator ids matched several catalog rows", "join_ambiguity",
			logging.Int("ids", len(report.Ambiguous)),
			logging.String("first", report.Ambiguous[0]),
			logging.String(logging.FieldImpact, "the first pairing per film_id is kept"),
		)
	}
	credits, err := people.ExtractContext(ctx, films)
	if err != nil {
		return nil, err
	}
	tables := []*table.Table{
		reconcile.ToTable(films),
		reviews.ToTable(reviews.Build(in.rtReviews)),
		people.ToTable(credits),
	}
	logger.Info("tables built",
		logging.String(logging.FieldEventType, "transform_built"),
		logging.Int("films", tables[0].Len()),
		logging.Int("reviews", tables[1].Len()),
		logging.Int("people", tables[2].Len()),
		logging.Int("joined", report.Joined),
		logging.Int("rt_only", report.RTOnly),
		logging.Int("imdb_only", report.IMDBOnly),
		logging.Int("duplicates", report.Duplicates),
		logging.Int("unkeyed", report.Unkeyed),
	)

	out := &Output{Tables: tables, Paths: make(map[string]string, len(tables)), Report: report}
	for _, tbl := range tables {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if err := t.publish(ctx, tbl, out); err != nil {
			return out, err
		}
	}

	if t.cfg.Warehouse.Enabled {
		if err := t.loadWarehouse(ctx, tables); err != nil {
			return out, err
		}
	}

	t.metrics.StageDuration("transform", time.Since(start))
	t.metrics.MarkSuccess(time.Now())
	logger.Info("transform finished",
		logging.String(logging.FieldEventType, "transform_complete"),
		logging.Duration("duration", time.Since(start)),
	)
	return out, nil
}

func (t *Transformer) readInputs(ctx context.Context) (*inputs, error) {
	var in inputs
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := readSource(ctx, t, SourceRTMovies, sources.ReadRTMovies)
		in.rtMovies = rows
		return err
	})
	g.Go(func() error {
		rows, err := readSource(ctx, t, SourceIMDB, sources.ReadIMDBMovies)
		in.imdb = rows
		return err
	})
	g.Go(func() error {
		rows, err := readSource(ctx, t, SourceRTReviews, sources.ReadRTReviews)
		in.rtReviews = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &in, nil
}

func readSource[T any](ctx context.Context, t *Transformer, name string, read func(string) (T, error)) (T, error) {
	var zero T
	src, ok := t.cfg.SourceByName(name)
	if !ok {
		return zero, services.Wrap(services.ErrConfiguration, "transform", "read source", fmt.Sprintf("source %s is not configured", name), nil)
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	srcCtx := services.WithSource(ctx, name)
	value, path, err := rawstore.ReadWithFallback(logging.WithContext(srcCtx, t.logger), t.cfg.RawCandidates(), name, src.FileName, read)
	if err != nil {
		return zero, err
	}
	logging.WithContext(srcCtx, t.logger).Debug("source loaded", logging.String("raw_path", path))
	return value, nil
}

func (t *Transformer) publish(ctx context.Context, tbl *table.Table, out *Output) error {
	tableCtx := services.WithTable(ctx, tbl.Name)
	logger := logging.WithContext(tableCtx, t.logger)

	dest := materialize.TablePath(t.cfg.Paths.CuratedDir, tbl.Name)
	if err := materialize.WriteTable(tableCtx, tbl, dest); err != nil {
		logging.ErrorWithContext(logger, "table write failed", "table_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions under paths.curated_dir"),
		)
		return err
	}
	out.Paths[tbl.Name] = dest
	t.metrics.RowsWritten(tbl.Name, tbl.Len())

	mirrored, err := materialize.Mirror(tableCtx, tbl, t.cfg.Paths.MirrorDir)
	if err != nil {
		logging.ErrorWithContext(logger, "table mirror failed", "table_mirror_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.mirror_dir"),
		)
		return err
	}
	logger.Info("table written",
		logging.String(logging.FieldEventType, "table_written"),
		logging.Int("rows", tbl.Len()),
		logging.String("curated_path", dest),
		logging.String("mirror_path", mirrored),
	)
	return nil
}

func (t *Transformer) loadWarehouse(ctx context.Context, tables []*table.Table) error {
	load := append([]*table.Table(nil), tables...)
	effective, err := EffectiveTables(ctx, t.cfg, tables[0], tables[1])
	if err != nil {
		return err
	}
	load = append(load, effective...)
	if err := materialize.LoadWarehouse(ctx, t.cfg.Warehouse.Path, load...); err != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, t.logger), "warehouse load failed", "warehouse_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check warehouse.path"),
		)
		return err
	}
	logging.WithContext(ctx, t.logger).Info("warehouse loaded",
		logging.String(logging.FieldEventType, "warehouse_loaded"),
		logging.Int("tables", len(load)),
		logging.String("warehouse_path", t.cfg.Warehouse.Path),
	)
	return nil
}

// EffectiveTables applies the user override tables, when present, to films
// and reviews and returns the merged views.
func EffectiveTables(ctx context.Context, cfg *config.Config, films, reviewTable *table.Table) ([]*table.Table, error) {
	filmOverrides, err := readOptional(ctx, FilmOverridesPath(cfg))
	if err != nil {
		return nil, err
	}
	userReviews, err := readOptional(ctx, UserReviewsPath(cfg))
	if err != nil {
		return nil, err
	}

	mergedFilms, err := materialize.MergeOverrides(films, filmOverrides)
	if err != nil {
		return nil, err
	}
	mergedFilms.Name = EffectiveFilmsTable
	mergedReviews, err := materialize.AppendReviews(reviewTable, userReviews)
	if err != nil {
		return nil, err
	}
	mergedReviews.Name = EffectiveReviewsTable
	return []*table.Table{mergedFilms, mergedReviews}, nil
}

func readOptional(ctx context.Context, path string) (*table.Table, error) {
	t, err := materialize.ReadTable(ctx, path)
	if errors.Is(err, services.ErrNotFound) {
		return nil, nil
	}
	return t, err
}
