// Package ingest copies configured sources into the run-versioned raw store,
// gated by the content-addressed ingestion ledger.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cinelake/internal/config"
	"cinelake/internal/fetch"
	"cinelake/internal/fileutil"
	"cinelake/internal/ledger"
	"cinelake/internal/logging"
	"cinelake/internal/metrics"
	"cinelake/internal/rawstore"
	"cinelake/internal/services"
)

// ReasonDuplicate is recorded on skipped records.
const ReasonDuplicate = "content already ingested"

// Result is the outcome for one source. Record is nil for failures, which are
// reported but never written to the ledger.
type Result struct {
	Source string
	Status ledger.Status
	Record *ledger.Record
	Err    error
}

// Runner ingests sources in configuration order.
type Runner struct {
	cfg     *config.Config
	ledger  *ledger.Store
	fetcher fetch.Fetcher
	raw     *rawstore.Store
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
	hash    func(path string) (string, error)
}

// Option customizes a Runner.
type Option func(*Runner)

// WithClock overrides the clock used for run ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = rec }
}

// NewRunner builds a runner writing into cfg's raw root.
func NewRunner(cfg *config.Config, store *ledger.Store, fetcher fetch.Fetcher, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		ledger:  store,
		fetcher: fetcher,
		raw:     rawstore.New(cfg.Paths.RawDir),
		logger:  logging.NewComponentLogger(logger, "ingest"),
		now:     time.Now,
		hash:    fileutil.HashFile,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run ingests the named sources, or every configured source when names is
// empty. It holds the ledger writer lock for the whole run. A failing source
// does not stop the others; its Result carries the error. The returned error
// is reserved for problems that prevent the run itself: unknown source names,
// a held lock, or cancellation between sources.
func (r *Runner) Run(ctx context.Context, names ...string) ([]Result, error) {
	selected, err := r.selectSources(names)
	if err != nil {
		return nil, err
	}
	if err := r.ledger.Lock(); err != nil {
		return nil, err
	}
	defer func() {
		if err := r.ledger.Unlock(); err != nil {
			r.logger.Warn("release ledger lock", logging.Error(err))
		}
	}()

	runID := rawstore.NewRunID(r.now())
	ctx = services.WithStage(services.WithRunID(ctx, runID), "ingest")
	logging.WithContext(ctx, r.logger).Info("ingestion started",
		logging.String(logging.FieldEventType, "ingest_start"),
		logging.Int("sources", len(selected)),
	)

	results := make([]Result, 0, len(selected))
	for _, src := range selected {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := r.ingestOne(services.WithSource(ctx, src.Name), runID, src)
		r.metrics.Ingestion(src.Name, string(res.Status))
		results = append(results, res)
	}

	summary := Summarize(results)
	logging.WithContext(ctx, r.logger).Info("ingestion finished",
		logging.String(logging.FieldEventType, "ingest_complete"),
		logging.Int("completed", summary.Completed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
	)
	return results, nil
}

func (r *Runner) selectSources(names []string) ([]config.Source, error) {
	if len(names) == 0 {
		return r.cfg.Sources, nil
	}
	out := make([]config.Source, 0, len(names))
	for _, name := range names {
		src, ok := r.cfg.SourceByName(strings.TrimSpace(name))
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration, "ingest", "select sources", fmt.Sprintf("unknown source %q", name), nil)
		}
		out = append(out, src)
	}
	return out, nil
}

func (r *Runner) ingestOne(ctx context.Context, runID string, src config.Source) Result {
	logger := logging.WithContext(ctx, r.logger)
	res := Result{Source: src.Name, Status: ledger.StatusFailed}
	fail := func(err error) Result {
		res.Err = err
		logging.ErrorWithContext(logger, "source ingestion failed", "ingest_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hintFor(err)),
		)
		return res
	}

	if err := fetch.Validate(src); err != nil {
		return fail(err)
	}
	localPath, err := r.fetcher.Fetch(ctx, src)
	if err != nil {
		return fail(err)
	}
	digest, err := r.hash(localPath)
	if err != nil {
		return fail(services.Wrap(services.ErrNotFound, "ingest", "hash source", localPath, err))
	}
	info, err := os.Stat(localPath)
	if err != nil {
		return fail(services.Wrap(services.ErrNotFound, "ingest", "stat source", localPath, err))
	}

	seen, err := r.ledger.AlreadyIngested(ctx, src.Name, digest)
	if err != nil {
		return fail(err)
	}
	if seen {
		return r.skip(ctx, logger, res, runID, digest, info.Size(), fail)
	}

	fileName := src.FileName
	if strings.TrimSpace(fileName) == "" {
		fileName = filepath.Base(localPath)
	}
	rawPath, copied, size, err := r.raw.Put(src.Name, runID, localPath, fileName)
	if err != nil {
		return fail(err)
	}
	if copied != digest {
		logging.WarnWithContext(logger, "source changed while ingesting", "ingest_source_changed",
			logging.String("hashed", digest),
			logging.String("copied", copied),
			logging.String(logging.FieldImpact, "the ledger gate is re-checked against the copied bytes"),
		)
		seen, err := r.ledger.AlreadyIngested(ctx, src.Name, copied)
		if err != nil {
			return fail(err)
		}
		if seen {
			if err := r.raw.Discard(rawPath); err != nil {
				return fail(err)
			}
			return r.skip(ctx, logger, res, runID, copied, size, fail)
		}
	}
	rows, err := fileutil.CountDataLines(rawPath)
	if err != nil {
		return fail(services.Wrap(services.ErrWriteFailure, "ingest", "count rows", rawPath, err))
	}
	marker := rawstore.Marker{Source: src.Name, File: fileName, Rows: rows, Hash: copied}
	if src.Kind == config.KindRemoteDataset {
		marker.Dataset = src.Dataset
	}
	if err := r.raw.WriteMarker(filepath.Dir(rawPath), marker); err != nil {
		return fail(err)
	}

	rec, err := r.ledger.Record(ctx, ledger.Record{
		RunID:       runID,
		Source:      src.Name,
		Status:      ledger.StatusCompleted,
		ContentHash: copied,
		RowCount:    rows,
		ByteSize:    size,
		RawPath:     rawPath,
		CreatedAt:   r.now(),
	})
	if err != nil {
		return fail(err)
	}
	logger.Info("source ingested",
		logging.String(logging.FieldEventType, "ingest_completed"),
		logging.Int64("rows", rows),
		logging.Int64("bytes", size),
		logging.String("raw_path", rawPath),
	)
	res.Status, res.Record = ledger.StatusCompleted, rec
	return res
}

// skip records a duplicate of already ingested content.
func (r *Runner) skip(ctx context.Context, logger *slog.Logger, res Result, runID, digest string, size int64, fail func(error) Result) Result {
	rec, err := r.ledger.Record(ctx, ledger.Record{
		RunID:       runID,
		Source:      res.Source,
		Status:      ledger.StatusSkipped,
		ContentHash: digest,
		ByteSize:    size,
		Reason:      ReasonDuplicate,
		CreatedAt:   r.now(),
	})
	if err != nil {
		return fail(err)
	}
	logger.Info("source unchanged, skipping copy",
		logging.String(logging.FieldEventType, "ingest_skipped"),
		logging.String("hash", digest),
	)
	res.Status, res.Record = ledger.StatusSkipped, rec
	return res
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return "fix the source entry in config.toml"
	case errors.Is(err, services.ErrNotFound):
		return "check that the source file or dataset exists"
	case errors.Is(err, services.ErrWriteFailure):
		return "check free space and permissions under paths.raw_dir"
	default:
		return "retry the ingestion; see the error for details"
	}
}

// Summary counts results by status.
type Summary struct {
	Completed int
	Skipped   int
	Failed    int
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, res := range results {
		switch res.Status {
		case ledger.StatusCompleted:
			s.Completed++
		case ledger.StatusSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
	}
	return s
}
