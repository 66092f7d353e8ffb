package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/era5land-etl/internal/domain"
	"github.com/couchcryptid/era5land-etl/internal/observability"
)

// TileReader loads selected bands of one hemispheric tile.
type TileReader interface {
	ReadBands(ctx context.Context, path string, indices []int) (domain.Tile, error)
}

// DatasetWriter persists a finalized dataset at path.
type DatasetWriter interface {
	Write(ctx context.Context, ds *domain.Dataset, path string) error
}

// ArtifactNotifier announces written artifacts. Optional.
type ArtifactNotifier interface {
	Notify(ctx context.Context, event domain.ArtifactEvent) error
}

// Options are the resolved run settings. The pipeline never reads the environment.
type Options struct {
	Layout        domain.Layout
	Categories    []domain.Category // catalog order
	ApplyEvapSwap bool
	Grid          domain.Grid // zero value means domain.CanonicalGrid
	Metadata      domain.Metadata
	Clock         clockwork.Clock // nil means real time
}

// RunRequest is an inclusive date range.
type RunRequest struct {
	Start time.Time
	End   time.Time
}

// Summary tallies one run.
type Summary = domain.RunSummary

// Pipeline converts daily tile pairs into per-category artifacts.
type Pipeline struct {
	reader   TileReader
	writer   DatasetWriter
	notifier ArtifactNotifier
	opts     Options
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock

	runMu sync.Mutex // one run at a time
	ready atomic.Bool

	lastMu sync.RWMutex
	last   *Summary
}

// New creates a Pipeline. notifier may be nil.
func New(r TileReader, w DatasetWriter, n ArtifactNotifier, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.Grid == (domain.Grid{}) {
		opts.Grid = domain.CanonicalGrid
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		reader:   r,
		writer:   w,
		notifier: n,
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
	}
}

// CheckReadiness returns nil once a run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no conversion run has completed yet")
	}
	return nil
}

// LastRun returns the summary of the most recent completed run.
func (p *Pipeline) LastRun() (Summary, bool) {
	p.lastMu.RLock()
	defer p.lastMu.RUnlock()
	if p.last == nil {
		return Summary{}, false
	}
	return *p.last, true
}

// Run converts every date in req, strictly in order. Cancellation is observed
// between dates only: a date in progress always completes. A failed date is
// counted and logged and the run moves on. The returned error is non-nil only
// for an invalid request or cancellation.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) (Summary, error) {
	start, end := day(req.Start), day(req.End)
	if end.Before(start) {
		return Summary{}, fmt.Errorf("end %s is before start %s", end.Format(domain.DateLayout), start.Format(domain.DateLayout))
	}

	p.runMu.Lock()
	defer p.runMu.Unlock()

	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	began := p.clock.Now()

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	logger.Info("run started",
		"start", start.Format(domain.DateLayout),
		"end", end.Format(domain.DateLayout),
		"categories", fmt.Sprint(p.opts.Categories),
		"evap_swap", p.opts.ApplyEvapSwap,
	)

	sum := Summary{RunID: runID, Start: start.Format(domain.DateLayout), End: end.Format(domain.DateLayout)}
	var runErr error
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			logger.Info("run interrupted", "next_date", date.Format(domain.DateLayout), "reason", err)
			runErr = err
			break
		}

		res := p.processDate(context.WithoutCancel(ctx), logger, runID, date)
		sum.Processed++
		sum.Artifacts += res.artifacts
		switch res.outcome {
		case outcomeSkipped:
			sum.Skipped++
		case outcomeFailed:
			sum.Failed++
			sum.FailedDays = append(sum.FailedDays, date.Format(domain.DateLayout))
		}
	}

	finished := p.clock.Now()
	sum.Elapsed = finished.Sub(began)
	sum.FinishedAt = finished.UTC()
	p.metrics.LastRunTimestamp.Set(float64(finished.Unix()))

	p.lastMu.Lock()
	p.last = &sum
	p.lastMu.Unlock()
	p.ready.Store(true)

	logger.Info("run complete",
		"processed", sum.Processed,
		"written", sum.Written(),
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"artifacts", sum.Artifacts,
		"duration", sum.Elapsed,
	)
	return sum, runErr
}

type outcome string

const (
	outcomeSkipped outcome = "skipped"
	outcomeWritten outcome = "written"
	outcomeFailed  outcome = "failed"
)

type dateResult struct {
	outcome   outcome
	artifacts int
}

// processDate resolves one date to skipped, written or failed.
func (p *Pipeline) processDate(ctx context.Context, logger *slog.Logger, runID string, date time.Time) dateResult {
	logger = logger.With("date", date.Format(domain.DateLayout))

	needed, err := p.neededCategories(date)
	if err != nil {
		return p.fail(logger, date, err, 0)
	}
	if len(needed) == 0 {
		logger.Debug("all artifacts present, skipping")
		p.metrics.Dates.WithLabelValues(string(outcomeSkipped)).Inc()
		return dateResult{outcome: outcomeSkipped}
	}

	written, err := p.convert(ctx, logger, runID, date, needed)
	if err != nil {
		return p.fail(logger, date, err, written)
	}
	p.metrics.Dates.WithLabelValues(string(outcomeWritten)).Inc()
	return dateResult{outcome: outcomeWritten, artifacts: written}
}

func (p *Pipeline) fail(logger *slog.Logger, date time.Time, err error, written int) dateResult {
	kind := domain.ErrorKind(err)
	logger.Error("date failed", "error", err, "kind", kind, "artifacts_written", written)
	p.removeEmptyArtifacts(logger, date)
	p.metrics.Failures.WithLabelValues(kind).Inc()
	p.metrics.Dates.WithLabelValues(string(outcomeFailed)).Inc()
	return dateResult{outcome: outcomeFailed, artifacts: written}
}

// neededCategories returns the enabled categories whose artifact is absent.
func (p *Pipeline) neededCategories(date time.Time) ([]domain.Category, error) {
	var needed []domain.Category
	for _, c := range p.opts.Categories {
		present, err := artifactPresent(p.opts.Layout.ArtifactPath(c, date))
		if err != nil {
			return nil, err
		}
		if !present {
			needed = append(needed, c)
		}
	}
	return needed, nil
}

// convert reads and merges the tile pair once, then builds, finalizes and
// writes each needed category in catalog order.
func (p *Pipeline) convert(ctx context.Context, logger *slog.Logger, runID string, date time.Time, needed []domain.Category) (int, error) {
	indices := domain.BandsForCategories(needed)
	tiles, err := p.opts.Layout.DiscoverTiles(date)
	if err != nil {
		return 0, err
	}
	logger.Debug("reading tiles", "west", tiles[0], "east", tiles[1], "bands", len(indices))

	readStart := p.clock.Now()
	var west, east domain.Tile
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	g.Go(func() error {
		var err error
		west, err = p.reader.ReadBands(gctx, tiles[0], indices)
		return err
	})
	g.Go(func() error {
		var err error
		east, err = p.reader.ReadBands(gctx, tiles[1], indices)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	p.metrics.BandsRead.Observe(float64(len(indices)))

	merged, err := domain.MergeAndCorrect(west, east, domain.EvaporationIndices())
	if err != nil {
		return 0, err
	}
	if merged.Height != p.opts.Grid.Rows || merged.Width != p.opts.Grid.Cols {
		return 0, &domain.ShapeMismatchError{
			What: "merged tiles",
			Want: fmt.Sprintf("%d×%d", p.opts.Grid.Rows, p.opts.Grid.Cols),
			Got:  fmt.Sprintf("%d×%d", merged.Height, merged.Width),
		}
	}
	p.metrics.TileReadDuration.Observe(p.clock.Since(readStart).Seconds())

	meta := p.opts.Metadata
	meta.RunID = runID

	written := 0
	for _, c := range needed {
		path := p.opts.Layout.ArtifactPath(c, date)
		catStart := p.clock.Now()

		ds, err := domain.Build(c, date, c.Bands(), merged, p.opts.Grid)
		if err != nil {
			return written, err
		}
		domain.Finalize(ds, meta)
		if c == domain.Evaporation && p.opts.ApplyEvapSwap {
			if err := domain.SwapEvaporation(ds); err != nil {
				return written, err
			}
		}
		if err := p.writer.Write(ctx, ds, path); err != nil {
			return written, err
		}
		written++

		elapsed := p.clock.Since(catStart)
		p.metrics.ArtifactsWritten.WithLabelValues(c.String()).Inc()
		p.metrics.CategoryWriteDuration.WithLabelValues(c.String()).Observe(elapsed.Seconds())
		logger.Info("artifact written", "category", c.String(), "path", path, "duration", elapsed)

		p.notify(ctx, logger, runID, ds, path)
	}
	return written, nil
}

func (p *Pipeline) notify(ctx context.Context, logger *slog.Logger, runID string, ds *domain.Dataset, path string) {
	if p.notifier == nil {
		return
	}
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	if err := p.notifier.Notify(ctx, domain.NewArtifactEvent(runID, ds, path, size)); err != nil {
		logger.Warn("artifact notification failed", "error", err, "path", path)
		p.metrics.Notifications.WithLabelValues("error").Inc()
		return
	}
	p.metrics.Notifications.WithLabelValues("sent").Inc()
}

// removeEmptyArtifacts deletes zero-byte files among the date's five
// candidate artifact paths. Non-empty files are never touched.
func (p *Pipeline) removeEmptyArtifacts(logger *slog.Logger, date time.Time) {
	for _, c := range domain.AllCategories() {
		path := p.opts.Layout.ArtifactPath(c, date)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() || info.Size() != 0 {
			continue
		}
		if err := os.Remove(path); err != nil {
			logger.Warn("remove empty artifact failed", "path", path, "error", err)
			continue
		}
		logger.Info("removed empty artifact", "path", path)
	}
}

// artifactPresent reports whether path is a regular file with content.
func artifactPresent(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &domain.IOError{Op: "stat", Path: path, Err: err}
	}
	return info.Mode().IsRegular() && info.Size() > 0, nil
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
