package worker

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"moneybook/internal/core"
	"moneybook/internal/export/sheets"
	"moneybook/internal/feed"
	"moneybook/internal/log"
)

// Source is the read side the worker exports from.
type Source interface {
	ListByPeriod(ctx context.Context, ownerID string, period core.PeriodKey) ([]core.Record, error)
	Owners(ctx context.Context) ([]string, error)
}

type scope struct {
	owner  string
	period core.PeriodKey
}

// ExportWorker mirrors changed periods into the exporter. Failed exports are
// kept in a pending set and retried on every tick, so a change message is
// always acknowledged.
type ExportWorker struct {
	source   Source
	exporter sheets.Exporter
	logger   *log.Logger
	now      func() time.Time
	loc      *time.Location

	mu      sync.Mutex
	pending map[scope]struct{}
}

type Options struct {
	Logger   *log.Logger
	Location *time.Location
	Now      func() time.Time
}

func NewExportWorker(source Source, exporter sheets.Exporter, opts Options) *ExportWorker {
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ExportWorker{
		source:   source,
		exporter: exporter,
		logger:   opts.Logger.WithComponent(log.ComponentWorker),
		now:      opts.Now,
		loc:      opts.Location,
		pending:  make(map[scope]struct{}),
	}
}

// HandleChange exports the period named by c. Only malformed changes are
// reported as errors; export failures go to the pending set.
func (w *ExportWorker) HandleChange(ctx context.Context, c feed.Change) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid change: %w", err)
	}
	w.logger.InfoContext(ctx, "Processing record change",
		log.FieldOwner, c.OwnerID,
		log.FieldPeriod, string(c.Period),
		log.FieldRecordID, c.RecordID,
		log.FieldAction, string(c.Action))

	if err := w.exportScope(ctx, scope{owner: c.OwnerID, period: c.Period}); err != nil {
		w.logger.ErrorContext(ctx, "Export failed, will retry",
			log.FieldOwner, c.OwnerID,
			log.FieldPeriod, string(c.Period),
			log.FieldError, err)
	}
	return nil
}

// RetryPending re-exports every pending scope.
func (w *ExportWorker) RetryPending(ctx context.Context) error {
	w.mu.Lock()
	scopes := slices.Collect(maps.Keys(w.pending))
	w.mu.Unlock()

	if len(scopes) == 0 {
		return nil
	}
	w.logger.InfoContext(ctx, "Retrying pending exports", log.FieldCount, len(scopes))

	var errs []error
	for _, s := range scopes {
		if err := w.exportScope(ctx, s); err != nil {
			errs = append(errs, fmt.Errorf("export %s/%s: %w", s.owner, s.period, err))
		}
	}
	return errors.Join(errs...)
}

// ExportCurrent exports the current period of every owner with records.
func (w *ExportWorker) ExportCurrent(ctx context.Context) error {
	owners, err := w.source.Owners(ctx)
	if err != nil {
		return fmt.Errorf("list owners: %w", err)
	}
	period := core.CurrentPeriod(w.now().In(w.loc)).Key()

	var errs []error
	exported := 0
	for _, owner := range owners {
		if err := w.exportScope(ctx, scope{owner: owner, period: period}); err != nil {
			errs = append(errs, fmt.Errorf("export %s/%s: %w", owner, period, err))
			continue
		}
		exported++
	}
	w.logger.InfoContext(ctx, "Periodic export completed",
		log.FieldPeriod, string(period),
		log.FieldCount, exported,
		"errors", len(errs))
	return errors.Join(errs...)
}

// Run exports the current period at startup and then on every interval,
// retrying pending scopes first, until ctx is done.
func (w *ExportWorker) Run(ctx context.Context, interval time.Duration) error {
	if err := w.ExportCurrent(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup export failed", log.FieldError, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.RetryPending(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Pending export retry failed", log.FieldError, err)
			}
			if err := w.ExportCurrent(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic export failed", log.FieldError, err)
			}
		}
	}
}

// Pending returns the number of scopes waiting for a retry.
func (w *ExportWorker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *ExportWorker) exportScope(ctx context.Context, s scope) error {
	records, err := w.source.ListByPeriod(ctx, s.owner, s.period)
	if err == nil {
		err = w.exporter.ExportPeriod(ctx, s.owner, s.period, records)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.pending[s] = struct{}{}
		return err
	}
	delete(w.pending, s)
	return nil
}
