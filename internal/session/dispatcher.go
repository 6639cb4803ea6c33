// Package session holds one signed-in view of the ledger: the selected owner
// and period, the live subscriptions feeding it and the rendered output.
// All state changes go through Dispatch, one event at a time.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"moneybook/internal/aggregate"
	"moneybook/internal/chart"
	"moneybook/internal/core"
	"moneybook/internal/log"
	"moneybook/internal/view"
)

// Context is the explicit session context.
type Context struct {
	Owner  string
	Period core.Period
}

// Subscriber opens live record streams. Callbacks must not run on the
// calling goroutine of SubscribeMonth or SubscribeYear.
type Subscriber interface {
	SubscribeMonth(owner string, period core.PeriodKey, deliver func([]core.Record), fail func(error)) (unsubscribe func())
	SubscribeYear(owner string, year int, deliver func([]core.Record), fail func(error)) (unsubscribe func())
}

// RecordWriter performs record writes on behalf of the session.
type RecordWriter interface {
	Create(ctx context.Context, n core.NewRecord) (core.Record, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// State is a copy of what the session currently shows.
type State struct {
	Context
	Rows       []view.Row
	Summary    view.Summary
	Message    Message
	Loaded     bool
	Theme      chart.Theme
	Generation uint64
}

// Outcome tells the caller what to do with its input controls.
type Outcome struct {
	ClearInput bool
}

type Options struct {
	Renderer *view.Renderer
	Charts   *chart.Adapter
	Messages *Messages
	Logger   *log.Logger
	Now      func() time.Time
}

type Dispatcher struct {
	subscriber Subscriber
	writer     RecordWriter
	renderer   *view.Renderer
	charts     *chart.Adapter
	messages   Messages
	logger     *log.Logger
	now        func() time.Time

	mu         sync.Mutex
	ctx        Context
	generation uint64
	unsubMonth func()
	unsubYear  func()
	state      State
	closed     bool
}

func New(subscriber Subscriber, writer RecordWriter, opts Options) *Dispatcher {
	d := &Dispatcher{
		subscriber: subscriber,
		writer:     writer,
		renderer:   opts.Renderer,
		charts:     opts.Charts,
		messages:   DefaultMessages,
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if d.renderer == nil {
		d.renderer = view.NewRenderer(time.UTC)
	}
	if d.charts == nil {
		d.charts = chart.NewAdapter(nil, nil, chart.ThemeDark)
	}
	if opts.Messages != nil {
		d.messages = *opts.Messages
	}
	if d.logger == nil {
		d.logger = log.Nop()
	}
	d.logger = d.logger.WithComponent(log.ComponentSession)
	if d.now == nil {
		d.now = time.Now
	}
	d.ctx.Period = core.CurrentPeriod(d.now())
	d.resetView()
	return d
}

// Dispatch applies ev and returns what the caller should do with its inputs.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) Outcome {
	switch e := ev.(type) {
	case RecordsUpdated:
		d.onRecords(e)
	case YearRecordsUpdated:
		d.onYearRecords(e)
	case StreamFailed:
		d.onStreamFailed(e)
	case PeriodChanged:
		d.onPeriodChanged(e)
	case OwnerChanged:
		d.onOwnerChanged(e)
	case CreateRequested:
		return d.onCreate(ctx, e)
	case DeleteRequested:
		d.onDelete(ctx, e)
	case ThemeChanged:
		d.onTheme(e)
	}
	return Outcome{}
}

func (d *Dispatcher) onRecords(e RecordsUpdated) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.current(e.Generation) {
		return
	}
	totals := aggregate.MonthlyTotals(e.Records)
	if totals.Unrecognized > 0 {
		d.logger.Warn("Records with unknown kind counted as expense",
			log.FieldOwner, d.ctx.Owner,
			log.FieldPeriod, d.ctx.Period.String(),
			log.FieldCount, totals.Unrecognized)
	}
	d.state.Rows = d.renderer.BuildRows(e.Records)
	d.state.Summary = d.renderer.BuildSummary(totals)
	d.state.Message = d.messages.updated(len(e.Records))
	d.state.Loaded = true
	d.charts.RenderMonthly(totals)
}

func (d *Dispatcher) onYearRecords(e YearRecordsUpdated) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.current(e.Generation) {
		return
	}
	d.charts.RenderYearly(aggregate.YearlySeries(e.Records, d.ctx.Period.Year))
}

func (d *Dispatcher) onStreamFailed(e StreamFailed) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.current(e.Generation) || e.Err == nil {
		return
	}
	d.logger.Warn("Record stream failed",
		log.FieldOwner, d.ctx.Owner,
		log.FieldPeriod, d.ctx.Period.String(),
		log.FieldError, e.Err)
	d.state.Message = d.messages.failure(d.messages.StreamFailed, e.Err, LevelWarn)
}

func (d *Dispatcher) onPeriodChanged(e PeriodChanged) {
	if err := e.Period.Validate(); err != nil {
		d.mu.Lock()
		d.state.Message = Message{Text: err.Error(), Level: LevelError}
		d.mu.Unlock()
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.ctx.Period = e.Period
	d.state.Context = d.ctx
	if d.ctx.Owner == "" {
		return
	}
	d.resubscribe()
}

func (d *Dispatcher) onOwnerChanged(e OwnerChanged) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	owner := strings.TrimSpace(e.Owner)
	if owner == "" {
		d.unsubscribe()
		d.generation++
		d.ctx.Owner = ""
		d.resetView()
		d.charts.Reset()
		return
	}
	d.ctx.Owner = owner
	d.ctx.Period = core.CurrentPeriod(d.now())
	d.resubscribe()
}

func (d *Dispatcher) onCreate(ctx context.Context, e CreateRequested) Outcome {
	d.mu.Lock()
	owner, period := d.ctx.Owner, d.ctx.Period
	if owner == "" {
		d.state.Message = Message{Text: d.messages.SignedOut, Level: LevelError}
		d.mu.Unlock()
		return Outcome{}
	}
	amount, err := core.ParseAmount(e.AmountText)
	if err != nil {
		d.state.Message = Message{Text: d.messages.InvalidAmount, Level: LevelError}
		d.mu.Unlock()
		return Outcome{}
	}
	n := core.NewRecord{
		OwnerID: owner,
		Kind:    e.Kind,
		Amount:  amount,
		Note:    strings.TrimSpace(e.Note),
		Period:  period.Key(),
	}
	if err := n.Validate(); err != nil {
		d.state.Message = d.messages.failure(d.messages.SaveFailed, err, LevelError)
		d.mu.Unlock()
		return Outcome{}
	}
	d.mu.Unlock()

	_, err = d.writer.Create(ctx, n)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.state.Message = d.messages.failure(d.messages.SaveFailed, err, LevelError)
		return Outcome{}
	}
	d.state.Message = Message{Text: d.messages.Saved, Level: LevelOK}
	return Outcome{ClearInput: true}
}

func (d *Dispatcher) onDelete(ctx context.Context, e DeleteRequested) {
	d.mu.Lock()
	owner := d.ctx.Owner
	if owner == "" {
		d.state.Message = Message{Text: d.messages.SignedOut, Level: LevelError}
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	err := d.writer.Delete(ctx, owner, e.ID)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.state.Message = d.messages.failure(d.messages.DeleteFailed, err, LevelError)
		return
	}
	d.state.Message = Message{Text: d.messages.Deleted, Level: LevelOK}
}

func (d *Dispatcher) onTheme(e ThemeChanged) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Theme = e.Theme
	d.charts.ApplyTheme(e.Theme)
}

// resubscribe drops both subscriptions and opens new ones for the current
// context under a fresh generation. Caller holds d.mu.
func (d *Dispatcher) resubscribe() {
	d.unsubscribe()
	d.generation++
	gen := d.generation
	owner, period := d.ctx.Owner, d.ctx.Period

	d.state.Context = d.ctx
	d.state.Generation = gen
	d.state.Message = d.messages.loading(period.String())

	d.logger.Debug("Resubscribing",
		log.FieldOwner, owner,
		log.FieldPeriod, period.String(),
		log.FieldGeneration, gen)

	if d.subscriber == nil {
		return
	}
	fail := func(err error) {
		d.Dispatch(context.Background(), StreamFailed{Generation: gen, Err: err})
	}
	d.unsubMonth = d.subscriber.SubscribeMonth(owner, period.Key(),
		func(records []core.Record) {
			d.Dispatch(context.Background(), RecordsUpdated{Generation: gen, Records: records})
		}, fail)
	d.unsubYear = d.subscriber.SubscribeYear(owner, period.Year,
		func(records []core.Record) {
			d.Dispatch(context.Background(), YearRecordsUpdated{Generation: gen, Records: records})
		}, fail)
}

// Caller holds d.mu.
func (d *Dispatcher) unsubscribe() {
	if d.unsubMonth != nil {
		d.unsubMonth()
		d.unsubMonth = nil
	}
	if d.unsubYear != nil {
		d.unsubYear()
		d.unsubYear = nil
	}
}

// Caller holds d.mu.
func (d *Dispatcher) current(gen uint64) bool {
	return !d.closed && d.ctx.Owner != "" && gen == d.generation
}

// Caller holds d.mu.
func (d *Dispatcher) resetView() {
	d.state = State{
		Context:    d.ctx,
		Rows:       []view.Row{d.renderer.Placeholder()},
		Summary:    d.renderer.EmptySummary(),
		Theme:      d.charts.Theme(),
		Generation: d.generation,
	}
}

// Context returns the current session context.
func (d *Dispatcher) Context() Context {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ctx
}

// Snapshot returns a copy of the rendered state.
func (d *Dispatcher) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.state
	s.Rows = append([]view.Row(nil), d.state.Rows...)
	return s
}

// Close drops subscriptions and charts. Later events are ignored.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.unsubscribe()
	d.charts.Reset()
}
