package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"moneybook/internal/core"
	"moneybook/internal/log"
)

// ErrHubClosed is passed to fail callbacks of subscriptions made after Close.
var ErrHubClosed = errors.New("feed hub closed")

const defaultQueryTimeout = 10 * time.Second

type subscription struct {
	id      uint64
	owner   string
	period  core.PeriodKey // month scope
	year    int            // year scope when period is empty
	deliver func([]core.Record)
	fail    func(error)

	// mu serialises refreshes so the last query always delivers last.
	mu     sync.Mutex
	active atomic.Bool
}

func (s *subscription) matches(c Change) bool {
	if s.owner != c.OwnerID {
		return false
	}
	if s.period != "" {
		return s.period == c.Period
	}
	p, err := c.Period.Period()
	return err == nil && p.Year == s.year
}

// Hub tracks live subscriptions and refreshes them from Source on change.
// Deliveries run on hub goroutines, never on the caller of Subscribe or
// Notify.
type Hub struct {
	source  Source
	logger  *log.Logger
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	subs   map[uint64]*subscription
	nextID uint64
	closed bool
}

func NewHub(source Source, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		source:  source,
		logger:  logger.WithComponent(log.ComponentFeed),
		timeout: defaultQueryTimeout,
		ctx:     ctx,
		cancel:  cancel,
		subs:    make(map[uint64]*subscription),
	}
}

// SubscribeMonth delivers the records of owner in period now and after every
// matching change, until the returned function is called.
func (h *Hub) SubscribeMonth(owner string, period core.PeriodKey, deliver func([]core.Record), fail func(error)) func() {
	return h.subscribe(&subscription{owner: owner, period: period, deliver: deliver, fail: fail})
}

// SubscribeYear is SubscribeMonth over the twelve months of year.
func (h *Hub) SubscribeYear(owner string, year int, deliver func([]core.Record), fail func(error)) func() {
	return h.subscribe(&subscription{owner: owner, year: year, deliver: deliver, fail: fail})
}

func (h *Hub) subscribe(sub *subscription) func() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		if sub.fail != nil {
			go sub.fail(ErrHubClosed)
		}
		return func() {}
	}
	h.nextID++
	sub.id = h.nextID
	sub.active.Store(true)
	h.subs[sub.id] = sub
	h.wg.Add(1)
	h.mu.Unlock()

	h.logger.Debug("Subscription added",
		log.FieldOwner, sub.owner,
		log.FieldPeriod, string(sub.period),
		log.FieldYear, sub.year)
	h.refresh(sub)

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			h.mu.Lock()
			delete(h.subs, sub.id)
			h.mu.Unlock()
		})
	}
}

// Notify refreshes every subscription matching c. It implements Notifier.
func (h *Hub) Notify(_ context.Context, c Change) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHubClosed
	}
	var matched []*subscription
	for _, sub := range h.subs {
		if sub.matches(c) {
			matched = append(matched, sub)
		}
	}
	h.wg.Add(len(matched))
	h.mu.Unlock()

	h.logger.Debug("Change received",
		log.FieldOwner, c.OwnerID,
		log.FieldPeriod, string(c.Period),
		log.FieldAction, string(c.Action),
		log.FieldCount, len(matched))
	for _, sub := range matched {
		h.refresh(sub)
	}
	return nil
}

// refresh queries and delivers on a new goroutine. Callers hold a wg slot.
func (h *Hub) refresh(sub *subscription) {
	go func() {
		defer h.wg.Done()
		sub.mu.Lock()
		defer sub.mu.Unlock()
		if !sub.active.Load() {
			return
		}

		ctx, cancel := context.WithTimeout(h.ctx, h.timeout)
		defer cancel()
		var (
			records []core.Record
			err     error
		)
		if sub.period != "" {
			records, err = h.source.ListByPeriod(ctx, sub.owner, sub.period)
		} else {
			records, err = h.source.ListByYear(ctx, sub.owner, sub.year)
		}

		if !sub.active.Load() {
			return
		}
		if err != nil {
			h.logger.Warn("Snapshot query failed",
				log.FieldOwner, sub.owner,
				log.FieldPeriod, string(sub.period),
				log.FieldError, err)
			if sub.fail != nil {
				sub.fail(err)
			}
			return
		}
		if sub.deliver != nil {
			sub.deliver(records)
		}
	}()
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Wait blocks until all in-flight deliveries have finished.
func (h *Hub) Wait() {
	h.wg.Wait()
}

// Close drops every subscription and waits for in-flight deliveries.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		sub.active.Store(false)
		delete(h.subs, id)
	}
	h.mu.Unlock()
	h.cancel()
	h.wg.Wait()
}
