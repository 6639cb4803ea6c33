package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"moneybook/internal/core"
	"moneybook/internal/storage/memory"
)

type collector struct {
	mu    sync.Mutex
	snaps [][]core.Record
	errs  []error
	ch    chan struct{}
}

func newCollector() *collector {
	return &collector{ch: make(chan struct{}, 64)}
}

func (c *collector) deliver(records []core.Record) {
	c.mu.Lock()
	c.snaps = append(c.snaps, records)
	c.mu.Unlock()
	c.ch <- struct{}{}
}

func (c *collector) fail(err error) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
	c.ch <- struct{}{}
}

func (c *collector) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func (c *collector) last() []core.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snaps[len(c.snaps)-1]
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.snaps) + len(c.errs)
}

func TestHubInitialSnapshotAndChange(t *testing.T) {
	store := memory.New()
	hub := NewHub(store, nil)
	defer hub.Close()
	ctx := context.Background()

	month, year := newCollector(), newCollector()
	unsubMonth := hub.SubscribeMonth("u1", "2024-05", month.deliver, month.fail)
	defer unsubMonth()
	unsubYear := hub.SubscribeYear("u1", 2024, year.deliver, year.fail)
	defer unsubYear()

	month.wait(t)
	year.wait(t)
	if len(month.last()) != 0 {
		t.Fatalf("expected empty initial snapshot")
	}

	rec, _ := store.CreateRecord(ctx, core.NewRecord{OwnerID: "u1", Kind: core.KindIncome, Amount: 5, Period: "2024-05"})
	hub.Notify(ctx, Change{OwnerID: "u1", Period: "2024-05", RecordID: rec.ID, Action: ActionCreated})

	month.wait(t)
	year.wait(t)
	if got := month.last(); len(got) != 1 || got[0].ID != rec.ID {
		t.Fatalf("month snapshot = %+v", got)
	}
	if got := year.last(); len(got) != 1 {
		t.Fatalf("year snapshot = %+v", got)
	}
}

func TestHubIgnoresOtherScopes(t *testing.T) {
	store := memory.New()
	hub := NewHub(store, nil)
	defer hub.Close()
	ctx := context.Background()

	c := newCollector()
	unsub := hub.SubscribeMonth("u1", "2024-05", c.deliver, c.fail)
	defer unsub()
	c.wait(t)

	hub.Notify(ctx, Change{OwnerID: "u2", Period: "2024-05", Action: ActionCreated})
	hub.Notify(ctx, Change{OwnerID: "u1", Period: "2024-06", Action: ActionCreated})
	hub.Wait()
	if c.count() != 1 {
		t.Fatalf("unexpected deliveries: %d", c.count())
	}
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	store := memory.New()
	hub := NewHub(store, nil)
	defer hub.Close()

	c := newCollector()
	unsub := hub.SubscribeMonth("u1", "2024-05", c.deliver, c.fail)
	c.wait(t)
	unsub()
	unsub()
	if hub.Len() != 0 {
		t.Fatalf("expected no subscriptions, got %d", hub.Len())
	}
	hub.Notify(context.Background(), Change{OwnerID: "u1", Period: "2024-05", Action: ActionCreated})
	hub.Wait()
	if c.count() != 1 {
		t.Fatalf("delivery after unsubscribe: %d", c.count())
	}
}

type failingSource struct{}

func (failingSource) ListByPeriod(context.Context, string, core.PeriodKey) ([]core.Record, error) {
	return nil, errors.New("permission denied")
}

func (failingSource) ListByYear(context.Context, string, int) ([]core.Record, error) {
	return nil, errors.New("permission denied")
}

func TestHubReportsQueryFailure(t *testing.T) {
	hub := NewHub(failingSource{}, nil)
	defer hub.Close()

	c := newCollector()
	unsub := hub.SubscribeMonth("u1", "2024-05", c.deliver, c.fail)
	defer unsub()
	c.wait(t)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errs) != 1 || c.errs[0].Error() != "permission denied" {
		t.Fatalf("errs = %v", c.errs)
	}
}

func TestHubClosed(t *testing.T) {
	hub := NewHub(memory.New(), nil)
	hub.Close()
	hub.Close()

	c := newCollector()
	hub.SubscribeMonth("u1", "2024-05", c.deliver, c.fail)
	c.wait(t)
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errs) != 1 || !errors.Is(c.errs[0], ErrHubClosed) {
		t.Fatalf("errs = %v", c.errs)
	}
	if err := hub.Notify(context.Background(), Change{OwnerID: "u1", Period: "2024-05"}); !errors.Is(err, ErrHubClosed) {
		t.Fatalf("Notify after close = %v", err)
	}
}

func TestChangeValidate(t *testing.T) {
	good := Change{OwnerID: "u1", Period: "2024-05", RecordID: "r", Action: ActionDeleted}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := []Change{
		{Period: "2024-05", Action: ActionCreated},
		{OwnerID: "u1", Period: "2024-5", Action: ActionCreated},
		{OwnerID: "u1", Period: "2024-05", Action: "updated"},
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMultiNotifier(t *testing.T) {
	var calls int
	ok := NotifierFunc(func(context.Context, Change) error { calls++; return nil })
	bad := NotifierFunc(func(context.Context, Change) error { calls++; return errors.New("down") })
	err := Multi{ok, nil, bad}.Notify(context.Background(), Change{})
	if calls != 2 || err == nil || err.Error() != "down" {
		t.Fatalf("calls=%d err=%v", calls, err)
	}
}
