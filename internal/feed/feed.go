// Package feed delivers full record snapshots to live subscribers whenever a
// record of their owner and scope changes.
package feed

import (
	"context"
	"errors"
	"fmt"

	"moneybook/internal/core"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionDeleted Action = "deleted"
)

// Change identifies a write to one owner's period.
type Change struct {
	OwnerID  string
	Period   core.PeriodKey
	RecordID string
	Action   Action
}

func (c Change) Validate() error {
	if c.OwnerID == "" {
		return errors.New("owner_id is required")
	}
	if err := c.Period.Validate(); err != nil {
		return fmt.Errorf("period %q: %w", c.Period, err)
	}
	if c.Action != ActionCreated && c.Action != ActionDeleted {
		return fmt.Errorf("unknown action %q", c.Action)
	}
	return nil
}

// Notifier is told about every committed write.
type Notifier interface {
	Notify(ctx context.Context, c Change) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, c Change) error

func (f NotifierFunc) Notify(ctx context.Context, c Change) error { return f(ctx, c) }

// Multi notifies each notifier in order and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, c Change) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Source answers the snapshot queries of the hub.
type Source interface {
	ListByPeriod(ctx context.Context, ownerID string, period core.PeriodKey) ([]core.Record, error)
	ListByYear(ctx context.Context, ownerID string, year int) ([]core.Record, error)
}
