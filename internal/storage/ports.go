// Package storage defines the persistence ports for records and users and
// ships the SQLite implementation.
package storage

import (
	"context"
	"errors"
	"time"

	"moneybook/internal/core"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

// User is a registered account. The ID doubles as the record owner ID.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type (
	// RecordStore persists records. Every query is scoped by owner.
	RecordStore interface {
		CreateRecord(ctx context.Context, n core.NewRecord) (core.Record, error)
		// DeleteRecord removes the record and returns what was deleted.
		DeleteRecord(ctx context.Context, ownerID, id string) (core.Record, error)
		// ListByPeriod returns the records of one month, newest first.
		ListByPeriod(ctx context.Context, ownerID string, period core.PeriodKey) ([]core.Record, error)
		// ListByYear returns the records of the twelve months of year, newest first.
		ListByYear(ctx context.Context, ownerID string, year int) ([]core.Record, error)
	}

	// OwnerLister enumerates owners that have at least one record.
	OwnerLister interface {
		Owners(ctx context.Context) ([]string, error)
	}

	UserStore interface {
		CreateUser(ctx context.Context, email, passwordHash string) (User, error)
		UserByEmail(ctx context.Context, email string) (User, error)
	}
)

// YearBounds returns the first and last period keys of year, for range scans.
func YearBounds(year int) (core.PeriodKey, core.PeriodKey) {
	keys := core.YearKeys(year)
	return keys[0], keys[11]
}
