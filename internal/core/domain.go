package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// MaxNoteLength bounds the free-text note attached to a record.
const MaxNoteLength = 200

type (
	// Kind tags a record as money coming in or going out.
	Kind string

	// Record is a single dated income or expense entry owned by one user.
	Record struct {
		ID        string // Assigned by the store
		OwnerID   string
		Kind      Kind
		Amount    float64
		Note      string
		Period    PeriodKey
		CreatedAt time.Time // Assigned by the store at write time, zero when unknown
	}

	// NewRecord carries the fields a user supplies when adding a record.
	NewRecord struct {
		OwnerID string
		Kind    Kind
		Amount  float64
		Note    string
		Period  PeriodKey
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidKind   = errors.New("invalid kind")
	ErrInvalidPeriod = errors.New("invalid period")
	ErrEmptyOwner    = errors.New("empty owner")
	ErrNoteTooLong   = errors.New("note too long (max 200 characters)")
)

// IsValid reports whether k is one of the two known tags.
func (k Kind) IsValid() bool {
	return k == KindIncome || k == KindExpense
}

// Bucket returns the aggregation bucket for k. Anything that is not the
// income tag lands in the expense bucket.
func (k Kind) Bucket() Kind {
	if k == KindIncome {
		return KindIncome
	}
	return KindExpense
}

// ValidateAmount rejects non-finite, zero and negative amounts.
func ValidateAmount(a float64) error {
	if math.IsNaN(a) || math.IsInf(a, 0) || a <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (n NewRecord) Validate() error {
	if strings.TrimSpace(n.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if !n.Kind.IsValid() {
		return ErrInvalidKind
	}
	if err := ValidateAmount(n.Amount); err != nil {
		return err
	}
	if err := n.Period.Validate(); err != nil {
		return err
	}
	if len([]rune(n.Note)) > MaxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

// Record materialises n with the identity and timestamp chosen by a store.
func (n NewRecord) Record(id string, createdAt time.Time) Record {
	return Record{
		ID:        id,
		OwnerID:   n.OwnerID,
		Kind:      n.Kind,
		Amount:    n.Amount,
		Note:      n.Note,
		Period:    n.Period,
		CreatedAt: createdAt,
	}
}
