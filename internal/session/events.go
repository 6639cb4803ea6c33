package session

import (
	"moneybook/internal/chart"
	"moneybook/internal/core"
)

// Event is anything the dispatcher reacts to.
type Event interface {
	event()
}

type (
	// RecordsUpdated carries a full snapshot of the selected month.
	RecordsUpdated struct {
		Generation uint64
		Records    []core.Record
	}

	// YearRecordsUpdated carries a full snapshot of the selected year.
	YearRecordsUpdated struct {
		Generation uint64
		Records    []core.Record
	}

	// StreamFailed reports a subscription error.
	StreamFailed struct {
		Generation uint64
		Err        error
	}

	PeriodChanged struct {
		Period core.Period
	}

	// OwnerChanged signs a user in, or out when Owner is empty.
	OwnerChanged struct {
		Owner string
	}

	CreateRequested struct {
		Kind       core.Kind
		AmountText string
		Note       string
	}

	DeleteRequested struct {
		ID string
	}

	ThemeChanged struct {
		Theme chart.Theme
	}
)

func (RecordsUpdated) event()     {}
func (YearRecordsUpdated) event() {}
func (StreamFailed) event()       {}
func (PeriodChanged) event()      {}
func (OwnerChanged) event()       {}
func (CreateRequested) event()    {}
func (DeleteRequested) event()    {}
func (ThemeChanged) event()       {}
