package core

import (
	"fmt"
	"time"
)

// PeriodKey identifies a calendar month bucket as "YYYY-MM".
type PeriodKey string

// Period is a selected year and month (1-12).
type Period struct {
	Year  int
	Month int
}

// NewPeriod builds a validated period.
func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// CurrentPeriod returns the period containing t.
func CurrentPeriod(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

func (p Period) Validate() error {
	if p.Year < 1 || p.Year > 9999 {
		return ErrInvalidPeriod
	}
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidPeriod
	}
	return nil
}

// Key formats p as a zero padded period key.
func (p Period) Key() PeriodKey {
	return PeriodKey(fmt.Sprintf("%04d-%02d", p.Year, p.Month))
}

func (p Period) String() string {
	return string(p.Key())
}

// ParsePeriodKey parses "YYYY-MM". Anything else, including months outside
// 01-12, is rejected with ErrInvalidPeriod.
func ParsePeriodKey(s string) (Period, error) {
	if len(s) != 7 || s[4] != '-' {
		return Period{}, ErrInvalidPeriod
	}
	year, ok := digits(s[:4])
	if !ok {
		return Period{}, ErrInvalidPeriod
	}
	month, ok := digits(s[5:])
	if !ok {
		return Period{}, ErrInvalidPeriod
	}
	return NewPeriod(year, month)
}

// Validate checks the key is well formed.
func (k PeriodKey) Validate() error {
	_, err := ParsePeriodKey(string(k))
	return err
}

// Period parses the key.
func (k PeriodKey) Period() (Period, error) {
	return ParsePeriodKey(string(k))
}

// YearKeys lists the twelve period keys of year in calendar order.
func YearKeys(year int) []PeriodKey {
	keys := make([]PeriodKey, 12)
	for i := range keys {
		keys[i] = Period{Year: year, Month: i + 1}.Key()
	}
	return keys
}

func digits(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// NewPeriodKey formats a validated key for year and month.
func NewPeriodKey(year, month int) (PeriodKey, error) {
	p, err := NewPeriod(year, month)
	if err != nil {
		return "", err
	}
	return p.Key(), nil
}
