// Package aggregate reduces record lists into monthly totals and twelve-month
// series. Sums are exact decimals so results do not depend on record order.
package aggregate

import (
	"math"

	"github.com/shopspring/decimal"

	"moneybook/internal/core"
)

// Totals is the income/expense pair for one set of records.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	// Unrecognized counts records whose kind is neither income nor expense.
	// Their amounts are included in Expense.
	Unrecognized int
}

// Net returns income minus expense. It may be negative.
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// Total returns income plus expense.
func (t Totals) Total() decimal.Decimal {
	return t.Income.Add(t.Expense)
}

// Series holds per-month sums for one calendar year, index 0 is January.
type Series struct {
	Year           int
	IncomeByMonth  [12]decimal.Decimal
	ExpenseByMonth [12]decimal.Decimal
}

// Floats returns both series as float slices of length 12.
func (s Series) Floats() (income, expense []float64) {
	income = make([]float64, 12)
	expense = make([]float64, 12)
	for i := 0; i < 12; i++ {
		income[i] = s.IncomeByMonth[i].InexactFloat64()
		expense[i] = s.ExpenseByMonth[i].InexactFloat64()
	}
	return income, expense
}

// MonthlyTotals sums records into the income and expense buckets.
// Kinds other than income fall into expense. Non-finite amounts count as zero.
func MonthlyTotals(records []core.Record) Totals {
	t := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, r := range records {
		amount := amountOf(r.Amount)
		if !r.Kind.IsValid() {
			t.Unrecognized++
		}
		if r.Kind.Bucket() == core.KindIncome {
			t.Income = t.Income.Add(amount)
		} else {
			t.Expense = t.Expense.Add(amount)
		}
	}
	return t
}

// YearlySeries buckets records of year by month. Records whose period key is
// malformed or belongs to another year are skipped.
func YearlySeries(records []core.Record, year int) Series {
	s := Series{Year: year}
	for i := 0; i < 12; i++ {
		s.IncomeByMonth[i] = decimal.Zero
		s.ExpenseByMonth[i] = decimal.Zero
	}
	for _, r := range records {
		p, err := r.Period.Period()
		if err != nil || p.Year != year {
			continue
		}
		idx := p.Month - 1
		amount := amountOf(r.Amount)
		if r.Kind.Bucket() == core.KindIncome {
			s.IncomeByMonth[idx] = s.IncomeByMonth[idx].Add(amount)
		} else {
			s.ExpenseByMonth[idx] = s.ExpenseByMonth[idx].Add(amount)
		}
	}
	return s
}

func amountOf(a float64) decimal.Decimal {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(a)
}
