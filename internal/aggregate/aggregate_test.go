package aggregate

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"moneybook/internal/core"
)

func rec(kind core.Kind, amount float64, period core.PeriodKey) core.Record {
	return core.Record{OwnerID: "u1", Kind: kind, Amount: amount, Period: period}
}

func TestMonthlyTotalsConservation(t *testing.T) {
	records := []core.Record{
		rec(core.KindIncome, 100, "2024-05"),
		rec(core.KindExpense, 40, "2024-05"),
		rec(core.KindExpense, 0.1, "2024-05"),
		rec(core.KindIncome, 0.2, "2024-05"),
		rec("transfer", 5, "2024-05"),
	}
	got := MonthlyTotals(records)

	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(decimal.NewFromFloat(r.Amount))
	}
	if !got.Total().Equal(sum) {
		t.Fatalf("income+expense = %s, want %s", got.Total(), sum)
	}
	if !got.Income.Equal(decimal.RequireFromString("100.2")) {
		t.Fatalf("income = %s", got.Income)
	}
	if !got.Expense.Equal(decimal.RequireFromString("45.1")) {
		t.Fatalf("expense = %s", got.Expense)
	}
	if got.Unrecognized != 1 {
		t.Fatalf("unrecognized = %d", got.Unrecognized)
	}
}

func TestMonthlyTotalsOrderIndependent(t *testing.T) {
	a := []core.Record{
		rec(core.KindExpense, 0.1, "2024-05"),
		rec(core.KindExpense, 0.2, "2024-05"),
		rec(core.KindExpense, 0.3, "2024-05"),
	}
	b := []core.Record{a[2], a[0], a[1]}
	if !MonthlyTotals(a).Expense.Equal(MonthlyTotals(b).Expense) {
		t.Fatalf("sums differ by order")
	}
}

func TestMonthlyTotalsEmpty(t *testing.T) {
	for _, in := range [][]core.Record{nil, {}} {
		got := MonthlyTotals(in)
		if !got.Income.IsZero() || !got.Expense.IsZero() || got.Unrecognized != 0 {
			t.Fatalf("expected zero totals, got %+v", got)
		}
	}
}

func TestMonthlyTotalsNonFinite(t *testing.T) {
	got := MonthlyTotals([]core.Record{
		rec(core.KindIncome, math.NaN(), "2024-05"),
		rec(core.KindExpense, math.Inf(1), "2024-05"),
		rec(core.KindIncome, 7, "2024-05"),
	})
	if !got.Income.Equal(decimal.NewFromInt(7)) || !got.Expense.IsZero() {
		t.Fatalf("unexpected totals %+v", got)
	}
}

func TestMonthlyTotalsNet(t *testing.T) {
	got := MonthlyTotals([]core.Record{
		rec(core.KindIncome, 100, "2024-05"),
		rec(core.KindExpense, 40, "2024-05"),
	})
	if !got.Net().Equal(decimal.NewFromInt(60)) {
		t.Fatalf("net = %s", got.Net())
	}
	got = MonthlyTotals([]core.Record{rec(core.KindExpense, 5, "2024-05")})
	if !got.Net().Equal(decimal.NewFromInt(-5)) {
		t.Fatalf("net = %s", got.Net())
	}
}

func TestYearlySeriesSkipsMalformed(t *testing.T) {
	records := []core.Record{
		rec(core.KindIncome, 10, "2024-01"),
		rec(core.KindExpense, 3, "2024-01"),
		rec(core.KindIncome, 20, "2024-12"),
		rec(core.KindIncome, 99, "2024-13"),
		rec(core.KindIncome, 99, "2024-00"),
		rec(core.KindIncome, 99, "2024-x"),
		rec(core.KindIncome, 99, ""),
		rec(core.KindIncome, 99, "2023-06"),
	}
	s := YearlySeries(records, 2024)
	if s.Year != 2024 {
		t.Fatalf("year = %d", s.Year)
	}
	if !s.IncomeByMonth[0].Equal(decimal.NewFromInt(10)) || !s.ExpenseByMonth[0].Equal(decimal.NewFromInt(3)) {
		t.Fatalf("january = %s/%s", s.IncomeByMonth[0], s.ExpenseByMonth[0])
	}
	if !s.IncomeByMonth[11].Equal(decimal.NewFromInt(20)) {
		t.Fatalf("december = %s", s.IncomeByMonth[11])
	}
	total := decimal.Zero
	for i := 0; i < 12; i++ {
		total = total.Add(s.IncomeByMonth[i]).Add(s.ExpenseByMonth[i])
	}
	if !total.Equal(decimal.NewFromInt(33)) {
		t.Fatalf("malformed records leaked into series, total = %s", total)
	}
}

func TestYearlySeriesLength(t *testing.T) {
	for _, n := range []int{0, 1, 50} {
		records := make([]core.Record, n)
		for i := range records {
			records[i] = rec(core.KindExpense, 1, core.Period{Year: 2024, Month: i%12 + 1}.Key())
		}
		income, expense := YearlySeries(records, 2024).Floats()
		if len(income) != 12 || len(expense) != 12 {
			t.Fatalf("n=%d: lengths %d/%d", n, len(income), len(expense))
		}
		var sum float64
		for _, v := range expense {
			sum += v
		}
		if sum != float64(n) {
			t.Fatalf("n=%d: expense sum %v", n, sum)
		}
	}
}
