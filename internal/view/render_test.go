package view

import (
	"testing"
	"time"

	"moneybook/internal/aggregate"
	"moneybook/internal/core"
)

func TestBuildRowsPlaceholder(t *testing.T) {
	r := NewRenderer(time.UTC)
	for _, in := range [][]core.Record{nil, {}} {
		rows := r.BuildRows(in)
		if len(rows) != 1 || !rows[0].Placeholder {
			t.Fatalf("expected one placeholder row, got %+v", rows)
		}
		if rows[0].Message != DefaultLabels.Empty {
			t.Fatalf("placeholder message = %q", rows[0].Message)
		}
	}
}

func TestBuildRows(t *testing.T) {
	r := NewRenderer(time.UTC)
	at := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	rows := r.BuildRows([]core.Record{
		{ID: "b", Kind: core.KindExpense, Amount: 40, Note: "<i>lunch</i>", CreatedAt: at},
		{ID: "a", Kind: core.KindIncome, Amount: 1500.5},
		{ID: "c", Kind: "gift", Amount: 1},
	})
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].ID != "b" || rows[1].ID != "a" || rows[2].ID != "c" {
		t.Fatalf("order not preserved: %+v", rows)
	}
	if rows[0].KindLabel != "รายจ่าย" || rows[0].KindClass != "expense" {
		t.Fatalf("expense row = %+v", rows[0])
	}
	if rows[0].Note != "&lt;i&gt;lunch&lt;/i&gt;" {
		t.Fatalf("note not sanitized: %q", rows[0].Note)
	}
	if rows[0].Time != "2/5/2567 08:00:00" {
		t.Fatalf("time = %q", rows[0].Time)
	}
	if rows[1].KindLabel != "รายรับ" || rows[1].Amount != "1,500.5" || rows[1].Time != "-" {
		t.Fatalf("income row = %+v", rows[1])
	}
	if rows[2].KindClass != "expense" {
		t.Fatalf("unknown kind should render as expense, got %+v", rows[2])
	}
}

func TestBuildSummary(t *testing.T) {
	r := NewRenderer(time.UTC)
	totals := aggregate.MonthlyTotals([]core.Record{
		{Kind: core.KindIncome, Amount: 100},
		{Kind: core.KindExpense, Amount: 40},
	})
	s := r.BuildSummary(totals)
	if s.IncomeText != FormatAmount(100) || s.ExpenseText != FormatAmount(40) || s.NetText != FormatAmount(60) {
		t.Fatalf("summary = %+v", s)
	}

	neg := r.BuildSummary(aggregate.MonthlyTotals([]core.Record{{Kind: core.KindExpense, Amount: 60}}))
	if neg.NetText != FormatAmount(-60) || neg.NetText == FormatAmount(60) {
		t.Fatalf("net = %q", neg.NetText)
	}

	empty := r.EmptySummary()
	if empty.IncomeText != "0" || empty.ExpenseText != "0" || empty.NetText != "0" {
		t.Fatalf("empty summary = %+v", empty)
	}
}

func TestLabelsOverride(t *testing.T) {
	r := NewRenderer(nil)
	r.Labels = Labels{Income: "Income", Expense: "Expense", Empty: "Nothing yet"}
	rows := r.BuildRows(nil)
	if rows[0].Message != "Nothing yet" {
		t.Fatalf("message = %q", rows[0].Message)
	}
}
