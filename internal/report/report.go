// Package report builds markdown reports for one owner's month or year.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"moneybook/internal/aggregate"
	"moneybook/internal/chart"
	"moneybook/internal/core"
	"moneybook/internal/view"
)

// Builder renders records with the ledger's labels and formatting.
type Builder struct {
	Renderer *view.Renderer
	Months   [12]string
	Balance  string
}

func NewBuilder(r *view.Renderer) *Builder {
	if r == nil {
		r = view.NewRenderer(nil)
	}
	return &Builder{Renderer: r, Months: chart.DefaultLabels.Months, Balance: "คงเหลือ"}
}

// Monthly renders the summary and rows of one period. records are expected
// in display order.
func (b *Builder) Monthly(owner string, period core.PeriodKey, records []core.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Monthly report %s\n\n", period)
	fmt.Fprintf(&sb, "Owner: `%s`\n\n", owner)

	totals := aggregate.MonthlyTotals(records)
	b.summary(&sb, totals)

	sb.WriteString("## Records\n\n")
	rows := b.Renderer.BuildRows(records)
	if len(rows) == 1 && rows[0].Placeholder {
		fmt.Fprintf(&sb, "_%s_\n", rows[0].Message)
		return sb.String()
	}
	sb.WriteString("| Time | Kind | Amount | Note |\n|---|---|---:|---|\n")
	for _, row := range rows {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			row.Time, row.KindLabel, row.Amount, cell(string(row.Note)))
	}
	if totals.Unrecognized > 0 {
		fmt.Fprintf(&sb, "\n%d record(s) with an unknown kind were counted as %s.\n",
			totals.Unrecognized, b.Renderer.Labels.Expense)
	}
	return sb.String()
}

// Yearly renders the year totals and the per-month series. Records outside
// year are ignored.
func (b *Builder) Yearly(owner string, year int, records []core.Record) string {
	series := aggregate.YearlySeries(records, year)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Yearly report %d\n\n", year)
	fmt.Fprintf(&sb, "Owner: `%s`\n\n", owner)

	totals := aggregate.Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for i := range 12 {
		totals.Income = totals.Income.Add(series.IncomeByMonth[i])
		totals.Expense = totals.Expense.Add(series.ExpenseByMonth[i])
	}
	b.summary(&sb, totals)

	labels := b.Renderer.Labels
	sb.WriteString("## By month\n\n")
	fmt.Fprintf(&sb, "| Month | %s | %s | %s |\n|---|---:|---:|---:|\n", labels.Income, labels.Expense, b.Balance)
	for i := range 12 {
		income, expense := series.IncomeByMonth[i], series.ExpenseByMonth[i]
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", b.Months[i],
			view.FormatDecimal(income), view.FormatDecimal(expense), view.FormatDecimal(income.Sub(expense)))
	}
	return sb.String()
}

func (b *Builder) summary(sb *strings.Builder, totals aggregate.Totals) {
	s := b.Renderer.BuildSummary(totals)
	labels := b.Renderer.Labels
	sb.WriteString("## Summary\n\n| | Amount |\n|---|---:|\n")
	fmt.Fprintf(sb, "| %s | %s |\n", labels.Income, s.IncomeText)
	fmt.Fprintf(sb, "| %s | %s |\n", labels.Expense, s.ExpenseText)
	fmt.Fprintf(sb, "| **%s** | **%s** |\n\n", b.Balance, s.NetText)
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r", " ", "\n", " ")

func cell(s string) string {
	s = cellReplacer.Replace(s)
	if s == "" {
		return "-"
	}
	return s
}
