// Package view turns records and totals into display rows and summary text.
package view

import (
	"html/template"
	"time"

	"moneybook/internal/aggregate"
	"moneybook/internal/core"
)

// Labels are the user facing strings of the ledger.
type Labels struct {
	Income  string
	Expense string
	Empty   string
}

// DefaultLabels are the Thai labels of the ledger.
var DefaultLabels = Labels{
	Income:  "รายรับ",
	Expense: "รายจ่าย",
	Empty:   "ยังไม่มีรายการในเดือนนี้",
}

// Row is one table line. Placeholder rows carry only Message.
type Row struct {
	ID          string
	Time        string
	KindLabel   string
	KindClass   string
	Amount      string
	Note        template.HTML // already sanitized
	Placeholder bool
	Message     string
}

// Summary holds the three formatted totals.
type Summary struct {
	IncomeText  string
	ExpenseText string
	NetText     string
}

// Renderer builds rows and summaries for one display locale.
type Renderer struct {
	Location *time.Location
	Labels   Labels
}

// NewRenderer returns a renderer using loc (UTC when nil) and the default labels.
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{Location: loc, Labels: DefaultLabels}
}

// BuildRows returns one row per record in input order, or a single
// placeholder row when records is empty.
func (r *Renderer) BuildRows(records []core.Record) []Row {
	if len(records) == 0 {
		return []Row{r.Placeholder()}
	}
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, r.buildRow(rec))
	}
	return rows
}

// Placeholder is the row shown when a period has no records.
func (r *Renderer) Placeholder() Row {
	return Row{Placeholder: true, Message: r.Labels.Empty}
}

func (r *Renderer) buildRow(rec core.Record) Row {
	row := Row{
		ID:     rec.ID,
		Time:   FormatTimestamp(rec.CreatedAt, r.Location),
		Amount: FormatAmount(rec.Amount),
		Note:   template.HTML(SanitizeText(rec.Note)),
	}
	if rec.Kind.Bucket() == core.KindIncome {
		row.KindLabel = r.Labels.Income
		row.KindClass = string(core.KindIncome)
	} else {
		row.KindLabel = r.Labels.Expense
		row.KindClass = string(core.KindExpense)
	}
	return row
}

// BuildSummary formats totals. Net keeps its sign.
func (r *Renderer) BuildSummary(t aggregate.Totals) Summary {
	return Summary{
		IncomeText:  FormatDecimal(t.Income),
		ExpenseText: FormatDecimal(t.Expense),
		NetText:     FormatDecimal(t.Net()),
	}
}

// EmptySummary is the summary of an empty or signed out ledger.
func (r *Renderer) EmptySummary() Summary {
	return r.BuildSummary(aggregate.MonthlyTotals(nil))
}
