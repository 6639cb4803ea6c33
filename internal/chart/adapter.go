package chart

import (
	"sync"

	"moneybook/internal/aggregate"
)

// Labels are the legend and axis strings of both charts.
type Labels struct {
	Income  string
	Expense string
	Months  [12]string
}

var DefaultLabels = Labels{
	Income:  "รายรับ",
	Expense: "รายจ่าย",
	Months: [12]string{
		"ม.ค.", "ก.พ.", "มี.ค.", "เม.ย.", "พ.ค.", "มิ.ย.",
		"ก.ค.", "ส.ค.", "ก.ย.", "ต.ค.", "พ.ย.", "ธ.ค.",
	},
}

// Adapter drives the monthly doughnut and the yearly bar chart.
type Adapter struct {
	mu      sync.Mutex
	monthly *Slot
	yearly  *Slot
	theme   Theme
	labels  Labels
}

// NewAdapter wires both slots. Either surface may be nil.
func NewAdapter(monthly, yearly Surface, theme Theme) *Adapter {
	return &Adapter{
		monthly: NewSlot(monthly),
		yearly:  NewSlot(yearly),
		theme:   theme,
		labels:  DefaultLabels,
	}
}

// RenderMonthly replaces the proportion chart with t.
func (a *Adapter) RenderMonthly(t aggregate.Totals) {
	a.mu.Lock()
	p, labels := a.theme.Palette(), a.labels
	a.mu.Unlock()
	a.monthly.Render(MonthlyBuilder(t, labels), p)
}

// RenderYearly replaces the grouped series chart with s.
func (a *Adapter) RenderYearly(s aggregate.Series) {
	a.mu.Lock()
	p, labels := a.theme.Palette(), a.labels
	a.mu.Unlock()
	a.yearly.Render(YearlyBuilder(s, labels), p)
}

// ApplyTheme switches palette and recolors present charts in place.
func (a *Adapter) ApplyTheme(t Theme) {
	a.mu.Lock()
	a.theme = t
	a.mu.Unlock()
	p := t.Palette()
	a.monthly.ApplyTheme(p)
	a.yearly.ApplyTheme(p)
}

// Theme returns the active theme.
func (a *Adapter) Theme() Theme {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.theme
}

// Reset destroys both charts.
func (a *Adapter) Reset() {
	a.monthly.Destroy()
	a.yearly.Destroy()
}

// MonthlyBuilder returns the doughnut configuration for t.
func MonthlyBuilder(t aggregate.Totals, l Labels) Builder {
	income := t.Income.InexactFloat64()
	expense := t.Expense.InexactFloat64()
	return func(p Palette) Config {
		return Config{
			Type: "doughnut",
			Data: Data{
				Labels: []string{l.Income, l.Expense},
				Datasets: []Dataset{{
					Data:            []float64{income, expense},
					BackgroundColor: []string{p.Good, p.Bad},
					BorderColor:     p.Line,
					BorderWidth:     1,
				}},
			},
			Options: Options{
				Responsive: true,
				Color:      p.Text,
				Plugins: Plugins{Legend: Legend{
					Position: "bottom",
					Labels:   LegendLabel{Color: p.Text},
				}},
			},
		}
	}
}

// YearlyBuilder returns the bar configuration for s.
func YearlyBuilder(s aggregate.Series, l Labels) Builder {
	income, expense := s.Floats()
	months := l.Months[:]
	return func(p Palette) Config {
		axis := Scale{Ticks: Ticks{Color: p.Muted}, Grid: Grid{Color: p.Line}}
		y := axis
		y.BeginAtZero = true
		return Config{
			Type: "bar",
			Data: Data{
				Labels: append([]string(nil), months...),
				Datasets: []Dataset{
					{Label: l.Income, Data: income, BackgroundColor: p.Good},
					{Label: l.Expense, Data: expense, BackgroundColor: p.Bad},
				},
			},
			Options: Options{
				Responsive: true,
				Color:      p.Text,
				Plugins: Plugins{Legend: Legend{
					Position: "bottom",
					Labels:   LegendLabel{Color: p.Text},
				}},
				Scales: map[string]Scale{"x": axis, "y": y},
			},
		}
	}
}
