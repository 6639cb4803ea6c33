package chart

import (
	"encoding/json"
	"testing"

	"moneybook/internal/aggregate"
	"moneybook/internal/core"
)

type fakeSurface struct {
	created   int
	destroyed int
	updated   int
	live      int
	last      Config
}

type fakeInstance struct{ s *fakeSurface }

func (f *fakeSurface) Create(cfg Config) Instance {
	f.created++
	f.live++
	f.last = cfg
	return &fakeInstance{s: f}
}

func (i *fakeInstance) Update(cfg Config) {
	i.s.updated++
	i.s.last = cfg
}

func (i *fakeInstance) Destroy() {
	i.s.destroyed++
	i.s.live--
}

func sampleTotals() aggregate.Totals {
	return aggregate.MonthlyTotals([]core.Record{
		{Kind: core.KindIncome, Amount: 100},
		{Kind: core.KindExpense, Amount: 40},
	})
}

func TestSlotLifecycle(t *testing.T) {
	surface := &fakeSurface{}
	slot := NewSlot(surface)

	slot.ApplyTheme(LightPalette)
	if surface.updated != 0 {
		t.Fatalf("theme on absent slot should be a no-op")
	}

	build := MonthlyBuilder(sampleTotals(), DefaultLabels)
	slot.Render(build, DarkPalette)
	slot.Render(build, DarkPalette)
	if surface.created != 2 || surface.destroyed != 1 || surface.live != 1 {
		t.Fatalf("created=%d destroyed=%d live=%d", surface.created, surface.destroyed, surface.live)
	}

	slot.ApplyTheme(LightPalette)
	if surface.updated != 1 || surface.created != 2 {
		t.Fatalf("theme change should update in place")
	}
	if surface.last.Data.Datasets[0].BorderColor != LightPalette.Line {
		t.Fatalf("palette not applied: %+v", surface.last.Data.Datasets[0])
	}

	slot.Destroy()
	slot.Destroy()
	if surface.live != 0 || slot.Present() {
		t.Fatalf("expected absent slot, live=%d", surface.live)
	}
}

func TestSlotWithoutSurface(t *testing.T) {
	a := NewAdapter(nil, nil, ThemeDark)
	a.RenderMonthly(sampleTotals())
	a.RenderYearly(aggregate.YearlySeries(nil, 2024))
	a.ApplyTheme(ThemeLight)
	a.Reset()
	if a.monthly.Present() || a.yearly.Present() {
		t.Fatalf("nil surface must never hold an instance")
	}
}

func TestAdapterConfigs(t *testing.T) {
	monthly, yearly := &fakeSurface{}, &fakeSurface{}
	a := NewAdapter(monthly, yearly, ThemeDark)

	a.RenderMonthly(sampleTotals())
	if monthly.last.Type != "doughnut" {
		t.Fatalf("type = %q", monthly.last.Type)
	}
	data := monthly.last.Data.Datasets[0].Data
	if len(data) != 2 || data[0] != 100 || data[1] != 40 {
		t.Fatalf("monthly data = %v", data)
	}

	series := aggregate.YearlySeries([]core.Record{
		{Kind: core.KindIncome, Amount: 5, Period: "2024-03"},
		{Kind: core.KindExpense, Amount: 2, Period: "2024-03"},
	}, 2024)
	a.RenderYearly(series)
	if yearly.last.Type != "bar" || len(yearly.last.Data.Labels) != 12 {
		t.Fatalf("yearly config = %+v", yearly.last)
	}
	ds := yearly.last.Data.Datasets
	if len(ds) != 2 || len(ds[0].Data) != 12 || ds[0].Data[2] != 5 || ds[1].Data[2] != 2 {
		t.Fatalf("yearly datasets = %+v", ds)
	}

	a.ApplyTheme(ThemeLight)
	if a.Theme() != ThemeLight || monthly.updated != 1 || yearly.updated != 1 {
		t.Fatalf("theme not applied to both slots")
	}
	if yearly.last.Options.Scales["y"].Grid.Color != LightPalette.Line {
		t.Fatalf("yearly grid not recolored")
	}
}

func TestCanvasSnapshot(t *testing.T) {
	c := NewCanvas()
	if c.Snapshot().Present {
		t.Fatalf("new canvas should be empty")
	}
	slot := NewSlot(c)
	build := MonthlyBuilder(sampleTotals(), DefaultLabels)

	slot.Render(build, DarkPalette)
	first := c.Snapshot()
	if !first.Present || first.Version != 1 {
		t.Fatalf("snapshot = %+v", first)
	}

	slot.ApplyTheme(LightPalette)
	themed := c.Snapshot()
	if themed.Version != first.Version || themed.Revision <= first.Revision {
		t.Fatalf("theme change must keep version, got %+v", themed)
	}

	slot.Render(build, LightPalette)
	if c.Snapshot().Version != 2 {
		t.Fatalf("render must bump version")
	}

	slot.Destroy()
	if c.Snapshot().Present {
		t.Fatalf("destroyed canvas still present")
	}

	raw, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	cfg := decoded["config"].(map[string]any)
	if cfg["type"] != "doughnut" {
		t.Fatalf("json config = %v", cfg)
	}
}

func TestThemeHelpers(t *testing.T) {
	if ParseTheme("light") != ThemeLight || ParseTheme("bogus") != ThemeDark {
		t.Fatalf("ParseTheme")
	}
	if ThemeDark.Toggle() != ThemeLight || ThemeLight.Toggle() != ThemeDark {
		t.Fatalf("Toggle")
	}
}
