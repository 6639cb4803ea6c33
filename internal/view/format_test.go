package view

import (
	"html"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{100, "100"},
		{1234.5, "1,234.5"},
		{1234567.891, "1,234,567.891"},
		{0.25, "0.25"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.in); got != tc.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatAmountZeroForms(t *testing.T) {
	zero := FormatAmount(0)
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), math.Copysign(0, -1)} {
		if got := FormatAmount(v); got != zero {
			t.Errorf("FormatAmount(%v) = %q, want %q", v, got, zero)
		}
	}
	if got := FormatDecimal(decimal.Zero); got != zero {
		t.Errorf("FormatDecimal(0) = %q, want %q", got, zero)
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := FormatTimestamp(time.Time{}, time.UTC); got != "-" {
		t.Fatalf("zero time = %q", got)
	}
	ts := time.Date(2024, time.May, 1, 3, 4, 5, 0, time.UTC)
	if got := FormatTimestamp(ts, time.UTC); got != "1/5/2567 03:04:05" {
		t.Fatalf("got %q", got)
	}
	bkk := time.FixedZone("ICT", 7*3600)
	if got := FormatTimestamp(ts, bkk); got != "1/5/2567 10:04:05" {
		t.Fatalf("got %q", got)
	}
}

func TestSanitizeText(t *testing.T) {
	if got := SanitizeText(`<b>"Tom" & 'Jerry'</b>`); got != "&lt;b&gt;&quot;Tom&quot; &amp; &#039;Jerry&#039;&lt;/b&gt;" {
		t.Fatalf("got %q", got)
	}
	inputs := []string{
		"",
		"plain",
		"&amp; already escaped",
		`<script>alert("x")</script>`,
		"ข้าวมันไก่ & 'ชา'",
		"&&<<>>\"\"''",
	}
	for _, in := range inputs {
		if got := html.UnescapeString(SanitizeText(in)); got != in {
			t.Errorf("round trip of %q = %q", in, got)
		}
	}
}
