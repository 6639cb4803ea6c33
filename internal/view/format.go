package view

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// buddhistEraOffset converts a Gregorian year to the Thai solar calendar.
const buddhistEraOffset = 543

var printer = message.NewPrinter(language.Thai)

// FormatAmount renders n with Thai digit grouping and up to three fraction
// digits. NaN, ±Inf and negative zero render like zero.
func FormatAmount(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		n = 0
	}
	return printer.Sprint(number.Decimal(n, number.MaxFractionDigits(3)))
}

// FormatDecimal renders an aggregator value the same way as FormatAmount.
func FormatDecimal(d decimal.Decimal) string {
	return FormatAmount(d.Round(3).InexactFloat64())
}

// FormatTimestamp renders t as d/M/YYYY HH:mm:ss in loc with a Buddhist era
// year. A zero time renders as "-".
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%d/%d/%d %02d:%02d:%02d",
		t.Day(), int(t.Month()), t.Year()+buddhistEraOffset,
		t.Hour(), t.Minute(), t.Second())
}

// html.EscapeString writes ' as &#39;; rows are rendered with &#039;.
var sanitizer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// SanitizeText escapes the five HTML special characters so the result can be
// inserted into markup as literal text.
func SanitizeText(s string) string {
	return sanitizer.Replace(s)
}
