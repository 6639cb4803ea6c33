package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"moneybook/internal/core"
)

func TestParsePeriodForm(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		form    url.Values
		want    core.Period
		wantErr error
	}{
		{"both", url.Values{"year": {"2023"}, "month": {"11"}}, core.Period{Year: 2023, Month: 11}, nil},
		{"month only", url.Values{"month": {"7"}}, core.Period{Year: 2024, Month: 7}, nil},
		{"year only", url.Values{"year": {" 2022 "}}, core.Period{Year: 2022, Month: 3}, nil},
		{"out of range passes through", url.Values{"year": {"2024"}, "month": {"13"}}, core.Period{Year: 2024, Month: 13}, nil},
		{"malformed", url.Values{"year": {"20x4"}, "month": {"1"}}, core.Period{}, core.ErrInvalidPeriod},
		{"missing", url.Values{}, core.Period{}, errMissingPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePeriodForm(tt.form, now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormValueSanitizes(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader("note=%20caf%C3%A9%00%07+ok%09"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if got := FormValue(req, "note"); got != "café ok" {
		t.Fatalf("FormValue = %q", got)
	}
}

func TestParseFormOrFail(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := ParseFormOrFail(req)
	if resp == nil {
		t.Fatal("expected an error response for a malformed body")
	}
	w := httptest.NewRecorder()
	resp.Write(w)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}

	ok := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=1"))
	ok.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if ParseFormOrFail(ok) != nil {
		t.Fatal("valid form should parse")
	}
}

func TestIsHTMX(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTMX(req) {
		t.Fatal("plain request reported as htmx")
	}
	req.Header.Set("HX-Request", "true")
	if !isHTMX(req) {
		t.Fatal("htmx request not detected")
	}
}
