// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"moneybook/internal/core"
)

var errMissingPeriod = errors.New("year and month are required")

// ParsePeriodForm reads year and month from form values. Missing fields
// default to the period containing now; malformed numbers are an error.
// The result is not range checked so the session can report it.
func ParsePeriodForm(form url.Values, now time.Time) (core.Period, error) {
	p := core.CurrentPeriod(now)
	yearText := strings.TrimSpace(form.Get("year"))
	monthText := strings.TrimSpace(form.Get("month"))
	if yearText == "" && monthText == "" {
		return core.Period{}, errMissingPeriod
	}
	if yearText != "" {
		y, err := strconv.Atoi(yearText)
		if err != nil {
			return core.Period{}, core.ErrInvalidPeriod
		}
		p.Year = y
	}
	if monthText != "" {
		m, err := strconv.Atoi(monthText)
		if err != nil {
			return core.Period{}, core.ErrInvalidPeriod
		}
		p.Month = m
	}
	return p, nil
}

// FormValue returns the trimmed, control-character free value of key.
func FormValue(r *http.Request, key string) string {
	return sanitizeInput(r.PostFormValue(key))
}

// sanitizeInput removes control characters other than tab and newlines and
// trims whitespace. HTML escaping happens at render time.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("รูปแบบคำขอไม่ถูกต้อง")
	}
	return nil
}

// isHTMX reports whether r was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
