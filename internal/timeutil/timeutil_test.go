package timeutil

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-08-21")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Year() != 2025 || got.Month() != time.August || got.Day() != 21 {
		t.Fatalf("unexpected parsed date: %v", got)
	}

	if _, err := ParseDate("08/21/2025"); err == nil {
		t.Fatalf("expected error for bad layout")
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	parsed, err := ParseDate("2025-04-01")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := FormatDate(parsed); got != "2025-04-01" {
		t.Fatalf("expected 2025-04-01, got %s", got)
	}
}

func TestJSTConversion(t *testing.T) {
	// 2025-08-21 23:10 UTC is 2025-08-22 08:10 in Japan.
	utc := time.Date(2025, 8, 21, 23, 10, 0, 0, time.UTC)
	if got := FormatJSTDate(utc); got != "2025-08-22" {
		t.Fatalf("expected JST date 2025-08-22, got %s", got)
	}
	if got := FormatJSTClock(utc); got != "08:10" {
		t.Fatalf("expected JST clock 08:10, got %s", got)
	}
}
