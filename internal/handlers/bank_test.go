package handlers

import (
	"testing"
	"time"
)

// TestParseWindowDefaults проверяет окно в 30 дней по умолчанию.
func TestParseWindowDefaults(t *testing.T) {
	start, end, err := parseWindow("", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	window := end.Sub(start)
	if window < 29*24*time.Hour || window > 31*24*time.Hour {
		t.Fatalf("expected ~30 day window, got %v", window)
	}
}

// TestParseWindowExplicit проверяет разбор явного периода.
func TestParseWindowExplicit(t *testing.T) {
	start, end, err := parseWindow("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if start.Format(queryDateLayout) != "2024-01-01" {
		t.Fatalf("unexpected start %v", start)
	}
	if end.Format(queryDateLayout) != "2024-01-31" {
		t.Fatalf("unexpected end %v", end)
	}
}

// TestParseWindowInvalid проверяет ошибки формата и порядка дат.
func TestParseWindowInvalid(t *testing.T) {
	if _, _, err := parseWindow("01/01/2024", ""); err == nil {
		t.Fatal("expected error for invalid start format")
	}

	if _, _, err := parseWindow("", "31-01-2024"); err == nil {
		t.Fatal("expected error for invalid end format")
	}

	if _, _, err := parseWindow("2024-02-01", "2024-01-01"); err == nil {
		t.Fatal("expected error for start after end")
	}
}
