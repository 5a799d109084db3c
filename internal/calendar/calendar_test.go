package calendar

import (
	"testing"
	"time"
)

func TestTodayUsesLocation(t *testing.T) {
	brisbane := time.FixedZone("AEST", 10*60*60)
	now := time.Date(2026, time.October, 17, 15, 30, 0, 0, time.UTC).In(brisbane)

	if got := Today(now); got != "2026-10-18" {
		t.Fatalf("Today() = %q, want %q", got, "2026-10-18")
	}
	if got := Clock(now); got != "01:30" {
		t.Fatalf("Clock() = %q, want %q", got, "01:30")
	}
}

func TestYesterday(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-10-18", "2026-10-17"},
		{"2026-03-01", "2026-02-28"},
		{"2024-03-01", "2024-02-29"},
		{"2026-01-01", "2025-12-31"},
		{"not-a-date", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Yesterday(tt.in); got != tt.want {
			t.Errorf("Yesterday(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPretty(t *testing.T) {
	if got := Pretty("2026-10-18"); got != "Sun, 18 Oct 2026" {
		t.Fatalf("Pretty() = %q, want %q", got, "Sun, 18 Oct 2026")
	}
	if got := Pretty("someday"); got != "someday" {
		t.Fatalf("Pretty(invalid) = %q, want input back", got)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, time.October, 18, 0, 0, 1, 0, time.UTC)
	b := time.Date(2026, time.October, 18, 23, 59, 0, 0, time.UTC)
	c := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	if !SameDay(a, b) {
		t.Fatalf("SameDay(%v, %v) = false, want true", a, b)
	}
	if SameDay(b, c) {
		t.Fatalf("SameDay(%v, %v) = true, want false", b, c)
	}
	if got := StartOfDay(b); !got.Equal(time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("StartOfDay() = %v", got)
	}
}

func TestLitres(t *testing.T) {
	if got := Litres(80); got != "80.00" {
		t.Fatalf("Litres(80) = %q, want %q", got, "80.00")
	}
	if got := Litres(0.5); got != "0.50" {
		t.Fatalf("Litres(0.5) = %q, want %q", got, "0.50")
	}
}
