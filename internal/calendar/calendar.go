// Package calendar holds the pure date helpers shared by the ledger, the CLI and the TUI.
// Days are carried around as local YYYY-MM-DD strings, the same form stored in backups.
package calendar

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DateLayout is the on-disk and on-wire day format.
const DateLayout = "2006-01-02"

// TimeLayout is the entry clock format.
const TimeLayout = "15:04"

// Today returns the calendar day of now in now's location.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// Clock returns the HH:MM stamp used on entries and notes.
func Clock(now time.Time) string {
	return now.Format(TimeLayout)
}

// Parse reads a YYYY-MM-DD day in loc. A nil loc means time.Local.
func Parse(iso string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, iso, loc)
}

// Yesterday returns the day before iso, or "" when iso is not a valid day.
func Yesterday(iso string) string {
	return AddDays(iso, -1)
}

// AddDays shifts iso by n calendar days. Invalid input yields "".
func AddDays(iso string, n int) string {
	d, err := Parse(iso, time.UTC)
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, n).Format(DateLayout)
}

// Pretty renders a day for display, e.g. "Sun, 18 Oct 2026".
// Unparsable input is returned untouched.
func Pretty(iso string) string {
	d, err := Parse(iso, time.UTC)
	if err != nil {
		return iso
	}
	return d.Format("Mon, 02 Jan 2006")
}

// StartOfDay returns 00:00 of the day containing t.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

var printer = message.NewPrinter(language.English)

// Litres formats a fuel quantity with two decimals and grouped thousands.
func Litres(v float64) string {
	return printer.Sprintf("%.2f", v)
}
