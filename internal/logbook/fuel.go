package logbook

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/faizmokh/bridgelog/internal/calendar"
)

// FuelResult is the fuel accounting of one day.
type FuelResult struct {
	// PerEntry is aligned with the input entries. nil means unknown: no reading,
	// no baseline yet, or a refuel.
	PerEntry []*float64
	// UsedSum is the consumption of the day rounded to 2 decimal places.
	UsedSum float64
	// LastTotalFuel is the carry for the next day.
	LastTotalFuel *float64
}

// Summary converts r into the stored form.
func (r FuelResult) Summary() *FuelSummary {
	return &FuelSummary{UsedLitres: r.UsedSum, LastTotalFuel: r.LastTotalFuel}
}

// ParseReading reads an odometer value loosely: surrounding space and thousands
// separators are ignored. Blank or non-numeric input reports false.
func ParseReading(s string) (float64, bool) {
	d, ok := parseDecimal(s)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	t := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if t == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// validReading accepts blank readings and numeric ones.
func validReading(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	_, ok := parseDecimal(s)
	return ok
}

// ComputeFuel accounts one day's entries, given newest first, starting from the
// prior carry. A drop in the odometer is consumption; a rise is a refuel and is
// never counted. Every valid reading becomes the new carry.
func ComputeFuel(entries []Entry, prior *float64) FuelResult {
	var carry *decimal.Decimal
	if prior != nil {
		p := decimal.NewFromFloat(*prior)
		carry = &p
	}

	used := decimal.Zero
	perEntry := make([]*float64, len(entries))

	for i := len(entries) - 1; i >= 0; i-- {
		cur, ok := parseDecimal(entries[i].TotalFuel)
		if !ok {
			continue
		}
		if carry != nil {
			delta := carry.Sub(cur)
			if !delta.IsNegative() {
				used = used.Add(delta)
				v := delta.InexactFloat64()
				perEntry[i] = &v
			}
		}
		c := cur
		carry = &c
	}

	result := FuelResult{
		PerEntry: perEntry,
		UsedSum:  used.Round(2).InexactFloat64(),
	}
	if carry != nil {
		v := carry.InexactFloat64()
		result.LastTotalFuel = &v
	} else if prior != nil {
		v := *prior
		result.LastTotalFuel = &v
	}
	return result
}

// LastReading returns the most recent valid reading among entries stored newest first.
func LastReading(entries []Entry) *float64 {
	for _, e := range entries {
		if v, ok := ParseReading(e.TotalFuel); ok {
			return &v
		}
	}
	return nil
}

// CarryOf returns the carry a day hands to the next one: its stored summary if
// it has one, otherwise the last reading among its entries.
func CarryOf(day DayRecord) *float64 {
	if day.Fuel != nil && day.Fuel.LastTotalFuel != nil {
		v := *day.Fuel.LastTotalFuel
		return &v
	}
	return LastReading(day.Entries)
}

// CarryInto returns the prior carry for date, looked up on the archived record of
// the previous calendar day. nil means no baseline.
func CarryInto(history []DayRecord, date string) *float64 {
	prev := calendar.Yesterday(date)
	if prev == "" {
		return nil
	}
	for _, h := range history {
		if h.Date == prev {
			return CarryOf(h)
		}
	}
	return nil
}

// TodayFuel computes the live day's figures. They are derived on demand and never stored.
func TodayFuel(s State) FuelResult {
	return ComputeFuel(s.TodaysLog(), CarryInto(s.History, s.Daily.Date))
}
