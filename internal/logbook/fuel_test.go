package logbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

// newestFirst builds entries from readings listed chronologically.
func newestFirst(date string, readings ...string) []Entry {
	entries := make([]Entry, len(readings))
	for i, r := range readings {
		entries[len(readings)-1-i] = Entry{
			Date:      date,
			Time:      []string{"00:00", "04:00", "08:00", "12:00", "16:00", "20:00", "23:00"}[i%7],
			Position:  "27°30'S / 153°02'E",
			TotalFuel: r,
		}
	}
	return entries
}

func TestParseReading(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"950", 950, true},
		{" 1,250.5 ", 1250.5, true},
		{"12,000", 12000, true},
		{"-3", -3, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"   ", 0, false},
		{"full", 0, false},
		{"12L", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseReading(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseReading(%q) ok", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, "ParseReading(%q)", tt.in)
		}
	}
}

func TestComputeFuelRefuelIsNotConsumption(t *testing.T) {
	entries := newestFirst("2026-10-17", "1000", "950", "980", "900")

	got := ComputeFuel(entries, nil)

	// 1000 -> 950 burns 50, 950 -> 980 is a refuel, 980 -> 900 burns 80.
	assert.Equal(t, 130.0, got.UsedSum)
	require.NotNil(t, got.LastTotalFuel)
	assert.Equal(t, 900.0, *got.LastTotalFuel)

	require.Len(t, got.PerEntry, 4)
	assert.Equal(t, ptr(80), got.PerEntry[0])
	assert.Nil(t, got.PerEntry[1], "refuel must be unknown, not zero")
	assert.Equal(t, ptr(50), got.PerEntry[2])
	assert.Nil(t, got.PerEntry[3], "first reading has no baseline")
}

func TestComputeFuelSingleEntryWithoutReading(t *testing.T) {
	entries := newestFirst("2026-10-17", "")

	got := ComputeFuel(entries, ptr(500))

	assert.Equal(t, 0.0, got.UsedSum)
	require.NotNil(t, got.LastTotalFuel)
	assert.Equal(t, 500.0, *got.LastTotalFuel)
	assert.Equal(t, []*float64{nil}, got.PerEntry)
}

func TestComputeFuelUsesPriorCarryForFirstEntry(t *testing.T) {
	entries := newestFirst("2026-10-17", "480", "", "455.5")

	got := ComputeFuel(entries, ptr(500))

	assert.Equal(t, 44.5, got.UsedSum)
	assert.Equal(t, ptr(20), got.PerEntry[2])
	assert.Nil(t, got.PerEntry[1])
	assert.Equal(t, ptr(24.5), got.PerEntry[0])
	assert.Equal(t, 455.5, *got.LastTotalFuel)
}

func TestComputeFuelNoRefuelsTelescopes(t *testing.T) {
	sequences := [][]string{
		{"1000", "999.9", "870.25", "870.25", "12.01"},
		{"5,000", "4,321.12", "4,000"},
		{"0.3", "0.2", "0.1"},
	}
	for _, seq := range sequences {
		entries := newestFirst("2026-10-17", seq...)
		first, _ := ParseReading(seq[0])
		last, _ := ParseReading(seq[len(seq)-1])

		got := ComputeFuel(entries, nil)

		assert.InDelta(t, first-last, got.UsedSum, 0.005, "sequence %v", seq)
	}
}

func TestComputeFuelRoundsToTwoDecimals(t *testing.T) {
	entries := newestFirst("2026-10-17", "100", "99.995", "99.99")

	got := ComputeFuel(entries, nil)

	assert.Equal(t, 0.01, got.UsedSum)
	assert.Equal(t, 99.99, *got.LastTotalFuel)
}

func TestComputeFuelNeverNegative(t *testing.T) {
	entries := newestFirst("2026-10-17", "100", "300", "600", "900")

	got := ComputeFuel(entries, ptr(50))

	assert.Equal(t, 0.0, got.UsedSum)
	for i, used := range got.PerEntry {
		assert.Nil(t, used, "entry %d", i)
	}
	assert.Equal(t, 900.0, *got.LastTotalFuel)
}

func TestComputeFuelNoBaselineAnywhere(t *testing.T) {
	got := ComputeFuel(nil, nil)

	assert.Equal(t, 0.0, got.UsedSum)
	assert.Nil(t, got.LastTotalFuel)
	assert.Empty(t, got.PerEntry)
}

func TestCarryInto(t *testing.T) {
	history := []DayRecord{
		{Date: "2026-10-16", Entries: newestFirst("2026-10-16", "700", "650", "")},
		{Date: "2026-10-15", Fuel: &FuelSummary{UsedLitres: 10, LastTotalFuel: ptr(710)}},
		{Date: "2026-10-12", Fuel: &FuelSummary{UsedLitres: 3}, Entries: newestFirst("2026-10-12", "800")},
	}

	assert.Equal(t, ptr(650), CarryInto(history, "2026-10-17"), "falls back to entries scan")
	assert.Equal(t, ptr(710), CarryInto(history, "2026-10-16"), "stored summary wins")
	assert.Equal(t, ptr(800), CarryInto(history, "2026-10-13"), "null carry falls back to entries")
	assert.Nil(t, CarryInto(history, "2026-10-15"), "no predecessor")
	assert.Nil(t, CarryInto(history, "garbage"))
}

func TestTodayFuelOnlyCountsLiveDay(t *testing.T) {
	s := State{
		Daily: Daily{Date: "2026-10-18"},
		Log: append(
			newestFirst("2026-10-18", "600", "590"),
			newestFirst("2026-10-17", "900", "100")...,
		),
		History: []DayRecord{{Date: "2026-10-17", Fuel: &FuelSummary{LastTotalFuel: ptr(620)}}},
	}

	got := TodayFuel(s)

	assert.Equal(t, 30.0, got.UsedSum)
	assert.Len(t, got.PerEntry, 2)
	assert.Equal(t, 590.0, *got.LastTotalFuel)
}
