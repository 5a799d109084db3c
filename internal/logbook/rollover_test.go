package logbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayOneState(t *testing.T) State {
	t.Helper()
	s := liveState()
	s.Daily.Location = "Cairns"
	s.Daily.Mode = ModeUnderway
	s.LastWeather = Weather{TempC: ptr(25)}
	s.History = []DayRecord{
		{Date: "2026-10-16", Entries: newestFirst("2026-10-16", "1100"), Fuel: &FuelSummary{LastTotalFuel: ptr(1050)}},
	}

	var err error
	for i, reading := range []string{"1000", "950", "980", "900"} {
		s, err = AddEntry(s, EntryFields{TotalFuel: reading}, morning.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}
	s, err = AddNote(s, "Crew briefing", morning)
	require.NoError(t, err)
	s.Notes = append(s.Notes, Note{Date: "2026-10-16", Time: "22:00", Text: "left over"})
	return s
}

func TestSnapshot(t *testing.T) {
	s := dayOneState(t)
	s.Log = append(s.Log, Entry{Date: "2026-10-16", Time: "23:00", Position: "elsewhere", TotalFuel: "1"})

	snap := Snapshot(s)

	assert.Equal(t, "2026-10-17", snap.Date)
	assert.Equal(t, "Cairns", snap.Location)
	assert.Equal(t, ModeUnderway, snap.Mode)
	assert.Equal(t, "Aurora", snap.Vessel.Name)
	assert.Equal(t, 25.0, *snap.Weather.TempC)
	assert.Len(t, snap.Entries, 4, "only entries of the live date are archived")
	require.Len(t, snap.Notes, 1)

	require.NotNil(t, snap.Fuel)
	// carry 1050 from the 16th: 1050 -> 1000 -> 950, refuel to 980, -> 900.
	assert.Equal(t, 180.0, snap.Fuel.UsedLitres)
	assert.Equal(t, 900.0, *snap.Fuel.LastTotalFuel)
}

func TestSaveDayKeepsDate(t *testing.T) {
	s := dayOneState(t)

	got := SaveDay(s)

	require.Len(t, got.History, 2)
	assert.Equal(t, "2026-10-17", got.History[0].Date)
	assert.Equal(t, "2026-10-17", got.Daily.Date)
	assert.Len(t, got.Log, 4, "entries stay in the running log")
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "left over", got.Notes[0].Text)
	assert.Len(t, s.History, 1, "input is not modified")
}

func TestRolloverTicks(t *testing.T) {
	s := dayOneState(t)

	// two ticks on the same day change nothing
	for _, at := range []time.Time{morning.Add(30 * time.Second), morning.Add(time.Minute)} {
		next, rolled := Rollover(s, at)
		assert.False(t, rolled)
		assert.Equal(t, s, next)
	}

	midnight := time.Date(2026, time.October, 18, 0, 0, 10, 0, time.UTC)
	next, rolled := Rollover(s, midnight)
	require.True(t, rolled)
	assert.Equal(t, "2026-10-18", next.Daily.Date)
	require.Len(t, next.History, 2)
	assert.Equal(t, "2026-10-17", next.History[0].Date)
	assert.Empty(t, next.TodaysLog())
	assert.Empty(t, next.TodaysNotes())

	again, rolled := Rollover(next, midnight.Add(30*time.Second))
	assert.False(t, rolled)
	assert.Len(t, again.History, 2)

	fuel := TodayFuel(next)
	require.NotNil(t, fuel.LastTotalFuel)
	assert.Equal(t, 900.0, *fuel.LastTotalFuel, "the new day starts from the archived carry")
}

func TestRolloverEmptyDay(t *testing.T) {
	s := DefaultState(morning)

	next, rolled := Rollover(s, morning.AddDate(0, 0, 1))
	require.True(t, rolled)
	require.Len(t, next.History, 1)
	assert.NotNil(t, next.History[0].Entries)
	assert.NotNil(t, next.History[0].Notes)
	assert.Equal(t, 0.0, next.History[0].Fuel.UsedLitres)
	assert.Nil(t, next.History[0].Fuel.LastTotalFuel)
}
