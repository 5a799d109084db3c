package logbook

import (
	"time"

	"github.com/faizmokh/bridgelog/internal/calendar"
)

// Snapshot builds the archive record of the live day.
func Snapshot(s State) DayRecord {
	date := s.Daily.Date
	entries := filterEntries(s.Log, date)
	if entries == nil {
		entries = []Entry{}
	}
	notes := s.TodaysNotes()
	if notes == nil {
		notes = []Note{}
	}
	return DayRecord{
		Date:     date,
		Location: s.Daily.Location,
		Mode:     s.Daily.Mode,
		Vessel:   s.Vessel,
		Notes:    notes,
		Weather:  s.LastWeather,
		Entries:  entries,
		Fuel:     ComputeFuel(entries, CarryInto(s.History, date)).Summary(),
	}
}

// SaveDay archives the live day as a checkpoint. The live date is kept; the
// day's notes leave the live list while its entries stay in the running log.
func SaveDay(s State) State {
	return archive(s)
}

// Rollover archives the live day and advances to the calendar day of now. It
// reports false and returns s unchanged when the date has not moved.
func Rollover(s State, now time.Time) (State, bool) {
	today := calendar.Today(now)
	if today == s.Daily.Date {
		return s, false
	}
	s = archive(s)
	s.Daily.Date = today
	return s, true
}

func archive(s State) State {
	snap := Snapshot(s)

	history := make([]DayRecord, 0, len(s.History)+1)
	history = append(history, snap)
	s.History = append(history, s.History...)

	notes := make([]Note, 0, len(s.Notes))
	for _, n := range s.Notes {
		if n.Date != s.Daily.Date {
			notes = append(notes, n)
		}
	}
	s.Notes = notes
	return s
}
