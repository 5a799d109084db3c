package logbook

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/faizmokh/bridgelog/internal/calendar"
)

// Scope selects where an entry lives.
type Scope uint8

const (
	// ScopeLive addresses the running log.
	ScopeLive Scope = iota
	// ScopeHistory addresses an archived day.
	ScopeHistory
)

func (s Scope) String() string {
	if s == ScopeHistory {
		return "history"
	}
	return "live"
}

// Confirmer is the yes/no capability consulted before destructive changes.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// EntryFields are the operator-supplied parts of a new entry.
type EntryFields struct {
	CourseMagnetic string
	CourseGyro     string
	CourseSteering string
	Speed          string
	WindDir        string
	WindForce      string
	Sea            string
	Sky            string
	Visibility     string
	Barometer      string
	AirTemp        string
	SeaTemp        string
	Engines        string
	Watchkeeper    string
	Remarks        string
	TotalFuel      string
}

// Movement is a templated manoeuvre entry.
type Movement string

const (
	MoveAlong      Movement = "Along"
	MoveCastOff    Movement = "Cast Off"
	MoveAnchorDown Movement = "Anchor Down"
	MoveAnchorUp   Movement = "Anchor Up"
)

// Movements lists the accepted movement kinds.
var Movements = []Movement{MoveAlong, MoveCastOff, MoveAnchorDown, MoveAnchorUp}

// ParseMovement matches kind case-insensitively against the known movements.
func ParseMovement(kind string) (Movement, error) {
	k := strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(kind, "-", " "))), " ")
	for _, m := range Movements {
		if strings.ToLower(string(m)) == k {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownMovement, kind)
}

// Mode returns the vessel mode a movement leaves the day in.
func (m Movement) Mode() Mode {
	switch m {
	case MoveCastOff, MoveAnchorUp:
		return ModeUnderway
	case MoveAnchorDown:
		return ModeAnchor
	default:
		return ModeAlong
	}
}

// PositionTBD stands in when a movement is logged without any known position.
const PositionTBD = "(pos TBD)"

// NewEntryID returns a fresh, time-ordered entry id.
func NewEntryID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// AddEntry prepends an observation stamped with the live date and now.
func AddEntry(s State, f EntryFields, now time.Time) (State, error) {
	pos := s.Pos.Composed()
	if pos == "" {
		return s, ErrEmptyPosition
	}
	if !validReading(f.TotalFuel) {
		return s, ErrInvalidFuel
	}

	sea := f.Sea
	if sea == "" {
		sea = SeaForForce(f.WindForce)
	}
	watchkeeper := f.Watchkeeper
	if watchkeeper == "" {
		watchkeeper = s.Watchkeeper
	}

	e := Entry{
		ID:             NewEntryID(),
		Date:           s.Daily.Date,
		Time:           calendar.Clock(now),
		Position:       pos,
		CourseMagnetic: f.CourseMagnetic,
		CourseGyro:     f.CourseGyro,
		CourseSteering: f.CourseSteering,
		Speed:          f.Speed,
		WindDir:        f.WindDir,
		WindForce:      f.WindForce,
		Sea:            sea,
		Sky:            f.Sky,
		Visibility:     f.Visibility,
		Barometer:      f.Barometer,
		AirTemp:        f.AirTemp,
		SeaTemp:        f.SeaTemp,
		Engines:        f.Engines,
		Watchkeeper:    watchkeeper,
		Remarks:        f.Remarks,
		TotalFuel:      f.TotalFuel,
	}
	s.Log = prependEntry(s.Log, e)
	return s, nil
}

// AddMovement logs a manoeuvre as an entry plus a matching note and moves the
// live day to the mode the manoeuvre implies.
func AddMovement(s State, kind Movement, now time.Time) (State, error) {
	if _, err := ParseMovement(string(kind)); err != nil {
		return s, err
	}

	pos := s.Pos.Composed()
	if pos == "" {
		if todays := s.TodaysLog(); len(todays) > 0 {
			pos = todays[0].Position
		}
	}
	if pos == "" {
		pos = PositionTBD
	}

	text := fmt.Sprintf("%s at %s", kind, pos)
	clock := calendar.Clock(now)

	s.Notes = prependNote(s.Notes, Note{Date: s.Daily.Date, Time: clock, Text: text})
	s.Log = prependEntry(s.Log, Entry{
		ID:          NewEntryID(),
		Date:        s.Daily.Date,
		Time:        clock,
		Position:    pos,
		Watchkeeper: s.Watchkeeper,
		Remarks:     text,
	})
	s.Daily.Mode = kind.Mode()
	return s, nil
}

// AddNote prepends a note to the live day.
func AddNote(s State, text string, now time.Time) (State, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s, ErrEmptyNote
	}
	s.Notes = prependNote(s.Notes, Note{Date: s.Daily.Date, Time: calendar.Clock(now), Text: text})
	return s, nil
}

// EditEntry replaces the first entry matching key. In ScopeHistory the entry is
// looked up in the archived day and fuel summaries are recomputed afterwards.
func EditEntry(s State, scope Scope, day string, key EntryKey, updated Entry) (State, error) {
	if !validReading(updated.TotalFuel) {
		return s, ErrInvalidFuel
	}

	switch scope {
	case ScopeLive:
		i := findEntry(s.Log, key)
		if i < 0 {
			return s, ErrEntryNotFound
		}
		if updated.ID == "" {
			updated.ID = s.Log[i].ID
		}
		log := cloneEntries(s.Log)
		log[i] = updated
		s.Log = log
		return s, nil
	case ScopeHistory:
		d := findDay(s.History, day)
		if d < 0 {
			return s, fmt.Errorf("%w: %s", ErrDayNotFound, day)
		}
		i := findEntry(s.History[d].Entries, key)
		if i < 0 {
			return s, ErrEntryNotFound
		}
		if updated.ID == "" {
			updated.ID = s.History[d].Entries[i].ID
		}
		history := cloneHistory(s.History)
		entries := cloneEntries(history[d].Entries)
		entries[i] = updated
		history[d].Entries = entries
		s.History = Recompute(history)
		return s, nil
	default:
		return s, fmt.Errorf("unknown scope %d", scope)
	}
}

// DeletePrompt is the question put to the Confirmer before a delete.
const DeletePrompt = "Delete this log entry? This cannot be undone."

// DeleteEntry removes the first entry matching key once confirm agrees. A refusal
// returns ErrCancelled and leaves s untouched.
func DeleteEntry(s State, scope Scope, day string, key EntryKey, confirm Confirmer) (State, error) {
	var entries []Entry
	d := -1
	switch scope {
	case ScopeLive:
		entries = s.Log
	case ScopeHistory:
		d = findDay(s.History, day)
		if d < 0 {
			return s, fmt.Errorf("%w: %s", ErrDayNotFound, day)
		}
		entries = s.History[d].Entries
	default:
		return s, fmt.Errorf("unknown scope %d", scope)
	}

	i := findEntry(entries, key)
	if i < 0 {
		return s, ErrEntryNotFound
	}
	if confirm == nil || !confirm.Confirm(DeletePrompt) {
		return s, ErrCancelled
	}

	remaining := make([]Entry, 0, len(entries)-1)
	remaining = append(remaining, entries[:i]...)
	remaining = append(remaining, entries[i+1:]...)

	if scope == ScopeLive {
		s.Log = remaining
		return s, nil
	}
	history := cloneHistory(s.History)
	history[d].Entries = remaining
	s.History = Recompute(history)
	return s, nil
}

// SetPosition replaces the scratch position used by new entries.
func SetPosition(s State, p Position) State {
	if p.LatHem == "" {
		p.LatHem = s.Pos.LatHem
	}
	if p.LonHem == "" {
		p.LonHem = s.Pos.LonHem
	}
	s.Pos = p
	return s
}

// SetDaily updates the live location and mode. The live date is owned by rollover.
func SetDaily(s State, location string, mode Mode) State {
	s.Daily.Location = location
	if mode.Valid() {
		s.Daily.Mode = mode
	}
	return s
}

// SetVessel replaces the vessel particulars.
func SetVessel(s State, v Vessel) State {
	s.Vessel = v
	return s
}

// SetWatchkeeper sets the default watchkeeper for new entries.
func SetWatchkeeper(s State, name string) State {
	s.Watchkeeper = strings.TrimSpace(name)
	return s
}

// SetCoords records the decimal position and its display label.
func SetCoords(s State, lat, lon float64) State {
	s.Coords = Coords{Lat: &lat, Lon: &lon}
	s.LocLabel = fmt.Sprintf("%.4f, %.4f", lat, lon)
	return s
}

// CoordsFromPosition converts the scratch position to decimal degrees and
// records them with SetCoords. South and West are negative.
func CoordsFromPosition(s State) (State, error) {
	lat, ok := degrees(s.Pos.LatDeg, s.Pos.LatMin, s.Pos.LatHem == "S")
	if !ok {
		return s, ErrInvalidCoords
	}
	lon, ok := degrees(s.Pos.LonDeg, s.Pos.LonMin, s.Pos.LonHem == "W")
	if !ok {
		return s, ErrInvalidCoords
	}
	return SetCoords(s, lat, lon), nil
}

func degrees(deg, min string, negative bool) (float64, bool) {
	d, err := parseOptional(deg)
	if err != nil {
		return 0, false
	}
	m, err := parseOptional(min)
	if err != nil {
		return 0, false
	}
	v := d + m/60
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

func parseOptional(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// SetWeather stores a weather snapshot verbatim.
func SetWeather(s State, w Weather) State {
	s.LastWeather = w
	return s
}

// FindEntry returns the first entry matching key in the given scope.
func FindEntry(s State, scope Scope, day string, key EntryKey) (Entry, error) {
	entries := s.Log
	if scope == ScopeHistory {
		d := findDay(s.History, day)
		if d < 0 {
			return Entry{}, fmt.Errorf("%w: %s", ErrDayNotFound, day)
		}
		entries = s.History[d].Entries
	}
	i := findEntry(entries, key)
	if i < 0 {
		return Entry{}, ErrEntryNotFound
	}
	return entries[i], nil
}

func findEntry(entries []Entry, key EntryKey) int {
	for i, e := range entries {
		if key.Matches(e) {
			return i
		}
	}
	return -1
}

func findDay(history []DayRecord, date string) int {
	for i, h := range history {
		if h.Date == date {
			return i
		}
	}
	return -1
}

func prependEntry(entries []Entry, e Entry) []Entry {
	out := make([]Entry, 0, len(entries)+1)
	out = append(out, e)
	return append(out, entries...)
}

func prependNote(notes []Note, n Note) []Note {
	out := make([]Note, 0, len(notes)+1)
	out = append(out, n)
	return append(out, notes...)
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

func cloneHistory(history []DayRecord) []DayRecord {
	out := make([]DayRecord, len(history))
	copy(out, history)
	return out
}
