package logbook

import (
	"time"

	"github.com/faizmokh/bridgelog/internal/calendar"
)

// Mode is the vessel's state for the day.
type Mode string

const (
	ModeAlong    Mode = "Along"
	ModeAnchor   Mode = "@Anchor"
	ModeUnderway Mode = "Underway"
	ModeMoored   Mode = "Moored"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeAlong, ModeAnchor, ModeUnderway, ModeMoored:
		return true
	}
	return false
}

// DefaultLocationLabel is the location label of a fresh ledger.
const DefaultLocationLabel = "Cairns, QLD"

// Entry is one observation in the running log. Readings are kept as entered.
type Entry struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Position       string `json:"position"`
	CourseMagnetic string `json:"courseMagnetic"`
	CourseGyro     string `json:"courseGyro"`
	CourseSteering string `json:"courseSteering"`
	Speed          string `json:"speed"`
	WindDir        string `json:"windDir"`
	WindForce      string `json:"windForce"`
	Sea            string `json:"sea"`
	Sky            string `json:"sky"`
	Visibility     string `json:"visibility"`
	Barometer      string `json:"barometer"`
	AirTemp        string `json:"airTemp"`
	SeaTemp        string `json:"seaTemp"`
	Engines        string `json:"engines"`
	Watchkeeper    string `json:"watchkeeper"`
	Remarks        string `json:"remarks"`
	// TotalFuel is the fuel-remaining odometer reading.
	TotalFuel string `json:"totalFuel"`
}

// Key returns the lookup key of e.
func (e Entry) Key() EntryKey {
	return EntryKey{ID: e.ID, Date: e.Date, Time: e.Time, Position: e.Position}
}

// EntryKey identifies an entry. A non-empty ID wins; otherwise the
// (date, time, position) tuple is compared and the first match wins.
type EntryKey struct {
	ID       string
	Date     string
	Time     string
	Position string
}

// Matches reports whether e is addressed by k.
func (k EntryKey) Matches(e Entry) bool {
	if k.ID != "" {
		return e.ID == k.ID
	}
	return e.Date == k.Date && e.Time == k.Time && e.Position == k.Position
}

// Note is a free-text annotation on a day.
type Note struct {
	Date string `json:"date"`
	Time string `json:"time"`
	Text string `json:"text"`
}

// FuelSummary is the stored fuel figure of an archived day.
type FuelSummary struct {
	UsedLitres    float64  `json:"usedLitres"`
	LastTotalFuel *float64 `json:"lastTotalFuel"`
}

// Vessel holds the vessel particulars copied into each archived day.
type Vessel struct {
	Name       string `json:"name"`
	CallSign   string `json:"callSign"`
	MMSI       string `json:"mmsi"`
	IMO        string `json:"imo"`
	OfficialNo string `json:"officialNo"`
	Master     string `json:"master"`
	Notes      string `json:"notes"`
}

// Position is the scratch position entered before logging.
type Position struct {
	LatDeg string `json:"latDeg"`
	LatMin string `json:"latMin"`
	LatHem string `json:"latHem"`
	LonDeg string `json:"lonDeg"`
	LonMin string `json:"lonMin"`
	LonHem string `json:"lonHem"`
}

// Composed renders the position as `27°30'S / 153°02'E`, or "" if incomplete.
func (p Position) Composed() string {
	if p.LatDeg == "" || p.LatMin == "" || p.LatHem == "" {
		return ""
	}
	if p.LonDeg == "" || p.LonMin == "" || p.LonHem == "" {
		return ""
	}
	return p.LatDeg + "°" + p.LatMin + "'" + p.LatHem + " / " + p.LonDeg + "°" + p.LonMin + "'" + p.LonHem
}

// Coords are decimal degrees used for the weather pull.
type Coords struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// Weather is an opaque snapshot of current conditions. Every field is optional.
type Weather struct {
	TempC        *float64 `json:"tempC"`
	WindKts      *float64 `json:"windKts"`
	WindDir      *float64 `json:"windDir"`
	Pressure     *float64 `json:"pressure"`
	VisibilityKm *float64 `json:"visibilityKm"`
	WeatherCode  *float64 `json:"weatherCode"`
	Condition    *string  `json:"condition"`
	PrecipMmHr   *float64 `json:"precipMmHr"`
	HumidityPct  *float64 `json:"humidityPct"`
	CloudPct     *float64 `json:"cloudPct"`
	DewPointC    *float64 `json:"dewPointC"`
	WaveHeightM  *float64 `json:"waveHeightM"`
	WavePeriodS  *float64 `json:"wavePeriodS"`
	WaveDirDeg   *float64 `json:"waveDirDeg"`
}

// Daily is the live day.
type Daily struct {
	Date     string `json:"date"`
	Location string `json:"location"`
	Mode     Mode   `json:"mode"`
}

// DayRecord is the archive of one calendar day.
type DayRecord struct {
	Date     string       `json:"date"`
	Location string       `json:"location"`
	Mode     Mode         `json:"vesselMode"`
	Vessel   Vessel       `json:"vessel"`
	Notes    []Note       `json:"notes"`
	Weather  Weather      `json:"weather"`
	Entries  []Entry      `json:"runningLog"`
	Fuel     *FuelSummary `json:"fuelSummary,omitempty"`
}

// State is the whole ledger of one identity. It is persisted as a unit.
type State struct {
	Vessel      Vessel      `json:"vessel"`
	Watchkeeper string      `json:"watchkeeper"`
	Notes       []Note      `json:"notes"`
	Log         []Entry     `json:"log"`
	History     []DayRecord `json:"history"`
	Pos         Position    `json:"pos"`
	Daily       Daily       `json:"daily"`
	Coords      Coords      `json:"coords"`
	LocLabel    string      `json:"locLabel"`
	LastWeather Weather     `json:"lastWeather"`
	UpdatedAt   time.Time   `json:"updatedAtISO"`
}

// DefaultState returns the ledger of a new identity as of now.
func DefaultState(now time.Time) State {
	return State{
		Notes:   []Note{},
		Log:     []Entry{},
		History: []DayRecord{},
		Pos: Position{
			LatHem: "S",
			LonHem: "E",
		},
		Daily:     Daily{Date: calendar.Today(now), Mode: ModeAlong},
		LocLabel:  DefaultLocationLabel,
		UpdatedAt: now.UTC(),
	}
}

// TodaysLog returns the live log entries dated on the live day, newest first.
func (s State) TodaysLog() []Entry {
	return filterEntries(s.Log, s.Daily.Date)
}

// TodaysNotes returns the live notes dated on the live day, newest first.
func (s State) TodaysNotes() []Note {
	var out []Note
	for _, n := range s.Notes {
		if n.Date == s.Daily.Date {
			out = append(out, n)
		}
	}
	return out
}

// Day returns the first archived record for date.
func (s State) Day(date string) (DayRecord, bool) {
	for _, h := range s.History {
		if h.Date == date {
			return h, true
		}
	}
	return DayRecord{}, false
}

func filterEntries(entries []Entry, date string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out
}
