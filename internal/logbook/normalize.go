package logbook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Envelope tags recognised when unwrapping a payload.
const (
	BackupTag       = "Backup"
	LegacyBackupTag = "BridgeLogProBackup"
)

// entryNamespace seeds the name-based ids given to entries stored without one.
var entryNamespace = uuid.MustParse("6f1c2a7e-5d0b-4f3a-9c61-2b7d8e4a90c5")

// NormalizeJSON decodes data and normalizes the result. Numbers keep their
// literal text so that readings survive the round trip untouched.
func NormalizeJSON(data []byte, now time.Time) (State, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	return Normalize(raw, now)
}

// Normalize turns an arbitrary decoded JSON value into a valid State. It accepts
// a current backup envelope, a legacy envelope, or a bare state object, and fills
// every missing or mistyped field with its default. Only a non-object input is
// rejected with ErrInvalidState.
func Normalize(raw any, now time.Time) (State, error) {
	obj, ok := raw.(map[string]any)
	if !ok || obj == nil {
		return State{}, ErrInvalidState
	}
	src := unwrap(obj)
	if src == nil {
		return State{}, ErrInvalidState
	}

	def := DefaultState(now)
	s := State{
		Watchkeeper: str(src["watchkeeper"], ""),
		LocLabel:    str(src["locLabel"], def.LocLabel),
		UpdatedAt:   def.UpdatedAt,
	}
	s.Vessel = normalizeVessel(object(src["vessel"]))
	s.Pos = normalizePosition(object(src["pos"]))
	s.Daily = normalizeDaily(object(src["daily"]), def.Daily)
	s.Coords = normalizeCoords(object(src["coords"]))
	s.LastWeather = normalizeWeather(object(src["lastWeather"]))

	today := def.Daily.Date
	liveDate := s.Daily.Date
	if liveDate == "" {
		liveDate = today
	}

	s.Notes = []Note{}
	for _, item := range list(src["notes"]) {
		if n, ok := normalizeNote(object(item), liveDate); ok {
			s.Notes = append(s.Notes, n)
		}
	}

	s.Log = []Entry{}
	for i, item := range list(src["log"]) {
		r := object(item)
		if r == nil {
			continue
		}
		s.Log = append(s.Log, normalizeEntry(r, "log", liveDate, s.Watchkeeper, i))
	}

	s.History = []DayRecord{}
	for _, item := range list(src["history"]) {
		h := object(item)
		if h == nil {
			continue
		}
		date, ok := h["date"].(string)
		if !ok {
			continue
		}
		s.History = append(s.History, normalizeDay(h, date, s.Vessel))
	}
	return s, nil
}

func unwrap(obj map[string]any) map[string]any {
	if tag, _ := obj["tag"].(string); tag == BackupTag {
		if p, ok := obj["payload"]; ok && p != nil {
			return object(p)
		}
	}
	if kind, _ := obj["kind"].(string); kind == LegacyBackupTag {
		if st, ok := obj["state"]; ok && st != nil {
			return object(st)
		}
	}
	return obj
}

func normalizeVessel(v map[string]any) Vessel {
	return Vessel{
		Name:       str(v["name"], ""),
		CallSign:   str(v["callSign"], ""),
		MMSI:       str(v["mmsi"], ""),
		IMO:        str(v["imo"], ""),
		OfficialNo: str(v["officialNo"], ""),
		Master:     str(v["master"], ""),
		Notes:      str(v["notes"], ""),
	}
}

func normalizePosition(p map[string]any) Position {
	pos := Position{
		LatDeg: str(p["latDeg"], ""),
		LatMin: str(p["latMin"], ""),
		LatHem: "S",
		LonDeg: str(p["lonDeg"], ""),
		LonMin: str(p["lonMin"], ""),
		LonHem: "E",
	}
	if h := str(p["latHem"], ""); h == "N" || h == "S" {
		pos.LatHem = h
	}
	if h := str(p["lonHem"], ""); h == "E" || h == "W" {
		pos.LonHem = h
	}
	return pos
}

func normalizeDaily(d map[string]any, def Daily) Daily {
	if d == nil {
		return def
	}
	return Daily{
		Date:     str(d["date"], def.Date),
		Location: str(d["location"], ""),
		Mode:     mode(d["mode"]),
	}
}

func normalizeCoords(c map[string]any) Coords {
	return Coords{Lat: number(c["lat"]), Lon: number(c["lon"])}
}

func normalizeWeather(w map[string]any) Weather {
	out := Weather{
		TempC:        number(w["tempC"]),
		WindKts:      number(w["windKts"]),
		WindDir:      number(w["windDir"]),
		Pressure:     number(w["pressure"]),
		VisibilityKm: number(w["visibilityKm"]),
		WeatherCode:  number(w["weatherCode"]),
		PrecipMmHr:   number(w["precipMmHr"]),
		HumidityPct:  number(w["humidityPct"]),
		CloudPct:     number(w["cloudPct"]),
		DewPointC:    number(w["dewPointC"]),
		WaveHeightM:  number(w["waveHeightM"]),
		WavePeriodS:  number(w["wavePeriodS"]),
		WaveDirDeg:   number(w["waveDirDeg"]),
	}
	if c, ok := w["condition"].(string); ok {
		out.Condition = &c
	}
	return out
}

func normalizeNote(n map[string]any, date string) (Note, bool) {
	if n == nil {
		return Note{}, false
	}
	text, ok := n["text"].(string)
	if !ok {
		return Note{}, false
	}
	return Note{
		Date: str(n["date"], date),
		Time: str(n["time"], ""),
		Text: text,
	}, true
}

// normalizeEntry maps a raw entry. scope, container date and index name the
// entry when it has no id of its own.
func normalizeEntry(r map[string]any, scope, date, watchkeeper string, index int) Entry {
	course, ok := r["courseMagnetic"].(string)
	if !ok {
		course, _ = r["courseTrue"].(string)
	}
	e := Entry{
		ID:             str(r["id"], ""),
		Date:           str(r["date"], date),
		Time:           str(r["time"], ""),
		Position:       str(r["position"], ""),
		CourseMagnetic: course,
		CourseGyro:     str(r["courseGyro"], ""),
		CourseSteering: str(r["courseSteering"], ""),
		Speed:          str(r["speed"], ""),
		WindDir:        str(r["windDir"], ""),
		WindForce:      str(r["windForce"], ""),
		Sea:            str(r["sea"], ""),
		Sky:            str(r["sky"], ""),
		Visibility:     str(r["visibility"], ""),
		Barometer:      str(r["barometer"], ""),
		AirTemp:        str(r["airTemp"], ""),
		SeaTemp:        str(r["seaTemp"], ""),
		Engines:        str(r["engines"], ""),
		Watchkeeper:    str(r["watchkeeper"], watchkeeper),
		Remarks:        str(r["remarks"], ""),
		TotalFuel:      str(r["totalFuel"], ""),
	}
	if e.ID == "" {
		name := strings.Join([]string{scope, date, strconv.Itoa(index), e.Date, e.Time, e.Position}, "|")
		e.ID = uuid.NewSHA1(entryNamespace, []byte(name)).String()
	}
	return e
}

func normalizeDay(h map[string]any, date string, vessel Vessel) DayRecord {
	d := DayRecord{
		Date:     date,
		Location: str(h["location"], ""),
		Mode:     mode(h["vesselMode"]),
		Vessel:   vessel,
		Notes:    []Note{},
		Weather:  normalizeWeather(object(h["weather"])),
		Entries:  []Entry{},
	}
	if v := object(h["vessel"]); v != nil {
		d.Vessel = normalizeVessel(v)
	}
	for _, item := range list(h["notes"]) {
		if n, ok := normalizeNote(object(item), date); ok {
			d.Notes = append(d.Notes, n)
		}
	}
	for i, item := range list(h["runningLog"]) {
		r := object(item)
		if r == nil {
			continue
		}
		d.Entries = append(d.Entries, normalizeEntry(r, "history", date, "", i))
	}
	if f := object(h["fuelSummary"]); f != nil {
		sum := &FuelSummary{LastTotalFuel: number(f["lastTotalFuel"])}
		if used := number(f["usedLitres"]); used != nil {
			sum.UsedLitres = *used
		}
		d.Fuel = sum
	}
	return d
}

func object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

// str keeps strings, renders numbers and booleans in their literal form and
// falls back to def for anything else.
func str(v any, def string) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return def
	}
}

func number(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return nil
		}
		f = n
	case float64:
		f = x
	case int:
		f = float64(x)
	default:
		return nil
	}
	return &f
}

func mode(v any) Mode {
	if m := Mode(str(v, "")); m.Valid() {
		return m
	}
	return ModeAlong
}
