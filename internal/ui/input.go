package ui

import (
	"fmt"
	"strings"

	"github.com/faizmokh/bridgelog/internal/logbook"
)

// entryField maps a short input key onto an entry field.
type entryField struct {
	key string
	get func(*logbook.Entry) *string
}

var entryFieldKeys = []entryField{
	{"co", func(e *logbook.Entry) *string { return &e.CourseMagnetic }},
	{"gyro", func(e *logbook.Entry) *string { return &e.CourseGyro }},
	{"steer", func(e *logbook.Entry) *string { return &e.CourseSteering }},
	{"spd", func(e *logbook.Entry) *string { return &e.Speed }},
	{"wd", func(e *logbook.Entry) *string { return &e.WindDir }},
	{"wf", func(e *logbook.Entry) *string { return &e.WindForce }},
	{"sea", func(e *logbook.Entry) *string { return &e.Sea }},
	{"sky", func(e *logbook.Entry) *string { return &e.Sky }},
	{"vis", func(e *logbook.Entry) *string { return &e.Visibility }},
	{"baro", func(e *logbook.Entry) *string { return &e.Barometer }},
	{"air", func(e *logbook.Entry) *string { return &e.AirTemp }},
	{"seat", func(e *logbook.Entry) *string { return &e.SeaTemp }},
	{"eng", func(e *logbook.Entry) *string { return &e.Engines }},
	{"watch", func(e *logbook.Entry) *string { return &e.Watchkeeper }},
	{"fuel", func(e *logbook.Entry) *string { return &e.TotalFuel }},
	{"time", func(e *logbook.Entry) *string { return &e.Time }},
}

func lookupField(key string) (entryField, bool) {
	for _, f := range entryFieldKeys {
		if f.key == key {
			return f, true
		}
	}
	return entryField{}, false
}

// parseEntryLine applies `key=value` tokens onto base. Bare words become the
// remarks; "rem=" clears them. An empty value blanks the field.
func parseEntryLine(input string, base logbook.Entry, allowTime bool) (logbook.Entry, error) {
	e := base
	var remarks []string
	remarksSet := false

	for _, token := range strings.Fields(input) {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			remarks = append(remarks, token)
			remarksSet = true
			continue
		}
		key = strings.ToLower(key)
		if key == "rem" {
			remarksSet = true
			if value != "" {
				remarks = append(remarks, value)
			}
			continue
		}
		f, known := lookupField(key)
		if !known || (key == "time" && !allowTime) {
			return base, fmt.Errorf("unknown field %q", key)
		}
		*f.get(&e) = value
	}

	if remarksSet {
		e.Remarks = strings.Join(remarks, " ")
	}
	return e, nil
}

// entryToInput renders the editable fields of e in parseEntryLine syntax.
func entryToInput(e logbook.Entry) string {
	parts := make([]string, 0, len(entryFieldKeys)+1)
	for _, f := range entryFieldKeys {
		v := *f.get(&e)
		if v == "" || strings.ContainsAny(v, " \t") {
			continue
		}
		parts = append(parts, f.key+"="+v)
	}
	if e.Remarks != "" {
		parts = append(parts, e.Remarks)
	}
	return strings.Join(parts, " ")
}

func fieldsOf(e logbook.Entry) logbook.EntryFields {
	return logbook.EntryFields{
		CourseMagnetic: e.CourseMagnetic,
		CourseGyro:     e.CourseGyro,
		CourseSteering: e.CourseSteering,
		Speed:          e.Speed,
		WindDir:        e.WindDir,
		WindForce:      e.WindForce,
		Sea:            e.Sea,
		Sky:            e.Sky,
		Visibility:     e.Visibility,
		Barometer:      e.Barometer,
		AirTemp:        e.AirTemp,
		SeaTemp:        e.SeaTemp,
		Engines:        e.Engines,
		Watchkeeper:    e.Watchkeeper,
		Remarks:        e.Remarks,
		TotalFuel:      e.TotalFuel,
	}
}

// parsePositionLine reads `DD MM H DDD MM H`, e.g. `27 30 S 153 02 E`.
func parsePositionLine(input string) (logbook.Position, error) {
	parts := strings.Fields(strings.ToUpper(input))
	if len(parts) != 6 {
		return logbook.Position{}, fmt.Errorf("expected `lat-deg lat-min N|S lon-deg lon-min E|W`")
	}
	p := logbook.Position{
		LatDeg: parts[0], LatMin: parts[1], LatHem: parts[2],
		LonDeg: parts[3], LonMin: parts[4], LonHem: parts[5],
	}
	if p.LatHem != "N" && p.LatHem != "S" {
		return logbook.Position{}, fmt.Errorf("latitude hemisphere must be N or S")
	}
	if p.LonHem != "E" && p.LonHem != "W" {
		return logbook.Position{}, fmt.Errorf("longitude hemisphere must be E or W")
	}
	return p, nil
}

func positionToInput(p logbook.Position) string {
	if p.LatDeg == "" && p.LonDeg == "" {
		return ""
	}
	return strings.Join([]string{p.LatDeg, p.LatMin, p.LatHem, p.LonDeg, p.LonMin, p.LonHem}, " ")
}

// nextMode cycles through the vessel modes.
func nextMode(m logbook.Mode) logbook.Mode {
	modes := []logbook.Mode{logbook.ModeAlong, logbook.ModeAnchor, logbook.ModeUnderway, logbook.ModeMoored}
	for i, candidate := range modes {
		if candidate == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return logbook.ModeAlong
}
