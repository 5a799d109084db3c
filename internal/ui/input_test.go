package ui

import (
	"testing"

	"github.com/faizmokh/bridgelog/internal/logbook"
)

func TestParseEntryLine(t *testing.T) {
	e, err := parseEntryLine("co=090 wd=SE wf=5 fuel=1,200 Passing the heads", logbook.Entry{}, false)
	if err != nil {
		t.Fatalf("parseEntryLine: %v", err)
	}
	if e.CourseMagnetic != "090" || e.WindDir != "SE" || e.WindForce != "5" || e.TotalFuel != "1,200" {
		t.Fatalf("entry = %+v", e)
	}
	if e.Remarks != "Passing the heads" {
		t.Fatalf("remarks = %q", e.Remarks)
	}
}

func TestParseEntryLineRejects(t *testing.T) {
	if _, err := parseEntryLine("bogus=1", logbook.Entry{}, false); err == nil {
		t.Fatal("expected unknown field error")
	}
	if _, err := parseEntryLine("time=10:00", logbook.Entry{}, false); err == nil {
		t.Fatal("expected time to be rejected on new entries")
	}
}

func TestEntryToInputRoundTrip(t *testing.T) {
	base := logbook.Entry{ID: "x", Time: "08:00", Position: "16°55'S / 145°46'E", Speed: "10", TotalFuel: "900", Remarks: "Steady as she goes"}

	got, err := parseEntryLine(entryToInput(base), logbook.Entry{ID: "x", Position: base.Position}, true)
	if err != nil {
		t.Fatalf("parseEntryLine: %v", err)
	}
	if got != base {
		t.Fatalf("round trip = %+v, want %+v", got, base)
	}
}

func TestEditKeepsUntouchedFields(t *testing.T) {
	base := logbook.Entry{Speed: "10", Remarks: "old"}

	got, err := parseEntryLine("fuel=800", base, true)
	if err != nil {
		t.Fatalf("parseEntryLine: %v", err)
	}
	if got.Speed != "10" || got.Remarks != "old" || got.TotalFuel != "800" {
		t.Fatalf("entry = %+v", got)
	}

	got, err = parseEntryLine("rem=", base, true)
	if err != nil {
		t.Fatalf("parseEntryLine: %v", err)
	}
	if got.Remarks != "" {
		t.Fatalf("remarks = %q, want cleared", got.Remarks)
	}
}

func TestParsePositionLine(t *testing.T) {
	p, err := parsePositionLine("27 30 s 153 02 e")
	if err != nil {
		t.Fatalf("parsePositionLine: %v", err)
	}
	if got := p.Composed(); got != "27°30'S / 153°02'E" {
		t.Fatalf("Composed = %q", got)
	}
	if positionToInput(p) != "27 30 S 153 02 E" {
		t.Fatalf("positionToInput = %q", positionToInput(p))
	}

	for _, input := range []string{"27 30 S", "27 30 X 153 02 E", "27 30 S 153 02 N"} {
		if _, err := parsePositionLine(input); err == nil {
			t.Fatalf("parsePositionLine(%q) succeeded, want error", input)
		}
	}
}

func TestNextModeCycles(t *testing.T) {
	m := logbook.ModeAlong
	seen := map[logbook.Mode]bool{}
	for i := 0; i < 4; i++ {
		seen[m] = true
		m = nextMode(m)
	}
	if m != logbook.ModeAlong || len(seen) != 4 {
		t.Fatalf("cycle ended at %v after visiting %v", m, seen)
	}
}
