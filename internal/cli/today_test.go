package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/faizmokh/bridgelog/internal/logbook"
)

func TestTodayOnEmptyLedger(t *testing.T) {
	h := newHarness(t)

	out := h.run("today")
	assertContains(t, out, "Along")
	assertContains(t, out, "Position: -")
	assertContains(t, out, "Fuel used: 0.00 L")
	assertContains(t, out, "(no entries)")
	assertNotContains(t, out, "last total")
}

func TestPositionWithCoords(t *testing.T) {
	h := newHarness(t)

	out := h.run("position", "--lat-deg", "16", "--lat-min", "55", "--lat-hem", "s",
		"--lon-deg", "145", "--lon-min", "46", "--lon-hem", "E", "--coords")
	assertContains(t, out, "Position: 16°55'S / 145°46'E")
	assertContains(t, out, "Coords: -16.9167, 145.7667")

	st := h.state("default")
	if st.Coords.Lat == nil || *st.Coords.Lat > -16.9 {
		t.Fatalf("lat = %v", st.Coords.Lat)
	}

	if _, err := h.exec("position", "--lat-hem", "Q"); err == nil {
		t.Fatalf("bad hemisphere accepted, want error")
	}
}

func TestDailyAndVessel(t *testing.T) {
	h := newHarness(t)

	assertContains(t, h.run("daily", "--location", "Cairns Marina", "--mode", "Moored"), "2026-10-17  Moored  Cairns Marina")
	if _, err := h.exec("daily", "--mode", "Drifting"); err == nil {
		t.Fatalf("invalid mode accepted, want error")
	}

	out := h.run("vessel", "--name", "Aurora", "--mmsi", "503123456")
	assertContains(t, out, "Name: Aurora")
	assertContains(t, out, "MMSI: 503123456")
	assertContains(t, out, "Call sign: -")

	// Unchanged flags leave the other particulars alone.
	assertContains(t, h.run("vessel", "--master", "R. Lee"), "MMSI: 503123456")
}

func TestSaveDayKeepsLiveDate(t *testing.T) {
	h := newHarness(t)
	h.run("position", "--lat-deg", "27", "--lat-min", "30", "--lon-deg", "153", "--lon-min", "02")
	h.run("add", "--fuel", "600")
	h.at(9, 0)
	h.run("add", "--fuel", "550")
	h.run("note", "Checkpoint")

	out := h.run("save-day")
	assertContains(t, out, "Saved 2026-10-17: 2 entries, Fuel used: 50.00 L (last total 550.00 L)")

	st := h.state("default")
	if st.Daily.Date != "2026-10-17" {
		t.Fatalf("live date = %q", st.Daily.Date)
	}
	if len(st.Log) != 2 || len(st.TodaysNotes()) != 0 {
		t.Fatalf("log = %d entries, notes = %+v", len(st.Log), st.TodaysNotes())
	}

	assertContains(t, h.run("rollover"), "Still 2026-10-17, nothing to roll over.")
	assertContains(t, h.run("history", "show", "2026-10-17"), "Checkpoint")
	assertContains(t, h.run("history", "show", "2026-10-17", "--markdown"), "2026-10-17")
	assertContains(t, h.run("history", "show", "2026-09-01"), "No archived day for 2026-09-01")
}

func TestHistoryListAndExport(t *testing.T) {
	h := newHarness(t)

	assertContains(t, h.run("history", "list"), "(no archived days)")
	assertContains(t, h.run("history", "export"), "(no archived days)")

	h.run("daily", "--location", "Gladstone")
	h.run("save-day")
	out := h.run("history", "list")
	assertContains(t, out, "2026-10-17")
	assertContains(t, out, "Gladstone")
	assertNotContains(t, out, "[md]")

	assertContains(t, h.run("history", "export", "--date", "2026-10-17"), "Exported 2026-10-17")
	assertContains(t, h.run("history", "export", "--date", "2026-10-17"), "Updated 2026-10-17")
	assertContains(t, h.run("history", "list"), "[md]")

	_, err := h.exec("history", "export", "--date", "2026-01-01")
	if !errors.Is(err, logbook.ErrDayNotFound) {
		t.Fatalf("export of unknown day error = %v, want ErrDayNotFound", err)
	}
	if _, err := h.exec("history", "list", "--limit", "0"); err == nil {
		t.Fatalf("zero limit accepted, want error")
	}
}

func TestBackupRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.run("vessel", "--name", "Aurora")
	h.run("note", "Before backup")

	dir := t.TempDir()
	out := h.run("backup", "export", "--out", dir)
	assertContains(t, out, "Backup written to "+dir)

	matches, err := filepath.Glob(filepath.Join(dir, "bridge-log-backup-*.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("backup files = %v (err %v)", matches, err)
	}

	stdout := h.run("backup", "export", "--out", "-")
	var payload map[string]any
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("stdout backup is not JSON: %v", err)
	}

	h.run("vessel", "--name", "Changed")
	out = h.run("backup", "import", matches[0])
	assertContains(t, out, "Restore complete: 0 entries, 0 archived days (live day 2026-10-17)")
	if got := h.state("default").Vessel.Name; got != "Aurora" {
		t.Fatalf("vessel after restore = %q, want Aurora", got)
	}
}

func TestBackupImportBareLedger(t *testing.T) {
	h := newHarness(t)

	path := filepath.Join(t.TempDir(), "legacy.json")
	legacy := `{"vessel":{"name":"Old Salt"},"daily":{"date":"2026-10-17","mode":"Moored"}}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy: %v", err)
	}

	h.run("backup", "import", path)
	st := h.state("default")
	if st.Vessel.Name != "Old Salt" || st.Daily.Mode != logbook.ModeMoored {
		t.Fatalf("restored = %+v", st)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write bad: %v", err)
	}
	if _, err := h.exec("backup", "import", bad); err == nil {
		t.Fatalf("garbage backup accepted, want error")
	}
}

func TestWeatherPull(t *testing.T) {
	h := newHarness(t)
	temp, wind := 24.5, 12.0
	h.weather.wx = logbook.Weather{TempC: &temp, WindKts: &wind}

	if _, err := h.exec("weather"); err == nil {
		t.Fatalf("weather without coordinates succeeded, want error")
	}
	if h.weather.calls != 0 {
		t.Fatalf("fetch calls = %d, want 0", h.weather.calls)
	}

	out := h.run("weather", "--lat", "-27.5", "--lon", "153.0333")
	assertContains(t, out, "-27.5000, 153.0333: 24.5 °C, wind 12 kn")
	if h.weather.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", h.weather.calls)
	}

	assertContains(t, h.run("weather", "--cached"), "24.5 °C")
	if h.weather.calls != 1 {
		t.Fatalf("cached read fetched, calls = %d", h.weather.calls)
	}
	assertContains(t, h.run("today"), "Weather (-27.5000, 153.0333): 24.5 °C")

	if _, err := h.exec("weather", "--lat", "-27.5"); err == nil {
		t.Fatalf("--lat without --lon accepted, want error")
	}
	if _, err := h.exec("weather", "--lat", "95", "--lon", "0"); err == nil {
		t.Fatalf("out-of-range latitude accepted, want error")
	}
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)
	assertContains(t, h.run("version"), "bridgelog ")
}
