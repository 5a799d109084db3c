package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faizmokh/bridgelog/internal/calendar"
	"github.com/faizmokh/bridgelog/internal/logbook"
)

// keyFlags address an entry by id (the positional argument) or by its
// date/time/position tuple.
type keyFlags struct {
	day      string
	date     string
	time     string
	position string
}

func (k *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&k.day, "day", "", "Archived day in YYYY-MM-DD (default: the live log)")
	cmd.Flags().StringVar(&k.date, "key-date", "", "Entry date when no id is given (default: the targeted day)")
	cmd.Flags().StringVar(&k.time, "key-time", "", "Entry time in HH:MM when no id is given")
	cmd.Flags().StringVar(&k.position, "key-position", "", "Entry position when no id is given")
}

func (k keyFlags) scope() logbook.Scope {
	if k.day != "" {
		return logbook.ScopeHistory
	}
	return logbook.ScopeLive
}

func (k keyFlags) key(args []string, live string) (logbook.EntryKey, error) {
	if len(args) > 0 && args[0] != "" {
		return logbook.EntryKey{ID: args[0]}, nil
	}
	if k.time == "" {
		return logbook.EntryKey{}, fmt.Errorf("an entry id or --key-time is required")
	}
	date := k.date
	if date == "" {
		date = k.day
	}
	if date == "" {
		date = live
	}
	return logbook.EntryKey{Date: date, Time: k.time, Position: k.position}, nil
}

// entryFlags bind every operator-editable field of an entry.
type entryFlags struct {
	fields logbook.EntryFields
}

func (f *entryFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.fields.CourseMagnetic, "course-magnetic", "", "Magnetic course")
	fl.StringVar(&f.fields.CourseGyro, "course-gyro", "", "Gyro course")
	fl.StringVar(&f.fields.CourseSteering, "course-steering", "", "Steering course")
	fl.StringVar(&f.fields.Speed, "speed", "", "Speed in knots")
	fl.StringVar(&f.fields.WindDir, "wind-dir", "", "Wind direction")
	fl.StringVar(&f.fields.WindForce, "wind-force", "", "Beaufort force 0-12")
	fl.StringVar(&f.fields.Sea, "sea", "", "Sea state (default: from the wind force)")
	fl.StringVar(&f.fields.Sky, "sky", "", "Sky")
	fl.StringVar(&f.fields.Visibility, "visibility", "", "Visibility")
	fl.StringVar(&f.fields.Barometer, "baro", "", "Barometer in hPa")
	fl.StringVar(&f.fields.AirTemp, "air-temp", "", "Air temperature")
	fl.StringVar(&f.fields.SeaTemp, "sea-temp", "", "Sea temperature")
	fl.StringVar(&f.fields.Engines, "engines", "", "Engine status")
	fl.StringVar(&f.fields.Watchkeeper, "watch", "", "Watchkeeper (default: the ledger watchkeeper)")
	fl.StringVar(&f.fields.Remarks, "remarks", "", "Remarks")
	fl.StringVar(&f.fields.TotalFuel, "fuel", "", "Total fuel remaining in litres")
}

// apply copies the flags the operator set onto e.
func (f *entryFlags) apply(cmd *cobra.Command, e logbook.Entry) logbook.Entry {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("course-magnetic", &e.CourseMagnetic, f.fields.CourseMagnetic)
	set("course-gyro", &e.CourseGyro, f.fields.CourseGyro)
	set("course-steering", &e.CourseSteering, f.fields.CourseSteering)
	set("speed", &e.Speed, f.fields.Speed)
	set("wind-dir", &e.WindDir, f.fields.WindDir)
	set("wind-force", &e.WindForce, f.fields.WindForce)
	set("sea", &e.Sea, f.fields.Sea)
	set("sky", &e.Sky, f.fields.Sky)
	set("visibility", &e.Visibility, f.fields.Visibility)
	set("baro", &e.Barometer, f.fields.Barometer)
	set("air-temp", &e.AirTemp, f.fields.AirTemp)
	set("sea-temp", &e.SeaTemp, f.fields.SeaTemp)
	set("engines", &e.Engines, f.fields.Engines)
	set("watch", &e.Watchkeeper, f.fields.Watchkeeper)
	set("remarks", &e.Remarks, f.fields.Remarks)
	set("fuel", &e.TotalFuel, f.fields.TotalFuel)
	return e
}

// confirmFrom asks on out and reads a y/n answer from in.
func confirmFrom(in io.Reader, out io.Writer) logbook.Confirmer {
	return logbook.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

func formatEntry(e logbook.Entry) string {
	b := strings.Builder{}
	b.Grow(64 + len(e.Remarks))

	b.WriteString(e.Time)
	b.WriteString(" ")
	b.WriteString(e.Position)
	if e.CourseMagnetic != "" {
		b.WriteString(" co ")
		b.WriteString(e.CourseMagnetic)
	}
	if e.Speed != "" {
		b.WriteString(" ")
		b.WriteString(e.Speed)
		b.WriteString(" kn")
	}
	if e.WindDir != "" || e.WindForce != "" {
		b.WriteString(" wind ")
		b.WriteString(strings.TrimSpace(e.WindDir + " F" + e.WindForce))
	}
	if e.TotalFuel != "" {
		b.WriteString(" fuel ")
		b.WriteString(e.TotalFuel)
	}
	if e.Watchkeeper != "" {
		b.WriteString(" [")
		b.WriteString(e.Watchkeeper)
		b.WriteString("]")
	}
	if e.Remarks != "" {
		b.WriteString(" ")
		b.WriteString(e.Remarks)
	}
	return b.String()
}

// printEntries lists entries newest first with their fuel used.
func printEntries(out io.Writer, entries []logbook.Entry, fuel logbook.FuelResult) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "(no entries)")
		return
	}
	for i, e := range entries {
		used := ""
		if i < len(fuel.PerEntry) && fuel.PerEntry[i] != nil {
			used = fmt.Sprintf(" (used %s L)", calendar.Litres(*fuel.PerEntry[i]))
		}
		fmt.Fprintf(out, "%d. %s%s\n   id %s\n", i+1, formatEntry(e), used, e.ID)
	}
}

func printNotes(out io.Writer, notes []logbook.Note) {
	if len(notes) == 0 {
		return
	}
	fmt.Fprintln(out, "Notes:")
	for _, n := range notes {
		fmt.Fprintf(out, "  %s %s\n", n.Time, n.Text)
	}
}

func printFuel(out io.Writer, used float64, last *float64) {
	line := fmt.Sprintf("Fuel used: %s L", calendar.Litres(used))
	if last != nil {
		line += fmt.Sprintf(" (last total %s L)", calendar.Litres(*last))
	}
	fmt.Fprintln(out, line)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
