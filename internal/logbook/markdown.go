package logbook

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/faizmokh/bridgelog/internal/calendar"
	"github.com/faizmokh/bridgelog/internal/files"
)

// RenderDay formats an archived day as a Markdown section headed `## YYYY-MM-DD`.
// Entries are listed oldest first.
func RenderDay(d DayRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n", d.Date)
	fmt.Fprintf(&b, "- Location: %s\n", orDash(d.Location))
	fmt.Fprintf(&b, "- Mode: %s\n", orDash(string(d.Mode)))
	if v := vesselLine(d.Vessel); v != "" {
		fmt.Fprintf(&b, "- Vessel: %s\n", v)
	}
	if d.Fuel != nil {
		fmt.Fprintf(&b, "- Fuel used: %s L", calendar.Litres(d.Fuel.UsedLitres))
		if d.Fuel.LastTotalFuel != nil {
			fmt.Fprintf(&b, " (last total %s L)", calendar.Litres(*d.Fuel.LastTotalFuel))
		}
		b.WriteByte('\n')
	}
	if w := WeatherLine(d.Weather); w != "" {
		fmt.Fprintf(&b, "- Weather: %s\n", w)
	}

	b.WriteString("\n### Running log\n")
	if len(d.Entries) == 0 {
		b.WriteString("_No entries._\n")
	} else {
		b.WriteString("| Time | Position | Course | Speed | Wind | Sea | Baro | Fuel | Watch | Remarks |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|---|---|\n")
		for i := len(d.Entries) - 1; i >= 0; i-- {
			e := d.Entries[i]
			wind := strings.TrimSpace(e.WindDir + " " + forceLabel(e.WindForce))
			cells := []string{e.Time, e.Position, e.CourseMagnetic, e.Speed, wind, e.Sea, e.Barometer, e.TotalFuel, e.Watchkeeper, e.Remarks}
			for j, c := range cells {
				cells[j] = cell(c)
			}
			fmt.Fprintf(&b, "| %s |\n", strings.Join(cells, " | "))
		}
	}

	if len(d.Notes) > 0 {
		b.WriteString("\n### Notes\n")
		for i := len(d.Notes) - 1; i >= 0; i-- {
			n := d.Notes[i]
			fmt.Fprintf(&b, "- [%s] %s\n", n.Time, n.Text)
		}
	}
	return b.String()
}

// WeatherLine summarises a weather snapshot on one line, or "" when it is empty.
func WeatherLine(w Weather) string {
	var parts []string
	if w.Condition != nil && *w.Condition != "" {
		parts = append(parts, *w.Condition)
	}
	if w.TempC != nil {
		parts = append(parts, num(*w.TempC)+" °C")
	}
	if w.WindKts != nil {
		wind := "wind " + num(*w.WindKts) + " kn"
		if w.WindDir != nil {
			wind += " from " + num(*w.WindDir) + "°"
		}
		parts = append(parts, wind)
	}
	if w.Pressure != nil {
		parts = append(parts, num(*w.Pressure)+" hPa")
	}
	if w.VisibilityKm != nil {
		parts = append(parts, "vis "+num(*w.VisibilityKm)+" km")
	}
	if w.WaveHeightM != nil {
		wave := "waves " + num(*w.WaveHeightM) + " m"
		if w.WavePeriodS != nil {
			wave += " @ " + num(*w.WavePeriodS) + " s"
		}
		parts = append(parts, wave)
	}
	return strings.Join(parts, ", ")
}

func vesselLine(v Vessel) string {
	if v.Name == "" {
		return ""
	}
	if v.CallSign != "" {
		return v.Name + " (" + v.CallSign + ")"
	}
	return v.Name
}

func forceLabel(f string) string {
	if f == "" {
		return ""
	}
	return "F" + f
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Archive writes archived days into monthly Markdown files.
type Archive struct {
	manager *files.Manager
}

// NewArchive wires the dependencies required to maintain Markdown archives.
func NewArchive(manager *files.Manager) *Archive {
	return &Archive{manager: manager}
}

// ExportDay writes the section for d, replacing an existing section for the
// same date in place or appending a new one. It reports whether a section was
// replaced.
func (a *Archive) ExportDay(ctx context.Context, d DayRecord) (string, bool, error) {
	if a == nil || a.manager == nil {
		return "", false, fmt.Errorf("archive not initialized with file manager")
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	date, err := calendar.Parse(d.Date, time.UTC)
	if err != nil {
		return "", false, fmt.Errorf("archive day %q: %w", d.Date, err)
	}

	path, err := a.manager.EnsureArchiveFile(date)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}

	lines := splitLines(string(data))
	section := splitLines(RenderDay(d))

	start, end := findSection(lines, d.Date)
	replaced := start >= 0
	if replaced {
		out := make([]string, 0, len(lines)-(end-start)+len(section))
		out = append(out, lines[:start]...)
		out = append(out, section...)
		lines = append(out, lines[end:]...)
	} else {
		if needsSeparation(lines) {
			lines = append(lines, "")
		}
		lines = append(lines, section...)
	}

	return path, replaced, files.WriteFileAtomic(path, []byte(joinLines(lines)))
}

// ArchivedDates lists the day sections present in the archive file of month.
func (a *Archive) ArchivedDates(ctx context.Context, month time.Time) ([]string, error) {
	if a == nil || a.manager == nil {
		return nil, fmt.Errorf("archive not initialized with file manager")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(a.manager.ArchivePath(month))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return scanSectionDates(f)
}

func scanSectionDates(r io.Reader) ([]string, error) {
	var dates []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if date, ok := parseSectionHeading(strings.TrimSpace(scanner.Text())); ok {
			dates = append(dates, date)
		}
	}
	return dates, scanner.Err()
}

func parseSectionHeading(line string) (string, bool) {
	if !strings.HasPrefix(line, "## ") {
		return "", false
	}
	date := strings.TrimSpace(line[3:])
	if _, err := calendar.Parse(date, time.UTC); err != nil {
		return "", false
	}
	return date, true
}

// findSection returns the line range [start, end) of the section for date,
// trailing blank lines excluded. start is -1 when there is none.
func findSection(lines []string, date string) (int, int) {
	start := -1
	for i, line := range lines {
		if d, ok := parseSectionHeading(strings.TrimSpace(line)); ok && d == date {
			start = i
			break
		}
	}
	if start == -1 {
		return -1, -1
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if _, ok := parseSectionHeading(strings.TrimSpace(lines[i])); ok {
			end = i
			break
		}
	}
	for end > start+1 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return start, end
}

func splitLines(input string) []string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	lines := strings.Split(input, "\n")
	// Remove the trailing empty element produced by Split when the input ends with a newline.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func needsSeparation(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	return strings.TrimSpace(lines[len(lines)-1]) != ""
}

func joinLines(lines []string) string {
	content := strings.Join(lines, "\n")
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content
}
