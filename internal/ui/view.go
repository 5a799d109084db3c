package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/faizmokh/bridgelog/internal/calendar"
	"github.com/faizmokh/bridgelog/internal/logbook"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	fuelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// View renders the frame.
func (m Model) View() string {
	var b strings.Builder

	if m.view == viewHistory {
		m.renderHistory(&b)
	} else {
		m.renderToday(&b)
	}

	if m.errorLine != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("! " + m.errorLine))
		b.WriteByte('\n')
	} else if m.statusLine != "" {
		b.WriteString("\n")
		b.WriteString(m.statusLine)
		b.WriteByte('\n')
	}

	switch m.mode {
	case modeNormal:
	case modeConfirmDelete:
		b.WriteString("\n")
		b.WriteString(logbook.DeletePrompt)
		b.WriteString(" (y/n)\n")
		b.WriteString("  ")
		b.WriteString(formatEntry(m.target))
		b.WriteByte('\n')
	case modeMovement:
		b.WriteString("\nMovement:")
		for i, kind := range logbook.Movements {
			fmt.Fprintf(&b, "  %d %s", i+1, kind)
		}
		b.WriteString("  (Esc to cancel)\n")
	default:
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(m.inputLabel))
		b.WriteByte('\n')
		b.WriteString(m.input.View())
		b.WriteByte('\n')
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.saveStatus()))
	b.WriteByte('\n')
	if m.view == viewHistory {
		b.WriteString(dimStyle.Render("History: <-/h older  ->/l newer  j/k select  e edit  d delete  tab today  q quit"))
	} else {
		b.WriteString(dimStyle.Render("Log: a entry  m movement  n note  p position  c use position  w weather  L location  M mode  W watch"))
		b.WriteByte('\n')
		b.WriteString(dimStyle.Render("Day: j/k select  e edit  d delete  s save day  tab history  q quit"))
	}
	b.WriteByte('\n')

	return b.String()
}

func (m Model) renderToday(b *strings.Builder) {
	st := m.state
	header := fmt.Sprintf("%s  %s  %s", calendar.Pretty(st.Daily.Date), st.Daily.Mode, orDash(st.Daily.Location))
	b.WriteString(titleStyle.Render(header))
	b.WriteByte('\n')

	details := []string{"Pos " + orDash(st.Pos.Composed())}
	if st.Vessel.Name != "" {
		details = append([]string{st.Vessel.Name}, details...)
	}
	if st.Watchkeeper != "" {
		details = append(details, "Watch "+st.Watchkeeper)
	}
	details = append(details, "Clock "+calendar.Clock(m.now))
	b.WriteString(strings.Join(details, "  |  "))
	b.WriteByte('\n')

	if line := logbook.WeatherLine(st.LastWeather); line != "" {
		fmt.Fprintf(b, "%s %s: %s\n", labelStyle.Render("Weather"), st.LocLabel, line)
	}

	entries := st.TodaysLog()
	fuel := logbook.TodayFuel(st)
	b.WriteString(fuelStyle.Render(fuelLine(fuel.UsedSum, fuel.LastTotalFuel)))
	b.WriteString("\n\n")

	m.renderEntries(b, entries, fuel)
	renderNotes(b, st.TodaysNotes())
}

func (m Model) renderHistory(b *strings.Builder) {
	days := m.days()
	if len(days) == 0 {
		b.WriteString("(no archived days)\n")
		return
	}
	d := days[m.day]
	header := fmt.Sprintf("Archive %d/%d  %s  %s  %s", m.day+1, len(days), calendar.Pretty(d.Date), d.Mode, orDash(d.Location))
	b.WriteString(titleStyle.Render(header))
	b.WriteByte('\n')
	if d.Vessel.Name != "" {
		b.WriteString(d.Vessel.Name)
		b.WriteByte('\n')
	}
	if line := logbook.WeatherLine(d.Weather); line != "" {
		fmt.Fprintf(b, "%s %s\n", labelStyle.Render("Weather"), line)
	}
	if d.Fuel != nil {
		b.WriteString(fuelStyle.Render(fuelLine(d.Fuel.UsedLitres, d.Fuel.LastTotalFuel)))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	m.renderEntries(b, d.Entries, logbook.ComputeFuel(d.Entries, logbook.CarryInto(m.state.History, d.Date)))
	renderNotes(b, d.Notes)
}

func (m Model) renderEntries(b *strings.Builder, entries []logbook.Entry, fuel logbook.FuelResult) {
	if len(entries) == 0 {
		b.WriteString("(no entries)\n")
		return
	}
	for i, e := range entries {
		line := formatEntry(e)
		if i < len(fuel.PerEntry) && fuel.PerEntry[i] != nil {
			line += fuelStyle.Render(fmt.Sprintf("  -%s L", calendar.Litres(*fuel.PerEntry[i])))
		}
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteByte('\n')
	}
}

func renderNotes(b *strings.Builder, notes []logbook.Note) {
	if len(notes) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Notes"))
	b.WriteByte('\n')
	for _, n := range notes {
		fmt.Fprintf(b, "  %s  %s\n", n.Time, n.Text)
	}
}

func (m Model) saveStatus() string {
	st := m.ctrl.Status()
	switch {
	case st.LastError != nil:
		return "Save failed: " + st.LastError.Error()
	case st.Pending:
		return "Unsaved changes..."
	case st.LastSaved.IsZero():
		return "Identity " + m.ctrl.Identity()
	default:
		return fmt.Sprintf("Identity %s, saved %s", m.ctrl.Identity(), calendar.Clock(st.LastSaved.Local()))
	}
}

func fuelLine(used float64, last *float64) string {
	line := "Fuel used " + calendar.Litres(used) + " L"
	if last != nil {
		line += " (last total " + calendar.Litres(*last) + " L)"
	}
	return line
}

func formatEntry(e logbook.Entry) string {
	parts := []string{e.Time, e.Position}
	if e.CourseMagnetic != "" {
		parts = append(parts, "co "+e.CourseMagnetic)
	}
	if e.Speed != "" {
		parts = append(parts, e.Speed+" kn")
	}
	if e.WindDir != "" || e.WindForce != "" {
		wind := e.WindDir
		if e.WindForce != "" {
			wind = strings.TrimSpace(wind + " F" + e.WindForce)
		}
		parts = append(parts, wind)
	}
	if e.Sea != "" {
		parts = append(parts, e.Sea)
	}
	if e.TotalFuel != "" {
		parts = append(parts, "fuel "+e.TotalFuel)
	}
	if e.Watchkeeper != "" {
		parts = append(parts, "["+e.Watchkeeper+"]")
	}
	if e.Remarks != "" {
		parts = append(parts, e.Remarks)
	}
	return strings.Join(parts, "  ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
