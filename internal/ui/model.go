package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/faizmokh/bridgelog/internal/controller"
	"github.com/faizmokh/bridgelog/internal/logbook"
)

// refreshInterval is how often the clock line and save status are redrawn.
const refreshInterval = 30 * time.Second

// Model owns Bubble Tea state for the bridge log.
type Model struct {
	ctx         context.Context
	ctrl        *controller.Controller
	changes     chan struct{}
	unsubscribe func()

	state    logbook.State
	now      time.Time
	view     view
	day      int
	selected int

	mode       mode
	input      textinput.Model
	inputLabel string
	target     logbook.Entry

	statusLine string
	errorLine  string
}

type view uint8

const (
	viewToday view = iota
	viewHistory
)

type mode uint8

const (
	modeNormal mode = iota
	modeAddEntry
	modeMovement
	modeNote
	modePosition
	modeLocation
	modeWatchkeeper
	modeEdit
	modeConfirmDelete
)

type changedMsg struct{}

type tickMsg time.Time

type appliedMsg struct {
	name   string
	status string
	err    error
}

type weatherMsg struct {
	wx  logbook.Weather
	err error
}

// NewModel seeds a Bubble Tea model over a loaded controller.
func NewModel(ctx context.Context, ctrl *controller.Controller) Model {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 256

	changes := make(chan struct{}, 1)
	unsubscribe := ctrl.Subscribe(func(controller.Change) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	return Model{
		ctx:         ctx,
		ctrl:        ctrl,
		changes:     changes,
		unsubscribe: unsubscribe,
		state:       ctrl.State(),
		now:         ctrl.Now(),
		input:       in,
		statusLine:  "Ready.",
	}
}

// Init starts listening for ledger changes and the refresh tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), tick())
}

// Update wires TUI state transitions from user input and async commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case changedMsg:
		m.refresh()
		return m, m.waitForChange()
	case tickMsg:
		m.now = time.Time(msg)
		m.refresh()
		return m, tick()
	case appliedMsg:
		return m.handleApplied(msg)
	case weatherMsg:
		return m.handleWeather(msg)
	}

	if m.mode != modeNormal {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) refresh() {
	m.state = m.ctrl.State()
	days := m.days()
	if m.day >= len(days) {
		m.day = len(days) - 1
	}
	if m.day < 0 {
		m.day = 0
	}
	if len(days) == 0 && m.view == viewHistory {
		m.view = viewToday
	}
	if n := len(m.entries()); m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNormal {
		return m.handleInputKey(msg)
	}

	entries := m.entries()
	switch msg.String() {
	case "ctrl+c", "q":
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		return m, tea.Quit
	case "down", "j":
		if m.selected < len(entries)-1 {
			m.selected++
			m.clearLines()
		}
	case "up", "k":
		if m.selected > 0 {
			m.selected--
			m.clearLines()
		}
	case "tab", "H":
		return m.toggleView()
	case "left", "h":
		if m.view == viewHistory && m.day < len(m.days())-1 {
			m.day++
			m.selected = 0
		}
	case "right", "l":
		if m.view == viewHistory && m.day > 0 {
			m.day--
			m.selected = 0
		}
	case "a":
		if m.view == viewToday {
			return m.beginInput(modeAddEntry, "New entry (co= spd= wd= wf= sea= sky= vis= baro= air= seat= eng= watch= fuel=, then remarks):", "")
		}
	case "m":
		if m.view == viewToday {
			m.mode = modeMovement
			m.clearLines()
		}
	case "n":
		if m.view == viewToday {
			return m.beginInput(modeNote, "Note:", "")
		}
	case "p":
		return m.beginInput(modePosition, "Position (27 30 S 153 02 E):", positionToInput(m.state.Pos))
	case "L":
		return m.beginInput(modeLocation, "Location today:", m.state.Daily.Location)
	case "W":
		return m.beginInput(modeWatchkeeper, "Watchkeeper:", m.state.Watchkeeper)
	case "M":
		next := nextMode(m.state.Daily.Mode)
		return m, m.applyCmd("daily", "Mode set to "+string(next)+".", func(s logbook.State) (logbook.State, error) {
			return logbook.SetDaily(s, s.Daily.Location, next), nil
		})
	case "c":
		m.statusLine = "Using position for weather..."
		return m, m.applyCmd("coords", "", logbook.CoordsFromPosition)
	case "w":
		m.statusLine = "Fetching weather..."
		m.errorLine = ""
		return m, m.weatherCmd()
	case "s":
		return m, m.applyCmd("save day", "Day saved to history.", func(s logbook.State) (logbook.State, error) {
			return logbook.SaveDay(s), nil
		})
	case "e":
		if len(entries) == 0 {
			return m, nil
		}
		m.target = entries[m.selected]
		return m.beginInput(modeEdit, fmt.Sprintf("Edit %s entry (time= and field=value, then remarks):", m.target.Time), entryToInput(m.target))
	case "d":
		if len(entries) == 0 {
			return m, nil
		}
		m.target = entries[m.selected]
		m.mode = modeConfirmDelete
		m.clearLines()
	}

	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeConfirmDelete:
		switch msg.String() {
		case "y", "Y":
			return m.confirmDelete()
		case "n", "N", "esc":
			return m.cancelInput("Delete cancelled.")
		case "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	case modeMovement:
		switch msg.String() {
		case "1", "2", "3", "4":
			kind := logbook.Movements[int(msg.String()[0]-'1')]
			m.mode = modeNormal
			return m, m.applyCmd("movement", string(kind)+" logged.", func(s logbook.State) (logbook.State, error) {
				return logbook.AddMovement(s, kind, m.ctrl.Now())
			})
		case "esc":
			return m.cancelInput("Cancelled.")
		case "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		return m.submitInput()
	case tea.KeyEsc:
		return m.cancelInput("Cancelled.")
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) beginInput(md mode, label, value string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.inputLabel = label
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.clearLines()
	return m, m.input.Focus()
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	now := m.ctrl.Now()

	var cmd tea.Cmd
	switch m.mode {
	case modeAddEntry:
		e, err := parseEntryLine(value, logbook.Entry{}, false)
		if err != nil {
			m.errorLine = err.Error()
			return m, nil
		}
		cmd = m.applyCmd("add entry", "Entry added.", func(s logbook.State) (logbook.State, error) {
			return logbook.AddEntry(s, fieldsOf(e), now)
		})
	case modeNote:
		cmd = m.applyCmd("note", "Note added.", func(s logbook.State) (logbook.State, error) {
			return logbook.AddNote(s, value, now)
		})
	case modePosition:
		p, err := parsePositionLine(value)
		if err != nil {
			m.errorLine = err.Error()
			return m, nil
		}
		cmd = m.applyCmd("position", "Position set.", func(s logbook.State) (logbook.State, error) {
			return logbook.SetPosition(s, p), nil
		})
	case modeLocation:
		cmd = m.applyCmd("daily", "Location set.", func(s logbook.State) (logbook.State, error) {
			return logbook.SetDaily(s, value, s.Daily.Mode), nil
		})
	case modeWatchkeeper:
		cmd = m.applyCmd("watchkeeper", "Watchkeeper set.", func(s logbook.State) (logbook.State, error) {
			return logbook.SetWatchkeeper(s, value), nil
		})
	case modeEdit:
		updated, err := parseEntryLine(value, m.target, true)
		if err != nil {
			m.errorLine = err.Error()
			return m, nil
		}
		scope, day := m.scope()
		key := m.target.Key()
		cmd = m.applyCmd("edit entry", "Entry updated.", func(s logbook.State) (logbook.State, error) {
			return logbook.EditEntry(s, scope, day, key, updated)
		})
	default:
		return m, nil
	}

	m.mode = modeNormal
	m.input.Blur()
	m.input.Reset()
	m.inputLabel = ""
	m.errorLine = ""
	m.statusLine = "Saving..."
	return m, cmd
}

func (m Model) confirmDelete() (tea.Model, tea.Cmd) {
	scope, day := m.scope()
	key := m.target.Key()
	m.mode = modeNormal
	m.statusLine = "Deleting entry..."
	m.errorLine = ""
	return m, m.applyCmd("delete entry", "Entry deleted.", func(s logbook.State) (logbook.State, error) {
		return logbook.DeleteEntry(s, scope, day, key, logbook.ConfirmFunc(func(string) bool { return true }))
	})
}

func (m Model) cancelInput(message string) (tea.Model, tea.Cmd) {
	m.mode = modeNormal
	m.input.Blur()
	m.input.Reset()
	m.inputLabel = ""
	m.target = logbook.Entry{}
	m.statusLine = message
	m.errorLine = ""
	return m, nil
}

func (m Model) toggleView() (tea.Model, tea.Cmd) {
	if m.view == viewHistory {
		m.view = viewToday
		m.selected = 0
		m.statusLine = "Today."
		return m, nil
	}
	if len(m.days()) == 0 {
		m.statusLine = "No archived days yet."
		return m, nil
	}
	m.view = viewHistory
	m.day = 0
	m.selected = 0
	m.statusLine = "History."
	return m, nil
}

func (m Model) handleApplied(msg appliedMsg) (tea.Model, tea.Cmd) {
	m.refresh()
	if msg.err != nil {
		if errors.Is(msg.err, logbook.ErrCancelled) {
			m.statusLine = "Cancelled."
			m.errorLine = ""
			return m, nil
		}
		m.errorLine = msg.err.Error()
		m.statusLine = ""
		return m, nil
	}
	m.errorLine = ""
	if msg.name == "coords" {
		m.statusLine = "Coordinates set to " + m.state.LocLabel + ". Fetching weather..."
		return m, m.weatherCmd()
	}
	m.statusLine = msg.status
	return m, nil
}

func (m Model) handleWeather(msg weatherMsg) (tea.Model, tea.Cmd) {
	m.refresh()
	if msg.err != nil {
		m.errorLine = "Weather: " + msg.err.Error()
		m.statusLine = ""
		return m, nil
	}
	m.errorLine = ""
	m.statusLine = "Weather updated."
	return m, nil
}

func (m Model) scope() (logbook.Scope, string) {
	if m.view == viewHistory {
		if days := m.days(); m.day < len(days) {
			return logbook.ScopeHistory, days[m.day].Date
		}
	}
	return logbook.ScopeLive, ""
}

// days lists archived records, most recent first, one per date.
func (m Model) days() []logbook.DayRecord {
	seen := make(map[string]bool, len(m.state.History))
	out := make([]logbook.DayRecord, 0, len(m.state.History))
	for _, d := range m.state.History {
		if seen[d.Date] {
			continue
		}
		seen[d.Date] = true
		out = append(out, d)
	}
	return out
}

// entries returns the rows of the current view, newest first.
func (m Model) entries() []logbook.Entry {
	if m.view == viewHistory {
		if days := m.days(); m.day < len(days) {
			return days[m.day].Entries
		}
		return nil
	}
	return m.state.TodaysLog()
}

func (m *Model) clearLines() {
	m.statusLine = ""
	m.errorLine = ""
}

func (m Model) applyCmd(name, done string, t controller.Transition) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		_, err := ctrl.Apply(name, t)
		return appliedMsg{name: name, status: done, err: err}
	}
}

func (m Model) weatherCmd() tea.Cmd {
	ctrl := m.ctrl
	ctx := m.ctx
	return func() tea.Msg {
		wx, err := ctrl.RefreshWeather(ctx)
		return weatherMsg{wx: wx, err: err}
	}
}

func (m Model) waitForChange() tea.Cmd {
	changes := m.changes
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case <-changes:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
