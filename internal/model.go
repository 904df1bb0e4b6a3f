package internal

import (
	"fmt"
	"time"

	"timecard/internal/timelog"
	"timecard/internal/tracker"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type MsgTick struct{}

type Model struct {
	Projects      []tracker.Entry
	SelectedIndex int
	Now           time.Time

	// Add form state
	ShowAddForm bool
	NameInput   textinput.Model

	// Records per project, newest first
	TimeLogs map[string][]timelog.Record

	// All-records viewer state
	ShowLogView   bool
	LogViewScroll int
	AllLogs       []timelog.Record

	Notice string
	Err    error

	keys    keyMap
	help    help.Model
	tracker *tracker.Tracker
}

func NewModel(tr *tracker.Tracker) (*Model, error) {
	input := textinput.New()
	input.Placeholder = "project name"
	input.CharLimit = 64
	input.Width = 30

	m := &Model{
		NameInput: input,
		keys:      defaultKeyMap(),
		help:      help.New(),
		tracker:   tr,
	}
	if err := m.refresh(); err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	// Start on the current project.
	for i, p := range m.Projects {
		if p.Current {
			m.SelectedIndex = i
			break
		}
	}
	return m, nil
}

// refresh reloads projects and records from the store.
func (m *Model) refresh() error {
	entries, err := m.tracker.List()
	if err != nil {
		return err
	}
	records, err := m.tracker.Records("")
	if err != nil {
		return err
	}

	m.Projects = entries
	m.TimeLogs = make(map[string][]timelog.Record)
	for _, rec := range records {
		m.TimeLogs[rec.Project] = append(m.TimeLogs[rec.Project], rec)
	}
	m.AllLogs = records
	m.Now = m.tracker.Now()

	if m.SelectedIndex >= len(m.Projects) {
		m.SelectedIndex = len(m.Projects) - 1
	}
	if m.SelectedIndex < 0 {
		m.SelectedIndex = 0
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		m.Now = m.tracker.Now()
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	if m.ShowLogView {
		return m.allLogsView()
	}

	if m.ShowAddForm {
		return m.addFormView()
	}

	if len(m.Projects) == 0 {
		return m.emptyStateView()
	}

	return m.mainView()
}

func (m *Model) SelectedProject() *tracker.Entry {
	if m.SelectedIndex >= 0 && m.SelectedIndex < len(m.Projects) {
		return &m.Projects[m.SelectedIndex]
	}
	return nil
}

// apply reports the outcome of an action and reloads state.
func (m *Model) apply(notice string, err error) {
	if err != nil {
		m.Err = err
		m.Notice = ""
	} else {
		m.Err = nil
		m.Notice = notice
	}
	if err := m.refresh(); err != nil {
		m.Err = err
	}
}

func (m *Model) toggleSelected() {
	p := m.SelectedProject()
	if p == nil {
		return
	}
	if p.CheckedOut() {
		rec, err := m.tracker.Checkin(p.Name)
		if err != nil {
			m.apply("", err)
			return
		}
		m.apply(fmt.Sprintf("Checked in %s after %s.", rec.Project, rec.Breakdown), nil)
		return
	}
	_, err := m.tracker.Checkout(p.Name)
	m.apply(fmt.Sprintf("Checked out %s.", p.Name), err)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ShowLogView {
		return m.handleLogViewInput(msg)
	}

	if m.ShowAddForm {
		return m.handleFormInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.SelectedIndex > 0 {
			m.SelectedIndex--
		}
	case key.Matches(msg, m.keys.Down):
		if m.SelectedIndex < len(m.Projects)-1 {
			m.SelectedIndex++
		}
	case key.Matches(msg, m.keys.Toggle):
		m.toggleSelected()
	case key.Matches(msg, m.keys.Switch):
		if p := m.SelectedProject(); p != nil {
			name := p.Name
			_, err := m.tracker.Switch(name)
			m.apply(fmt.Sprintf("Switched to %s.", name), err)
		}
	case key.Matches(msg, m.keys.New):
		m.ShowAddForm = true
		m.NameInput.Reset()
		return m, m.NameInput.Focus()
	case key.Matches(msg, m.keys.Delete):
		if p := m.SelectedProject(); p != nil {
			name := p.Name
			m.apply(fmt.Sprintf("Deleted %s.", name), m.tracker.Delete(name))
		}
	case key.Matches(msg, m.keys.Log):
		m.ShowLogView = true
		m.LogViewScroll = 0
	}
	return m, nil
}

func (m *Model) handleLogViewInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc", "l":
		m.ShowLogView = false
	case "up", "k":
		if m.LogViewScroll > 0 {
			m.LogViewScroll--
		}
	case "down", "j":
		maxScroll := len(m.AllLogs) - 1
		if maxScroll < 0 {
			maxScroll = 0
		}
		if m.LogViewScroll < maxScroll {
			m.LogViewScroll++
		}
	}
	return m, nil
}

func (m *Model) handleFormInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.ShowAddForm = false
		m.NameInput.Blur()
		return m, nil
	case "enter":
		p, err := m.tracker.Create(m.NameInput.Value())
		if err != nil {
			// Keep the form open so the name can be fixed.
			m.Err = err
			return m, nil
		}
		m.ShowAddForm = false
		m.NameInput.Blur()
		m.apply(fmt.Sprintf("Created %s.", p.Name), nil)
		for i, e := range m.Projects {
			if e.Name == p.Name {
				m.SelectedIndex = i
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.NameInput, cmd = m.NameInput.Update(msg)
	return m, cmd
}
