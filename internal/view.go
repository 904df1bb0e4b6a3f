package internal

import (
	"fmt"
	"strings"

	"timecard/internal/timelog"
	"timecard/internal/timer"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	projectItemStyle = lipgloss.NewStyle().
				Padding(0, 1)

	projectItemSelectedStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("170")).
					Background(lipgloss.Color("235")).
					Padding(0, 1)

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	timerRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 0)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	logHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	logProjectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	logTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)
)

const recentLogCount = 5

func (m *Model) statusLine() string {
	if m.Err != nil {
		return errorStyle.Render("Error: " + m.Err.Error())
	}
	if m.Notice != "" {
		return noticeStyle.Render(m.Notice)
	}
	return ""
}

func (m *Model) emptyStateView() string {
	body := titleStyle.Render("Timecard") + "\n\n" +
		inactiveStyle.Render("No projects yet. Press 'n' to add one.")
	if s := m.statusLine(); s != "" {
		body += "\n\n" + s
	}
	return lipgloss.Place(80, 24, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) mainView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(80).Render("Timecard"))
	sb.WriteString("\n\n")

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.projectListView(),
		"  ",
		m.projectDetailView(),
	)
	sb.WriteString(boxes)
	sb.WriteString("\n\n")
	if s := m.statusLine(); s != "" {
		sb.WriteString(s)
		sb.WriteString("\n")
	}
	sb.WriteString(m.help.View(m.keys))

	return sb.String()
}

func (m *Model) projectListView() string {
	var sb strings.Builder

	sb.WriteString("Projects\n\n")

	for i, p := range m.Projects {
		marker := " "
		if p.Current {
			marker = "*"
		}
		running := ""
		if p.CheckedOut() {
			running = " ●"
		}

		line := fmt.Sprintf("%s %s %s%s", marker, p.Name, timer.Short(p.Total), running)

		if i == m.SelectedIndex {
			sb.WriteString(projectItemSelectedStyle.Render(line))
		} else {
			sb.WriteString(projectItemStyle.Render(inactiveStyle.Render(line)))
		}
		sb.WriteString("\n")
	}

	return boxStyle.Width(28).Height(15).Render(sb.String())
}

func (m *Model) projectDetailView() string {
	p := m.SelectedProject()
	if p == nil {
		return boxStyle.Width(45).Height(15).Render("Select a project")
	}

	var timerStr string
	status := "Checked in"
	statusStyle := inactiveStyle
	if p.CheckedOut() {
		timerStr = timerRunningStyle.Render(timer.Format(p.Running(m.Now)))
		status = "Checked out since " + p.CheckoutAt.Local().Format("15:04")
		statusStyle = runningStyle
	} else {
		timerStr = timerDisplayStyle.Render(timer.Format(0))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Project: %s", p.Name))
	if p.Current {
		sb.WriteString(" (current)")
	}
	sb.WriteString("\n\n")
	sb.WriteString(timerStr)
	sb.WriteString(fmt.Sprintf("\n\n%s\n", statusStyle.Render(status)))
	sb.WriteString(fmt.Sprintf("Total: %s\n", timer.Format(p.Total)))

	logs := m.TimeLogs[p.Name]
	if len(logs) > 0 {
		sb.WriteString("\n")
		sb.WriteString(logHeaderStyle.Render("Recent Sessions"))
		sb.WriteString("\n")
		for _, l := range logs[:min(len(logs), recentLogCount)] {
			sb.WriteString(m.formatLogEntry(l, false))
			sb.WriteString("\n")
		}
	}

	return boxStyle.Width(45).Height(15).Render(sb.String())
}

func (m *Model) addFormView() string {
	label := inputStyle.Render("→ Project Name: ")

	form := fmt.Sprintf("%s%s\n\n%s",
		label, m.NameInput.View(),
		helpStyle.Render("Enter: Save | Esc: Cancel"),
	)
	if m.Err != nil {
		form += "\n\n" + errorStyle.Render(m.Err.Error())
	}

	return lipgloss.Place(
		80, 24,
		lipgloss.Center, lipgloss.Center,
		titleStyle.Width(50).Render("Add New Project")+"\n\n"+boxStyle.Width(50).Render(form),
	)
}

// allLogsView lists every record, scrolled so LogViewScroll is the first row.
func (m *Model) allLogsView() string {
	const visible = 15

	var sb strings.Builder
	sb.WriteString(titleStyle.Width(80).Render("All Sessions"))
	sb.WriteString("\n\n")

	if len(m.AllLogs) == 0 {
		sb.WriteString(inactiveStyle.Render("No sessions recorded yet."))
	} else {
		start := min(m.LogViewScroll, len(m.AllLogs)-1)
		end := min(start+visible, len(m.AllLogs))
		for _, l := range m.AllLogs[start:end] {
			sb.WriteString(m.formatLogEntry(l, true))
			sb.WriteString("\n")
		}
		sb.WriteString(logTimeStyle.Render(fmt.Sprintf("\n%d-%d of %d", start+1, end, len(m.AllLogs))))
	}

	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("Scroll: Up/Down | Back: Esc/l"))
	return sb.String()
}

func (m *Model) formatLogEntry(l timelog.Record, withProject bool) string {
	timeStr := logTimeStyle.Render(l.CheckinAt.Local().Format("Jan 02 15:04"))
	project := ""
	if withProject {
		project = " " + logProjectStyle.Render("["+l.Project+"]")
	}
	return fmt.Sprintf("  %s  %s%s", timeStr, l.Breakdown, project)
}
