// ABOUTME: Dashboard rendering for the sync TUI
// ABOUTME: Shows backend rows, collection phases, and the recent activity log
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/rigsync/realtime"
	"github.com/harperreed/rigsync/sync"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Underline(true)

	backendStyle = lipgloss.NewStyle().
			Bold(true).
			Width(12)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	busyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Bold(true)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)
)

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Rig Sync Dashboard"))
	s.WriteString("\n\n")

	s.WriteString(headerStyle.Render("Backends"))
	s.WriteString("\n\n")

	s.WriteString(m.renderBackendRow(backendSnapshot, "Snapshot", m.renderSnapshotStatus()))
	s.WriteString(m.renderBackendRow(backendRealtime, "Realtime", m.renderRealtimeStatus()))
	s.WriteString("\n")

	if m.engine != nil {
		s.WriteString(headerStyle.Render("Collections"))
		s.WriteString("\n\n")
		for _, name := range sync.Collections {
			phase := m.engine.CollectionPhase(name)
			style := messageStyle
			if phase == sync.Ready {
				style = okStyle
			}
			s.WriteString(fmt.Sprintf("  %-20s %s\n", name, style.Render(phase.String())))
		}
		s.WriteString("\n")
	}

	if len(m.messages) > 0 {
		s.WriteString(headerStyle.Render("Recent Activity"))
		s.WriteString("\n\n")
		start := 0
		if len(m.messages) > 5 {
			start = len(m.messages) - 5
		}
		for i := start; i < len(m.messages); i++ {
			s.WriteString(messageStyle.Render("  " + m.messages[i]))
			s.WriteString("\n")
		}
		s.WriteString("\n")
	}

	s.WriteString(m.renderHelp())

	return s.String()
}

func (m Model) renderBackendRow(row int, name, status string) string {
	var b strings.Builder
	if row == m.selectedRow {
		b.WriteString("▶ ")
		b.WriteString(selectedStyle.Render(backendStyle.Render(name)))
	} else {
		b.WriteString("  ")
		b.WriteString(backendStyle.Render(name))
	}
	b.WriteString(status)
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderSnapshotStatus() string {
	if m.syncer == nil {
		return messageStyle.Render("  Not configured")
	}
	if m.snapshotBusy {
		return busyStyle.Render("  " + m.spinner.View() + " Syncing...")
	}
	status := okStyle.Render("  ✓ Idle")
	if ts := m.syncer.LastKnownRemoteTimestamp(); ts > 0 {
		status += messageStyle.Render(" • Remote as of " + formatTimeSince(time.UnixMilli(ts)))
	}
	return status
}

func (m Model) renderRealtimeStatus() string {
	if m.adapter == nil {
		return messageStyle.Render("  Not configured")
	}
	switch m.realtimeState {
	case realtime.Online:
		status := okStyle.Render("  ✓ Online")
		if last := m.adapter.LastSyncTime(); !last.IsZero() {
			status += messageStyle.Render(" • Last write " + formatTimeSince(last))
		}
		return status
	case realtime.Connecting:
		return busyStyle.Render("  " + m.spinner.View() + " Connecting...")
	default:
		return errStyle.Render("  ✗ Offline")
	}
}

func (m Model) renderHelp() string {
	help := []string{
		"↑/↓: Select backend",
		"u: Upload snapshot",
		"d: Download snapshot",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

// formatTimeSince formats a time duration in a human-readable way.
func formatTimeSince(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	} else if duration < 24*time.Hour {
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
