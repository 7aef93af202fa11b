// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Sync dashboard showing backend states with keys to trigger sync operations
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/rigsync/realtime"
	"github.com/harperreed/rigsync/store"
	"github.com/harperreed/rigsync/sync"
)

// Backend rows shown on the dashboard.
const (
	backendSnapshot = iota
	backendRealtime
	backendCount
)

// SnapshotDoneMsg is sent when a snapshot operation completes.
type SnapshotDoneMsg struct {
	Op     string
	Status sync.DownloadStatus
	Error  error
}

// RealtimeStateMsg carries a realtime connection state transition.
type RealtimeStateMsg realtime.State

// Model is the main bubbletea model for the sync dashboard.
type Model struct {
	store   store.Store
	syncer  *sync.SnapshotSyncer
	adapter *realtime.Adapter
	engine  *sync.Engine

	spinner       spinner.Model
	snapshotBusy  bool
	realtimeState realtime.State
	stateCh       <-chan realtime.State
	selectedRow   int
	messages      []string

	width  int
	height int
}

// NewModel creates the dashboard model. syncer, adapter and engine may be
// nil when the corresponding backend is not configured.
func NewModel(st store.Store, syncer *sync.SnapshotSyncer, adapter *realtime.Adapter, engine *sync.Engine) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	m := Model{
		store:   st,
		syncer:  syncer,
		adapter: adapter,
		engine:  engine,
		spinner: sp,
		width:   80,
		height:  24,
	}
	if adapter != nil {
		m.realtimeState = adapter.State()
		m.stateCh = adapter.StateChanges()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.stateCh != nil {
		cmds = append(cmds, watchRealtimeState(m.stateCh))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SnapshotDoneMsg:
		m.snapshotBusy = false
		if msg.Error != nil {
			m.addMessage(fmt.Sprintf("✗ %s failed: %v", msg.Op, msg.Error))
		} else if msg.Op == "download" {
			m.addMessage(fmt.Sprintf("✓ download: %s", msg.Status))
		} else {
			m.addMessage("✓ upload completed")
		}
		return m, nil

	case RealtimeStateMsg:
		m.realtimeState = realtime.State(msg)
		m.addMessage(fmt.Sprintf("realtime: %s", m.realtimeState))
		return m, watchRealtimeState(m.stateCh)
	}

	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < backendCount-1 {
			m.selectedRow++
		}
	case "u":
		if m.syncer != nil && !m.snapshotBusy {
			m.snapshotBusy = true
			m.addMessage("Starting snapshot upload...")
			return m, m.uploadSnapshot()
		}
	case "d":
		if m.syncer != nil && !m.snapshotBusy {
			m.snapshotBusy = true
			m.addMessage("Starting snapshot download...")
			return m, m.downloadSnapshot()
		}
	}
	return m, nil
}

// uploadSnapshot pushes the local collections to the Drive snapshot.
func (m Model) uploadSnapshot() tea.Cmd {
	return func() tea.Msg {
		err := m.syncer.Upload(context.Background())
		return SnapshotDoneMsg{Op: "upload", Error: err}
	}
}

// downloadSnapshot merges the remote snapshot into the local store.
func (m Model) downloadSnapshot() tea.Cmd {
	return func() tea.Msg {
		status, err := m.syncer.Download(context.Background())
		return SnapshotDoneMsg{Op: "download", Status: status, Error: err}
	}
}

// watchRealtimeState blocks on the adapter's state channel. The Update loop
// re-issues it after every delivery.
func watchRealtimeState(ch <-chan realtime.State) tea.Cmd {
	return func() tea.Msg {
		return RealtimeStateMsg(<-ch)
	}
}

// addMessage adds a line to the activity log.
func (m *Model) addMessage(msg string) {
	timestamp := time.Now().Format("15:04:05")
	m.messages = append(m.messages, fmt.Sprintf("[%s] %s", timestamp, msg))
	if len(m.messages) > 50 {
		m.messages = m.messages[len(m.messages)-50:]
	}
}

// Run starts the dashboard in the alternate screen.
func Run(st store.Store, syncer *sync.SnapshotSyncer, adapter *realtime.Adapter, engine *sync.Engine) error {
	p := tea.NewProgram(NewModel(st, syncer, adapter, engine), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
