// ABOUTME: Tests for the sync dashboard TUI
// ABOUTME: Verifies rendering, key navigation, and message handling
package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/rigsync/store"
)

func TestDashboardRendering(t *testing.T) {
	m := NewModel(store.NewMemory(), nil, nil, nil)

	output := m.View()
	if output == "" {
		t.Fatal("Dashboard view should not be empty")
	}
	if !strings.Contains(output, "Rig Sync Dashboard") {
		t.Error("Dashboard should contain title")
	}
	// Unconfigured backends show as such
	if !strings.Contains(output, "Not configured") {
		t.Error("Dashboard should show unconfigured backends")
	}
}

func TestDashboardKeyNavigation(t *testing.T) {
	m := NewModel(store.NewMemory(), nil, nil, nil)

	m.selectedRow = 1
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(Model)
	if m.selectedRow != 0 {
		t.Errorf("Expected selectedRow=0, got %d", m.selectedRow)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)
	if m.selectedRow != 1 {
		t.Errorf("Expected selectedRow=1, got %d", m.selectedRow)
	}

	// Down at the last row stays put
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)
	if m.selectedRow != backendCount-1 {
		t.Errorf("Expected selectedRow=%d, got %d", backendCount-1, m.selectedRow)
	}
}

func TestDashboardQuitKey(t *testing.T) {
	m := NewModel(store.NewMemory(), nil, nil, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("Expected quit command, got nil")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("Expected tea.Quit message, got %v", msg)
	}
}

func TestDashboardUploadWithoutSyncer(t *testing.T) {
	m := NewModel(store.NewMemory(), nil, nil, nil)

	// 'u' without a configured snapshot backend is a no-op
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'u'}})
	m = updated.(Model)
	if cmd != nil {
		t.Error("Expected no command when snapshot backend is unconfigured")
	}
	if m.snapshotBusy {
		t.Error("Model should not go busy without a syncer")
	}
}

func TestDashboardSnapshotDoneMessages(t *testing.T) {
	m := NewModel(store.NewMemory(), nil, nil, nil)
	m.snapshotBusy = true

	updated, _ := m.Update(SnapshotDoneMsg{Op: "upload"})
	m = updated.(Model)
	if m.snapshotBusy {
		t.Error("SnapshotDoneMsg should clear the busy flag")
	}
	if len(m.messages) != 1 || !strings.Contains(m.messages[0], "upload completed") {
		t.Errorf("Expected upload completion message, got %v", m.messages)
	}
}
