package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"mediadedup/internal/processor"
)

// Model renders scan progress from a stream of processor updates.
type Model struct {
	updates    <-chan processor.ProgressUpdate
	cancel     func()
	bar        progress.Model
	started    time.Time
	width      int
	subdir     string
	subdirs    int
	total      int
	processed  int
	duplicates int
	skipped    int
	quitting   bool
}

type doneMsg struct{}

type updateMsg processor.ProgressUpdate

// NewModel builds the progress view. cancel is called when the operator
// presses Ctrl+C or Esc; it may be nil.
func NewModel(updates <-chan processor.ProgressUpdate, cancel func()) Model {
	bar := progress.New(progress.WithGradient(string(ColorLabel), string(ColorHeading)), progress.WithWidth(40))
	return Model{updates: updates, cancel: cancel, bar: bar, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		if msg.Subdir != "" {
			m.subdir = msg.Subdir
			m.subdirs++
		}
		m.total += msg.TotalDelta
		m.processed += msg.ProcessedDelta
		m.duplicates += msg.DuplicateDelta
		m.skipped += msg.SkippedDelta
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.cancel != nil {
				m.cancel()
			}
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	bar := m.bar
	if m.width > 0 {
		bar.Width = min(60, max(20, m.width-10))
	}

	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.processed) / float64(m.total)
		if ratio > 1 {
			ratio = 1
		}
	}

	elapsed := time.Since(m.started).Round(time.Millisecond)

	lines := []string{
		titleStyle.Render("mediadedup"),
		labelStyle.Render(fmt.Sprintf("Subdirectory: %s (#%d)", m.subdir, m.subdirs)),
		labelStyle.Render(fmt.Sprintf("Files: %d/%d", m.processed, m.total)) + dimStyle.Render(fmt.Sprintf("  skipped:%d", m.skipped)),
		labelStyle.Render(fmt.Sprintf("Duplicates: %d", m.duplicates)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		bar.ViewAs(ratio),
	}

	return strings.Join(lines, "\n")
}

func listenForUpdates(updates <-chan processor.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}
