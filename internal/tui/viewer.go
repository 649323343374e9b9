// Package tui is the interactive replay viewer.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/handreplay/internal/playback"
	"github.com/lox/handreplay/internal/replay"
)

const maxSpeed = 10 * time.Second

// changeMsg signals that the controller state moved.
type changeMsg struct{}

// ViewerModel is the Bubble Tea model for stepping through a replay.
type ViewerModel struct {
	ctl    *playback.Controller
	logger *log.Logger

	keys keyMap
	help help.Model

	state       playback.State
	dismissed   bool
	quitting    bool
	width       int
	changes     chan struct{}
	unsubscribe func()
}

// NewViewer creates a viewer over ctl. The caller owns ctl and closes it
// after the program exits.
func NewViewer(ctl *playback.Controller, logger *log.Logger) *ViewerModel {
	m := &ViewerModel{
		ctl:     ctl,
		logger:  logger.WithPrefix("tui"),
		keys:    defaultKeys,
		help:    help.New(),
		state:   ctl.State(),
		changes: make(chan struct{}, 1),
	}
	m.unsubscribe = ctl.OnChange(func(playback.State) {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	return m
}

// Init starts listening for controller changes.
func (m *ViewerModel) Init() tea.Cmd {
	return m.waitForChange()
}

func (m *ViewerModel) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.changes
		return changeMsg{}
	}
}

// Update handles messages in the viewer
func (m *ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changeMsg:
		m.refresh()
		return m, m.waitForChange()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.logger.Debug("Updating dimensions", "width", msg.Width, "height", msg.Height)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.unsubscribe()
			m.ctl.Pause()
			return m, tea.Quit
		case key.Matches(msg, m.keys.PlayPause):
			m.ctl.TogglePlayPause()
		case key.Matches(msg, m.keys.Next):
			m.ctl.NextFrame()
		case key.Matches(msg, m.keys.Prev):
			m.ctl.PrevFrame()
		case key.Matches(msg, m.keys.First):
			m.ctl.GoToFrame(0)
		case key.Matches(msg, m.keys.Last):
			m.ctl.GoToFrame(m.state.Total - 1)
		case key.Matches(msg, m.keys.Faster):
			m.ctl.SetSpeed(m.state.Speed / 2)
		case key.Matches(msg, m.keys.Slower):
			m.ctl.SetSpeed(min(m.state.Speed*2, maxSpeed))
		case key.Matches(msg, m.keys.Dismiss):
			m.dismissed = true
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		m.refresh()
	}
	return m, nil
}

func (m *ViewerModel) refresh() {
	m.state = m.ctl.State()
	m.logger.Debug("State", "index", m.state.Index, "playing", m.state.Playing)
}

// View renders the viewer
func (m *ViewerModel) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	if banner := m.banner(); banner != "" {
		sections = append(sections, banner)
	}
	if m.state.HasFrame() {
		sections = append(sections, RenderFrame(m.state.Frame))
	} else {
		sections = append(sections, InfoStyle.Render("No frames to show."))
	}
	sections = append(sections, m.statusLine(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *ViewerModel) statusLine() string {
	mode := "paused"
	if m.state.Playing {
		mode = "playing"
	}
	frame := 0
	if m.state.HasFrame() {
		frame = m.state.Index + 1
	}
	return InfoStyle.Render(fmt.Sprintf("Frame %d/%d  %s  %s/frame", frame, m.state.Total, mode, m.state.Speed))
}

// banner names the failing action while the valid prefix stays scrubbable.
func (m *ViewerModel) banner() string {
	if m.state.Err == nil || m.dismissed {
		return ""
	}
	where := "during setup"
	if m.state.StoppedAt != replay.PreAction {
		where = fmt.Sprintf("at action %d", m.state.StoppedAt)
	}
	lines := []string{
		ErrorStyle.Render("Replay stopped " + where),
		m.state.Err.Error(),
	}
	if m.state.Total > 0 {
		lines = append(lines, InfoStyle.Render(fmt.Sprintf("%d earlier frames are available. x to dismiss.", m.state.Total)))
	} else {
		lines = append(lines, InfoStyle.Render("x to dismiss."))
	}
	style := BannerStyle
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(strings.Join(lines, "\n"))
}
