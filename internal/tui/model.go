// Package tui provides the Bubble Tea terminal interface for one session.
package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lockreact/internal/game"
	"lockreact/internal/viewmodel"
)

// FrameInterval is the render cadence; every frame advances active play time.
const FrameInterval = time.Second / 60

// TickMsg carries the frame timestamp.
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type styles struct {
	ledOn   lipgloss.Style
	ledOff  lipgloss.Style
	prompt  lipgloss.Style
	paused  lipgloss.Style
	stat    lipgloss.Style
	footer  lipgloss.Style
	heading lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	led := r.NewStyle().Padding(0, 2).Margin(0, 1).Border(lipgloss.RoundedBorder())
	return styles{
		ledOn:   led.BorderForeground(lipgloss.Color("#F5C542")).Foreground(lipgloss.Color("#1A1A1A")).Background(lipgloss.Color("#F5C542")).Bold(true),
		ledOff:  led.BorderForeground(lipgloss.Color("#4A4A4A")).Foreground(lipgloss.Color("#8C8C8C")),
		prompt:  r.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true),
		paused:  r.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
		stat:    r.NewStyle().Foreground(lipgloss.Color("#C8C8C8")),
		footer:  r.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
		heading: r.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true),
	}
}

// Model implements the Bubble Tea game UI over one session.
type Model struct {
	sess   *game.Session
	styles styles

	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithRenderer styles output for a specific terminal, such as an SSH client.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(m *Model) { m.styles = newStyles(r) }
}

// NewModel constructs the UI. The model closes sess when the player quits.
func NewModel(sess *game.Session, opts ...Option) *Model {
	m := &Model{
		sess:   sess,
		styles: newStyles(lipgloss.DefaultRenderer()),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		m.sess.Tick(time.Time(msg))
		return m, tickCmd()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.sess.Close()
		return tea.Quit
	case tea.KeyLeft:
		m.sess.OnInput(game.ArrowLeft)
	case tea.KeyDown:
		m.sess.OnInput(game.ArrowDown)
	case tea.KeyRight:
		m.sess.OnInput(game.ArrowRight)
	case tea.KeySpace:
		m.sess.TogglePause()
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return nil
		}
		switch r := msg.Runes[0]; r {
		case 'q':
			m.sess.Close()
			return tea.Quit
		case 'r', 'R':
			m.sess.Reset()
		case ' ':
			m.sess.TogglePause()
		case '1', '2', '3':
			m.sess.OnInput(string(game.Indicators[r-'1']))
		}
	}
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	snap := m.sess.Snapshot()
	prompt := viewmodel.NewPromptFragment(snap)

	leds := make([]string, 0, len(prompt.Indicators))
	for i, ind := range prompt.Indicators {
		label := ind.Label + "\n" + ind.Key + " / " + string(rune('1'+i))
		if ind.Lit {
			leds = append(leds, m.styles.ledOn.Render(label))
		} else {
			leds = append(leds, m.styles.ledOff.Render(label))
		}
	}

	var b strings.Builder
	b.WriteString(m.styles.heading.Render("Lock Light Reaction"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, leds...))
	b.WriteString("\n\n")
	if prompt.Paused {
		b.WriteString(m.styles.paused.Render(prompt.PauseMessage))
	} else {
		b.WriteString(m.styles.prompt.Render(prompt.PromptMessage))
		b.WriteString("\n")
		b.WriteString(m.styles.footer.Render(prompt.PauseMessage))
	}
	b.WriteString("\n\n")
	for _, line := range viewmodel.StatLines(snap) {
		b.WriteString(m.styles.stat.Render(line))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.stat.Render(viewmodel.TargetLine(snap)))
	b.WriteString("\n\n")
	b.WriteString(m.styles.footer.Render("arrows or 1/2/3 respond | space pause | r reset | q quit"))

	content := b.String()
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
