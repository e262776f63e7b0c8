// Package app is the scene player's terminal interface.
package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/dread/internal/config"
	"github.com/zjrosen/dread/internal/log"
	"github.com/zjrosen/dread/internal/player"
	"github.com/zjrosen/dread/internal/scene"
	"github.com/zjrosen/dread/internal/ui/styles"
)

const (
	playZoneID  = "play"
	sceneZoneID = "scene-"
)

// Options wires the model to a player.
type Options struct {
	Player  *player.Player
	Mailbox *player.Mailbox
	// Themes delivers live theme edits. Optional.
	Themes <-chan config.ThemeConfig
}

// eventMsg carries a player event into Update.
type eventMsg struct{ ev player.Event }

// themeMsg carries a changed theme into Update.
type themeMsg struct{ theme config.ThemeConfig }

// Model is the scene player view.
type Model struct {
	player  *player.Player
	mailbox *player.Mailbox
	themes  <-chan config.ThemeConfig

	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	zones    *zone.Manager
	spinning bool

	highlight int
	width     int
	height    int
}

// New creates the view. The highlight starts on the current scene.
func New(opts Options) Model {
	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(styles.SpinnerStyle))

	m := Model{
		player:  opts.Player,
		mailbox: opts.Mailbox,
		themes:  opts.Themes,
		keys:    DefaultKeyMap(),
		help:    h,
		spinner: sp,
		zones:   zone.New(),
	}
	if cur := opts.Player.Snapshot().Current; !cur.IsZero() {
		if i := opts.Player.Catalog().Index(cur.ID()); i >= 0 {
			m.highlight = i
		}
	}
	return m
}

// Init starts listening for player events and theme edits.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForEvent(), m.waitForTheme()}
	if m.player.Snapshot().State == player.StateLoading {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case eventMsg:
		m.player.Handle(msg.ev)
		spin := m.ensureSpinner()
		return m, tea.Batch(m.waitForEvent(), spin)

	case themeMsg:
		if err := styles.ApplyTheme(toStyleTheme(msg.theme)); err != nil {
			log.Warn(log.CatUI, "Ignoring invalid theme", "error", err.Error())
		}
		m.spinner.Style = styles.SpinnerStyle
		return m, m.waitForTheme()

	case spinner.TickMsg:
		if m.player.Snapshot().State != player.StateLoading {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.player.Dispose()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		m.player.TogglePlayback()
		spin := m.ensureSpinner()
		return m, spin

	case key.Matches(msg, m.keys.Stop):
		m.player.Stop()

	case key.Matches(msg, m.keys.Left):
		if m.highlight > 0 {
			m.highlight--
		}

	case key.Matches(msg, m.keys.Right):
		if m.highlight < m.player.Catalog().Len()-1 {
			m.highlight++
		}

	case key.Matches(msg, m.keys.Select):
		return m.selectAt(m.highlight)

	case key.Matches(msg, m.keys.Scene):
		return m.selectAt(int(msg.Runes[0] - '1'))

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if m.zones.Get(playZoneID).InBounds(msg) {
		m.player.TogglePlayback()
		spin := m.ensureSpinner()
		return m, spin
	}
	for i, sc := range m.player.Catalog().All() {
		if m.zones.Get(sceneZoneID + string(sc.ID())).InBounds(msg) {
			return m.selectAt(i)
		}
	}
	return m, nil
}

// selectAt selects the scene at position i of the catalog. Out of range
// positions are ignored.
func (m Model) selectAt(i int) (tea.Model, tea.Cmd) {
	sc, ok := m.player.Catalog().At(i)
	if !ok {
		return m, nil
	}
	m.highlight = i
	if err := m.player.SelectScene(sc.ID()); err != nil {
		log.ErrorErr(log.CatUI, "Scene selection failed", err, "scene", string(sc.ID()))
	}
	spin := m.ensureSpinner()
	return m, spin
}

// ensureSpinner starts the spinner when a load begins. The spinner stops
// itself once the player leaves Loading.
func (m *Model) ensureSpinner() tea.Cmd {
	if m.spinning || m.player.Snapshot().State != player.StateLoading {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m Model) waitForEvent() tea.Cmd {
	if m.mailbox == nil {
		return nil
	}
	events, done := m.mailbox.Events(), m.mailbox.Done()
	return func() tea.Msg {
		select {
		case ev := <-events:
			return eventMsg{ev: ev}
		case <-done:
			return nil
		}
	}
}

func (m Model) waitForTheme() tea.Cmd {
	if m.themes == nil {
		return nil
	}
	themes := m.themes
	return func() tea.Msg {
		theme, ok := <-themes
		if !ok {
			return nil
		}
		return themeMsg{theme: theme}
	}
}

// SetSize updates the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// Highlighted returns the highlighted scene.
func (m Model) Highlighted() scene.Scene {
	sc, _ := m.player.Catalog().At(m.highlight)
	return sc
}

func toStyleTheme(t config.ThemeConfig) styles.ThemeConfig {
	return styles.ThemeConfig{Preset: t.Preset, Mode: t.Mode, Colors: t.Colors}
}

// ApplyTheme applies a configured theme to the shared styles.
func ApplyTheme(t config.ThemeConfig) error {
	if err := styles.ApplyTheme(toStyleTheme(t)); err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	return nil
}
