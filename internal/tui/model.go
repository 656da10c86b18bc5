// Package tui is the terminal front end: a search form, the paper list and
// the chat screen with its recommendation panel. All state lives in a
// session.Controller; the model only renders it and forwards key presses.
package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/papertalk/internal/backend"
	"github.com/csheth/papertalk/internal/session"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Gateway backend.Gateway
	// Archive enables ctrl+s on the chat screen when set.
	Archive session.Archiver
	Logger  *slog.Logger
	// MarkdownStyle is a glamour standard style name or "auto".
	MarkdownStyle string
}

type model struct {
	config  Config
	log     *slog.Logger
	session *session.Controller
	jobs    *jobBus
	layout  pageLayout

	topicInput textinput.Model
	composer   textinput.Model
	spinner    spinner.Model
	transcript viewport.Model
	renderer   *messageRenderer

	listCursor       int
	recCursor        int
	focus            focusArea
	active           map[string]jobSnapshot
	spinning         bool
	helpVisible      bool
	errorMessage     string
	transcriptDirty  bool
	lastScreen       session.Screen
	renderedCount    int
	renderedThinking bool
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	topicInput := textinput.New()
	topicInput.Placeholder = topicPlaceholder
	topicInput.CharLimit = 200
	topicInput.Width = 70
	topicInput.Focus()

	composer := textinput.New()
	composer.Placeholder = composerPlaceholder
	composer.CharLimit = 2000
	composer.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 12)
	vp.MouseWheelEnabled = true

	return &model{
		config: config,
		log:    logger.With(slog.String("component", "tui")),
		session: session.New(session.Config{
			Gateway: config.Gateway,
			Archive: config.Archive,
			Logger:  logger,
		}),
		jobs:            newJobBus(logger),
		layout:          newPageLayout(),
		topicInput:      topicInput,
		composer:        composer,
		spinner:         spin,
		transcript:      vp,
		renderer:        newMessageRenderer(config.MarkdownStyle, logger),
		active:          map[string]jobSnapshot{},
		transcriptDirty: true,
		lastScreen:      session.ScreenSearch,
	}
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.refreshTranscriptIfDirty()
	return m, cmd
}

func (m *model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.transcript.Width = m.layout.viewportWidth
		m.transcript.Height = m.layout.transcriptHeight
		m.topicInput.Width = m.layout.viewportWidth - 4
		m.composer.Width = m.layout.viewportWidth - 6
		m.transcriptDirty = true
		return nil
	case spinner.TickMsg:
		if len(m.active) == 0 {
			m.spinning = false
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.session.Pending().Chat {
			m.transcriptDirty = true
		}
		return cmd
	case jobSignalMsg:
		m.active[msg.Snapshot.ID] = msg.Snapshot
		if !m.spinning {
			m.spinning = true
			return m.spinner.Tick
		}
		return nil
	case jobResultEnvelope:
		delete(m.active, msg.Snapshot.ID)
		m.session.Apply(msg.Outcome)
		m.syncScreen()
		return nil
	case tea.MouseMsg:
		if m.session.Screen() == session.ScreenChat {
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			return cmd
		}
		return nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return tea.Quit
		}
		if msg.Type == tea.KeyF1 {
			m.helpVisible = !m.helpVisible
			return nil
		}
		cmd := m.handleKey(msg)
		m.syncScreen()
		return cmd
	}
	return nil
}

func (m *model) handleKey(key tea.KeyMsg) tea.Cmd {
	switch m.session.Screen() {
	case session.ScreenSearch:
		return m.handleSearchKey(key)
	case session.ScreenList:
		return m.handleListKey(key)
	case session.ScreenChat:
		return m.handleChatKey(key)
	default:
		return nil
	}
}

func (m *model) handleSearchKey(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyEsc:
		return tea.Quit
	case tea.KeyEnter:
		return m.submitSearch()
	}
	var cmd tea.Cmd
	m.topicInput, cmd = m.topicInput.Update(key)
	return cmd
}

func (m *model) handleListKey(key tea.KeyMsg) tea.Cmd {
	candidates := m.session.Candidates()
	switch key.String() {
	case "up", "k":
		m.listCursor = clampCursor(m.listCursor-1, len(candidates))
	case "down", "j":
		m.listCursor = clampCursor(m.listCursor+1, len(candidates))
	case "home", "g":
		m.listCursor = 0
	case "end", "G":
		m.listCursor = clampCursor(len(candidates)-1, len(candidates))
	case "enter":
		return m.selectCandidate()
	case "esc", "backspace", "b":
		m.goBack()
	}
	return nil
}

func (m *model) handleChatKey(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyEsc:
		m.goBack()
		return nil
	case tea.KeyTab, tea.KeyShiftTab:
		m.toggleFocus()
		return nil
	case tea.KeyCtrlD:
		return m.requestDownload()
	case tea.KeyCtrlS:
		return m.saveTranscript()
	case tea.KeyPgUp:
		m.transcript.HalfViewUp()
		return nil
	case tea.KeyPgDown:
		m.transcript.HalfViewDown()
		return nil
	}

	if m.focus == focusRecommendations {
		recs := m.session.Recommendations()
		switch key.String() {
		case "up", "k":
			m.recCursor = clampCursor(m.recCursor-1, len(recs))
		case "down", "j":
			m.recCursor = clampCursor(m.recCursor+1, len(recs))
		case "enter":
			return m.switchToRecommended()
		}
		return nil
	}

	if key.Type == tea.KeyEnter {
		return m.sendMessage()
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(key)
	return cmd
}

func (m *model) toggleFocus() {
	if m.focus == focusComposer && len(m.session.Recommendations()) > 0 {
		m.focus = focusRecommendations
		m.composer.Blur()
		return
	}
	m.focus = focusComposer
	m.composer.Focus()
}

// syncScreen adjusts inputs and cursors after any state change so the
// focused widget always matches the screen.
func (m *model) syncScreen() {
	screen := m.session.Screen()
	if screen != m.lastScreen {
		m.errorMessage = ""
		switch screen {
		case session.ScreenSearch:
			m.composer.Blur()
			m.topicInput.Focus()
		case session.ScreenList:
			m.topicInput.Blur()
			m.composer.Blur()
			if m.lastScreen == session.ScreenSearch {
				m.listCursor = 0
			}
		case session.ScreenChat:
			m.topicInput.Blur()
			m.focus = focusComposer
			m.composer.SetValue("")
			m.composer.Focus()
			m.recCursor = 0
		}
		m.lastScreen = screen
	}
	m.listCursor = clampCursor(m.listCursor, len(m.session.Candidates()))
	recs := m.session.Recommendations()
	m.recCursor = clampCursor(m.recCursor, len(recs))
	if len(recs) == 0 && m.focus == focusRecommendations {
		m.focus = focusComposer
		m.composer.Focus()
	}
	m.transcriptDirty = true
}
