package tui

import (
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/papertalk/internal/backend"
	"github.com/csheth/papertalk/internal/session"
)

func (m *model) submitSearch() tea.Cmd {
	job, err := m.session.SubmitSearch(m.topicInput.Value())
	if err != nil {
		m.reportTransition("search", err)
		return nil
	}
	m.errorMessage = ""
	return m.jobs.Start(jobKindSearch, job)
}

func (m *model) selectCandidate() tea.Cmd {
	candidates := m.session.Candidates()
	if len(candidates) == 0 {
		m.errorMessage = "Nothing to open. Press Esc to search again."
		return nil
	}
	job, err := m.session.SelectPaper(candidates[clampCursor(m.listCursor, len(candidates))])
	if err != nil {
		m.reportTransition("select", err)
		return nil
	}
	return m.jobs.Start(jobKindRecommend, job)
}

func (m *model) switchToRecommended() tea.Cmd {
	recs := m.session.Recommendations()
	if len(recs) == 0 {
		return nil
	}
	job, err := m.session.SelectRecommended(recs[clampCursor(m.recCursor, len(recs))])
	if err != nil {
		m.reportTransition("switch", err)
		return nil
	}
	m.recCursor = 0
	m.focus = focusComposer
	m.composer.Focus()
	return m.jobs.Start(jobKindRecommend, job)
}

func (m *model) sendMessage() tea.Cmd {
	job, err := m.session.SendMessage(m.composer.Value())
	if err != nil {
		m.reportTransition("chat", err)
		return nil
	}
	if job == nil {
		return nil
	}
	m.composer.SetValue("")
	m.errorMessage = ""
	return m.jobs.Start(jobKindChat, job)
}

func (m *model) requestDownload() tea.Cmd {
	job, err := m.session.RequestDownload()
	if err != nil {
		// A missing identifier is already on the status line.
		if !errors.Is(err, backend.ErrNoArxivID) {
			m.reportTransition("download", err)
		}
		return nil
	}
	return m.jobs.Start(jobKindDownload, job)
}

func (m *model) saveTranscript() tea.Cmd {
	job, err := m.session.SaveTranscript()
	if err != nil {
		if !errors.Is(err, session.ErrArchiveDisabled) {
			m.reportTransition("save", err)
		}
		return nil
	}
	return m.jobs.Start(jobKindSave, job)
}

func (m *model) goBack() {
	if err := m.session.GoBack(); err != nil {
		m.reportTransition("back", err)
	}
}

func (m *model) reportTransition(action string, err error) {
	m.errorMessage = describeTransitionError(err)
	m.log.Debug("intent rejected", slog.String("action", action), slog.Any("err", err))
}

func describeTransitionError(err error) string {
	switch {
	case errors.Is(err, session.ErrEmptyTopic):
		return "Enter a topic to search for."
	case errors.Is(err, session.ErrRequestInFlight):
		return "Still waiting on the previous request."
	case errors.Is(err, session.ErrInvalidTransition):
		return "That action is not available here."
	default:
		return err.Error()
	}
}
