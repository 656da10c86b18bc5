package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/papertalk/internal/session"
)

func (m *model) View() string {
	switch m.session.Screen() {
	case session.ScreenSearch:
		return m.viewSearch()
	case session.ScreenList:
		return m.viewList()
	case session.ScreenChat:
		return m.viewChat()
	default:
		return ""
	}
}

func (m *model) viewSearch() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Find a paper"))
	b.WriteRune('\n')
	b.WriteString(m.topicInput.View())
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("Enter: search • Esc: quit • F1: keys"))
	return joinNonEmpty([]string{m.heroView(), b.String(), m.statusView(), m.legendView(), m.statusBarView()})
}

func (m *model) viewList() string {
	candidates := m.session.Candidates()
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render(fmt.Sprintf("Results (%d)", len(candidates))))
	b.WriteRune('\n')
	if len(candidates) == 0 {
		b.WriteString(helperStyle.Render("No papers to show. Press Esc to search again."))
	} else {
		start, end := visibleWindow(len(candidates), m.listCursor, m.layout.listRows)
		width := m.layout.viewportWidth - 4
		for idx := start; idx < end; idx++ {
			paper := candidates[idx]
			line := fmt.Sprintf("%2d. %s", paper.ID, previewText(paper.Title, width))
			if idx == m.listCursor {
				b.WriteString(currentLineStyle.Render("▸ " + line))
			} else {
				b.WriteString("  " + line)
			}
			if idx < end-1 {
				b.WriteRune('\n')
			}
		}
	}

	parts := []string{b.String()}
	if len(candidates) > 0 {
		paper := candidates[clampCursor(m.listCursor, len(candidates))]
		summary := wordwrap.String(previewText(paper.Summary, summaryPreviewLimit), m.layout.viewportWidth-4)
		parts = append(parts, panelStyle.Render(summary))
	}
	parts = append(parts,
		helperStyle.Render("↑/↓: move • Enter: discuss • Esc: new search • F1: keys"),
		m.statusView(),
		m.legendView(),
		m.statusBarView(),
	)
	return joinNonEmpty(parts)
}

func (m *model) viewChat() string {
	return joinNonEmpty([]string{
		m.paperHeaderView(),
		m.transcript.View(),
		m.recommendationView(),
		m.composerPanel(),
		m.statusView(),
		m.legendView(),
		m.statusBarView(),
	})
}

func (m *model) paperHeaderView() string {
	paper, ok := m.session.Selected()
	if !ok {
		return ""
	}
	lines := []string{heroTitleStyle.Render(wordwrap.String(strings.TrimSpace(paper.Title), m.layout.viewportWidth-8))}
	if id, ok := paper.ArxivID(); ok {
		lines = append(lines, fmt.Sprintf("arXiv: %s", id))
	} else if paper.Link != "" {
		lines = append(lines, paper.Link)
	}
	return heroBoxStyle.Render(strings.Join(lines, "\n"))
}

// refreshTranscriptIfDirty re-renders the transcript viewport. It runs at the
// end of Update so View stays free of side effects.
func (m *model) refreshTranscriptIfDirty() {
	if !m.transcriptDirty || m.session.Screen() != session.ScreenChat {
		return
	}
	messages := m.session.Transcript()
	thinking := m.session.Pending().Chat
	content := m.renderer.Transcript(messages, m.transcript.Width-2)
	if thinking {
		content += "\n\n" + helperStyle.Render(m.spinner.View()+" Assistant is thinking…")
	}
	m.transcript.SetContent(content)
	// Spinner ticks re-render too; only jump to the bottom when something new arrived.
	if len(messages) != m.renderedCount || thinking != m.renderedThinking {
		m.transcript.GotoBottom()
		m.renderedCount = len(messages)
		m.renderedThinking = thinking
	}
	m.transcriptDirty = false
}

func (m *model) recommendationView() string {
	recs := m.session.Recommendations()
	header := sectionHeaderStyle.Render("Related papers")
	if len(recs) == 0 {
		return panelStyle.Render(header + "\n" + helperStyle.Render("No other papers in this search."))
	}
	rows := []string{header}
	start, end := visibleWindow(len(recs), m.recCursor, m.layout.recommendationRows)
	width := m.layout.viewportWidth - 8
	for idx := start; idx < end; idx++ {
		line := previewText(recs[idx].Title, width)
		if m.focus == focusRecommendations && idx == m.recCursor {
			rows = append(rows, currentLineStyle.Render("▸ "+line))
		} else {
			rows = append(rows, "  "+line)
		}
	}
	style := panelStyle
	if m.focus == focusRecommendations {
		style = focusedPanelStyle
	}
	return style.Render(strings.Join(rows, "\n"))
}

func (m *model) composerPanel() string {
	help := "Enter: send • Tab: related papers • Ctrl+D: download PDF • Ctrl+S: save • Esc: back"
	if m.focus == focusRecommendations {
		help = "↑/↓: choose • Enter: switch discussion • Tab: back to composer • Esc: back"
	}
	return joinLines(m.composer.View(), helperStyle.Render(help))
}

func (m *model) statusView() string {
	var lines []string
	status := m.session.Status()
	switch status.Kind {
	case session.StatusError:
		lines = append(lines, errorStyle.Render(status.Text))
	case session.StatusInfo:
		text := status.Text
		if m.session.Pending().Search || m.session.Pending().Download {
			text = m.spinner.View() + " " + text
		}
		lines = append(lines, helperStyle.Render(text))
	}
	if m.errorMessage != "" {
		lines = append(lines, errorStyle.Render(m.errorMessage))
	}
	return strings.Join(lines, "\n")
}

func (m *model) statusBarView() string {
	stats := []string{strings.ToUpper(string(m.session.Screen()))}
	switch m.session.Screen() {
	case session.ScreenList:
		stats = append(stats, fmt.Sprintf("Papers %d", len(m.session.Candidates())))
	case session.ScreenChat:
		stats = append(stats, fmt.Sprintf("Messages %d", len(m.session.Transcript())))
	}
	if m.config.Gateway != nil {
		stats = append(stats, m.config.Gateway.Name())
	}
	stats = append(stats, m.jobStatusBadges()...)
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	if len(m.active) == 0 {
		return nil
	}
	ids := make([]string, 0, len(m.active))
	for id := range m.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	badges := make([]string, 0, len(ids))
	for _, id := range ids {
		badges = append(badges, fmt.Sprintf("%s %s…", m.spinner.View(), m.active[id].Kind))
	}
	return badges
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(lipgloss.Left, renderLogo(), taglineStyle.Render(heroTagline))
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) legendView() string {
	if !m.helpVisible {
		return ""
	}
	hints := []keyHint{
		{"Enter", "Search / open / send"},
		{"Esc", "Back one screen"},
		{"↑/↓", "Move"},
		{"Tab", "Related papers"},
		{"Ctrl+D", "Download PDF"},
		{"Ctrl+S", "Save transcript"},
		{"PgUp/PgDn", "Scroll chat"},
		{"F1", "Toggle keys"},
		{"Ctrl+C", "Quit"},
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description + "  ")
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func renderLogo() string {
	if len(logoArtLines) == 0 {
		return ""
	}
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	width++
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}

	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y+1][x+1] = cell{r: r, style: logoShadowStyle}
			}
		}
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y][x] = cell{r: r, style: logoFaceStyle}
			}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = b.String()
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func joinLines(parts ...string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			filtered = append(filtered, part)
		}
	}
	return strings.Join(filtered, "\n")
}
