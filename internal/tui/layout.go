package tui

import "strings"

type pageLayout struct {
	windowWidth        int
	windowHeight       int
	viewportWidth      int
	transcriptHeight   int
	listRows           int
	recommendationRows int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:      80,
		transcriptHeight:   12,
		listRows:           10,
		recommendationRows: 3,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth

	l.recommendationRows = 3
	if height >= 30 {
		l.recommendationRows = maxRecommendationRows
	}
	// header, composer box, status, footer and panel borders
	const chatChrome = 11
	l.transcriptHeight = height - chatChrome - l.recommendationRows
	if l.transcriptHeight < 6 {
		l.transcriptHeight = 6
	}
	// header, summary preview, status and footer
	const listChrome = 13
	l.listRows = height - listChrome
	if l.listRows < 3 {
		l.listRows = 3
	}
}

// visibleWindow returns the [start, end) slice of n rows that keeps cursor
// inside a window of size rows.
func visibleWindow(n, cursor, rows int) (int, int) {
	if rows <= 0 || n <= rows {
		return 0, n
	}
	start := cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}

func previewText(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
