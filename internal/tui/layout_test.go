package tui

import "testing"

func TestPageLayoutUpdate(t *testing.T) {
	cases := []struct {
		name               string
		width              int
		height             int
		viewportWidth      int
		transcriptHeight   int
		listRows           int
		recommendationRows int
	}{
		{name: "narrow", width: 80, height: 24, viewportWidth: 76, transcriptHeight: 10, listRows: 11, recommendationRows: 3},
		{name: "wide", width: 200, height: 40, viewportWidth: 196, transcriptHeight: 24, listRows: 27, recommendationRows: 5},
		{name: "tiny", width: 20, height: 10, viewportWidth: minViewportWidth, transcriptHeight: 6, listRows: 3, recommendationRows: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout := newPageLayout()
			layout.Update(tc.width, tc.height)
			if layout.viewportWidth != tc.viewportWidth {
				t.Fatalf("viewport width mismatch: got %d want %d", layout.viewportWidth, tc.viewportWidth)
			}
			if layout.transcriptHeight != tc.transcriptHeight {
				t.Fatalf("transcript height mismatch: got %d want %d", layout.transcriptHeight, tc.transcriptHeight)
			}
			if layout.listRows != tc.listRows {
				t.Fatalf("list rows mismatch: got %d want %d", layout.listRows, tc.listRows)
			}
			if layout.recommendationRows != tc.recommendationRows {
				t.Fatalf("recommendation rows mismatch: got %d want %d", layout.recommendationRows, tc.recommendationRows)
			}
		})
	}
}

func TestVisibleWindowKeepsCursorInView(t *testing.T) {
	cases := []struct {
		n, cursor, rows int
		start, end      int
	}{
		{n: 3, cursor: 2, rows: 5, start: 0, end: 3},
		{n: 20, cursor: 0, rows: 5, start: 0, end: 5},
		{n: 20, cursor: 10, rows: 5, start: 8, end: 13},
		{n: 20, cursor: 19, rows: 5, start: 15, end: 20},
	}
	for _, tc := range cases {
		start, end := visibleWindow(tc.n, tc.cursor, tc.rows)
		if start != tc.start || end != tc.end {
			t.Fatalf("visibleWindow(%d, %d, %d) = [%d,%d) want [%d,%d)", tc.n, tc.cursor, tc.rows, start, end, tc.start, tc.end)
		}
		if tc.cursor < start || tc.cursor >= end {
			t.Fatalf("cursor %d outside window [%d,%d)", tc.cursor, start, end)
		}
	}
}

func TestPreviewTextCollapsesWhitespace(t *testing.T) {
	if got := previewText("  Attention\n   Variants  ", 0); got != "Attention Variants" {
		t.Fatalf("unexpected preview %q", got)
	}
	if got := previewText("abcdefghij", 4); got != "abcd…" {
		t.Fatalf("unexpected truncation %q", got)
	}
}
