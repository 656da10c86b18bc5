package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/papertalk/internal/archive"
	"github.com/csheth/papertalk/internal/arxiv"
	"github.com/csheth/papertalk/internal/chat"
)

func TestPrintSummaries(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printSummaries(&out, nil))
	assert.Equal(t, "No saved transcripts.\n", out.String())

	out.Reset()
	saved := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	require.NoError(t, printSummaries(&out, []archive.Summary{
		{Key: "2301.00001v1", Title: "Attention\n  Variants", Messages: 3, SavedAt: saved},
	}))
	assert.Contains(t, out.String(), "KEY")
	assert.Contains(t, out.String(), "2301.00001v1")
	assert.Contains(t, out.String(), "Attention Variants")
	assert.Contains(t, out.String(), "2026-03-01 12:00:00")
}

func TestPrintRecord(t *testing.T) {
	var out bytes.Buffer
	paper := arxiv.Paper{ID: 1, Title: "Attention Variants", Summary: "s", PaperID: "http://arxiv.org/abs/2301.00001v1"}
	record := archive.Record{
		Key:   paper.Key(),
		Paper: paper,
		Messages: []chat.Message{
			chat.Greeting(paper),
			chat.Human("what is new?"),
			{Role: chat.RoleAssistant, Content: "Routing."},
		},
		SavedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local),
	}
	require.NoError(t, printRecord(&out, record))

	text := out.String()
	assert.Contains(t, text, "# Attention Variants\nhttp://arxiv.org/abs/2301.00001v1\n")
	assert.Contains(t, text, "[you]\nwhat is new?\n")
	assert.Contains(t, text, "[assistant]\nRouting.\n")
}

func TestOpenArchiveDisabled(t *testing.T) {
	previous := settings
	t.Cleanup(func() { settings = previous })
	settings.ArchivePath = ""

	_, err := openArchive()
	assert.ErrorContains(t, err, "disabled")
}
