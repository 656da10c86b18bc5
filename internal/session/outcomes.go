package session

import (
	"log/slog"

	"github.com/csheth/papertalk/internal/archive"
	"github.com/csheth/papertalk/internal/arxiv"
	"github.com/csheth/papertalk/internal/backend"
	"github.com/csheth/papertalk/internal/chat"
)

// SearchOutcome completes SubmitSearch.
type SearchOutcome struct {
	Topic  string
	Papers []arxiv.Paper
	Err    error
}

func (o SearchOutcome) Failure() error { return o.Err }

func (o SearchOutcome) apply(c *Controller) {
	c.pending.Search = false
	c.searchEpoch++
	c.candidates = append([]arxiv.Paper{}, o.Papers...)
	c.selected = nil
	c.transcript = nil
	c.recommendations = nil
	c.showPapers = true
	switch {
	case o.Err != nil:
		c.candidates = []arxiv.Paper{}
		c.setError("Search for %q failed: %v", o.Topic, o.Err)
	case len(c.candidates) == 0:
		c.setInfo("No papers found for %q.", o.Topic)
	default:
		c.setInfo("Found %d papers for %q.", len(c.candidates), o.Topic)
	}
}

// ChatOutcome completes SendMessage. Reply is the fallback message when Err
// is set.
type ChatOutcome struct {
	Generation int
	Reply      chat.Message
	Err        error
}

func (o ChatOutcome) Failure() error { return o.Err }

func (o ChatOutcome) apply(c *Controller) {
	if o.Generation != c.generation || c.selected == nil {
		c.log.Info("dropping reply for a closed discussion", slog.Int("generation", o.Generation))
		return
	}
	c.pending.Chat = false
	c.transcript = append(c.transcript, o.Reply)
	if o.Err != nil {
		c.setError("Chat request failed: %v", o.Err)
	}
}

// RecommendOutcome completes the recommendation job started on selection.
type RecommendOutcome struct {
	// SearchEpoch identifies the result list Target was picked from.
	SearchEpoch int
	Target      arxiv.Paper
	Papers      []arxiv.Paper
	Err         error
}

func (o RecommendOutcome) Failure() error { return o.Err }

func (o RecommendOutcome) apply(c *Controller) {
	if o.SearchEpoch != c.searchEpoch || c.selected == nil ||
		c.selected.ID != o.Target.ID || c.selected.PaperID != o.Target.PaperID {
		c.log.Debug("dropping recommendations for a closed discussion", slog.Int("paper", o.Target.ID))
		return
	}
	if o.Err != nil || len(o.Papers) == 0 {
		// The local filter set on selection stays in place.
		c.log.Debug("keeping local recommendations", slog.Int("ranked", len(o.Papers)), slog.Any("err", o.Err))
		return
	}
	c.recommendations = append([]arxiv.Paper(nil), o.Papers...)
}

// DownloadOutcome completes RequestDownload.
type DownloadOutcome struct {
	ArxivID string
	Result  backend.DownloadResult
	Err     error
}

func (o DownloadOutcome) Failure() error { return o.Err }

func (o DownloadOutcome) apply(c *Controller) {
	c.pending.Download = false
	if o.Err != nil {
		c.setError("Download of %s failed: %v", o.ArxivID, o.Err)
		return
	}
	c.setInfo("%s", o.Result.Message)
}

// SaveOutcome completes SaveTranscript.
type SaveOutcome struct {
	Record archive.Record
	Err    error
}

func (o SaveOutcome) Failure() error { return o.Err }

func (o SaveOutcome) apply(c *Controller) {
	c.pending.Save = false
	if o.Err != nil {
		c.setError("Saving transcript failed: %v", o.Err)
		return
	}
	c.setInfo("Saved %d messages as %s.", len(o.Record.Messages), o.Record.Key)
}
