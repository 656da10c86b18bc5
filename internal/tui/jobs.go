package tui

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/papertalk/internal/session"
)

type jobKind string

type jobStatus string

const (
	jobKindSearch    jobKind = "search"
	jobKindChat      jobKind = "chat"
	jobKindDownload  jobKind = "download"
	jobKindRecommend jobKind = "recommend"
	jobKindSave      jobKind = "save"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Outcome  session.Outcome
}

type jobBus struct {
	counter int64
	log     *slog.Logger
}

func newJobBus(logger *slog.Logger) *jobBus {
	return &jobBus{log: logger.With(slog.String("component", "jobs"))}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

// Start runs job off the event loop. The returned command first reports the
// job as running, then delivers its outcome wrapped in a jobResultEnvelope.
// A nil job yields a nil command.
func (b *jobBus) Start(kind jobKind, job session.Job) tea.Cmd {
	if job == nil {
		return nil
	}
	id := b.nextID(kind)
	started := time.Now()
	startSnapshot := jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}
	startCmd := func() tea.Msg {
		b.log.Debug("job started", slog.String("id", id))
		return jobSignalMsg{Snapshot: startSnapshot}
	}

	runCmd := func() tea.Msg {
		outcome := job(context.Background())
		snapshot := jobSnapshot{
			ID:          id,
			Kind:        kind,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		var err error
		if outcome != nil {
			err = outcome.Failure()
		}
		if err != nil {
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		} else {
			snapshot.Status = jobStatusSucceeded
		}
		snapshot.Duration = snapshot.CompletedAt.Sub(started)
		b.log.Info("job finished",
			slog.String("id", id),
			slog.String("status", string(snapshot.Status)),
			slog.Duration("duration", snapshot.Duration),
			slog.Any("err", err),
		)
		return jobResultEnvelope{Snapshot: snapshot, Outcome: outcome}
	}

	return tea.Sequence(startCmd, runCmd)
}
