// Package session owns the application state: which screen is showing, the
// candidate papers, the selected paper and its transcript. State changes only
// through the transition methods and Apply; network work is handed back to
// the caller as a Job so the UI can run it off the event loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/csheth/papertalk/internal/archive"
	"github.com/csheth/papertalk/internal/arxiv"
	"github.com/csheth/papertalk/internal/backend"
	"github.com/csheth/papertalk/internal/chat"
)

// Screen is derived from whether papers are showing and whether one is selected.
type Screen string

const (
	ScreenSearch Screen = "search"
	ScreenList   Screen = "list"
	ScreenChat   Screen = "chat"
)

var (
	// ErrInvalidTransition is matched by every *TransitionError.
	ErrInvalidTransition = errors.New("session: invalid transition")
	ErrEmptyTopic        = errors.New("session: search topic is empty")
	ErrRequestInFlight   = errors.New("session: request already in flight")
	ErrArchiveDisabled   = errors.New("session: transcript archive is disabled")
)

// TransitionError reports an event fired on a screen that does not accept it.
type TransitionError struct {
	Event  string
	Screen Screen
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("session: %s is not allowed on the %s screen", e.Event, e.Screen)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// StatusKind classifies the status line.
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusInfo
	StatusError
)

// Status is the one-line feedback shown under the active screen.
type Status struct {
	Kind StatusKind
	Text string
}

// Pending reports which kinds of request are currently in flight.
type Pending struct {
	Search   bool
	Chat     bool
	Download bool
	Save     bool
}

// Archiver persists transcripts. *archive.Store satisfies it.
type Archiver interface {
	Save(paper arxiv.Paper, messages []chat.Message) (archive.Record, error)
}

// Job performs the network or disk part of a transition. It must not touch
// the controller; its Outcome is handed to Apply afterwards.
type Job func(ctx context.Context) Outcome

// Outcome is the completed result of a Job.
type Outcome interface {
	// Failure returns the error the job ran into, if any.
	Failure() error
	apply(c *Controller)
}

// Config wires the controller's collaborators.
type Config struct {
	Gateway backend.Gateway
	// Archive is optional; without it SaveTranscript reports ErrArchiveDisabled.
	Archive Archiver
	Logger  *slog.Logger
}

// Controller is the single source of truth for UI state. It is not safe for
// concurrent use; call it from the UI event loop only.
type Controller struct {
	gateway backend.Gateway
	archive Archiver
	log     *slog.Logger

	showPapers      bool
	candidates      []arxiv.Paper
	selected        *arxiv.Paper
	transcript      []chat.Message
	recommendations []arxiv.Paper
	status          Status
	pending         Pending

	// generation increments whenever the discussion is reset or left, so
	// late chat replies can be recognised and dropped.
	generation int
	// searchEpoch increments with every applied search. Paper IDs restart at
	// 1 in each result list, so results for an earlier list carry an older epoch.
	searchEpoch int
}

// New returns a controller on the search screen.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		gateway: cfg.Gateway,
		archive: cfg.Archive,
		log:     logger.With(slog.String("component", "session")),
	}
}

func (c *Controller) Screen() Screen {
	switch {
	case !c.showPapers:
		return ScreenSearch
	case c.selected == nil:
		return ScreenList
	default:
		return ScreenChat
	}
}

// Candidates returns a copy of the current candidate list.
func (c *Controller) Candidates() []arxiv.Paper {
	return append([]arxiv.Paper(nil), c.candidates...)
}

// Selected returns the paper under discussion, if any.
func (c *Controller) Selected() (arxiv.Paper, bool) {
	if c.selected == nil {
		return arxiv.Paper{}, false
	}
	return *c.selected, true
}

// Transcript returns a copy of the current discussion.
func (c *Controller) Transcript() []chat.Message {
	return chat.Clone(c.transcript)
}

// Recommendations returns the papers offered for switching the discussion.
func (c *Controller) Recommendations() []arxiv.Paper {
	return append([]arxiv.Paper(nil), c.recommendations...)
}

func (c *Controller) Status() Status { return c.status }

func (c *Controller) Pending() Pending { return c.pending }

// ClearStatus drops the status line.
func (c *Controller) ClearStatus() { c.status = Status{} }

// Apply folds a finished Job's outcome into the state. Nil is ignored.
func (c *Controller) Apply(o Outcome) {
	if o == nil {
		return
	}
	o.apply(c)
}

// Run executes job synchronously and applies its outcome.
func (c *Controller) Run(ctx context.Context, job Job) {
	if job == nil {
		return
	}
	c.Apply(job(ctx))
}

func (c *Controller) require(event string, screen Screen) error {
	if current := c.Screen(); current != screen {
		return &TransitionError{Event: event, Screen: current}
	}
	return nil
}

func (c *Controller) setInfo(format string, args ...any) {
	c.status = Status{Kind: StatusInfo, Text: fmt.Sprintf(format, args...)}
}

func (c *Controller) setError(format string, args ...any) {
	c.status = Status{Kind: StatusError, Text: fmt.Sprintf(format, args...)}
}

// SubmitSearch starts a search for topic. Only legal on the search screen.
func (c *Controller) SubmitSearch(topic string) (Job, error) {
	if err := c.require("SubmitSearch", ScreenSearch); err != nil {
		return nil, err
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	if c.pending.Search {
		return nil, ErrRequestInFlight
	}
	c.pending.Search = true
	c.setInfo("Searching for %q…", topic)
	c.log.Debug("search submitted", slog.String("topic", topic))

	gateway := c.gateway
	return func(ctx context.Context) Outcome {
		papers, err := gateway.Search(ctx, topic)
		return SearchOutcome{Topic: topic, Papers: papers, Err: err}
	}, nil
}

// SelectPaper opens a discussion of paper with a fresh greeting.
func (c *Controller) SelectPaper(paper arxiv.Paper) (Job, error) {
	if err := c.require("SelectPaper", ScreenList); err != nil {
		return nil, err
	}
	c.generation++
	c.pending.Chat = false
	c.selected = &paper
	c.transcript = []chat.Message{chat.Greeting(paper)}
	c.ClearStatus()
	c.log.Debug("paper selected", slog.Int("paper", paper.ID), slog.String("title", paper.Title))
	return c.recommend(paper), nil
}

// SelectRecommended switches the open discussion to paper. The transcript is
// kept and a system notice is appended.
func (c *Controller) SelectRecommended(paper arxiv.Paper) (Job, error) {
	if err := c.require("SelectRecommended", ScreenChat); err != nil {
		return nil, err
	}
	c.selected = &paper
	c.transcript = append(c.transcript, chat.SwitchNotice(paper))
	c.ClearStatus()
	c.log.Debug("discussion switched", slog.Int("paper", paper.ID), slog.String("title", paper.Title))
	return c.recommend(paper), nil
}

// recommend shows the locally filtered candidates at once and returns a job
// asking the backend for a ranked list.
func (c *Controller) recommend(target arxiv.Paper) Job {
	c.recommendations = arxiv.Without(c.candidates, target)
	if len(c.recommendations) == 0 {
		return nil
	}
	gateway := c.gateway
	all := c.Candidates()
	epoch := c.searchEpoch
	return func(ctx context.Context) Outcome {
		ranked, err := gateway.RecommendPapers(ctx, target, all)
		return RecommendOutcome{SearchEpoch: epoch, Target: target, Papers: ranked, Err: err}
	}
}

// SendMessage appends text as a human message and returns the job that asks
// the backend for a reply. Blank text is a no-op: nil job, nil error.
func (c *Controller) SendMessage(text string) (Job, error) {
	if err := c.require("SendMessage", ScreenChat); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if c.pending.Chat {
		return nil, ErrRequestInFlight
	}
	c.transcript = append(c.transcript, chat.Human(text))
	c.pending.Chat = true
	c.ClearStatus()

	gateway := c.gateway
	history := c.Transcript()
	paper := *c.selected
	generation := c.generation
	return func(ctx context.Context) Outcome {
		reply, err := gateway.SendChatTurn(ctx, history, paper.Title, paper.Summary)
		return ChatOutcome{Generation: generation, Reply: reply, Err: err}
	}, nil
}

// GoBack steps chat → list or list → search.
func (c *Controller) GoBack() error {
	switch c.Screen() {
	case ScreenChat:
		c.generation++
		c.pending.Chat = false
		c.selected = nil
		c.transcript = nil
		c.recommendations = nil
	case ScreenList:
		c.showPapers = false
		c.candidates = nil
	default:
		return &TransitionError{Event: "GoBack", Screen: c.Screen()}
	}
	c.ClearStatus()
	return nil
}

// RequestDownload starts a PDF download for the selected paper. A paper
// without an arXiv identifier sets an error status and returns ErrNoArxivID.
func (c *Controller) RequestDownload() (Job, error) {
	if err := c.require("DownloadRequested", ScreenChat); err != nil {
		return nil, err
	}
	if c.pending.Download {
		return nil, ErrRequestInFlight
	}
	paper := *c.selected
	id, ok := arxiv.ExtractID(paper.PaperID)
	if !ok {
		c.setError("Cannot download %q: no arXiv identifier.", paper.Title)
		return nil, backend.ErrNoArxivID
	}
	c.pending.Download = true
	c.setInfo("Downloading %s…", id)

	gateway := c.gateway
	return func(ctx context.Context) Outcome {
		result, err := gateway.DownloadPDF(ctx, id, paper.Title)
		return DownloadOutcome{ArxivID: id, Result: result, Err: err}
	}, nil
}

// SaveTranscript archives the open discussion.
func (c *Controller) SaveTranscript() (Job, error) {
	if err := c.require("SaveTranscript", ScreenChat); err != nil {
		return nil, err
	}
	if c.archive == nil {
		c.setError("Transcript archive is disabled.")
		return nil, ErrArchiveDisabled
	}
	if c.pending.Save {
		return nil, ErrRequestInFlight
	}
	c.pending.Save = true

	store := c.archive
	paper := *c.selected
	messages := c.Transcript()
	return func(ctx context.Context) Outcome {
		rec, err := store.Save(paper, messages)
		return SaveOutcome{Record: rec, Err: err}
	}, nil
}
