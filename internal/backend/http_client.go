package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/csheth/papertalk/internal/arxiv"
	"github.com/csheth/papertalk/internal/chat"
)

// HTTPGateway implements Gateway against the backend's JSON/XML endpoints.
type HTTPGateway struct {
	base       string
	source     SearchSource
	downloader PDFFetcher
	client     *http.Client
	log        *slog.Logger
	// maxBody caps how much of a response is read.
	maxBody    int64
}

var _ Gateway = (*HTTPGateway)(nil)

func (g *HTTPGateway) Name() string {
	return fmt.Sprintf("backend (%s, %s search)", g.base, g.source)
}

// Search queries the configured search endpoint for topic.
func (g *HTTPGateway) Search(ctx context.Context, topic string) ([]arxiv.Paper, error) {
	started := time.Now()
	papers, err := g.search(ctx, topic)
	if err != nil {
		g.log.Warn("search failed", slog.String("topic", topic), slog.Duration("duration", time.Since(started)), slog.Any("err", err))
		return nil, err
	}
	g.log.Info("search complete", slog.String("topic", topic), slog.Int("results", len(papers)), slog.Duration("duration", time.Since(started)))
	return papers, nil
}

func (g *HTTPGateway) search(ctx context.Context, topic string) ([]arxiv.Paper, error) {
	path := "/arxiv-results"
	if g.source == SourceScholar {
		path = "/scholar-results"
	}
	endpoint := g.base + path + "?q=" + url.QueryEscape(topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	body, err := g.do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if g.source == SourceScholar {
		return decodeScholar(body)
	}
	papers, err := arxiv.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return papers, nil
}

func decodeScholar(body []byte) ([]arxiv.Paper, error) {
	var papers []arxiv.Paper
	if err := json.Unmarshal(body, &papers); err != nil {
		return nil, fmt.Errorf("search: decode scholar results: %w", err)
	}
	for i := range papers {
		papers[i].ID = i + 1
	}
	return papers, nil
}

type chatRequest struct {
	ChatHistory []chat.Message `json:"chatHistory"`
	PaperInfo   paperInfo      `json:"paperInfo"`
}

type paperInfo struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// SendChatTurn posts the transcript and returns the assistant's reply. Any
// transport, status or decoding failure yields chat.Fallback() and the error.
func (g *HTTPGateway) SendChatTurn(ctx context.Context, transcript []chat.Message, title, summary string) (chat.Message, error) {
	started := time.Now()
	reply, err := g.sendChatTurn(ctx, transcript, title, summary)
	if err != nil {
		g.log.Error("chat turn failed", slog.Int("history", len(transcript)), slog.Duration("duration", time.Since(started)), slog.Any("err", err))
		return chat.Fallback(), err
	}
	g.log.Info("chat turn complete", slog.Int("history", len(transcript)), slog.Duration("duration", time.Since(started)))
	return reply, nil
}

func (g *HTTPGateway) sendChatTurn(ctx context.Context, transcript []chat.Message, title, summary string) (chat.Message, error) {
	history := transcript
	if history == nil {
		history = []chat.Message{}
	}
	body, err := g.postJSON(ctx, "/chat", chatRequest{
		ChatHistory: history,
		PaperInfo:   paperInfo{Title: title, Summary: summary},
	})
	if err != nil {
		return chat.Message{}, fmt.Errorf("chat: %w", err)
	}
	reply, err := chat.Decode(body)
	if err != nil {
		return chat.Message{}, fmt.Errorf("chat: %w", err)
	}
	return reply, nil
}

type downloadRequest struct {
	ArxivID    string `json:"arXiv_id"`
	PaperTitle string `json:"paper_title"`
}

type downloadResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// DownloadPDF asks the backend to store the PDF, or fetches it locally when
// a Downloader was configured.
func (g *HTTPGateway) DownloadPDF(ctx context.Context, arxivID, title string) (DownloadResult, error) {
	if strings.TrimSpace(arxivID) == "" {
		return DownloadResult{}, ErrNoArxivID
	}
	started := time.Now()
	var (
		result DownloadResult
		err    error
	)
	if g.downloader != nil {
		result, err = g.downloadLocal(ctx, arxivID, title)
	} else {
		result, err = g.downloadRemote(ctx, arxivID, title)
	}
	if err != nil {
		g.log.Error("download failed", slog.String("arxiv_id", arxivID), slog.Duration("duration", time.Since(started)), slog.Any("err", err))
		return DownloadResult{}, err
	}
	g.log.Info("download complete", slog.String("arxiv_id", arxivID), slog.String("message", result.Message), slog.Duration("duration", time.Since(started)))
	return result, nil
}

func (g *HTTPGateway) downloadRemote(ctx context.Context, arxivID, title string) (DownloadResult, error) {
	body, err := g.postJSON(ctx, "/download-arxiv-pdf", downloadRequest{ArxivID: arxivID, PaperTitle: title})
	if err != nil {
		return DownloadResult{}, fmt.Errorf("download: %w", err)
	}
	var parsed downloadResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return DownloadResult{}, fmt.Errorf("download: decode response: %w", err)
	}
	if parsed.Error != "" {
		return DownloadResult{}, fmt.Errorf("download: %s", parsed.Error)
	}
	message := strings.TrimSpace(parsed.Message)
	if message == "" {
		message = fmt.Sprintf("Backend accepted download of %s.", arxivID)
	}
	return DownloadResult{Message: message}, nil
}

func (g *HTTPGateway) downloadLocal(ctx context.Context, arxivID, title string) (DownloadResult, error) {
	saved, err := g.downloader.Fetch(ctx, arxivID, title)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("download: %w", err)
	}
	var message string
	switch {
	case saved.RefreshErr != nil:
		g.log.Warn("pdf refresh failed, keeping existing copy", slog.String("arxiv_id", arxivID), slog.Any("err", saved.RefreshErr))
		message = fmt.Sprintf("Could not refresh PDF (%v); kept existing copy at %s (%d pages)", saved.RefreshErr, saved.Path, saved.Pages)
	case saved.Reused:
		message = fmt.Sprintf("PDF already up to date at %s (%d pages)", saved.Path, saved.Pages)
	default:
		message = fmt.Sprintf("PDF downloaded at %s (%d pages)", saved.Path, saved.Pages)
	}
	return DownloadResult{
		Message: message,
		Path:    saved.Path,
		Pages:   saved.Pages,
	}, nil
}

type recommendRequest struct {
	TargetPaper arxiv.Paper   `json:"targetPaper"`
	AllPapers   []arxiv.Paper `json:"allPapers"`
}

// RecommendPapers asks the backend to rank all by similarity to target.
// Papers the backend returns that are not in all are dropped, as is target.
func (g *HTTPGateway) RecommendPapers(ctx context.Context, target arxiv.Paper, all []arxiv.Paper) ([]arxiv.Paper, error) {
	body, err := g.postJSON(ctx, "/recommend-papers", recommendRequest{TargetPaper: target, AllPapers: all})
	if err != nil {
		g.log.Warn("recommendations failed", slog.Int("paper", target.ID), slog.Any("err", err))
		return nil, fmt.Errorf("recommend: %w", err)
	}
	var ranked []arxiv.Paper
	if err := json.Unmarshal(body, &ranked); err != nil {
		g.log.Warn("recommendations undecodable", slog.Int("paper", target.ID), slog.Any("err", err))
		return nil, fmt.Errorf("recommend: decode response: %w", err)
	}
	known := make(map[int]arxiv.Paper, len(all))
	for _, p := range all {
		known[p.ID] = p
	}
	results := make([]arxiv.Paper, 0, len(ranked))
	for _, p := range ranked {
		local, ok := known[p.ID]
		if !ok || p.ID == target.ID {
			continue
		}
		results = append(results, local)
	}
	return results, nil
}

func (g *HTTPGateway) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.base+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return g.do(req)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Status string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned %s", e.Status)
	}
	return fmt.Sprintf("backend returned %s (%s)", e.Status, e.Body)
}

func (g *HTTPGateway) do(req *http.Request) ([]byte, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	limit := g.maxBody
	if limit <= 0 {
		limit = maxResponseBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, limit)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.Status, Code: resp.StatusCode, Body: errorDetail(body)}
	}
	return body, nil
}

// errorDetail pulls {"error": "..."} out of a failure body, or a short raw prefix.
func errorDetail(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	text := strings.TrimSpace(string(body))
	if runes := []rune(text); len(runes) > errorDetailRunes {
		text = string(runes[:errorDetailRunes]) + "…"
	}
	return text
}
