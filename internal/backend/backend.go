// Package backend talks to the papertalk backend service: paper search,
// chat turns, PDF downloads and recommendations.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/csheth/papertalk/internal/arxiv"
	"github.com/csheth/papertalk/internal/chat"
)

const (
	// DefaultBaseURL is where the backend listens when nothing is configured.
	DefaultBaseURL = "http://localhost:5000"

	defaultBackendHTTPTimeout = 2 * time.Minute
	maxResponseBytes          = 8 << 20
	errorDetailRunes          = 200
)

// SearchSource selects the search endpoint.
type SearchSource string

const (
	SourceArxiv   SearchSource = "arxiv"
	SourceScholar SearchSource = "scholar"
)

// ErrNoArxivID is returned when a download is requested for a paper whose
// reference carries no arXiv identifier.
var ErrNoArxivID = errors.New("backend: paper has no arXiv identifier")

// ErrResponseTooLarge is returned when a response body exceeds the read limit.
var ErrResponseTooLarge = errors.New("backend: response too large")

// Config describes how to build a Gateway.
type Config struct {
	BaseURL string
	// Timeout bounds each request. Zero means no timeout.
	Timeout      time.Duration
	SearchSource SearchSource
	// Downloader, when set, fetches PDFs locally instead of asking the backend.
	Downloader PDFFetcher
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Gateway is the set of backend round trips the controller depends on.
type Gateway interface {
	Search(ctx context.Context, topic string) ([]arxiv.Paper, error)
	// SendChatTurn always returns a usable message: on failure it is the
	// fallback apology and err describes what went wrong.
	SendChatTurn(ctx context.Context, transcript []chat.Message, title, summary string) (chat.Message, error)
	DownloadPDF(ctx context.Context, arxivID, title string) (DownloadResult, error)
	RecommendPapers(ctx context.Context, target arxiv.Paper, all []arxiv.Paper) ([]arxiv.Paper, error)
	Name() string
}

// PDFFetcher stores a paper's PDF somewhere the user can open it.
type PDFFetcher interface {
	Fetch(ctx context.Context, id, title string) (arxiv.Download, error)
}

// DownloadResult describes a completed download.
type DownloadResult struct {
	Message string
	// Path and Pages are only known for local downloads.
	Path  string
	Pages int
}

// New validates cfg and returns an HTTP-backed Gateway.
func New(cfg Config) (*HTTPGateway, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("backend: base url %q must start with http:// or https://", base)
	}
	source := cfg.SearchSource
	if source == "" {
		source = SourceArxiv
	}
	if source != SourceArxiv && source != SourceScholar {
		return nil, fmt.Errorf("backend: unknown search source %q", source)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPGateway{
		base:       base,
		source:     source,
		downloader: cfg.Downloader,
		client:     pickHTTPClient(cfg.HTTPClient, cfg.Timeout),
		log:        logger.With(slog.String("component", "backend")),
		maxBody:    maxResponseBytes,
	}, nil
}

func pickHTTPClient(custom *http.Client, timeout time.Duration) *http.Client {
	if custom != nil {
		return custom
	}
	if timeout < 0 {
		timeout = defaultBackendHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}
