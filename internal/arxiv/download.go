package arxiv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

const (
	partialSuffix       = ".part"
	metaSuffix          = ".meta"
	maxFilenameRunes    = 120
	defaultFetchTimeout = 90 * time.Second
)

var unsafeFilenameChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)

// Download describes a PDF stored on disk.
type Download struct {
	Path   string
	Pages  int
	Bytes  int64
	Reused bool
	// RefreshErr is set when fetching a newer copy failed and the file
	// already on disk was returned instead.
	RefreshErr error
}

// Downloader saves arXiv PDFs into a directory. Interrupted transfers are
// resumed from their .part file and existing files are revalidated with
// ETag / Last-Modified before being fetched again.
type Downloader struct {
	dir    string
	client *http.Client
	// pdfURL maps an identifier to its download location.
	pdfURL func(id string) string
}

type downloadMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"lastModified"`
	SavedAt      time.Time `json:"savedAt"`
	Size         int64     `json:"size"`
}

// NewDownloader prepares dir and returns a Downloader writing into it.
func NewDownloader(dir string, client *http.Client) (*Downloader, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("arxiv: download directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Downloader{dir: dir, client: client, pdfURL: PDFURL}, nil
}

// Dir reports where files are written.
func (d *Downloader) Dir() string { return d.dir }

// Fetch downloads the PDF for id and names it after title.
func (d *Downloader) Fetch(ctx context.Context, id, title string) (Download, error) {
	if strings.TrimSpace(id) == "" {
		return Download{}, errors.New("arxiv: identifier is required")
	}
	pdfPath, metaPath, partialPath := d.pathsFor(id, title)
	url := d.pdfURL(id)

	meta, _ := readDownloadMeta(metaPath)
	current, _ := os.Stat(pdfPath)
	reused, err := d.transfer(ctx, url, pdfPath, metaPath, partialPath, meta, current)
	if err != nil {
		if current == nil || current.Size() == 0 {
			return Download{}, err
		}
		saved, inspectErr := inspect(pdfPath, true)
		if inspectErr != nil {
			return Download{}, err
		}
		saved.RefreshErr = err
		return saved, nil
	}
	return inspect(pdfPath, reused)
}

func (d *Downloader) transfer(ctx context.Context, url, pdfPath, metaPath, partialPath string, meta downloadMeta, current os.FileInfo) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	if current != nil && current.Size() > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	var partialSize int64
	if info, err := os.Stat(partialPath); err == nil && info.Size() > 0 {
		partialSize = info.Size()
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", partialSize))
		if meta.ETag != "" {
			req.Header.Set("If-Range", meta.ETag)
		} else if meta.LastModified != "" {
			req.Header.Set("If-Range", meta.LastModified)
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if current != nil && current.Size() > 0 {
			return true, nil
		}
		return d.transfer(ctx, url, pdfPath, metaPath, partialPath, downloadMeta{}, nil)
	case http.StatusOK:
		return false, d.save(resp, pdfPath, metaPath, partialPath, false)
	case http.StatusPartialContent:
		return false, d.save(resp, pdfPath, metaPath, partialPath, partialSize > 0)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("pdf download failed: %s (%s)", resp.Status, strings.TrimSpace(string(body)))
	}
}

func (d *Downloader) save(resp *http.Response, pdfPath, metaPath, partialPath string, appendExisting bool) error {
	flags := os.O_CREATE | os.O_WRONLY
	if appendExisting {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(partialPath, flags, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	// A captcha or error page served with 200 must not replace a good copy.
	if _, err := CountPages(partialPath); err != nil {
		_ = os.Remove(partialPath)
		return fmt.Errorf("arxiv: response is not a usable pdf: %w", err)
	}
	if err := os.Rename(partialPath, pdfPath); err != nil {
		return err
	}

	meta := downloadMeta{
		URL:          resp.Request.URL.String(),
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
		SavedAt:      time.Now().UTC(),
	}
	if info, err := os.Stat(pdfPath); err == nil {
		meta.Size = info.Size()
	}
	return writeDownloadMeta(metaPath, meta)
}

func (d *Downloader) pathsFor(id, title string) (string, string, string) {
	name := FileName(id, title)
	pdfPath := filepath.Join(d.dir, name)
	hidden := filepath.Join(d.dir, "."+name)
	return pdfPath, hidden + metaSuffix, hidden + partialSuffix
}

// FileName builds the on-disk name for a paper PDF from its title, falling
// back to the identifier when the title has nothing usable.
func FileName(id, title string) string {
	base := strings.Join(strings.Fields(title), " ")
	base = unsafeFilenameChars.ReplaceAllString(base, "-")
	base = strings.Trim(base, ". -")
	if runes := []rune(base); len(runes) > maxFilenameRunes {
		base = strings.TrimSpace(string(runes[:maxFilenameRunes]))
	}
	if base == "" {
		base = strings.NewReplacer("/", "-", ":", "-", "..", "-").Replace(id)
	}
	return base + ".pdf"
}

func inspect(path string, reused bool) (Download, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Download{}, err
	}
	pages, err := CountPages(path)
	if err != nil {
		return Download{}, err
	}
	return Download{Path: path, Pages: pages, Bytes: info.Size(), Reused: reused}, nil
}

// CountPages opens a PDF and reports how many pages it has.
func CountPages(path string) (int, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()
	return reader.NumPage(), nil
}

func readDownloadMeta(path string) (downloadMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return downloadMeta{}, err
	}
	var meta downloadMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return downloadMeta{}, err
	}
	return meta, nil
}

func writeDownloadMeta(path string, meta downloadMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
