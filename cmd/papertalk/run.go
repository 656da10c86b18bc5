package main

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/csheth/papertalk/internal/archive"
	"github.com/csheth/papertalk/internal/arxiv"
	"github.com/csheth/papertalk/internal/backend"
	"github.com/csheth/papertalk/internal/config"
	"github.com/csheth/papertalk/internal/session"
	"github.com/csheth/papertalk/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	gateway, err := newGateway(settings)
	if err != nil {
		return err
	}

	// A nil *archive.Store must not reach the TUI as a non-nil interface.
	var archiver session.Archiver
	if settings.ArchivePath != "" {
		store, err := archive.Open(settings.ArchivePath)
		if err != nil {
			return err
		}
		defer store.Close()
		archiver = store
		log.Info("transcript archive ready", slog.String("path", store.Path()))
	}

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if settings.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(tui.New(tui.Config{
		Gateway:       gateway,
		Archive:       archiver,
		Logger:        log,
		MarkdownStyle: settings.MarkdownStyle,
	}), opts...)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	log.Info("papertalk exiting")
	return nil
}

func newGateway(cfg config.Config) (*backend.HTTPGateway, error) {
	var fetcher backend.PDFFetcher
	if cfg.DownloadMode == config.DownloadLocal {
		downloader, err := arxiv.NewDownloader(cfg.DownloadDir, nil)
		if err != nil {
			return nil, err
		}
		fetcher = downloader
	}
	return backend.New(backend.Config{
		BaseURL:      cfg.BackendURL,
		Timeout:      cfg.BackendTimeout,
		SearchSource: backend.SearchSource(cfg.SearchSource),
		Downloader:   fetcher,
		Logger:       log,
	})
}
