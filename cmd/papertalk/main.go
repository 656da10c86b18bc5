// Package main is the papertalk terminal client: search arXiv through the
// papertalk backend, pick a paper and chat about it.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/csheth/papertalk/internal/config"
	"github.com/csheth/papertalk/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	settings  config.Config
	log       *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "papertalk",
	Short: "Chat with research papers from your terminal",
	Long: `papertalk searches arXiv (or Google Scholar) through the papertalk backend,
lists the matching papers and opens a chat about the one you pick. Related
papers from the same search can be swapped in without leaving the chat.

Settings come from papertalk.yaml (./ or ~/.config/papertalk/), PAPERTALK_*
environment variables and the flags below, later sources winning.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runTUI,
}

// flagKeys maps persistent flags onto config keys.
var flagKeys = map[string]string{
	"backend-url":    config.KeyBackendURL,
	"timeout":        config.KeyBackendTimeout,
	"search-source":  config.KeySearchSource,
	"download-mode":  config.KeyDownloadMode,
	"download-dir":   config.KeyDownloadDir,
	"archive-path":   config.KeyArchivePath,
	"log-file":       config.KeyLogFile,
	"log-level":      config.KeyLogLevel,
	"log-format":     config.KeyLogFormat,
	"markdown-style": config.KeyMarkdownStyle,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./papertalk.yaml or ~/.config/papertalk/papertalk.yaml)")
	flags.String("backend-url", "", "papertalk backend base URL")
	flags.Duration("timeout", 0, "per-request timeout for backend calls (0 disables it)")
	flags.String("search-source", "", "search endpoint: arxiv or scholar")
	flags.String("download-mode", "", "backend saves PDFs server-side; local fetches them into --download-dir")
	flags.String("download-dir", "", "directory for local PDF downloads")
	flags.String("archive-path", "", "bbolt file holding saved transcripts (empty disables saving)")
	flags.String("log-file", "", "append logs to this file (empty discards them)")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-format", "", "text or json")
	flags.String("markdown-style", "", "glamour style for chat messages (auto, dark, light, notty, ...)")
	rootCmd.Flags().Bool("no-alt-screen", false, "render inline instead of using the alternate screen")
}

// setup resolves settings and opens the log before any subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	v := config.New(configFile)
	if err := bindFlags(cmd, v); err != nil {
		return err
	}
	used, err := config.ReadFile(v)
	if err != nil {
		return err
	}
	settings, err = config.Load(v)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}
	log, logCloser, err = logger.Open(settings.LogFile, logger.Config{Level: level, Format: settings.LogFormat})
	if err != nil {
		return err
	}
	slog.SetDefault(log)
	log.Info("papertalk starting",
		slog.String("version", version),
		slog.String("config", used),
		slog.String("backend", settings.BackendURL),
		slog.String("command", cmd.CommandPath()),
	)
	return nil
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	if flag := cmd.Flags().Lookup("no-alt-screen"); flag != nil && flag.Changed {
		v.Set(config.KeyAltScreen, false)
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if logCloser == nil {
		return nil
	}
	return logCloser.Close()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
