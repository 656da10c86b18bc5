// Package config loads papertalk settings from defaults, papertalk.yaml,
// PAPERTALK_* environment variables and command-line flags, in rising order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	KeyBackendURL     = "backend.url"
	KeyBackendTimeout = "backend.timeout"
	KeySearchSource   = "search.source"
	KeyDownloadMode   = "download.mode"
	KeyDownloadDir    = "download.dir"
	KeyArchivePath    = "archive.path"
	KeyLogFile        = "log.file"
	KeyLogLevel       = "log.level"
	KeyLogFormat      = "log.format"
	KeyAltScreen      = "ui.alt_screen"
	KeyMarkdownStyle  = "ui.markdown_style"

	EnvPrefix = "PAPERTALK"
)

// Download modes.
const (
	DownloadBackend = "backend"
	DownloadLocal   = "local"
)

var (
	searchSources  = []string{"arxiv", "scholar"}
	downloadModes  = []string{DownloadBackend, DownloadLocal}
	logLevels      = []string{"debug", "info", "warn", "error"}
	logFormats     = []string{"text", "json"}
	markdownStyles = []string{"auto", "dark", "light", "notty", "ascii", "dracula", "pink"}
)

// Config is the resolved set of settings.
type Config struct {
	BackendURL     string
	BackendTimeout time.Duration
	SearchSource   string
	DownloadMode   string
	DownloadDir    string
	// ArchivePath is empty when the transcript archive is disabled.
	ArchivePath   string
	LogFile       string
	LogLevel      string
	LogFormat     string
	AltScreen     bool
	MarkdownStyle string
}

// New returns a viper instance with defaults and environment binding set.
// configFile, when non-empty, replaces the papertalk.yaml search.
func New(configFile string) *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBackendURL, "http://localhost:5000")
	v.SetDefault(KeyBackendTimeout, "2m")
	v.SetDefault(KeySearchSource, "arxiv")
	v.SetDefault(KeyDownloadMode, DownloadBackend)
	v.SetDefault(KeyDownloadDir, filepath.Join("~", "Downloads"))
	v.SetDefault(KeyArchivePath, filepath.Join(dataDir(), "papertalk", "transcripts.db"))
	v.SetDefault(KeyLogFile, filepath.Join(cacheDir(), "papertalk", "papertalk.log"))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyAltScreen, true)
	v.SetDefault(KeyMarkdownStyle, "dark")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("papertalk")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "papertalk"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads the config file if one exists. A missing papertalk.yaml is
// not an error; a missing explicitly named file is.
func ReadFile(v *viper.Viper) (string, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load resolves and validates the settings held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		BackendURL:     strings.TrimSpace(v.GetString(KeyBackendURL)),
		BackendTimeout: v.GetDuration(KeyBackendTimeout),
		SearchSource:   strings.ToLower(v.GetString(KeySearchSource)),
		DownloadMode:   strings.ToLower(v.GetString(KeyDownloadMode)),
		DownloadDir:    expandHome(v.GetString(KeyDownloadDir)),
		ArchivePath:    expandHome(v.GetString(KeyArchivePath)),
		LogFile:        expandHome(v.GetString(KeyLogFile)),
		LogLevel:       strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:      strings.ToLower(v.GetString(KeyLogFormat)),
		AltScreen:      v.GetBool(KeyAltScreen),
		MarkdownStyle:  strings.ToLower(v.GetString(KeyMarkdownStyle)),
	}

	var problems []string
	if cfg.BackendURL == "" {
		problems = append(problems, KeyBackendURL+" must not be empty")
	}
	if cfg.BackendTimeout < 0 {
		problems = append(problems, KeyBackendTimeout+" must not be negative")
	}
	problems = appendEnum(problems, KeySearchSource, cfg.SearchSource, searchSources)
	problems = appendEnum(problems, KeyDownloadMode, cfg.DownloadMode, downloadModes)
	problems = appendEnum(problems, KeyLogLevel, cfg.LogLevel, logLevels)
	problems = appendEnum(problems, KeyLogFormat, cfg.LogFormat, logFormats)
	problems = appendEnum(problems, KeyMarkdownStyle, cfg.MarkdownStyle, markdownStyles)
	if cfg.DownloadMode == DownloadLocal && cfg.DownloadDir == "" {
		problems = append(problems, KeyDownloadDir+" is required when "+KeyDownloadMode+" is local")
	}
	if len(problems) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

func appendEnum(problems []string, key, value string, allowed []string) []string {
	for _, candidate := range allowed {
		if value == candidate {
			return problems
		}
	}
	return append(problems, fmt.Sprintf("%s %q must be one of %s", key, value, strings.Join(allowed, ", ")))
}

func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func cacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	return os.TempDir()
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share")
	}
	return os.TempDir()
}
