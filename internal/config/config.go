package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Source kinds understood by the fetchers.
const (
	KindLocalFile     = "local_file"
	KindRemoteDataset = "remote_dataset"
)

// Paths contains directory configuration.
type Paths struct {
	RawDir         string `toml:"raw_dir"`
	FallbackRawDir string `toml:"fallback_raw_dir"`
	CuratedDir     string `toml:"curated_dir"`
	MirrorDir      string `toml:"mirror_dir"`
	MetadataDir    string `toml:"metadata_dir"`
	LogDir         string `toml:"log_dir"`
	OverridesDir   string `toml:"overrides_dir"`
	CacheDir       string `toml:"cache_dir"`
}

// Source describes one raw input to ingest.
type Source struct {
	Name     string `toml:"name"`
	Kind     string `toml:"kind"`
	Path     string `toml:"path"`
	Dataset  string `toml:"dataset"`
	FileName string `toml:"file_name"`
}

// Remote contains configuration for the remote dataset host.
type Remote struct {
	BaseURL        string `toml:"base_url"`
	Username       string `toml:"username"`
	Key            string `toml:"key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Warehouse contains configuration for the analytical store load.
type Warehouse struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Metrics contains configuration for the Prometheus textfile export.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Workflow contains configuration for repeated runs.
type Workflow struct {
	RunIntervalMinutes int `toml:"run_interval_minutes"`
}

// Notifications contains configuration for ntfy pipeline alerts.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for cinelake.
//
// Configuration sections by subsystem:
//   - Paths: raw, curated, mirror, metadata, log and override directories
//   - Sources: the raw inputs enumerated for ingestion
//   - Remote: credentials for remote dataset downloads
//   - Warehouse: analytical store materialization
//   - Metrics: Prometheus textfile output
//   - Workflow: timer-driven runs
//   - Notifications: ntfy alerts for finished and failed cycles
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Sources       []Source      `toml:"sources"`
	Remote        Remote        `toml:"remote"`
	Warehouse     Warehouse     `toml:"warehouse"`
	Metrics       Metrics       `toml:"metrics"`
	Workflow      Workflow      `toml:"workflow"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cinelake/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		loadEnvFile(filepath.Join(filepath.Dir(resolvedPath), ".env"))

		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadEnvFile loads a .env file without overriding variables already set.
func loadEnvFile(path string) {
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return
	}
	_ = godotenv.Load(path)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cinelake.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
// The mirror directory is only created when configured.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.RawDir,
		c.Paths.CuratedDir,
		c.Paths.MetadataDir,
		c.Paths.LogDir,
		c.Paths.OverridesDir,
	}
	if strings.TrimSpace(c.Paths.MirrorDir) != "" {
		dirs = append(dirs, c.Paths.MirrorDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the SQLite file backing the ingestion ledger.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.MetadataDir, "ingestions.db")
}

// LedgerLockPath returns the lock file guarding ledger writers.
func (c *Config) LedgerLockPath() string {
	return filepath.Join(c.Paths.MetadataDir, "ingestions.lock")
}

// RawCandidates returns the raw roots searched by the transform stage, primary first.
func (c *Config) RawCandidates() []string {
	roots := []string{c.Paths.RawDir}
	if fallback := strings.TrimSpace(c.Paths.FallbackRawDir); fallback != "" && fallback != c.Paths.RawDir {
		roots = append(roots, fallback)
	}
	return roots
}

// SourceByName returns the configured source with the given name.
func (c *Config) SourceByName(name string) (Source, bool) {
	for _, src := range c.Sources {
		if src.Name == name {
			return src, true
		}
	}
	return Source{}, false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "cinelake", "datasets")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/cinelake/datasets"
	}
	return filepath.Join(home, ".cache", "cinelake", "datasets")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
