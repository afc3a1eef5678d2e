package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSources(); err != nil {
		return err
	}
	c.normalizeRemote()
	if err := c.normalizeWarehouse(); err != nil {
		return err
	}
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeout
	}
	c.normalizeLogging()
	if c.Workflow.RunIntervalMinutes < 0 {
		c.Workflow.RunIntervalMinutes = 0
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.MirrorDir) == "" {
		if value, ok := os.LookupEnv("LOCAL_CURATED_MIRROR"); ok {
			c.Paths.MirrorDir = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}

	fields := []struct {
		key   string
		value *string
	}{
		{"paths.raw_dir", &c.Paths.RawDir},
		{"paths.fallback_raw_dir", &c.Paths.FallbackRawDir},
		{"paths.curated_dir", &c.Paths.CuratedDir},
		{"paths.mirror_dir", &c.Paths.MirrorDir},
		{"paths.metadata_dir", &c.Paths.MetadataDir},
		{"paths.log_dir", &c.Paths.LogDir},
		{"paths.overrides_dir", &c.Paths.OverridesDir},
		{"paths.cache_dir", &c.Paths.CacheDir},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeSources() error {
	for i := range c.Sources {
		src := &c.Sources[i]
		src.Name = strings.TrimSpace(src.Name)
		src.Kind = normalizeKind(src.Kind)
		src.Dataset = strings.TrimSpace(src.Dataset)
		src.FileName = strings.TrimSpace(src.FileName)
		src.Path = strings.TrimSpace(src.Path)
		if src.Path != "" {
			expanded, err := expandPath(src.Path)
			if err != nil {
				return fmt.Errorf("sources[%s].path: %w", src.Name, err)
			}
			src.Path = expanded
		}
		if src.FileName == "" && src.Path != "" {
			src.FileName = filepath.Base(src.Path)
		}
	}
	return nil
}

// normalizeKind lowercases kinds and maps the legacy spellings used by older
// configs onto the canonical ones.
func normalizeKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	switch kind {
	case "csv_local", "local", "csv", "file":
		return KindLocalFile
	case "kaggle_imdb", "kaggle", "remote":
		return KindRemoteDataset
	default:
		return kind
	}
}

func (c *Config) normalizeRemote() {
	c.Remote.BaseURL = strings.TrimRight(strings.TrimSpace(c.Remote.BaseURL), "/")
	if c.Remote.BaseURL == "" {
		c.Remote.BaseURL = defaultRemoteBaseURL
	}
	c.Remote.Username = strings.TrimSpace(c.Remote.Username)
	if c.Remote.Username == "" {
		if value, ok := os.LookupEnv("KAGGLE_USERNAME"); ok {
			c.Remote.Username = strings.TrimSpace(value)
		}
	}
	c.Remote.Key = strings.TrimSpace(c.Remote.Key)
	if c.Remote.Key == "" {
		if value, ok := os.LookupEnv("KAGGLE_KEY"); ok {
			c.Remote.Key = strings.TrimSpace(value)
		}
	}
	if c.Remote.TimeoutSeconds <= 0 {
		c.Remote.TimeoutSeconds = defaultRemoteTimeout
	}
}

func (c *Config) normalizeWarehouse() error {
	if strings.TrimSpace(c.Warehouse.Path) == "" {
		c.Warehouse.Path = filepath.Join(c.Paths.MetadataDir, defaultWarehouseFile)
		return nil
	}
	expanded, err := expandPath(strings.TrimSpace(c.Warehouse.Path))
	if err != nil {
		return fmt.Errorf("warehouse.path: %w", err)
	}
	c.Warehouse.Path = expanded
	return nil
}

func (c *Config) normalizeMetrics() error {
	c.Metrics.Textfile = strings.TrimSpace(c.Metrics.Textfile)
	if c.Metrics.Textfile == "" {
		return nil
	}
	expanded, err := expandPath(c.Metrics.Textfile)
	if err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	c.Metrics.Textfile = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		if value, ok := os.LookupEnv("CINELAKE_LOG_LEVEL"); ok {
			c.Logging.Level = strings.ToLower(strings.TrimSpace(value))
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
