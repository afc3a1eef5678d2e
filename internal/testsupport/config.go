package testsupport

import (
	"path/filepath"
	"testing"

	"cinelake/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Local sources point at files under BaseDir(cfg)/input; the remote source
// keeps its dataset coordinates but has no reachable host until WithRemote.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths = config.Paths{
		RawDir:         filepath.Join(base, "raw"),
		FallbackRawDir: filepath.Join(base, "fallback_raw"),
		CuratedDir:     filepath.Join(base, "curated"),
		MetadataDir:    filepath.Join(base, "metadata"),
		LogDir:         filepath.Join(base, "logs"),
		OverridesDir:   filepath.Join(base, "user_data"),
		CacheDir:       filepath.Join(base, "cache"),
	}
	cfgVal.Sources = config.DefaultSources()
	for i := range cfgVal.Sources {
		if cfgVal.Sources[i].Kind == config.KindLocalFile {
			cfgVal.Sources[i].Path = filepath.Join(base, "input", cfgVal.Sources[i].FileName)
		}
	}
	cfgVal.Remote.BaseURL = "http://127.0.0.1:0"
	cfgVal.Remote.TimeoutSeconds = 5
	cfgVal.Warehouse.Path = filepath.Join(base, "metadata", "lake.sqlite")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithSources replaces the configured sources.
func WithSources(sources ...config.Source) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sources = sources
	}
}

// WithMirror enables the local curated mirror under the temp tree.
func WithMirror() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.MirrorDir = filepath.Join(b.baseDir, "mirror")
	}
}

// WithRemote points remote dataset downloads at baseURL with test credentials.
func WithRemote(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Remote.BaseURL = baseURL
		b.cfg.Remote.Username = "tester"
		b.cfg.Remote.Key = "secret"
	}
}

// WithoutWarehouse disables the analytical store load.
func WithoutWarehouse() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Warehouse.Enabled = false
	}
}

// WithMetricsTextfile writes run metrics to a file under the temp tree.
func WithMetricsTextfile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Textfile = filepath.Join(b.baseDir, "metrics", "cinelake.prom")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.RawDir)
}

// InputPath returns where NewConfig expects a local source file to live.
func InputPath(cfg *config.Config, fileName string) string {
	return filepath.Join(BaseDir(cfg), "input", fileName)
}
