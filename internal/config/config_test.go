package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cinelake/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("KAGGLE_USERNAME", "env-user")
	t.Setenv("KAGGLE_KEY", "env-key")
	chdir(t, t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantRaw := filepath.Join(tempHome, ".local", "share", "cinelake", "raw")
	if cfg.Paths.RawDir != wantRaw {
		t.Fatalf("unexpected raw dir: got %q want %q", cfg.Paths.RawDir, wantRaw)
	}
	if !filepath.IsAbs(cfg.Paths.FallbackRawDir) {
		t.Fatalf("expected fallback raw dir to be absolute, got %q", cfg.Paths.FallbackRawDir)
	}
	if cfg.Paths.MirrorDir != "" {
		t.Fatalf("expected mirror disabled by default, got %q", cfg.Paths.MirrorDir)
	}
	if cfg.Remote.Username != "env-user" || cfg.Remote.Key != "env-key" {
		t.Fatalf("expected remote credentials from env, got %q/%q", cfg.Remote.Username, cfg.Remote.Key)
	}
	if cfg.Warehouse.Path != filepath.Join(cfg.Paths.MetadataDir, "lake.sqlite") {
		t.Fatalf("unexpected warehouse path: %q", cfg.Warehouse.Path)
	}
	if len(cfg.Sources) != 3 {
		t.Fatalf("expected three default sources, got %d", len(cfg.Sources))
	}
	if cfg.LedgerPath() != filepath.Join(cfg.Paths.MetadataDir, "ingestions.db") {
		t.Fatalf("unexpected ledger path: %q", cfg.LedgerPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.RawDir, cfg.Paths.CuratedDir, cfg.Paths.MetadataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPathNormalizesSources(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "cinelake.toml")

	type source struct {
		Name string `toml:"name"`
		Kind string `toml:"kind"`
		Path string `toml:"path"`
	}
	type payload struct {
		Paths struct {
			RawDir string `toml:"raw_dir"`
		} `toml:"paths"`
		Sources []source `toml:"sources"`
		Logging struct {
			Level string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.RawDir = filepath.Join(tempDir, "raw")
	custom.Sources = []source{
		{Name: " movies ", Kind: "CSV_LOCAL", Path: filepath.Join(tempDir, "in", "movies.csv")},
		{Name: "catalog", Kind: "kaggle_imdb"},
	}
	custom.Logging.Level = "DEBUG"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.RawDir != filepath.Join(tempDir, "raw") {
		t.Fatalf("unexpected raw dir: %q", cfg.Paths.RawDir)
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("expected configured sources to replace defaults, got %d", len(cfg.Sources))
	}
	movies, ok := cfg.SourceByName("movies")
	if !ok {
		t.Fatal("expected trimmed source name")
	}
	if movies.Kind != config.KindLocalFile {
		t.Fatalf("expected legacy kind mapped to local_file, got %q", movies.Kind)
	}
	if movies.FileName != "movies.csv" {
		t.Fatalf("expected file name derived from path, got %q", movies.FileName)
	}
	catalog, _ := cfg.SourceByName("catalog")
	if catalog.Kind != config.KindRemoteDataset {
		t.Fatalf("expected remote_dataset kind, got %q", catalog.Kind)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased level, got %q", cfg.Logging.Level)
	}
}

func TestLoadReadsEnvFileNextToConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "cinelake.toml")
	if err := os.WriteFile(configPath, []byte("[logging]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, ".env"), []byte("KAGGLE_KEY=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("KAGGLE_KEY", "")
	os.Unsetenv("KAGGLE_KEY")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Remote.Key != "from-dotenv" {
		t.Fatalf("expected key from .env, got %q", cfg.Remote.Key)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "imdb_kaggle") {
		t.Fatalf("sample config missing default sources: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if len(cfg.Sources) != 3 {
		t.Fatalf("expected three sample sources, got %d", len(cfg.Sources))
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	validConfig := func() config.Config {
		cfg := config.Default()
		cfg.Warehouse.Path = "/srv/cinelake/warehouse.db"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "duplicated source name",
			mutate:  func(c *config.Config) { c.Sources = append(c.Sources, c.Sources[0]) },
			wantErr: "is duplicated",
		},
		{
			name:    "empty source name",
			mutate:  func(c *config.Config) { c.Sources[0].Name = "" },
			wantErr: "sources[0].name must be set",
		},
		{
			name:    "empty curated dir",
			mutate:  func(c *config.Config) { c.Paths.CuratedDir = "" },
			wantErr: "paths.curated_dir must be set",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *config.Config) { c.Logging.Level = "verbose" },
			wantErr: `unsupported value "verbose"`,
		},
		{
			name:    "warehouse enabled without path",
			mutate:  func(c *config.Config) { c.Warehouse.Path = "" },
			wantErr: "warehouse.path must be set",
		},
		{
			name: "warehouse disabled without path",
			mutate: func(c *config.Config) {
				c.Warehouse.Enabled = false
				c.Warehouse.Path = ""
			},
		},
		{
			name:   "missing fetch parameters",
			mutate: func(c *config.Config) { c.Sources[2].Dataset = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
