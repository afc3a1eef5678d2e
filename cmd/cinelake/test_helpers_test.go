package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cinelake/internal/config"
	"cinelake/internal/sources"
	"cinelake/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t, testsupport.WithMetricsTextfile())
	cfg.Sources = []config.Source{
		localSource(cfg, "rt_reviews", "rotten_tomatoes_movie_reviews.csv"),
		localSource(cfg, "rt_movies", "rotten_tomatoes_movies.csv"),
		localSource(cfg, "imdb_kaggle", "IMDB Dataset.csv"),
	}
	cfg.Logging.Level = "error"

	configPath := filepath.Join(homeDir, ".config", "cinelake", "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func localSource(cfg *config.Config, name, fileName string) config.Source {
	return config.Source{
		Name:     name,
		Kind:     config.KindLocalFile,
		Path:     testsupport.InputPath(cfg, fileName),
		FileName: fileName,
	}
}

// seedInputs writes one small dump per configured source.
func seedInputs(t *testing.T, cfg *config.Config) {
	t.Helper()
	testsupport.WriteCSV(t, testsupport.InputPath(cfg, "rotten_tomatoes_movies.csv"), sources.RTMovieColumns,
		[]string{"inception", "Inception", "91", "87", "148", "2010-07-16", "", "$292.6M", "Sci-fi", "Christopher Nolan", "Christopher Nolan"},
	)
	testsupport.WriteCSV(t, testsupport.InputPath(cfg, "IMDB Dataset.csv"), sources.IMDBMovieColumns,
		[]string{"Inception", "2010", "148 min", "$292,576,195", "8.8", "2,100,000", "74", "tt1375666",
			"Christopher Nolan", "Christopher Nolan", "Leonardo DiCaprio, Elliot Page", "English", "USA",
			"Action", "2010-07-16", "https://www.rottentomatoes.com/m/inception"},
	)
	testsupport.WriteCSV(t, testsupport.InputPath(cfg, "rotten_tomatoes_movie_reviews.csv"), sources.RTReviewColumns,
		[]string{"inception", "r1", "Jane", "Planet", "True", "4/5", "POSITIVE", "fresh", "Great.", "2010-07-20"},
	)
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q to contain %q", haystack, needle)
	}
}
