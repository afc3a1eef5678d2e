package rawstore_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cinelake/internal/logging"
	"cinelake/internal/rawstore"
	"cinelake/internal/services"
	"cinelake/internal/testsupport"
)

func TestNewRunID(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	got := rawstore.NewRunID(time.Date(2024, 3, 9, 14, 5, 7, 0, loc))
	if got != "20240309_120507" {
		t.Fatalf("NewRunID = %q", got)
	}
}

func TestPutAndMarker(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(t.TempDir(), "movies.csv")
	testsupport.WriteFile(t, src, "id,title\nheat,Heat\n")

	store := rawstore.New(root)
	dst, digest, size, err := store.Put("rt_movies", "20240101_000000", src, "movies.csv")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	want := filepath.Join(root, "rt_movies", "20240101_000000", "movies.csv")
	if dst != want {
		t.Fatalf("dst = %q, want %q", dst, want)
	}
	if size != int64(len("id,title\nheat,Heat\n")) || len(digest) != 64 {
		t.Fatalf("unexpected size/digest: %d %q", size, digest)
	}

	runDir := store.RunDir("rt_movies", "20240101_000000")
	marker := rawstore.Marker{Source: "rt_movies", File: "movies.csv", Rows: 1, Hash: digest}
	if err := store.WriteMarker(runDir, marker); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}
	got, err := rawstore.ReadMarker(runDir)
	if err != nil {
		t.Fatalf("ReadMarker: %v", err)
	}
	if got != marker {
		t.Fatalf("marker round trip mismatch: %+v vs %+v", got, marker)
	}
	raw, err := os.ReadFile(filepath.Join(runDir, rawstore.MarkerName))
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if strings.Contains(string(raw), `"dataset"`) {
		t.Fatalf("local marker must omit dataset: %s", raw)
	}
}

func TestLatestFilePicksNewestRunContainingFile(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "rt_movies", "20240101_000000", "movies.csv"), "old")
	testsupport.WriteFile(t, filepath.Join(root, "rt_movies", "20240301_000000", "movies.csv"), "new")
	testsupport.WriteFile(t, filepath.Join(root, "rt_movies", "20240401_000000", "other.csv"), "unrelated")
	testsupport.WriteFile(t, filepath.Join(root, "rt_movies", ".tmp_20240501", "movies.csv"), "partial")

	path, err := rawstore.New(root).LatestFile("rt_movies", "movies.csv")
	if err != nil {
		t.Fatalf("LatestFile: %v", err)
	}
	if filepath.Base(filepath.Dir(path)) != "20240301_000000" {
		t.Fatalf("expected newest complete run, got %q", path)
	}
}

func TestLatestFileNotFound(t *testing.T) {
	root := t.TempDir()
	if _, err := rawstore.New(root).LatestFile("rt_movies", "movies.csv"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for missing source dir, got %v", err)
	}

	testsupport.WriteFile(t, filepath.Join(root, "rt_movies", "20240101_000000", "other.csv"), "x")
	if _, err := rawstore.New(root).LatestFile("rt_movies", "movies.csv"); !rawstore.IsNotFound(err) {
		t.Fatalf("expected not found for missing file, got %v", err)
	}
}

func TestReadWithFallback(t *testing.T) {
	primary := t.TempDir()
	fallback := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(fallback, "rt_movies", "20240101_000000", "movies.csv"), "fallback")

	read := func(path string) (string, error) {
		data, err := os.ReadFile(path)
		return string(data), err
	}

	value, path, err := rawstore.ReadWithFallback(logging.NewNop(), []string{primary, fallback}, "rt_movies", "movies.csv", read)
	if err != nil {
		t.Fatalf("ReadWithFallback: %v", err)
	}
	if value != "fallback" || filepath.Dir(filepath.Dir(filepath.Dir(path))) != fallback {
		t.Fatalf("expected fallback copy, got %q from %q", value, path)
	}

	testsupport.WriteFile(t, filepath.Join(primary, "rt_movies", "20240101_000000", "movies.csv"), "primary")
	value, _, err = rawstore.ReadWithFallback(logging.NewNop(), []string{primary, fallback}, "rt_movies", "movies.csv", read)
	if err != nil {
		t.Fatalf("ReadWithFallback: %v", err)
	}
	if value != "primary" {
		t.Fatalf("expected primary to win, got %q", value)
	}
}

func TestReadWithFallbackSurfacesLastError(t *testing.T) {
	primary := t.TempDir()
	fallback := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(primary, "rt_movies", "20240101_000000", "movies.csv"), "broken")

	readErr := errors.New("malformed csv")
	_, _, err := rawstore.ReadWithFallback(logging.NewNop(), []string{primary, fallback}, "rt_movies", "movies.csv",
		func(string) (int, error) { return 0, readErr })
	if err == nil {
		t.Fatal("expected error when every root fails")
	}
	if errors.Is(err, readErr) {
		t.Fatalf("expected last root's error, not the primary's: %v", err)
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected fallback not-found error to be surfaced, got %v", err)
	}

	if _, _, err := rawstore.ReadWithFallback(logging.NewNop(), nil, "rt_movies", "movies.csv",
		func(string) (int, error) { return 0, nil }); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without roots, got %v", err)
	}
}
