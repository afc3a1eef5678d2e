package fetch_test

import (
	"archive/zip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"cinelake/internal/config"
	"cinelake/internal/fetch"
	"cinelake/internal/logging"
	"cinelake/internal/services"
	"cinelake/internal/testsupport"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		src     config.Source
		wantErr bool
	}{
		{"local ok", config.Source{Name: "a", Kind: config.KindLocalFile, Path: "/tmp/a.csv"}, false},
		{"local missing path", config.Source{Name: "a", Kind: config.KindLocalFile}, true},
		{"remote ok", config.Source{Name: "b", Kind: config.KindRemoteDataset, Dataset: "o/d", FileName: "f.csv"}, false},
		{"remote missing dataset", config.Source{Name: "b", Kind: config.KindRemoteDataset, FileName: "f.csv"}, true},
		{"remote missing file", config.Source{Name: "b", Kind: config.KindRemoteDataset, Dataset: "o/d"}, true},
		{"unknown kind", config.Source{Name: "c", Kind: "ftp"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fetch.Validate(tt.src)
			if tt.wantErr {
				if !errors.Is(err, services.ErrConfiguration) {
					t.Fatalf("expected configuration error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLocalFileFetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movies.csv")
	testsupport.WriteFile(t, path, "id\n1\n")

	got, err := fetch.LocalFile{}.Fetch(context.Background(), config.Source{Name: "rt", Kind: config.KindLocalFile, Path: path})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != path {
		t.Fatalf("got %q, want %q", got, path)
	}

	_, err = fetch.LocalFile{}.Fetch(context.Background(), config.Source{Name: "rt", Kind: config.KindLocalFile, Path: filepath.Join(dir, "missing.csv")})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func zipBody(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestRemoteDatasetFetch(t *testing.T) {
	archive := zipBody(t, map[string]string{
		"README.txt":              "ignore me",
		"nested/IMDB Dataset.csv": "Title,imdbID\nHeat,tt0113277\n",
	})
	var gotUser, gotPass, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(archive)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithRemote(server.URL+"/api/v1"))
	registry := fetch.NewRegistry(cfg, logging.NewNop())
	src, _ := cfg.SourceByName("imdb_kaggle")

	path, err := registry.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read extracted: %v", err)
	}
	if string(data) != "Title,imdbID\nHeat,tt0113277\n" {
		t.Fatalf("unexpected extracted content %q", data)
	}
	if gotUser != "tester" || gotPass != "secret" {
		t.Fatalf("expected basic auth credentials, got %q/%q", gotUser, gotPass)
	}
	if gotPath != "/api/v1/datasets/download/isaidhs/imdb-dataset" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected archive to be cleaned up, found %d entries", len(entries))
	}
}

func TestRemoteDatasetMissingMember(t *testing.T) {
	archive := zipBody(t, map[string]string{"other.csv": "x"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithRemote(server.URL))
	src, _ := cfg.SourceByName("imdb_kaggle")
	_, err := fetch.NewRegistry(cfg, nil).Fetch(context.Background(), src)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for missing archive member, got %v", err)
	}
}

func TestRemoteDatasetStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, services.ErrNotFound},
		{http.StatusUnauthorized, services.ErrConfiguration},
		{http.StatusBadGateway, services.ErrTransient},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		cfg := testsupport.NewConfig(t, testsupport.WithRemote(server.URL))
		src, _ := cfg.SourceByName("imdb_kaggle")
		_, err := fetch.NewRegistry(cfg, nil).Fetch(context.Background(), src)
		server.Close()
		if !errors.Is(err, tt.want) {
			t.Fatalf("status %d: expected %v, got %v", tt.status, tt.want, err)
		}
	}
}
