package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"cinelake/internal/config"
	"cinelake/internal/services"
)

// Fetcher materializes a source as a local file.
type Fetcher interface {
	Fetch(ctx context.Context, src config.Source) (string, error)
}

// Validate checks the per-kind parameters of src before any I/O happens.
func Validate(src config.Source) error {
	switch src.Kind {
	case config.KindLocalFile:
		if strings.TrimSpace(src.Path) == "" {
			return services.Wrap(services.ErrConfiguration, "ingest", "validate source", fmt.Sprintf("source %s: path is required for %s", src.Name, src.Kind), nil)
		}
	case config.KindRemoteDataset:
		if strings.TrimSpace(src.Dataset) == "" {
			return services.Wrap(services.ErrConfiguration, "ingest", "validate source", fmt.Sprintf("source %s: dataset is required for %s", src.Name, src.Kind), nil)
		}
		if strings.TrimSpace(src.FileName) == "" {
			return services.Wrap(services.ErrConfiguration, "ingest", "validate source", fmt.Sprintf("source %s: file_name is required for %s", src.Name, src.Kind), nil)
		}
	default:
		return services.Wrap(services.ErrConfiguration, "ingest", "validate source", fmt.Sprintf("source %s: unknown kind %q", src.Name, src.Kind), nil)
	}
	return nil
}

// Registry dispatches to the fetcher registered for a source kind.
type Registry struct {
	fetchers map[string]Fetcher
}

// NewRegistry builds the default registry for cfg.
func NewRegistry(cfg *config.Config, logger *slog.Logger) *Registry {
	timeout := time.Duration(cfg.Remote.TimeoutSeconds) * time.Second
	remote := NewRemoteDataset(RemoteOptions{
		BaseURL:  cfg.Remote.BaseURL,
		Username: cfg.Remote.Username,
		Key:      cfg.Remote.Key,
		CacheDir: cfg.Paths.CacheDir,
		Client:   &http.Client{Timeout: timeout},
		Logger:   logger,
	})
	return &Registry{fetchers: map[string]Fetcher{
		config.KindLocalFile:     LocalFile{},
		config.KindRemoteDataset: remote,
	}}
}

// Register overrides the fetcher used for kind.
func (r *Registry) Register(kind string, fetcher Fetcher) {
	r.fetchers[kind] = fetcher
}

// Fetch validates src and delegates to the fetcher for its kind.
func (r *Registry) Fetch(ctx context.Context, src config.Source) (string, error) {
	if err := Validate(src); err != nil {
		return "", err
	}
	fetcher, ok := r.fetchers[src.Kind]
	if !ok {
		return "", services.Wrap(services.ErrConfiguration, "ingest", "fetch", fmt.Sprintf("no fetcher for kind %q", src.Kind), nil)
	}
	return fetcher.Fetch(ctx, src)
}

// LocalFile serves sources that already exist on the local filesystem.
type LocalFile struct{}

// Fetch returns src.Path when it names an existing regular file.
func (LocalFile) Fetch(_ context.Context, src config.Source) (string, error) {
	info, err := os.Stat(src.Path)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "ingest", "fetch local file", fmt.Sprintf("file not found for source %s: %s", src.Name, src.Path), err)
	}
	if info.IsDir() {
		return "", services.Wrap(services.ErrNotFound, "ingest", "fetch local file", fmt.Sprintf("source %s path is a directory: %s", src.Name, src.Path), nil)
	}
	return src.Path, nil
}
