package fetch

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cinelake/internal/config"
	"cinelake/internal/fileutil"
	"cinelake/internal/logging"
	"cinelake/internal/services"
	"cinelake/internal/textutil"
)

// RemoteOptions configures RemoteDataset.
type RemoteOptions struct {
	BaseURL  string
	Username string
	Key      string
	CacheDir string
	Client   *http.Client
	Logger   *slog.Logger
}

// RemoteDataset downloads <base>/datasets/download/<owner>/<name> as a zip
// archive and extracts the configured member into the cache directory.
type RemoteDataset struct {
	opts RemoteOptions
}

// NewRemoteDataset constructs a remote dataset fetcher.
func NewRemoteDataset(opts RemoteOptions) *RemoteDataset {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	opts.Logger = logging.NewComponentLogger(opts.Logger, "fetch")
	return &RemoteDataset{opts: opts}
}

// Fetch downloads the dataset archive and returns the extracted file path.
func (r *RemoteDataset) Fetch(ctx context.Context, src config.Source) (string, error) {
	datasetDir := filepath.Join(r.opts.CacheDir, textutil.SanitizeToken(src.Dataset))
	if err := os.MkdirAll(datasetDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrWriteFailure, "ingest", "prepare dataset cache", datasetDir, err)
	}

	archivePath, err := r.download(ctx, src, datasetDir)
	if err != nil {
		return "", err
	}
	defer os.Remove(archivePath)

	target := filepath.Join(datasetDir, textutil.SanitizeFileName(src.FileName))
	if err := extractMember(archivePath, src.FileName, target); err != nil {
		return "", err
	}
	r.opts.Logger.Debug("dataset file extracted",
		logging.String(logging.FieldSource, src.Name),
		logging.String("dataset", src.Dataset),
		logging.String("extracted_path", target),
	)
	return target, nil
}

func (r *RemoteDataset) download(ctx context.Context, src config.Source, dir string) (string, error) {
	endpoint, err := url.JoinPath(r.opts.BaseURL, "datasets", "download", src.Dataset)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "ingest", "build dataset url", r.opts.BaseURL, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "ingest", "build dataset request", endpoint, err)
	}
	if r.opts.Username != "" || r.opts.Key != "" {
		req.SetBasicAuth(r.opts.Username, r.opts.Key)
	}

	r.opts.Logger.Debug("downloading dataset",
		logging.String(logging.FieldSource, src.Name),
		logging.String("dataset", src.Dataset),
	)
	resp, err := r.opts.Client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "ingest", "download dataset", src.Dataset, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", services.Wrap(services.ErrNotFound, "ingest", "download dataset", fmt.Sprintf("dataset %s not found", src.Dataset), nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", services.Wrap(services.ErrConfiguration, "ingest", "download dataset", fmt.Sprintf("remote rejected credentials (status %d)", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return "", services.Wrap(services.ErrTransient, "ingest", "download dataset", fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	archivePath := fileutil.TempSibling(filepath.Join(dir, "archive.zip"))
	out, err := os.Create(archivePath)
	if err != nil {
		return "", services.Wrap(services.ErrWriteFailure, "ingest", "create archive file", archivePath, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(archivePath)
		return "", services.Wrap(services.ErrTransient, "ingest", "download dataset", src.Dataset, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(archivePath)
		return "", services.Wrap(services.ErrWriteFailure, "ingest", "close archive file", archivePath, err)
	}
	return archivePath, nil
}

// extractMember copies the archive entry whose base name equals name to target.
func extractMember(archivePath, name, target string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "ingest", "open dataset archive", archivePath, err)
	}
	defer zr.Close()

	for _, file := range zr.File {
		if file.FileInfo().IsDir() {
			continue
		}
		if file.Name != name && path.Base(file.Name) != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return services.Wrap(services.ErrValidation, "ingest", "open archive entry", file.Name, err)
		}
		defer rc.Close()

		tmp := fileutil.TempSibling(target)
		out, err := os.Create(tmp)
		if err != nil {
			return services.Wrap(services.ErrWriteFailure, "ingest", "create extracted file", tmp, err)
		}
		if _, err := io.Copy(out, rc); err != nil {
			out.Close()
			os.Remove(tmp)
			return services.Wrap(services.ErrValidation, "ingest", "extract archive entry", file.Name, err)
		}
		if err := out.Close(); err != nil {
			os.Remove(tmp)
			return services.Wrap(services.ErrWriteFailure, "ingest", "close extracted file", tmp, err)
		}
		if err := os.Rename(tmp, target); err != nil {
			os.Remove(tmp)
			return services.Wrap(services.ErrWriteFailure, "ingest", "replace extracted file", target, err)
		}
		return nil
	}

	return services.Wrap(services.ErrNotFound, "ingest", "extract archive entry",
		fmt.Sprintf("%s not found in dataset archive", strings.TrimSpace(name)), nil)
}
