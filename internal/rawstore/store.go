package rawstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"cinelake/internal/fileutil"
	"cinelake/internal/services"
)

// MarkerName is the completion marker written into every run directory.
const MarkerName = "_SUCCESS.json"

// runIDLayout renders run identifiers as UTC second-resolution timestamps so
// that lexical order matches chronological order.
const runIDLayout = "20060102_150405"

// NewRunID returns the run identifier for a pipeline run started at now.
func NewRunID(now time.Time) string {
	return now.UTC().Format(runIDLayout)
}

// Marker is the payload of a run directory's _SUCCESS.json.
type Marker struct {
	Source  string `json:"source"`
	Dataset string `json:"dataset,omitempty"`
	File    string `json:"file"`
	Rows    int64  `json:"rows"`
	Hash    string `json:"hash"`
}

// Store writes and resolves run-versioned raw copies under a single root.
type Store struct {
	root string
}

// New returns a Store rooted at root.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the raw root directory.
func (s *Store) Root() string {
	return s.root
}

// RunDir returns <root>/<source>/<run_id>.
func (s *Store) RunDir(source, runID string) string {
	return filepath.Join(s.root, source, runID)
}

// Put copies src into the run directory for (source, runID) as fileName and
// verifies the copy. An existing copy is never overwritten. It returns the
// destination path with the digest and size of the copied bytes.
func (s *Store) Put(source, runID, src, fileName string) (string, string, int64, error) {
	dir := s.RunDir(source, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", 0, services.Wrap(services.ErrWriteFailure, "ingest", "create run directory", dir, err)
	}
	dst := filepath.Join(dir, fileName)
	if _, err := os.Stat(dst); err == nil {
		return "", "", 0, services.Wrap(services.ErrWriteFailure, "ingest", "copy raw file", dst+" already exists", nil)
	}
	digest, size, err := fileutil.CopyFileVerified(src, dst)
	if err != nil {
		return "", "", 0, services.Wrap(services.ErrWriteFailure, "ingest", "copy raw file", dst, err)
	}
	return dst, digest, size, nil
}

// Discard removes a raw copy that will not be recorded, and its run directory
// when nothing else is left in it.
func (s *Store) Discard(rawPath string) error {
	if err := os.Remove(rawPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return services.Wrap(services.ErrWriteFailure, "ingest", "discard raw file", rawPath, err)
	}
	entries, err := os.ReadDir(filepath.Dir(rawPath))
	if err == nil && len(entries) == 0 {
		_ = os.Remove(filepath.Dir(rawPath))
	}
	return nil
}

// WriteMarker atomically writes the _SUCCESS.json marker into runDir.
func (s *Store) WriteMarker(runDir string, marker Marker) error {
	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return fmt.Errorf("encode marker: %w", err)
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(runDir, MarkerName), data, 0o644); err != nil {
		return services.Wrap(services.ErrWriteFailure, "ingest", "write success marker", runDir, err)
	}
	return nil
}

// ReadMarker loads the _SUCCESS.json marker from runDir.
func ReadMarker(runDir string) (Marker, error) {
	var marker Marker
	data, err := os.ReadFile(filepath.Join(runDir, MarkerName))
	if err != nil {
		return marker, err
	}
	if err := json.Unmarshal(data, &marker); err != nil {
		return marker, fmt.Errorf("decode marker: %w", err)
	}
	return marker, nil
}

// LatestFile returns the copy of fileName in the newest run directory for
// source that contains it. Hidden directories are ignored.
func (s *Store) LatestFile(source, fileName string) (string, error) {
	sourceDir := filepath.Join(s.root, source)
	info, err := os.Stat(sourceDir)
	if err != nil || !info.IsDir() {
		return "", services.Wrap(services.ErrNotFound, "transform", "locate raw file", fmt.Sprintf("no raw dumps for %s under %s", source, s.root), err)
	}

	matches, err := doublestar.Glob(os.DirFS(sourceDir), "*/*")
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", sourceDir, err)
	}
	var runDirs []string
	for _, match := range matches {
		if path.Base(match) != fileName {
			continue
		}
		runDir := path.Dir(match)
		if strings.HasPrefix(runDir, ".") {
			continue
		}
		if entry, err := fs.Stat(os.DirFS(sourceDir), match); err != nil || entry.IsDir() {
			continue
		}
		runDirs = append(runDirs, runDir)
	}
	if len(runDirs) == 0 {
		return "", services.Wrap(services.ErrNotFound, "transform", "locate raw file", fmt.Sprintf("%s not found for source %s", fileName, source), nil)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(runDirs)))
	return filepath.Join(sourceDir, filepath.FromSlash(runDirs[0]), fileName), nil
}

// IsNotFound reports whether err means a raw file is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, services.ErrNotFound)
}
