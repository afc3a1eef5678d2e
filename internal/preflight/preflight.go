package preflight

import (
	"context"
	"fmt"
	"strings"

	"cinelake/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := CheckDirectories(cfg)
	for _, src := range cfg.Sources {
		switch src.Kind {
		case config.KindLocalFile:
			results = append(results, CheckSourceFile(src))
		case config.KindRemoteDataset:
			results = append(results, CheckRemoteDataset(ctx, cfg.Remote, src))
		}
	}
	return results
}

// CheckDirectories checks every directory the pipeline writes into.
func CheckDirectories(cfg *config.Config) []Result {
	results := []Result{
		CheckDirectoryAccess("Raw directory", cfg.Paths.RawDir),
		CheckDirectoryAccess("Curated directory", cfg.Paths.CuratedDir),
		CheckDirectoryAccess("Metadata directory", cfg.Paths.MetadataDir),
		CheckDirectoryAccess("Overrides directory", cfg.Paths.OverridesDir),
	}
	if strings.TrimSpace(cfg.Paths.MirrorDir) != "" {
		results = append(results, CheckDirectoryAccess("Mirror directory", cfg.Paths.MirrorDir))
	}
	return results
}

// Failed returns the failing results.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Summary joins failing check names and details into one line.
func Summary(failed []Result) string {
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return strings.Join(parts, "; ")
}
