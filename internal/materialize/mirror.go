package materialize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"cinelake/internal/table"
)

// partPattern matches the files a staging directory is expected to hold.
const partPattern = "part-*" + FileExt

// writeParts fills a staging directory. Tables are written as a single part.
var writeParts = func(ctx context.Context, t *table.Table, stagingDir string) error {
	return WriteTable(ctx, t, filepath.Join(stagingDir, "part-00000"+FileExt))
}

// Mirror publishes t as <localDir>/<table>/<table>.sqlite for local
// consumers. The table is staged in a hidden sibling directory first; the
// previous mirror is only replaced once a part file exists. The staging
// directory is removed on every path.
func Mirror(ctx context.Context, t *table.Table, localDir string) (string, error) {
	if strings.TrimSpace(localDir) == "" {
		return "", nil
	}
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return "", writeFailure(t.Name, "create mirror directory", err)
	}
	staging := filepath.Join(localDir, fmt.Sprintf(".tmp_%s_%s", t.Name, strings.ReplaceAll(uuid.NewString(), "-", "")))
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", writeFailure(t.Name, "create staging directory", err)
	}
	defer os.RemoveAll(staging)

	if err := writeParts(ctx, t, staging); err != nil {
		return "", err
	}
	parts, err := doublestar.Glob(os.DirFS(staging), partPattern)
	if err != nil {
		return "", writeFailure(t.Name, "list staged parts", err)
	}
	if len(parts) == 0 {
		return "", writeFailure(t.Name, "stage mirror", fmt.Errorf("no part file written in %s", staging))
	}

	tableDir := filepath.Join(localDir, t.Name)
	if err := os.RemoveAll(tableDir); err != nil {
		return "", writeFailure(t.Name, "remove previous mirror", err)
	}
	if err := os.MkdirAll(tableDir, 0o755); err != nil {
		return "", writeFailure(t.Name, "create mirror table directory", err)
	}
	final := TablePath(localDir, t.Name)
	if err := os.Rename(filepath.Join(staging, parts[0]), final); err != nil {
		return "", writeFailure(t.Name, "publish mirror", err)
	}
	return final, nil
}
