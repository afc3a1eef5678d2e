package rawstore

import (
	"errors"
	"fmt"
	"log/slog"

	"cinelake/internal/logging"
	"cinelake/internal/services"
)

// ReadWithFallback locates fileName for source under each root in order and
// hands the newest copy to read. The first successful read wins. When every
// root fails, the error from the last root is returned.
func ReadWithFallback[T any](logger *slog.Logger, roots []string, source, fileName string, read func(path string) (T, error)) (T, string, error) {
	var (
		zero    T
		lastErr error
	)
	if len(roots) == 0 {
		return zero, "", services.Wrap(services.ErrConfiguration, "transform", "read raw", "no raw roots configured", nil)
	}
	for i, root := range roots {
		path, err := New(root).LatestFile(source, fileName)
		if err == nil {
			var value T
			value, err = read(path)
			if err == nil {
				if i > 0 {
					logging.WarnWithContext(logger, "raw file read from fallback root", "raw_fallback_used",
						logging.String(logging.FieldSource, source),
						logging.String("root", root),
						logging.Error(lastErr),
						logging.String(logging.FieldErrorHint, "check paths.raw_dir; the primary root could not serve this source"),
						logging.String(logging.FieldImpact, "transform uses data from the fallback root"),
					)
				}
				return value, path, nil
			}
			err = fmt.Errorf("read %s: %w", path, err)
		}
		if logger != nil {
			logger.Debug("raw root unusable",
				logging.String(logging.FieldSource, source),
				logging.String("root", root),
				logging.Error(err),
			)
		}
		lastErr = err
	}
	if !errors.Is(lastErr, services.ErrNotFound) && !errors.Is(lastErr, services.ErrValidation) {
		lastErr = services.Wrap(services.ErrValidation, "transform", "read raw", source, lastErr)
	}
	return zero, "", lastErr
}
