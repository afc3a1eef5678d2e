package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Per-source fetch parameters
// (path, dataset, file name) are deliberately not checked here: a source with
// missing parameters fails on its own during ingestion without blocking the
// others.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	for key, value := range map[string]string{
		"paths.raw_dir":      c.Paths.RawDir,
		"paths.curated_dir":  c.Paths.CuratedDir,
		"paths.metadata_dir": c.Paths.MetadataDir,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	if c.Warehouse.Enabled && strings.TrimSpace(c.Warehouse.Path) == "" {
		return errors.New("warehouse.path must be set when warehouse.enabled is true")
	}
	return nil
}

func (c *Config) validateSources() error {
	seen := make(map[string]struct{}, len(c.Sources))
	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d].name must be set", i)
		}
		if _, dup := seen[src.Name]; dup {
			return fmt.Errorf("sources[%d].name %q is duplicated", i, src.Name)
		}
		seen[src.Name] = struct{}{}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
