package config

import (
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateHub(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateHub() error {
	switch c.Hub.RepoType {
	case "model", "dataset", "space":
	default:
		return fmt.Errorf("hub.repo_type must be one of model, dataset, space (got %q)", c.Hub.RepoType)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "plain", "console", "json":
	default:
		return fmt.Errorf("logging.format must be one of plain, console, json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	return nil
}
