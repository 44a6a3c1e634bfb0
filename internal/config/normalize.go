package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeHub(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeHub() error {
	c.Hub.Binary = strings.TrimSpace(c.Hub.Binary)
	if c.Hub.Binary == "" {
		c.Hub.Binary = defaultHubBinary
	}
	// A bare command name is resolved against PATH later; only expand real paths.
	if strings.ContainsRune(c.Hub.Binary, os.PathSeparator) || strings.HasPrefix(c.Hub.Binary, "~") {
		expanded, err := ExpandPath(c.Hub.Binary)
		if err != nil {
			return fmt.Errorf("hub.binary: %w", err)
		}
		c.Hub.Binary = expanded
	}

	paths := make([]string, 0, len(c.Hub.SearchPaths))
	seen := make(map[string]struct{}, len(c.Hub.SearchPaths))
	for i, dir := range c.Hub.SearchPaths {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		expanded, err := ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("hub.search_paths[%d]: %w", i, err)
		}
		if _, ok := seen[expanded]; ok {
			continue
		}
		seen[expanded] = struct{}{}
		paths = append(paths, expanded)
	}
	c.Hub.SearchPaths = paths

	c.Hub.Token = strings.TrimSpace(c.Hub.Token)
	if c.Hub.Token == "" {
		if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Hub.Token = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.Hub.Token = strings.TrimSpace(value)
		}
	}

	c.Hub.Home = strings.TrimSpace(c.Hub.Home)
	if c.Hub.Home != "" {
		expanded, err := ExpandPath(c.Hub.Home)
		if err != nil {
			return fmt.Errorf("hub.home: %w", err)
		}
		c.Hub.Home = expanded
	}

	c.Hub.RepoType = strings.ToLower(strings.TrimSpace(c.Hub.RepoType))
	if c.Hub.RepoType == "" {
		c.Hub.RepoType = defaultHubRepoType
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	stateDir, err := ExpandPath(c.Paths.StateDir)
	if err != nil && c.Paths.StateDir == defaultStateDir {
		stateDir, err = filepath.Join(os.TempDir(), "facehugger"), nil
	}
	if err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	c.Paths.StateDir = stateDir
	return nil
}

func (c *Config) normalizeHistory() error {
	c.History.Path = strings.TrimSpace(c.History.Path)
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, defaultHistoryFile)
		return nil
	}
	var err error
	if c.History.Path, err = ExpandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File != "" {
		var err error
		if c.Logging.File, err = ExpandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}
