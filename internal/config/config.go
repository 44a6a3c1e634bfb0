package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Hub contains settings for the hf command line client.
type Hub struct {
	Binary      string   `toml:"binary"`
	SearchPaths []string `toml:"search_paths"`
	Token       string   `toml:"token"`
	Home        string   `toml:"home"`
	RepoType    string   `toml:"repo_type"`
}

// Paths contains directories owned by facehugger itself.
type Paths struct {
	StateDir string `toml:"state_dir"`
}

// History contains configuration for the run journal.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for facehugger.
type Config struct {
	Hub     Hub     `toml:"hub"`
	Paths   Paths   `toml:"paths"`
	History History `toml:"history"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/facehugger/config.toml")
}

// Load reads the configuration at path, or the first existing default
// location when path is empty, then normalizes and validates it. A missing
// file is not an error: defaults are used and exists is false.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	resolved, exists, err = locate(path)
	if err != nil {
		return nil, "", false, err
	}

	values := Default()
	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &values); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := values.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := values.Validate(); err != nil {
		return nil, "", false, err
	}
	return &values, resolved, exists, nil
}

// locate resolves the config file to read. An explicit path is used as given;
// otherwise the user config and then ./facehugger.toml are tried, and the
// first candidate is reported when neither exists.
func locate(path string) (string, bool, error) {
	var candidates []string
	if strings.TrimSpace(path) != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		candidates = []string{expanded}
	} else {
		// Without a home directory only the project file is considered.
		if userPath, err := DefaultConfigPath(); err == nil {
			candidates = append(candidates, userPath)
		}
		projectPath, err := filepath.Abs("facehugger.toml")
		if err != nil {
			return "", false, err
		}
		candidates = append(candidates, projectPath)
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, true, nil
		case err == nil:
			if path != "" {
				return "", false, fmt.Errorf("config path %s is a directory", candidate)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}
	return candidates[0], false, nil
}

// EnsureDirectories creates the state, journal and log directories. Only
// config validate calls it; a run never fails on a missing directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir}
	if c.History.Enabled {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}
	if c.Logging.File != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HubCacheDir returns the directory hf stores snapshots in, following the
// same precedence hf itself applies: HF_HUB_CACHE, HF_HOME, XDG_CACHE_HOME.
// A configured hub.home wins over the environment because it is exported to hf.
func (c *Config) HubCacheDir() string {
	if c.Hub.Home != "" {
		return filepath.Join(c.Hub.Home, "hub")
	}
	if value := strings.TrimSpace(os.Getenv("HF_HUB_CACHE")); value != "" {
		return value
	}
	if value := strings.TrimSpace(os.Getenv("HF_HOME")); value != "" {
		return filepath.Join(value, "hub")
	}
	if value := strings.TrimSpace(os.Getenv("XDG_CACHE_HOME")); value != "" {
		return filepath.Join(value, "huggingface", "hub")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "huggingface", "hub")
	}
	return filepath.Join(home, ".cache", "huggingface", "hub")
}

// ExpandPath resolves a leading ~ to the user's home directory and returns
// the cleaned absolute path. An empty value stays empty.
func ExpandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, strings.TrimPrefix(value[1:], "/"))
	}
	absolute, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return absolute, nil
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
