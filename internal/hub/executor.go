package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"facehugger/internal/deps"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args, env []string, stdout, stderr io.Writer) error
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args, env []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Env = env
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			return &ExitError{Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("run %s: %w", filepath.Base(binary), err)
	}
	return nil
}

// buildEnv returns the current environment with searchPaths prepended to PATH
// and the hub credentials from configuration applied.
func buildEnv(base []string, searchPaths []string, token, home string) []string {
	env := make([]string, 0, len(base)+3)
	currentPath := ""
	for _, kv := range base {
		key, value, _ := strings.Cut(kv, "=")
		switch key {
		case "PATH":
			currentPath = value
			continue
		case "HF_TOKEN":
			if token != "" {
				continue
			}
		case "HF_HOME":
			if home != "" {
				continue
			}
		}
		env = append(env, kv)
	}

	env = append(env, "PATH="+joinPath(searchPaths, currentPath))
	if token != "" {
		env = append(env, "HF_TOKEN="+token)
	}
	if home != "" {
		env = append(env, "HF_HOME="+home)
	}
	return env
}

func joinPath(searchPaths []string, current string) string {
	parts := make([]string, 0, len(searchPaths)+1)
	for _, dir := range searchPaths {
		if strings.TrimSpace(dir) != "" {
			parts = append(parts, dir)
		}
	}
	if current != "" {
		parts = append(parts, current)
	}
	return strings.Join(parts, string(os.PathListSeparator))
}

// resolveBinary finds binary on pathValue with the same rules the doctor
// command uses. When nothing matches, the bare name is returned so the launch
// error names what was looked for.
func resolveBinary(binary, pathValue string) string {
	resolved, err := deps.LookPath(binary, filepath.SplitList(pathValue))
	if err != nil {
		return binary
	}
	return resolved
}
