package hub

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
)

// DownloadRequest describes one snapshot download.
type DownloadRequest struct {
	RepoID         string
	Revision       string
	RepoType       string
	AllowPatterns  []string
	IgnorePatterns []string
}

// VerifyRequest describes one cache checksum verification.
type VerifyRequest struct {
	RepoID   string
	RepoType string
	Revision string
}

// Mismatch describes a cached file whose checksum differs from the hub.
type Mismatch struct {
	Path      string
	Expected  string
	Actual    string
	Algorithm string
}

// VerifyResult summarizes a checksum verification.
type VerifyResult struct {
	CheckedCount int
	VerifiedPath string
	Revision     string
	Mismatches   []Mismatch
}

// Downloader fetches repository snapshots into the local hub cache.
type Downloader interface {
	SnapshotDownload(ctx context.Context, req DownloadRequest) (string, error)
}

// ChecksumVerifier compares cached files against hub checksums.
type ChecksumVerifier interface {
	VerifyRepoChecksums(ctx context.Context, req VerifyRequest) (VerifyResult, error)
}

// CacheLister reports the contents of the local hub cache.
type CacheLister interface {
	ListCache(ctx context.Context) ([]string, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *CLI) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithSearchPaths prepends dirs to PATH when locating and running hf.
func WithSearchPaths(dirs ...string) Option {
	return func(c *CLI) {
		c.searchPaths = append(c.searchPaths, dirs...)
	}
}

// WithToken passes token to hf as HF_TOKEN.
func WithToken(token string) Option {
	return func(c *CLI) {
		c.token = strings.TrimSpace(token)
	}
}

// WithHome passes home to hf as HF_HOME.
func WithHome(home string) Option {
	return func(c *CLI) {
		c.home = strings.TrimSpace(home)
	}
}

// WithRepoType sets the repository type used when a request leaves it empty.
func WithRepoType(repoType string) Option {
	return func(c *CLI) {
		if repoType = strings.TrimSpace(repoType); repoType != "" {
			c.repoType = repoType
		}
	}
}

// WithProgressOutput sets where download progress is streamed.
func WithProgressOutput(w io.Writer) Option {
	return func(c *CLI) {
		if w != nil {
			c.progress = w
		}
	}
}

// CLI runs the hf command line client.
type CLI struct {
	binary      string
	searchPaths []string
	token       string
	home        string
	repoType    string
	progress    io.Writer
	exec        Executor
	environ     func() []string
}

// NewCLI constructs a hub client around the named hf binary.
func NewCLI(binary string, opts ...Option) (*CLI, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("hf binary required")
	}
	client := &CLI{
		binary:   binary,
		repoType: "model",
		progress: os.Stderr,
		exec:     commandExecutor{},
		environ:  os.Environ,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the path hf will be launched from.
func (c *CLI) Binary() string {
	binary, _ := c.command()
	return binary
}

func (c *CLI) command() (string, []string) {
	env := buildEnv(c.environ(), c.searchPaths, c.token, c.home)
	pathValue := ""
	for _, kv := range env {
		if value, ok := strings.CutPrefix(kv, "PATH="); ok {
			pathValue = value
		}
	}
	return resolveBinary(c.binary, pathValue), env
}

func (c *CLI) run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	binary, env := c.command()
	return c.exec.Run(ctx, binary, args, env, stdout, stderr)
}

// SnapshotDownload runs hf download, streaming its progress, and returns the
// snapshot directory hf reports.
func (c *CLI) SnapshotDownload(ctx context.Context, req DownloadRequest) (string, error) {
	if strings.TrimSpace(req.RepoID) == "" {
		return "", errors.New("repository id required")
	}
	args := []string{"download", req.RepoID}
	if repoType := c.effectiveRepoType(req.RepoType); repoType != "model" {
		args = append(args, "--repo-type", repoType)
	}
	if req.Revision != "" {
		args = append(args, "--revision", req.Revision)
	}
	for _, pattern := range req.AllowPatterns {
		args = append(args, "--include", pattern)
	}
	for _, pattern := range req.IgnorePatterns {
		args = append(args, "--exclude", pattern)
	}

	var stdout, stderr bytes.Buffer
	err := c.run(ctx, args, io.MultiWriter(&stdout, c.progress), io.MultiWriter(&stderr, c.progress))
	if err != nil {
		// Callers add the repo and ref; only the hf failure is reported here.
		if sentinel := classifyOutput(stderr.String() + stdout.String()); sentinel != nil {
			return "", sentinel
		}
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Output == "" {
			exitErr.Output = tail(stderr.String(), 3)
		}
		return "", err
	}
	return lastLine(stdout.String()), nil
}

// VerifyRepoChecksums runs hf cache verify and parses its report. Checksum
// mismatches are returned in the result rather than as an error.
func (c *CLI) VerifyRepoChecksums(ctx context.Context, req VerifyRequest) (VerifyResult, error) {
	if strings.TrimSpace(req.RepoID) == "" {
		return VerifyResult{}, errors.New("repository id required")
	}
	args := []string{"cache", "verify", req.RepoID, "--repo-type", c.effectiveRepoType(req.RepoType)}
	if req.Revision != "" {
		args = append(args, "--revision", req.Revision)
	}

	var output bytes.Buffer
	err := c.run(ctx, args, &output, &output)
	result := parseVerifyOutput(output.String())
	result.Revision = req.Revision
	if err == nil {
		return result, nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && len(result.Mismatches) > 0 {
		return result, nil
	}
	if sentinel := classifyOutput(output.String()); sentinel != nil {
		return VerifyResult{}, sentinel
	}
	if exitErr != nil && exitErr.Output == "" {
		exitErr.Output = tail(output.String(), 3)
	}
	return VerifyResult{}, err
}

// ListCache runs hf cache ls and returns its stdout lines.
func (c *CLI) ListCache(ctx context.Context) ([]string, error) {
	var stdout, stderr bytes.Buffer
	if err := c.run(ctx, []string{"cache", "ls"}, &stdout, &stderr); err != nil {
		return nil, err
	}
	return splitLines(stdout.String()), nil
}

func (c *CLI) effectiveRepoType(repoType string) string {
	if repoType = strings.TrimSpace(repoType); repoType != "" {
		return repoType
	}
	return c.repoType
}

func splitLines(output string) []string {
	output = strings.TrimSuffix(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
	if output == "" {
		return []string{}
	}
	return strings.Split(output, "\n")
}

func lastLine(output string) string {
	lines := splitLines(output)
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
