package hub

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRepositoryNotFound reports that the hub has no repository with the requested id.
	ErrRepositoryNotFound = errors.New("repository not found")
	// ErrRevisionNotFound reports that the repository exists but the revision does not.
	ErrRevisionNotFound = errors.New("revision not found")
)

// ExitError reports that hf exited with a non-zero status.
type ExitError struct {
	Code int
	// Output holds the tail of the captured output, when any was captured.
	Output string
}

func (e *ExitError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("hf exited with code %d", e.Code)
	}
	return fmt.Sprintf("hf exited with code %d: %s", e.Code, e.Output)
}

// classifyOutput maps well-known hub failures printed by hf onto sentinel
// errors. It returns nil when the output names neither condition.
func classifyOutput(output string) error {
	switch {
	case strings.Contains(output, "RevisionNotFoundError"), strings.Contains(output, "Revision Not Found"),
		strings.Contains(output, "Invalid rev id"):
		return ErrRevisionNotFound
	case strings.Contains(output, "RepositoryNotFoundError"), strings.Contains(output, "Repository Not Found"),
		strings.Contains(output, "not found in cache"):
		return ErrRepositoryNotFound
	default:
		return nil
	}
}

// tail returns the last maxLines non-empty lines of output.
func tail(output string, maxLines int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	kept := make([]string, 0, maxLines)
	for i := len(lines) - 1; i >= 0 && len(kept) < maxLines; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		kept = append([]string{line}, kept...)
	}
	return strings.Join(kept, " | ")
}
