package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned (wrapped) when the manifest path does not name a regular file.
var ErrNotFound = errors.New("Manifest file not found") //nolint:staticcheck

// ParseError reports a document that is not valid YAML.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Failed to parse manifest file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Issue is a single schema violation at a field path such as models[0].repo.
type Issue struct {
	Field   string
	Message string
}

func (i Issue) String() string {
	if i.Field == "" {
		return i.Message
	}
	return i.Field + ": " + i.Message
}

// ValidationError lists every schema violation found in a manifest.
type ValidationError struct {
	Path   string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	noun := "errors"
	if len(parts) == 1 {
		noun = "error"
	}
	return fmt.Sprintf("Facehugger manifest %s failed validation: %d validation %s: %s",
		e.Path, len(parts), noun, strings.Join(parts, "; "))
}
