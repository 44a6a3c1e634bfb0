package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for run identifiers.
	FieldRunID = "run_id"
	// FieldRepo is the standardized structured logging key for hub repository ids.
	FieldRepo = "repo"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
)

type contextKey int

const (
	runIDKey contextKey = iota
	repoKey
)

// WithRunID stores the run identifier on the context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, strings.TrimSpace(id))
}

// WithRepo stores the repository currently being processed on the context.
func WithRepo(ctx context.Context, repo string) context.Context {
	return context.WithValue(ctx, repoKey, strings.TrimSpace(repo))
}

// RunIDFromContext returns the run identifier stored on ctx.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// RepoFromContext returns the repository stored on ctx.
func RepoFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	repo, ok := ctx.Value(repoKey).(string)
	return repo, ok && repo != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if repo, ok := RepoFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRepo, repo))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, len(fields))
	for i, field := range fields {
		args[i] = field
	}
	return logger.With(args...)
}
