package cachediff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"facehugger/internal/hub"
	"facehugger/internal/logging"
)

// Inspector snapshots the local hub cache listing.
type Inspector struct {
	lister hub.CacheLister
	logger *slog.Logger
}

// NewInspector constructs an Inspector around lister.
func NewInspector(lister hub.CacheLister, logger *slog.Logger) *Inspector {
	return &Inspector{lister: lister, logger: logging.NewComponentLogger(logger, "cachediff")}
}

// Snapshot returns the current cache listing. Failures are logged and yield an
// empty listing so a run is never aborted by an unavailable listing.
func (i *Inspector) Snapshot(ctx context.Context) []string {
	logger := logging.WithContext(ctx, i.logger)
	if i.lister == nil {
		logger.Error("hf cache ls unavailable: no hub client configured")
		return []string{}
	}
	lines, err := i.lister.ListCache(ctx)
	if err != nil {
		var exitErr *hub.ExitError
		if errors.As(err, &exitErr) {
			logger.Error(fmt.Sprintf("hf cache ls failed with exit code %d", exitErr.Code),
				logging.String(logging.FieldEventType, "cache_listing_failed"))
		} else {
			logger.Error("hf cache ls failed",
				logging.String(logging.FieldEventType, "cache_listing_failed"),
				logging.Error(err))
		}
		return []string{}
	}
	if lines == nil {
		return []string{}
	}
	return lines
}
