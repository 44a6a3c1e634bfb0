// Package download fetches manifest entries into the local hub cache.
package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"facehugger/internal/hub"
	"facehugger/internal/logging"
	"facehugger/internal/manifest"
)

// Orchestrator downloads one manifest entry at a time. It does not retry.
type Orchestrator struct {
	client hub.Downloader
	logger *slog.Logger
}

// New constructs an Orchestrator around client.
func New(client hub.Downloader, logger *slog.Logger) (*Orchestrator, error) {
	if client == nil {
		return nil, errors.New("hub downloader required")
	}
	return &Orchestrator{client: client, logger: logging.NewComponentLogger(logger, "download")}, nil
}

// Download fetches entry's snapshot into the hub's default cache and returns
// the snapshot directory reported by the hub client.
func (o *Orchestrator) Download(ctx context.Context, entry manifest.Entry) (string, error) {
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("Downloading repo " + refLabel(entry.Repo, entry.Ref))

	path, err := o.client.SnapshotDownload(ctx, hub.DownloadRequest{
		RepoID:         entry.Repo,
		Revision:       entry.Ref,
		AllowPatterns:  entry.Include.Values(),
		IgnorePatterns: entry.Exclude.Values(),
	})
	if err != nil {
		return "", fmt.Errorf("download %s: %w", refLabel(entry.Repo, entry.Ref), err)
	}
	if path != "" {
		logger.Debug("snapshot ready", logging.String("path", path))
	}
	return path, nil
}

func refLabel(repo, ref string) string {
	if ref == "" {
		return repo
	}
	return repo + "@" + ref
}
