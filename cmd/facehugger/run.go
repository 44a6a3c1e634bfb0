package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"facehugger/internal/cachediff"
	"facehugger/internal/config"
	"facehugger/internal/download"
	"facehugger/internal/history"
	"facehugger/internal/hub"
	"facehugger/internal/logging"
	"facehugger/internal/manifest"
	"facehugger/internal/runner"
	"facehugger/internal/verify"
)

func runManifest(cmd *cobra.Command, ctx *commandContext, manifestPath string, dryRun bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	out := cmd.ErrOrStderr()
	logger, err := ctx.newLogger(out)
	if err != nil {
		return err
	}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}

	client, err := newHubClient(cfg, out)
	if err != nil {
		return err
	}
	logger.Debug("hub client ready", logging.String("binary", client.Binary()))
	downloader, err := download.New(client, logger)
	if err != nil {
		return err
	}
	var opts []runner.Option
	if store := openJournal(cmd.Context(), cfg, logger); store != nil {
		defer store.Close()
		opts = append(opts, runner.WithJournal(store))
	}
	r, err := runner.New(
		downloader,
		verify.New(client, cfg.Hub.RepoType, logger),
		cachediff.NewInspector(client, logger),
		logger,
		opts...,
	)
	if err != nil {
		return err
	}

	_, err = r.Run(cmd.Context(), m, runner.Options{
		ManifestPath: manifestPath,
		DryRun:       dryRun,
		Colour:       shouldColorize(out),
	})
	return err
}

func newHubClient(cfg *config.Config, progress io.Writer) (*hub.CLI, error) {
	return hub.NewCLI(cfg.Hub.Binary,
		hub.WithSearchPaths(cfg.Hub.SearchPaths...),
		hub.WithToken(cfg.Hub.Token),
		hub.WithHome(cfg.Hub.Home),
		hub.WithRepoType(cfg.Hub.RepoType),
		hub.WithProgressOutput(progress),
	)
}

// openJournal opens the run journal when enabled. Failures are logged and
// yield nil.
func openJournal(ctx context.Context, cfg *config.Config, logger *slog.Logger) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logging.WithContext(ctx, logger).Warn("run journal unavailable",
			logging.String("path", cfg.History.Path),
			logging.String(logging.FieldEventType, "journal_failed"),
			logging.Error(err))
		return nil
	}
	logger.Debug("run journal open", logging.String("path", store.Path()))
	return store
}
