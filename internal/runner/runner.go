package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"facehugger/internal/cachediff"
	"facehugger/internal/command"
	"facehugger/internal/history"
	"facehugger/internal/logging"
	"facehugger/internal/manifest"
	"facehugger/internal/verify"
)

// Downloader fetches one manifest entry.
type Downloader interface {
	Download(ctx context.Context, entry manifest.Entry) (string, error)
}

// Verifier checks one downloaded entry.
type Verifier interface {
	Verify(ctx context.Context, repo, ref string) verify.Report
}

// CacheInspector captures the hub cache listing.
type CacheInspector interface {
	Snapshot(ctx context.Context) []string
}

// Journal records runs. *history.Store satisfies it.
type Journal interface {
	Begin(ctx context.Context, manifestPath string, dryRun bool) (string, error)
	RecordEntry(ctx context.Context, runID string, rec history.EntryRecord) error
	Finish(ctx context.Context, runID string, status history.Status, added, removed int) error
}

// Options controls a single run.
type Options struct {
	ManifestPath string
	DryRun       bool
	// Colour enables ANSI colouring of the cache diff.
	Colour bool
}

// EntryReport describes what happened to one manifest entry.
type EntryReport struct {
	Repo         string
	Ref          string
	Command      string
	SnapshotPath string
	Downloaded   bool
	Verification *verify.Report
}

// Report summarizes a run.
type Report struct {
	RunID   string
	Entries []EntryReport
	Before  []string
	After   []string
	Diff    []cachediff.Line
}

// Runner wires the stages of a run together.
type Runner struct {
	downloader Downloader
	verifier   Verifier
	inspector  CacheInspector
	journal    Journal
	logger     *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithJournal records runs in journal.
func WithJournal(journal Journal) Option {
	return func(r *Runner) {
		r.journal = journal
	}
}

// New constructs a Runner.
func New(downloader Downloader, verifier Verifier, inspector CacheInspector, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if downloader == nil {
		return nil, errors.New("downloader required")
	}
	if verifier == nil {
		return nil, errors.New("verifier required")
	}
	if inspector == nil {
		return nil, errors.New("cache inspector required")
	}
	r := &Runner{
		downloader: downloader,
		verifier:   verifier,
		inspector:  inspector,
		logger:     logging.NewComponentLogger(logger, "runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run processes m. The returned report is populated as far as the run got,
// even when an error is returned.
func (r *Runner) Run(ctx context.Context, m *manifest.Manifest, opts Options) (*Report, error) {
	report := &Report{}
	ctx = r.beginJournal(ctx, report, opts)
	logger := logging.WithContext(ctx, r.logger)

	var entries []manifest.Entry
	if m != nil {
		entries = m.Models
	}
	if len(entries) == 0 {
		logger.Info(fmt.Sprintf("No models defined in %s", opts.ManifestPath))
		r.finishJournal(ctx, report, history.StatusCompleted)
		return report, nil
	}

	report.Before = r.inspector.Snapshot(ctx)
	r.logListing(logger, "\nInitial cache state:", report.Before)

	for _, entry := range entries {
		entryReport, err := r.processEntry(ctx, entry, opts.DryRun)
		report.Entries = append(report.Entries, entryReport)
		if err != nil {
			r.recordEntry(ctx, report.RunID, entryReport, err)
			r.finishJournal(ctx, report, history.StatusFailed)
			return report, err
		}
		r.recordEntry(ctx, report.RunID, entryReport, nil)
	}

	report.After = r.inspector.Snapshot(ctx)
	r.logListing(logger, "\nFinal cache state:", report.After)

	report.Diff = cachediff.Diff(report.Before, report.After)
	if len(report.Diff) > 0 {
		logger.Info("\nCache changes (colourised):")
		for _, line := range cachediff.Render(report.Diff, opts.Colour) {
			logger.Info(line)
		}
	}

	r.finishJournal(ctx, report, history.StatusCompleted)
	return report, nil
}

func (r *Runner) processEntry(ctx context.Context, entry manifest.Entry, dryRun bool) (EntryReport, error) {
	ctx = logging.WithRepo(ctx, entry.Repo)
	logger := logging.WithContext(ctx, r.logger)

	include := entry.Include.Values()
	exclude := entry.Exclude.Values()
	er := EntryReport{
		Repo:    entry.Repo,
		Ref:     entry.Ref,
		Command: command.FormatDownload(entry.Repo, entry.Ref, include, exclude),
	}
	logger.Info(fmt.Sprintf("Equivalent command: `%s`", er.Command))

	if dryRun {
		return er, nil
	}

	path, err := r.downloader.Download(ctx, entry)
	if err != nil {
		return er, err
	}
	er.Downloaded = true
	er.SnapshotPath = path

	verification := r.verifier.Verify(ctx, entry.Repo, entry.Ref)
	er.Verification = &verification
	return er, nil
}

func (r *Runner) logListing(logger *slog.Logger, title string, lines []string) {
	logger.Info(title)
	for _, line := range lines {
		logger.Info(line)
	}
}
