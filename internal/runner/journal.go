package runner

import (
	"context"

	"facehugger/internal/cachediff"
	"facehugger/internal/history"
	"facehugger/internal/logging"
)

func (r *Runner) beginJournal(ctx context.Context, report *Report, opts Options) context.Context {
	if r.journal == nil {
		return ctx
	}
	id, err := r.journal.Begin(ctx, opts.ManifestPath, opts.DryRun)
	if err != nil {
		r.warnJournal(ctx, "begin", err)
		return ctx
	}
	report.RunID = id
	return logging.WithRunID(ctx, id)
}

func (r *Runner) recordEntry(ctx context.Context, runID string, er EntryReport, runErr error) {
	if r.journal == nil || runID == "" {
		return
	}
	rec := history.EntryRecord{Repo: er.Repo, Ref: er.Ref, Command: er.Command}
	switch {
	case runErr != nil:
		rec.Outcome = history.OutcomeFailed
		rec.Error = runErr.Error()
	case er.Verification != nil:
		rec.Outcome = string(er.Verification.Outcome)
		rec.CheckedCount = er.Verification.Result.CheckedCount
		rec.Mismatches = len(er.Verification.Result.Mismatches)
		if er.Verification.Err != nil {
			rec.Error = er.Verification.Err.Error()
		}
	case er.Downloaded:
		rec.Outcome = history.OutcomeDownloaded
	default:
		rec.Outcome = history.OutcomePlanned
	}
	if err := r.journal.RecordEntry(context.WithoutCancel(ctx), runID, rec); err != nil {
		r.warnJournal(ctx, "record entry", err)
	}
}

func (r *Runner) finishJournal(ctx context.Context, report *Report, status history.Status) {
	if r.journal == nil || report.RunID == "" {
		return
	}
	added, removed := cachediff.Count(report.Diff)
	// Record the final status even when ctx was cancelled by an interrupt.
	if err := r.journal.Finish(context.WithoutCancel(ctx), report.RunID, status, added, removed); err != nil {
		r.warnJournal(ctx, "finish", err)
	}
}

func (r *Runner) warnJournal(ctx context.Context, op string, err error) {
	logging.WithContext(ctx, r.logger).Warn("run journal unavailable",
		logging.String("operation", op),
		logging.String(logging.FieldEventType, "journal_failed"),
		logging.Error(err))
}
