// Package verify checks downloaded snapshots against hub checksums and
// reports the outcome without ever aborting a run.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"facehugger/internal/command"
	"facehugger/internal/hub"
	"facehugger/internal/logging"
)

// Outcome classifies a verification.
type Outcome string

const (
	OutcomeVerified Outcome = "verified"
	OutcomeMismatch Outcome = "mismatch"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
)

// Report describes one verification.
type Report struct {
	Repo    string
	Ref     string
	Outcome Outcome
	Result  hub.VerifyResult
	Err     error
}

// Verifier runs checksum verification for downloaded entries.
type Verifier struct {
	client   hub.ChecksumVerifier
	repoType string
	logger   *slog.Logger
}

// New constructs a Verifier. repoType is passed to the hub and echoed in the
// success summary.
func New(client hub.ChecksumVerifier, repoType string, logger *slog.Logger) *Verifier {
	if repoType == "" {
		repoType = "model"
	}
	return &Verifier{client: client, repoType: repoType, logger: logging.NewComponentLogger(logger, "verify")}
}

// Verify checks repo at ref. Every failure is logged and folded into the
// returned report.
func (v *Verifier) Verify(ctx context.Context, repo, ref string) Report {
	logger := logging.WithContext(ctx, v.logger)
	report := Report{Repo: repo, Ref: ref}

	label := repo
	if ref != "" {
		label = repo + "@" + ref
	}
	logger.Info(fmt.Sprintf("Verifying repo %s, equivalent to: `%s`", label, command.FormatVerify(repo, ref)))

	if v.client == nil {
		report.Outcome = OutcomeFailed
		report.Err = errors.New("no checksum verifier configured")
		logger.Error("Verification of "+label+" unavailable", logging.Error(report.Err))
		return report
	}

	result, err := v.client.VerifyRepoChecksums(ctx, hub.VerifyRequest{RepoID: repo, RepoType: v.repoType, Revision: ref})
	report.Result = result
	switch {
	case errors.Is(err, hub.ErrRepositoryNotFound):
		report.Outcome = OutcomeSkipped
		report.Err = err
		logger.Error(fmt.Sprintf("Repository %s not found: %v", repo, err),
			logging.String(logging.FieldEventType, "repository_not_found"))
		return report
	case errors.Is(err, hub.ErrRevisionNotFound):
		report.Outcome = OutcomeSkipped
		report.Err = err
		logger.Error(fmt.Sprintf("Repository %s revision %s not found: %v", repo, ref, err),
			logging.String(logging.FieldEventType, "revision_not_found"))
		return report
	case err != nil:
		report.Outcome = OutcomeFailed
		report.Err = err
		logger.Error(fmt.Sprintf("Verification of %s failed: %v", label, err),
			logging.String(logging.FieldEventType, "verification_failed"))
		return report
	}

	if len(result.Mismatches) > 0 {
		report.Outcome = OutcomeMismatch
		logger.Error(fmt.Sprintf("❌ Repo %s checksum verification failed for the following file(s)", repo),
			logging.String(logging.FieldEventType, "checksum_mismatch"))
		for _, m := range result.Mismatches {
			logger.Error(fmt.Sprintf("  - %s: expected %s (%s), got %s", m.Path, m.Expected, m.Algorithm, m.Actual))
		}
		return report
	}

	report.Outcome = OutcomeVerified
	logger.Info(fmt.Sprintf("✅ Verified %d file(s) for '%s' (%s) in %s", result.CheckedCount, repo, v.repoType, result.VerifiedPath))
	return report
}
