package runner_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"facehugger/internal/history"
	"facehugger/internal/hub"
	"facehugger/internal/logging"
	"facehugger/internal/manifest"
	"facehugger/internal/runner"
	"facehugger/internal/verify"
)

type recorder struct {
	events []string
}

type fakeDownloader struct {
	rec  *recorder
	fail map[string]error
}

func (f *fakeDownloader) Download(ctx context.Context, entry manifest.Entry) (string, error) {
	f.rec.events = append(f.rec.events, "download "+entry.Repo)
	if err := f.fail[entry.Repo]; err != nil {
		return "", err
	}
	return "/cache/" + entry.Repo, nil
}

type fakeVerifier struct {
	rec     *recorder
	outcome verify.Outcome
}

func (f *fakeVerifier) Verify(ctx context.Context, repo, ref string) verify.Report {
	f.rec.events = append(f.rec.events, "verify "+repo+"@"+ref)
	outcome := f.outcome
	if outcome == "" {
		outcome = verify.OutcomeVerified
	}
	return verify.Report{Repo: repo, Ref: ref, Outcome: outcome, Result: hub.VerifyResult{CheckedCount: 2}}
}

type fakeInspector struct {
	rec       *recorder
	snapshots [][]string
	calls     int
}

func (f *fakeInspector) Snapshot(ctx context.Context) []string {
	f.rec.events = append(f.rec.events, "snapshot")
	defer func() { f.calls++ }()
	if f.calls < len(f.snapshots) {
		return f.snapshots[f.calls]
	}
	return []string{}
}

type fakeJournal struct {
	beginErr error
	runID    string
	entries  []history.EntryRecord
	status   history.Status
	added    int
	removed  int
	finished bool
}

func (j *fakeJournal) Begin(ctx context.Context, manifestPath string, dryRun bool) (string, error) {
	if j.beginErr != nil {
		return "", j.beginErr
	}
	j.runID = "11111111-2222-3333-4444-555555555555"
	return j.runID, nil
}

func (j *fakeJournal) RecordEntry(ctx context.Context, runID string, rec history.EntryRecord) error {
	j.entries = append(j.entries, rec)
	return nil
}

func (j *fakeJournal) Finish(ctx context.Context, runID string, status history.Status, added, removed int) error {
	j.finished = true
	j.status = status
	j.added = added
	j.removed = removed
	return nil
}

type harness struct {
	rec        *recorder
	downloader *fakeDownloader
	verifier   *fakeVerifier
	inspector  *fakeInspector
	journal    *fakeJournal
	runner     *runner.Runner
	logs       *bytes.Buffer
}

func newHarness(t *testing.T, snapshots ...[]string) *harness {
	t.Helper()
	rec := &recorder{}
	h := &harness{
		rec:        rec,
		downloader: &fakeDownloader{rec: rec, fail: map[string]error{}},
		verifier:   &fakeVerifier{rec: rec},
		inspector:  &fakeInspector{rec: rec, snapshots: snapshots},
		journal:    &fakeJournal{},
		logs:       &bytes.Buffer{},
	}
	logger, err := logging.New(logging.Options{Format: "plain", Writer: h.logs})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	h.runner, err = runner.New(h.downloader, h.verifier, h.inspector, logger, runner.WithJournal(h.journal))
	if err != nil {
		t.Fatalf("runner.New: %v", err)
	}
	return h
}

func sampleManifest() *manifest.Manifest {
	return &manifest.Manifest{Models: []manifest.Entry{
		{Repo: "org/a", Ref: "main", Include: manifest.Single("*.gguf")},
		{Repo: "org/b", Ref: "v1", Exclude: manifest.Many("*.bin", "*.pt")},
	}}
}

func TestRunProcessesEntriesInOrder(t *testing.T) {
	h := newHarness(t, []string{"ID", "org/old"}, []string{"ID", "org/a", "org/b"})

	report, err := h.runner.Run(context.Background(), sampleManifest(), runner.Options{ManifestPath: "facehugger.yaml"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	wantEvents := []string{"snapshot", "download org/a", "verify org/a@main", "download org/b", "verify org/b@v1", "snapshot"}
	if !reflect.DeepEqual(h.rec.events, wantEvents) {
		t.Fatalf("unexpected events:\n got %v\nwant %v", h.rec.events, wantEvents)
	}
	if len(report.Entries) != 2 || !report.Entries[0].Downloaded || report.Entries[1].Verification == nil {
		t.Fatalf("unexpected entry reports: %+v", report.Entries)
	}
	if report.Entries[0].SnapshotPath != "/cache/org/a" {
		t.Fatalf("unexpected snapshot path: %q", report.Entries[0].SnapshotPath)
	}
	if report.RunID != h.journal.runID {
		t.Fatalf("expected run id from journal, got %q", report.RunID)
	}

	logs := h.logs.String()
	for _, want := range []string{
		"\nInitial cache state:\nID\norg/old\n",
		"Equivalent command: `hf download org/a@main --include *.gguf`\n",
		"Equivalent command: `hf download org/b@v1 --exclude *.bin --exclude *.pt`\n",
		"\nFinal cache state:\nID\norg/a\norg/b\n",
		"\nCache changes (colourised):\n",
		"-org/old\n",
		"+org/a\n",
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("expected %q in logs:\n%s", want, logs)
		}
	}
	if strings.Contains(logs, "\x1b[") {
		t.Fatalf("did not expect colour codes without Colour option:\n%s", logs)
	}

	if !h.journal.finished || h.journal.status != history.StatusCompleted {
		t.Fatalf("expected completed journal, got %+v", h.journal)
	}
	if h.journal.added != 2 || h.journal.removed != 1 {
		t.Fatalf("unexpected journal delta: +%d -%d", h.journal.added, h.journal.removed)
	}
	if len(h.journal.entries) != 2 || h.journal.entries[0].Outcome != "verified" || h.journal.entries[0].CheckedCount != 2 {
		t.Fatalf("unexpected journal entries: %+v", h.journal.entries)
	}
}

func TestRunDryRunSkipsDownloadAndVerify(t *testing.T) {
	h := newHarness(t, []string{"ID"}, []string{"ID"})

	report, err := h.runner.Run(context.Background(), sampleManifest(), runner.Options{ManifestPath: "m.yaml", DryRun: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !reflect.DeepEqual(h.rec.events, []string{"snapshot", "snapshot"}) {
		t.Fatalf("expected only cache snapshots on dry run, got %v", h.rec.events)
	}
	if got := strings.Count(h.logs.String(), "Equivalent command: `"); got != 2 {
		t.Fatalf("expected one command line per entry, got %d:\n%s", got, h.logs.String())
	}
	if strings.Contains(h.logs.String(), "Cache changes") {
		t.Fatalf("did not expect a diff section for identical listings:\n%s", h.logs.String())
	}
	if len(report.Diff) != 0 {
		t.Fatalf("expected empty diff, got %+v", report.Diff)
	}
	for _, rec := range h.journal.entries {
		if rec.Outcome != history.OutcomePlanned {
			t.Fatalf("expected planned outcome on dry run, got %+v", rec)
		}
	}
}

func TestRunStopsOnDownloadFailure(t *testing.T) {
	h := newHarness(t, []string{"ID"})
	h.downloader.fail["org/a"] = hub.ErrRepositoryNotFound

	report, err := h.runner.Run(context.Background(), sampleManifest(), runner.Options{ManifestPath: "m.yaml"})
	if !errors.Is(err, hub.ErrRepositoryNotFound) {
		t.Fatalf("expected download error, got %v", err)
	}
	if !reflect.DeepEqual(h.rec.events, []string{"snapshot", "download org/a"}) {
		t.Fatalf("expected run to stop after failed download, got %v", h.rec.events)
	}
	if report == nil || len(report.Entries) != 1 || report.Entries[0].Downloaded {
		t.Fatalf("unexpected report: %+v", report)
	}
	if h.journal.status != history.StatusFailed {
		t.Fatalf("expected failed journal status, got %q", h.journal.status)
	}
	if len(h.journal.entries) != 1 || h.journal.entries[0].Outcome != history.OutcomeFailed || h.journal.entries[0].Error == "" {
		t.Fatalf("unexpected journal entries: %+v", h.journal.entries)
	}
	if strings.Contains(h.logs.String(), "Final cache state") {
		t.Fatalf("did not expect final listing after failure:\n%s", h.logs.String())
	}
}

func TestRunContinuesAfterVerificationProblems(t *testing.T) {
	h := newHarness(t)
	h.verifier.outcome = verify.OutcomeMismatch

	if _, err := h.runner.Run(context.Background(), sampleManifest(), runner.Options{}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := strings.Count(strings.Join(h.rec.events, ","), "verify "); got != 2 {
		t.Fatalf("expected both entries to be verified, got %v", h.rec.events)
	}
	if h.journal.entries[1].Outcome != "mismatch" {
		t.Fatalf("expected mismatch outcome, got %+v", h.journal.entries[1])
	}
}

func TestRunWithNoEntries(t *testing.T) {
	h := newHarness(t)

	if _, err := h.runner.Run(context.Background(), &manifest.Manifest{}, runner.Options{ManifestPath: "empty.yaml"}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(h.rec.events) != 0 {
		t.Fatalf("expected no cache captures, got %v", h.rec.events)
	}
	if h.logs.String() != "No models defined in empty.yaml\n" {
		t.Fatalf("unexpected logs: %q", h.logs.String())
	}
	if h.journal.status != history.StatusCompleted {
		t.Fatalf("expected completed journal, got %q", h.journal.status)
	}
}

func TestRunColourisesDiff(t *testing.T) {
	h := newHarness(t, []string{"a"}, []string{"b"})
	if _, err := h.runner.Run(context.Background(), sampleManifest(), runner.Options{DryRun: true, Colour: true}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	logs := h.logs.String()
	if !strings.Contains(logs, "\x1b[31m-a\x1b[0m") || !strings.Contains(logs, "\x1b[32m+b\x1b[0m") {
		t.Fatalf("expected coloured diff lines:\n%q", logs)
	}
}

func TestJournalFailureDoesNotAbortRun(t *testing.T) {
	h := newHarness(t)
	h.journal.beginErr = errors.New("database is locked")

	report, err := h.runner.Run(context.Background(), sampleManifest(), runner.Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.RunID != "" {
		t.Fatalf("expected no run id, got %q", report.RunID)
	}
	if !strings.Contains(h.logs.String(), "run journal unavailable") {
		t.Fatalf("expected journal warning:\n%s", h.logs.String())
	}
	if h.journal.finished || len(h.journal.entries) != 0 {
		t.Fatalf("expected journal to be left alone after Begin failed: %+v", h.journal)
	}
}

func TestNewValidatesDependencies(t *testing.T) {
	rec := &recorder{}
	if _, err := runner.New(nil, &fakeVerifier{rec: rec}, &fakeInspector{rec: rec}, nil); err == nil {
		t.Fatal("expected error without downloader")
	}
	if _, err := runner.New(&fakeDownloader{rec: rec}, nil, &fakeInspector{rec: rec}, nil); err == nil {
		t.Fatal("expected error without verifier")
	}
	if _, err := runner.New(&fakeDownloader{rec: rec}, &fakeVerifier{rec: rec}, nil, nil); err == nil {
		t.Fatal("expected error without inspector")
	}
}
