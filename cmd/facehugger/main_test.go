package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"facehugger/internal/config"
	"facehugger/internal/history"
	"facehugger/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("HF_TOKEN", "")
	t.Setenv("HUGGING_FACE_HUB_TOKEN", "")
	t.Setenv("NO_COLOR", "1")

	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithStubHub()}, opts...)...)
	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	testsupport.WriteConfig(t, cfg, configPath)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

const twoModelManifest = `models:
  - repo: org/a
  - repo: org/b
    ref: v1
    include: ["*.gguf", "*.json"]
    exclude: "*.bin"
`

func TestVersionFlagPrintsSingleToken(t *testing.T) {
	brokenConfig := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(brokenConfig, []byte("[hub\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	stdout, _, err := runCLI(t, []string{"--version", filepath.Join(t.TempDir(), "missing.yaml")}, brokenConfig)
	if err != nil {
		t.Fatalf("--version returned error: %v", err)
	}
	fields := strings.Fields(stdout)
	if len(fields) != 1 || !strings.HasSuffix(stdout, "\n") {
		t.Fatalf("expected a single version token, got %q", stdout)
	}

	stdout, _, err = runCLI(t, []string{"--version", "a.yaml", "b.yaml"}, "")
	if err != nil || len(strings.Fields(stdout)) != 1 {
		t.Fatalf("expected --version to ignore extra arguments, got %q (err=%v)", stdout, err)
	}
	if _, _, err := runCLI(t, []string{"a.yaml", "b.yaml"}, ""); err == nil {
		t.Fatal("expected two manifests to be rejected")
	}

	old := Version
	Version = "1.2.3"
	t.Cleanup(func() { Version = old })
	stdout, _, err = runCLI(t, []string{"--version"}, "")
	if err != nil || stdout != "1.2.3\n" {
		t.Fatalf("unexpected version output %q (err=%v)", stdout, err)
	}
}

func TestHelpDescribesTool(t *testing.T) {
	stdout, _, err := runCLI(t, []string{"--help"}, "")
	if err != nil {
		t.Fatalf("--help returned error: %v", err)
	}
	for _, want := range []string{
		"Download models defined in a facehugger.yaml manifest file.",
		"--dry-run",
		"--version",
		"manifest",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in help:\n%s", want, stdout)
		}
	}
}

func TestMissingManifestFails(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(env.baseDir, "nope.yaml")

	_, _, err := runCLI(t, []string{missing}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing manifest")
	}
	if err.Error() != "Manifest file not found: "+missing {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls := testsupport.HubCalls(t, env.cfg); len(calls) != 0 {
		t.Fatalf("expected no hf calls, got %v", calls)
	}
}

func TestDefaultManifestPathIsUsed(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Chdir(env.baseDir)

	_, _, err := runCLI(t, nil, env.configPath)
	if err == nil || err.Error() != "Manifest file not found: facehugger.yaml" {
		t.Fatalf("expected default manifest lookup, got %v", err)
	}
}

func TestInvalidManifestFails(t *testing.T) {
	env := setupCLITestEnv(t)
	cases := map[string]string{
		"parse":      "invalid: yaml: content:",
		"validation": "models:\n  - ref: main\n",
	}
	wants := map[string]string{
		"parse":      "Failed to parse manifest file ",
		"validation": "failed validation",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := testsupport.WriteManifest(t, filepath.Join(env.baseDir, name), body)
			_, _, err := runCLI(t, []string{path}, env.configPath)
			if err == nil || !strings.Contains(err.Error(), wants[name]) {
				t.Fatalf("expected %q error, got %v", wants[name], err)
			}
		})
	}
}

func TestDryRunPrintsCommandsWithoutDownloading(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteManifest(t, env.baseDir, twoModelManifest)

	_, stderr, err := runCLI(t, []string{"--dry-run", path}, env.configPath)
	if err != nil {
		t.Fatalf("dry run returned error: %v\n%s", err, stderr)
	}
	for _, want := range []string{
		"\nInitial cache state:\nID SIZE\n",
		"Equivalent command: `hf download org/a@main`\n",
		"Equivalent command: `hf download org/b@v1 --include *.gguf --include *.json --exclude *.bin`\n",
		"\nFinal cache state:\nID SIZE\n",
	} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("expected %q in output:\n%s", want, stderr)
		}
	}
	if strings.Contains(stderr, "Cache changes") {
		t.Fatalf("did not expect cache changes on dry run:\n%s", stderr)
	}

	calls := testsupport.HubCalls(t, env.cfg)
	if strings.Join(calls, "|") != "cache ls|cache ls" {
		t.Fatalf("expected only cache listings, got %v", calls)
	}
}

func TestRunDownloadsVerifiesAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteManifest(t, env.baseDir, twoModelManifest)

	_, stderr, err := runCLI(t, []string{path}, env.configPath)
	if err != nil {
		t.Fatalf("run returned error: %v\n%s", err, stderr)
	}

	calls := testsupport.HubCalls(t, env.cfg)
	want := []string{
		"cache ls",
		"download org/a --revision main",
		"cache verify org/a --repo-type model --revision main",
		"download org/b --revision v1 --include *.gguf --include *.json --exclude *.bin",
		"cache verify org/b --repo-type model --revision v1",
		"cache ls",
	}
	if strings.Join(calls, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected hf calls:\n got %q\nwant %q", calls, want)
	}

	for _, want := range []string{
		"Downloading repo org/a@main\n",
		"Fetching files for org/a\n",
		"Verifying repo org/b@v1, equivalent to: `hf cache verify org/b --revision v1`\n",
		"✅ Verified 1 file(s) for 'org/a' (model) in ",
		"\nCache changes (colourised):\n",
		"+model/org/a\n",
		"+model/org/b\n",
	} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("expected %q in output:\n%s", want, stderr)
		}
	}
	if strings.Contains(stderr, "\x1b[") {
		t.Fatalf("did not expect colour codes when output is not a terminal:\n%s", stderr)
	}

	stdout, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history returned error: %v", err)
	}
	for _, want := range []string{"completed", "download", "+2/-0", path} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in history:\n%s", want, stdout)
		}
	}

	runs, err := testsupport.MustOpenHistory(t, env.cfg).Recent(context.Background(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one recorded run, got %d (err=%v)", len(runs), err)
	}
	stdout, _, err = runCLI(t, []string{"history", "show", runs[0].ID[:8]}, env.configPath)
	if err != nil {
		t.Fatalf("history show returned error: %v", err)
	}
	for _, want := range []string{"Run " + runs[0].ID + " (completed)", "Cache changes: +2/-0", "org/a", "org/b", "verified"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in history show:\n%s", want, stdout)
		}
	}
	if _, _, err := runCLI(t, []string{"history", "show", "no-such-run"}, env.configPath); !errors.Is(err, history.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound for unknown run, got %v", err)
	}
}

func TestDownloadFailureExitsWithError(t *testing.T) {
	failing := "#!/bin/sh\ncase \"$1\" in\n  download) echo \"connection refused\" >&2; exit 1 ;;\n  *) echo \"ID SIZE\" ;;\nesac\n"
	env := setupCLITestEnv(t, testsupport.WithStubHub(failing))
	path := testsupport.WriteManifest(t, env.baseDir, twoModelManifest)

	_, stderr, err := runCLI(t, []string{path}, env.configPath)
	if err == nil {
		t.Fatalf("expected download failure to be returned\n%s", stderr)
	}
	if err.Error() != "download org/a@main: hf exited with code 1: connection refused" {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(stderr, "org/b") {
		t.Fatalf("expected run to stop before the second entry:\n%s", stderr)
	}
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistoryDisabled())
	stdout, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history returned error: %v", err)
	}
	if !strings.Contains(stdout, "Run journal disabled") {
		t.Fatalf("unexpected output: %q", stdout)
	}
}

func TestHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	stdout, _, err := runCLI(t, []string{"history", "--limit", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("history returned error: %v", err)
	}
	if strings.TrimSpace(stdout) != "No runs recorded" {
		t.Fatalf("unexpected output: %q", stdout)
	}
}

func TestDoctorReportsChecks(t *testing.T) {
	env := setupCLITestEnv(t)
	stdout, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor returned error: %v\n%s", err, stdout)
	}
	for _, want := range []string{"hf", "Hub cache", "State directory", "All checks passed"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in doctor output:\n%s", want, stdout)
		}
	}
}

func TestDoctorFailsWithoutHub(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Hub.Binary = "definitely-not-hf"
	testsupport.WriteConfig(t, env.cfg, env.configPath)

	stdout, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil {
		t.Fatalf("expected doctor to fail:\n%s", stdout)
	}
	if !strings.Contains(stdout, "FAIL") {
		t.Fatalf("expected FAIL row:\n%s", stdout)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HF_TOKEN", "")
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	stdout, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init returned error: %v", err)
	}
	if !strings.Contains(stdout, "Wrote sample configuration to "+target) {
		t.Fatalf("unexpected output: %q", stdout)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("init with --overwrite returned error: %v", err)
	}

	stdout, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("config validate returned error: %v", err)
	}
	if !strings.Contains(stdout, target) || !strings.Contains(stdout, "Configuration valid") {
		t.Fatalf("unexpected validate output: %q", stdout)
	}
}

func TestRunProceedsWhenStateDirIsUnusable(t *testing.T) {
	env := setupCLITestEnv(t)
	blocker := filepath.Join(env.baseDir, "blocker")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	env.cfg.Paths.StateDir = filepath.Join(blocker, "state")
	env.cfg.History.Path = filepath.Join(blocker, "state", "history.db")
	testsupport.WriteConfig(t, env.cfg, env.configPath)
	path := testsupport.WriteManifest(t, env.baseDir, twoModelManifest)

	_, stderr, err := runCLI(t, []string{"--dry-run", path}, env.configPath)
	if err != nil {
		t.Fatalf("dry run returned error: %v\n%s", err, stderr)
	}
	for _, want := range []string{"run journal unavailable", "Equivalent command: `hf download org/a@main`"} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("expected %q in output:\n%s", want, stderr)
		}
	}
	if calls := testsupport.HubCalls(t, env.cfg); strings.Join(calls, "|") != "cache ls|cache ls" {
		t.Fatalf("expected both cache listings, got %v", calls)
	}
}

func TestDebugLoggingNamesBinaryAndJournal(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Logging.Level = "debug"
	testsupport.WriteConfig(t, env.cfg, env.configPath)
	path := testsupport.WriteManifest(t, env.baseDir, "models:\n  - repo: org/a\n")

	_, stderr, err := runCLI(t, []string{"--dry-run", path}, env.configPath)
	if err != nil {
		t.Fatalf("dry run returned error: %v\n%s", err, stderr)
	}
	for _, want := range []string{
		"hub client ready binary=" + filepath.Join(env.baseDir, "bin", "hf") + "\n",
		"run journal open path=" + env.cfg.History.Path + "\n",
	} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("expected %q in output:\n%s", want, stderr)
		}
	}
}
