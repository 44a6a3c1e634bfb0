package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"facehugger/internal/config"
)

// StubHubScript imitates the hf subcommands facehugger uses. Downloads append
// the repo to a fake cache listing under HF_HOME, and every invocation is
// appended to HF_HOME/calls.log.
const StubHubScript = `#!/bin/sh
home="${HF_HOME:-$HOME/.cache/huggingface}"
mkdir -p "$home"
echo "$*" >> "$home/calls.log"
state="$home/stub-cache"
case "$1" in
  version)
    echo "huggingface_hub version: 0.0.0-stub"
    ;;
  download)
    echo "model/$2" >> "$state"
    echo "Fetching files for $2" >&2
    echo "$home/hub/models--stub/snapshots/0000"
    ;;
  cache)
    case "$2" in
      ls)
        echo "ID SIZE"
        if [ -f "$state" ]; then cat "$state"; fi
        ;;
      verify)
        echo "Verified 1 file(s) for '$3' (model) in $home/hub/models--stub/snapshots/0000"
        ;;
      *)
        echo "unknown cache command $2" >&2
        exit 2
        ;;
    esac
    ;;
  *)
    echo "unknown command $1" >&2
    exit 2
    ;;
esac
`

// HubCalls returns the hf invocations recorded by StubHubScript.
func HubCalls(t testing.TB, cfg *config.Config) []string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(cfg.Hub.Home, "calls.log"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read hf calls: %v", err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}
