// Package history keeps a local SQLite journal of facehugger runs.
//
// Each invocation records a run row (manifest, dry-run flag, timing, final
// status and cache delta) and one row per processed manifest entry. The
// journal is informational: callers log journal failures and carry on, so a
// broken database never blocks a download.
//
// Schema changes ship as numbered files under migrations/ and are applied in
// order on Open.
package history
