// Package preflight provides readiness checks for the binaries, directories
// and hub credentials facehugger depends on.
//
// The CLI "facehugger doctor" command runs RunAll and renders the results as a
// table. Individual checks (CheckDirectoryAccess, CheckCacheDirectory,
// CheckHubToken) are exported so callers can compose their own reports.
//
// The hub token check is only performed when a token is configured, so an
// anonymous setup never needs network access to pass.
package preflight
