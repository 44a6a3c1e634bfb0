// Package runner executes a validated manifest end to end.
//
// A run captures the hub cache listing, then for each entry in manifest order
// logs the equivalent hf download command, downloads the snapshot and verifies
// its checksums (both skipped on dry runs), captures the listing again and
// prints the difference. Entries are processed strictly one at a time. A
// download failure aborts the run; verification and listing problems are
// logged and the run continues.
//
// When a Journal is supplied, the run and each entry are recorded. Journal
// failures are logged as warnings only.
package runner
