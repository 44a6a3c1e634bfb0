// Package hub mediates access to the Hugging Face Hub through the hf command
// line client.
//
// The CLI type implements snapshot downloads, cache checksum verification and
// cache listing by running hf as a subprocess and interpreting its output.
// Callers depend on the narrow Downloader, ChecksumVerifier and CacheLister
// interfaces so tests can substitute fakes; the CLI itself accepts an Executor
// for the same reason.
package hub
