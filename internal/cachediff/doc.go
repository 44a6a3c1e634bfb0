// Package cachediff captures hf cache listings before and after a run and
// reports the difference as a unified diff.
package cachediff
