// Package command renders the hf invocations facehugger performs as
// copy-pasteable shell lines for the run log.
package command

import "strings"

// FormatDownload renders the hf download command equivalent to fetching repo
// at ref with the given filters. An empty ref omits the @ref suffix.
func FormatDownload(repo, ref string, include, exclude []string) string {
	target := repo
	if ref != "" {
		target = repo + "@" + ref
	}
	parts := []string{"hf", "download", target}
	for _, pattern := range include {
		parts = append(parts, "--include", pattern)
	}
	for _, pattern := range exclude {
		parts = append(parts, "--exclude", pattern)
	}
	return strings.Join(parts, " ")
}

// FormatVerify renders the hf cache verify command for repo at ref.
func FormatVerify(repo, ref string) string {
	parts := []string{"hf", "cache", "verify", repo}
	if ref != "" {
		parts = append(parts, "--revision", ref)
	}
	return strings.Join(parts, " ")
}
