package hub

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	mismatchPattern = regexp.MustCompile(`^\s*-\s+(.+): expected (\S+) \(([^)]+)\), got (\S+)\s*$`)
	verifiedPattern = regexp.MustCompile(`Verified (\d+) file\(s\) for '([^']*)' \(([^)]*)\) in (.+?)\s*$`)
)

// parseVerifyOutput extracts mismatches and the verified summary from
// hf cache verify output. Unrecognised lines are ignored.
func parseVerifyOutput(output string) VerifyResult {
	var result VerifyResult
	for _, line := range splitLines(output) {
		if m := mismatchPattern.FindStringSubmatch(line); m != nil {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Path:      strings.TrimSpace(m[1]),
				Expected:  m[2],
				Algorithm: m[3],
				Actual:    m[4],
			})
			continue
		}
		if m := verifiedPattern.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				result.CheckedCount = n
			}
			result.VerifiedPath = m[4]
		}
	}
	return result
}
