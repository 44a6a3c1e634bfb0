package cachediff

import (
	"bytes"
	"context"
	"slices"
	"strings"

	"github.com/pkg/diff"
)

// Kind classifies a line of unified diff output.
type Kind int

const (
	KindHeader Kind = iota
	KindHunk
	KindContext
	KindAdded
	KindRemoved
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindHunk:
		return "hunk"
	case KindContext:
		return "context"
	case KindAdded:
		return "added"
	case KindRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Line is one line of unified diff output.
type Line struct {
	Kind Kind
	Text string
}

const contextSize = 3

// Diff returns the unified diff from before to after, labelled initial and
// final. Identical listings produce no lines.
func Diff(before, after []string) []Line {
	if slices.Equal(before, after) {
		return nil
	}

	pair := diff.Bytes(toBytes(before), toBytes(after))
	edit := diff.Myers(context.Background(), pair).WithContextSize(contextSize)

	var buf bytes.Buffer
	if _, err := edit.WriteUnified(&buf, pair, diff.Names("initial", "final")); err != nil {
		return nil
	}
	return classify(buf.String())
}

// Count returns the number of added and removed lines.
func Count(lines []Line) (added, removed int) {
	for _, line := range lines {
		switch line.Kind {
		case KindAdded:
			added++
		case KindRemoved:
			removed++
		}
	}
	return added, removed
}

func toBytes(lines []string) [][]byte {
	out := make([][]byte, len(lines))
	for i, line := range lines {
		out[i] = []byte(line)
	}
	return out
}

// classify tags unified diff text. The file header is only recognised before
// the first hunk, so listing lines that begin with "--" or "++" are still
// tagged as removals or additions.
func classify(text string) []Line {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))
	inHunk := false
	for _, s := range raw {
		kind := KindContext
		switch {
		case strings.HasPrefix(s, "@@"):
			kind = KindHunk
			inHunk = true
		case !inHunk:
			kind = KindHeader
		case strings.HasPrefix(s, "+"):
			kind = KindAdded
		case strings.HasPrefix(s, "-"):
			kind = KindRemoved
		}
		lines = append(lines, Line{Kind: kind, Text: s})
	}
	return lines
}
