package cachediff

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// Render returns display strings for lines. With colour enabled, additions are
// green and removals red.
func Render(lines []Line, colour bool) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if !colour {
			out = append(out, line.Text)
			continue
		}
		switch line.Kind {
		case KindAdded:
			out = append(out, ansiGreen+line.Text+ansiReset)
		case KindRemoved:
			out = append(out, ansiRed+line.Text+ansiReset)
		default:
			out = append(out, line.Text)
		}
	}
	return out
}
