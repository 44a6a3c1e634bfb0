package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// prettyHandler renders one header line per record:
//
//	2024-05-01 10:00:00 INFO [download] Run 1a2b3c4d · org/model – message
//
// followed by an indented line per remaining attribute.
type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	var component, runID, repo string
	var fields []kv
	for _, field := range collectKVs(h.groups, h.attrs, record) {
		var slot *string
		switch field.key {
		case FieldComponent:
			slot = &component
		case FieldRunID:
			slot = &runID
		case FieldRepo:
			slot = &repo
		default:
			fields = append(fields, field)
			continue
		}
		if *slot == "" {
			*slot = strings.TrimSpace(attrString(field.value))
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	header := []string{formatTimestamp(ts), levelLabel(record.Level)}
	if component != "" {
		header = append(header, "["+component+"]")
	}
	if subject := composeSubject(runID, repo); subject != "" {
		header = append(header, subject)
	}
	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}
	header = append(header, "–", message)
	if src := record.Source(); h.addSource && src != nil {
		header = append(header, fmt.Sprintf("[%s:%d]", filepath.Base(src.File), src.Line))
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(header, " "))
	buf.WriteByte('\n')
	for _, field := range fields {
		fmt.Fprintf(&buf, "    - %s: %s\n", field.key, formatValue(field.value))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func composeSubject(runID, repo string) string {
	if len(runID) > 8 {
		runID = runID[:8]
	}
	switch {
	case runID != "" && repo != "":
		return "Run " + runID + " · " + repo
	case runID != "":
		return "Run " + runID
	default:
		return repo
	}
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

type kv struct {
	key   string
	value slog.Value
}

// collectKVs flattens handler and record attributes into dotted keys.
func collectKVs(groups []string, attrs []slog.Attr, record slog.Record) []kv {
	prefix := strings.Join(groups, ".")
	out := make([]kv, 0, len(attrs)+record.NumAttrs())
	for _, attr := range attrs {
		out = flattenAttr(out, prefix, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		out = flattenAttr(out, prefix, attr)
		return true
	})
	return out
}

func flattenAttr(dst []kv, prefix string, attr slog.Attr) []kv {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	key := joinKey(prefix, attr.Key)
	if value.Kind() != slog.KindGroup {
		return append(dst, kv{key: key, value: value})
	}
	for _, child := range value.Group() {
		dst = flattenAttr(dst, key, child)
	}
	return dst
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
