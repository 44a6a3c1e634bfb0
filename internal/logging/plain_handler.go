package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
)

// plainHandler writes the bare message followed by any non-context attributes.
// Level and time are omitted so CLI output reads like a transcript.
type plainHandler struct {
	mu     *sync.Mutex
	writer io.Writer
	level  *slog.LevelVar
	attrs  []slog.Attr
	groups []string
}

func newPlainHandler(w io.Writer, lvl *slog.LevelVar) slog.Handler {
	return &plainHandler{mu: &sync.Mutex{}, writer: w, level: lvl}
}

func (h *plainHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *plainHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	var buf bytes.Buffer
	buf.WriteString(record.Message)
	for _, kv := range collectKVs(h.groups, h.attrs, record) {
		if isContextField(kv.key) || kv.key == "" {
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(kv.key)
		buf.WriteByte('=')
		buf.WriteString(formatValue(kv.value))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *plainHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *plainHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *plainHandler) clone() *plainHandler {
	return &plainHandler{
		mu:     h.mu,
		writer: h.writer,
		level:  h.level,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

func isContextField(key string) bool {
	switch key {
	case FieldComponent, FieldRunID, FieldRepo, FieldEventType:
		return true
	}
	return false
}
