package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const timeFormat = "01-02|15:04:05.000"

// TerminalHandler formats records for terminal output: an aligned level tag,
// a timestamp, the message, and key=value attributes.
type TerminalHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	lvl      slog.Level
	useColor bool
	attrs    []slog.Attr
}

// NewTerminalHandler returns a handler which logs at LevelInfo and above.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	return NewTerminalHandlerWithLevel(wr, LevelInfo, useColor)
}

// NewTerminalHandlerWithLevel returns the same handler as NewTerminalHandler
// but only outputs records at the provided verbosity or above.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl slog.Level, useColor bool) *TerminalHandler {
	return &TerminalHandler{
		wr:       wr,
		lvl:      lvl,
		useColor: useColor,
	}
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var sb strings.Builder
	sb.WriteString(h.levelTag(r.Level))
	sb.WriteByte('[')
	sb.WriteString(r.Time.Format(timeFormat))
	sb.WriteString("] ")
	sb.WriteString(r.Message)

	writeAttr := func(a slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)
	sb.WriteByte('\n')

	_, err := io.WriteString(h.wr, sb.String())
	return err
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TerminalHandler{
		wr:       h.wr,
		lvl:      h.lvl,
		useColor: h.useColor,
		attrs:    append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	// Groups are not used by this logger.
	return h
}

func (h *TerminalHandler) levelTag(l slog.Level) string {
	tag := LevelAlignedString(l)
	if !h.useColor {
		return tag
	}
	var color int
	switch l {
	case LevelCrit:
		color = 35 // magenta
	case LevelError:
		color = 31 // red
	case LevelWarn:
		color = 33 // yellow
	case LevelInfo:
		color = 32 // green
	case LevelDebug:
		color = 36 // cyan
	case LevelTrace:
		color = 34 // blue
	}
	if color == 0 {
		return tag
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", color, tag)
}

type discardHandler struct{}

// DiscardHandler returns a no-op handler.
func DiscardHandler() slog.Handler {
	return &discardHandler{}
}

func (h *discardHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}

func (h *discardHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return false
}

func (h *discardHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *discardHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}
