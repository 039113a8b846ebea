package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// defaultRingCapacity bounds the number of recent log lines kept for the
// operator /logs surface.
const defaultRingCapacity = 256

var recentRing = newRing(defaultRingCapacity)

// Recent returns the most recent captured log lines, oldest first.
func Recent() []string {
	return recentRing.lines()
}

type ring struct {
	mu    sync.Mutex
	buf   []string
	next  int
	total int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]string, capacity)}
}

func (r *ring) append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = line
	r.next = (r.next + 1) % len(r.buf)
	r.total++
}

func (r *ring) lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.total
	if n > len(r.buf) {
		n = len(r.buf)
	}
	out := make([]string, 0, n)
	start := (r.next - n + len(r.buf)) % len(r.buf)
	for i := 0; i < n; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// ringHandler tees every record into the in-memory ring before passing it on
// to the wrapped handler.
type ringHandler struct {
	inner slog.Handler
}

// NewRingHandler wraps h so every record also lands in the recent-lines ring.
func NewRingHandler(h slog.Handler) slog.Handler {
	return &ringHandler{inner: h}
}

func (h *ringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ringHandler) Handle(ctx context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Time.Format("2006-01-02T15:04:05.000Z07:00"))
	sb.WriteString(" ")
	sb.WriteString(r.Level.String())
	sb.WriteString(" ")
	sb.WriteString(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
		return true
	})
	recentRing.append(sb.String())
	return h.inner.Handle(ctx, r)
}

func (h *ringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ringHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *ringHandler) WithGroup(name string) slog.Handler {
	return &ringHandler{inner: h.inner.WithGroup(name)}
}
