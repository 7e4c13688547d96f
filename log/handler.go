// Copyright 2025 The zkeeper Authors
// This file is part of the zkeeper library.
//
// The zkeeper library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The zkeeper library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the zkeeper library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

var levelNames = map[Level]string{
	LevelTrace: "TRAC",
	LevelDebug: "DEBG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "EROR",
	LevelCrit:  "CRIT",
}

var levelColors = map[Level]int{
	LevelTrace: 34, // blue
	LevelDebug: 36, // cyan
	LevelInfo:  32, // green
	LevelWarn:  33, // yellow
	LevelError: 31, // red
	LevelCrit:  35, // magenta
}

// terminalHandler renders human-readable, optionally colorized log lines,
// the way the teacher's terminal handler formats records for an operator
// watching a console rather than shipping JSON to a collector.
type terminalHandler struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	color  bool
	attrs  []slog.Attr
	groups []string
}

// NewTerminalHandler builds a slog.Handler writing to w. Color is enabled
// automatically when w is an interactive terminal (via go-isatty) and w is
// wrapped with go-colorable so ANSI codes render correctly on Windows
// consoles too, matching the teacher's cross-platform color detection.
func NewTerminalHandler(w io.Writer, level Level) slog.Handler {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		if color {
			w = colorable.NewColorable(f)
		}
	}
	return &terminalHandler{out: w, level: level, color: color}
}

func (h *terminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return level >= slog.Level(h.level)
}

func (h *terminalHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	line := h.format(Level(r.Level), r.Message, attrs)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line)
	return err
}

// Verbosity adjusts the minimum level this handler emits, mirroring the
// teacher's GlogHandler.Verbosity knob used for runtime log-level changes.
func (h *terminalHandler) Verbosity(lvl Level) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.level = lvl
}

func (h *terminalHandler) format(level Level, msg string, attrs []slog.Attr) string {
	var b strings.Builder
	ts := time.Now().Format("01-02|15:04:05.000")
	name := levelNames[level]
	if h.color {
		fmt.Fprintf(&b, "\x1b[%dm%s\x1b[0m[%s] %-40s", levelColors[level], name, ts, msg)
	} else {
		fmt.Fprintf(&b, "%s[%s] %-40s", name, ts, msg)
	}
	all := append(append([]slog.Attr{}, h.attrs...), attrs...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Key < all[j].Key })
	for _, a := range all {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
	}
	b.WriteByte('\n')
	return b.String()
}

func (h *terminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &nh
}

func (h *terminalHandler) WithGroup(name string) slog.Handler {
	nh := *h
	nh.groups = append(append([]string{}, h.groups...), name)
	return &nh
}
