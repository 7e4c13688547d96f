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

// Package log is zkeeper's structured logger. It wraps log/slog the same
// way the surveyed teacher logging stack does: a small Logger interface,
// a package-level root logger, and a terminal handler that colorizes
// output when the writer it is given is an interactive TTY.
package log

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-stack/stack"
)

// Level mirrors the six-level scheme the teacher's logger exposes. Trace
// and Crit sit outside slog's built-in Debug..Error range, so they are
// modeled as custom slog levels.
type Level slog.Level

const (
	LevelTrace Level = Level(slog.LevelDebug - 4)
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
	LevelCrit  Level = Level(slog.LevelError + 4)
)

// Logger is the contextual logging interface every component in this
// module logs through; no component reaches for the bare "log" stdlib
// package or fmt.Println.
type Logger interface {
	With(ctx ...any) Logger
	New(ctx ...any) Logger

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
}

type logger struct {
	inner *slog.Logger
}

// NewLogger wraps an *slog.Logger into zkeeper's Logger interface.
func NewLogger(h slog.Handler) Logger {
	return &logger{inner: slog.New(h)}
}

func (l *logger) write(level Level, msg string, ctx []any) {
	sl := l.inner
	if level == LevelCrit {
		// Crit is rare and fatal-adjacent: attach the immediate caller
		// frame the way the teacher's Crit path does, so an operator can
		// find the call site without re-running under a debugger.
		if frames := stack.Callers(); len(frames) >= 3 {
			sl = sl.With("caller", frames[2].String())
		}
	}
	sl.Log(context.Background(), slog.Level(level), msg, ctx...)
}

func (l *logger) With(ctx ...any) Logger { return &logger{inner: l.inner.With(ctx...)} }
func (l *logger) New(ctx ...any) Logger  { return l.With(ctx...) }

func (l *logger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...any)  { l.write(LevelCrit, msg, ctx) }

var root = NewLogger(NewTerminalHandler(os.Stderr, LevelInfo))

// SetDefault replaces the package-level root logger.
func SetDefault(l Logger) { root = l }

// Root returns the current package-level root logger.
func Root() Logger { return root }

func New(ctx ...any) Logger { return root.New(ctx...) }

func Trace(msg string, ctx ...any) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { root.Crit(msg, ctx...) }
