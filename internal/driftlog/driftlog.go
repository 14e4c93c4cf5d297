// Package driftlog is a small leveled logger used across the engine in
// place of bare log.Printf calls.
package driftlog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgCyan),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed, color.Bold),
}

// Logger writes leveled, optionally colorized, prefixed lines to an
// underlying writer. Safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	colored bool
	prefix  string
	fields  []string
	minLvl  Level
}

// New returns a Logger writing to w. Coloring is enabled only when w is
// an *os.File attached to a terminal.
func New(w io.Writer) *Logger {
	colored := false
	if f, ok := w.(*os.File); ok {
		colored = isatty.IsTerminal(f.Fd())
	}
	return &Logger{out: w, colored: colored, minLvl: LevelDebug}
}

// Default returns a Logger writing to stderr, matching the teacher's
// convention of logging operational messages to stderr.
func Default() *Logger { return New(os.Stderr) }

func (l *Logger) SetMinLevel(lvl Level) { l.minLvl = lvl }

// WithField returns a child logger that prefixes every line with
// "key=value" in addition to the parent's fields.
func (l *Logger) WithField(key string, value any) *Logger {
	child := *l
	child.fields = append(append([]string{}, l.fields...), fmt.Sprintf("%s=%v", key, value))
	return &child
}

func (l *Logger) WithFields(kv map[string]any) *Logger {
	child := l
	for k, v := range kv {
		child = child.WithField(k, v)
	}
	return child
}

func (l *Logger) log(lvl Level, format string, args ...any) {
	if lvl < l.minLvl {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	label := levelNames[lvl]
	if l.colored {
		label = levelColors[lvl].Sprint(label)
	}

	msg := fmt.Sprintf(format, args...)
	if len(l.fields) > 0 {
		for _, f := range l.fields {
			msg = msg + " " + f
		}
	}
	fmt.Fprintf(l.out, "[%s] %s\n", label, msg)
}

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }
