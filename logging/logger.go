// Package logging implements usync's structured, leveled logger.
//
// Grounded directly on the teacher's pkg/logging package: a *Logger that is
// safe to call when nil (a nil logger silently discards input), supports
// hierarchical sub-loggers via a dotted prefix, and exposes io.Writer
// adapters so subprocess output (e.g. an SSH-spawned agent's stderr) can be
// piped through the logger a line at a time.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"log"

	"github.com/fatih/color"
)

// Logger is the main logger type. A nil *Logger is valid and logs nothing,
// so callers can pass a nil logger through code paths where logging hasn't
// been configured without needing to check for nil at every call site.
type Logger struct {
	prefix string
	debug  bool
}

// Root is the root logger from which all other loggers derive.
var Root = &Logger{}

// New creates a root logger with debug-level logging enabled or disabled.
func New(debug bool) *Logger {
	return &Logger{debug: debug}
}

// Sublogger creates a new sublogger with the specified name appended to the
// current prefix.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{prefix: prefix, debug: l.debug}
}

func (l *Logger) output(calldepth int, line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	log.Output(calldepth, line)
}

// Print logs information with semantics equivalent to fmt.Print.
func (l *Logger) Print(v ...interface{}) {
	if l != nil {
		l.output(3, fmt.Sprint(v...))
	}
}

// Printf logs information with semantics equivalent to fmt.Printf.
func (l *Logger) Printf(format string, v ...interface{}) {
	if l != nil {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Debug logs information with semantics equivalent to fmt.Print, but only if
// debug logging is enabled for this logger.
func (l *Logger) Debug(v ...interface{}) {
	if l != nil && l.debug {
		l.output(3, fmt.Sprint(v...))
	}
}

// Debugf logs information with semantics equivalent to fmt.Printf, but only
// if debug logging is enabled for this logger.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l != nil && l.debug {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Warn logs error information with a warning prefix and yellow color.
func (l *Logger) Warn(err error) {
	if l != nil {
		l.output(3, color.YellowString("Warning: %v", err))
	}
}

// Error logs error information with an error prefix and red color.
func (l *Logger) Error(err error) {
	if l != nil {
		l.output(3, color.RedString("Error: %v", err))
	}
}

// lineWriter is an io.Writer that splits its input stream into lines and
// writes those lines to an underlying callback, one line at a time.
type lineWriter struct {
	callback func(string)
	buffer   []byte
}

func (w *lineWriter) Write(buffer []byte) (int, error) {
	w.buffer = append(w.buffer, buffer...)

	var processed int
	remaining := w.buffer
	for {
		index := bytes.IndexByte(remaining, '\n')
		if index == -1 {
			break
		}
		w.callback(string(remaining[:index]))
		processed += index + 1
		remaining = remaining[index+1:]
	}

	if processed > 0 {
		leftover := len(w.buffer) - processed
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}
		w.buffer = w.buffer[:leftover]
	}

	return len(buffer), nil
}

// Writer returns an io.Writer that writes each line using Printf.
func (l *Logger) Writer() io.Writer {
	if l == nil {
		return ioutil.Discard
	}
	return &lineWriter{callback: func(s string) { l.Printf("%s", s) }}
}

// DebugWriter returns an io.Writer that writes each line using Debugf, but
// only if debug logging is enabled (otherwise it discards input without the
// overhead of scanning lines).
func (l *Logger) DebugWriter() io.Writer {
	if l == nil || !l.debug {
		return ioutil.Discard
	}
	return &lineWriter{callback: func(s string) { l.Debugf("%s", s) }}
}
