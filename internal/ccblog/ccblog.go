// Package ccblog is a small trace logger for the VM's fetch-decode-execute
// loop, gated behind the CLI's "-trace" flag. It is deliberately thin:
// one line per executed instruction when enabled, nothing otherwise.
package ccblog

import (
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
)

// Logger writes one line per traced event, prefixed with a run id so
// concurrent invocations stay distinguishable in merged logs.
type Logger struct {
	runID   string
	enabled bool
	out     *log.Logger
}

// New creates a Logger. When enabled is false, Trace is a no-op and no
// run id is generated.
func New(w io.Writer, enabled bool) *Logger {
	l := &Logger{enabled: enabled}
	if !enabled {
		return l
	}
	l.runID = uuid.NewString()
	l.out = log.New(w, "", log.LstdFlags|log.Lmicroseconds)
	return l
}

// RunID returns the logger's correlation id, or "" if tracing is disabled.
func (l *Logger) RunID() string {
	return l.runID
}

// Enabled reports whether tracing is active.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Trace emits one instruction-level trace line.
func (l *Logger) Trace(ip int, mnemonic string, stackDepth int) {
	if !l.Enabled() {
		return
	}
	l.out.Print(fmt.Sprintf("[%s] ip=%04d op=%-14s stack=%d", l.runID, ip, mnemonic, stackDepth))
}
