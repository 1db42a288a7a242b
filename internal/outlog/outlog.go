// Package outlog is the store's small logging facade: plain leveled lines
// gated by OUTLINE_DEBUG for verbose output, with an optional rotating file
// sink for the watcher/daemon process (which otherwise has no terminal to
// write to).
package outlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.Mutex
	out    io.Writer = os.Stderr
	debug            = os.Getenv("OUTLINE_DEBUG") != ""
)

// UseFile redirects Warnf/Errorf/Logf to a rotating log file, for the
// watcher daemon which runs detached from any terminal. Size is in
// megabytes; matches the defaults the teacher's own daemon logging uses.
func UseFile(path string, maxSizeMB, maxBackups, maxAgeDays int) {
	mu.Lock()
	defer mu.Unlock()
	out = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
}

// Logf writes a debug-level line only when OUTLINE_DEBUG is set.
func Logf(format string, args ...any) {
	if !debug {
		return
	}
	write("debug", format, args...)
}

// Warnf writes a warning line unconditionally (malformed inbox line,
// background index update failure, auto-compact failure — the warnings
// §7 names as non-fatal).
func Warnf(format string, args ...any) {
	write("warn", format, args...)
}

// Errorf writes an error line unconditionally.
func Errorf(format string, args ...any) {
	write("error", format, args...)
}

func write(level, format string, args ...any) {
	mu.Lock()
	w := out
	mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	log.New(w, "", log.LstdFlags).Printf("[%s] %s", level, msg)
}
