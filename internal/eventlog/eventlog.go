// Package eventlog appends human-readable operational events to a plain text
// file, one timestamped line per fetch/classify/parse/ingest outcome. The
// file is for operators; nothing in the pipeline reads it back.
package eventlog

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

type Logger struct {
	path string
	mu   sync.Mutex
}

// New returns a Logger appending to path. An empty path disables the file;
// events then only reach the console log.
func New(path string) *Logger {
	return &Logger{path: path}
}

// Logf records one event line: "dd.mm.yyyy HH:MM:SS: message".
func (l *Logger) Logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("[INFO] %s", msg)
	if l == nil || l.path == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("[WARN] open event log: %v", err)
		return
	}
	defer f.Close()
	timestamp := time.Now().Format("02.01.2006 15:04:05")
	if _, err := fmt.Fprintf(f, "%s: %s\n", timestamp, msg); err != nil {
		log.Printf("[WARN] write event log: %v", err)
	}
}
