package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	dailyFilePrefix = "diagnostics"
	dailyFileExt    = ".log"
)

// DailyWriter appends to a date-keyed diagnostics file and rotates lazily
// when the local date changes. Files older than the retention window are
// pruned on open and on each rotation. It implements io.Writer and is safe
// for concurrent use.
type DailyWriter struct {
	mu            sync.Mutex
	dir           string
	retentionDays int
	dateKey       string
	file          *os.File
}

// NewDailyWriter opens (creating if needed) today's diagnostics file in
// dir. retentionDays <= 0 defaults to 7.
func NewDailyWriter(dir string, retentionDays int) (*DailyWriter, error) {
	if retentionDays <= 0 {
		retentionDays = 7
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create diagnostics log directory: %w", err)
	}

	w := &DailyWriter{dir: dir, retentionDays: retentionDays}
	w.prune()
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write implements io.Writer, rotating first when the date has changed.
func (w *DailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if key := dateKey(time.Now()); key != w.dateKey {
		if w.file != nil {
			w.file.Close()
		}
		if err := w.open(); err != nil {
			return 0, err
		}
		w.prune()
	}
	return w.file.Write(p)
}

// Close closes the underlying file.
func (w *DailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// Path returns the file currently written to.
func (w *DailyWriter) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return filepath.Join(w.dir, dailyFileName(w.dateKey))
}

func (w *DailyWriter) open() error {
	key := dateKey(time.Now())
	f, err := os.OpenFile(filepath.Join(w.dir, dailyFileName(key)), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open diagnostics log file: %w", err)
	}
	w.dateKey = key
	w.file = f
	return nil
}

// prune removes .log files past the retention window. Failures are
// ignored; retention is best-effort.
func (w *DailyWriter) prune() {
	cutoff := time.Now().Add(-time.Duration(w.retentionDays) * 24 * time.Hour)

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), dailyFileExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(w.dir, entry.Name()))
		}
	}
}

func dateKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

func dailyFileName(key string) string {
	return dailyFilePrefix + "-" + key + dailyFileExt
}
