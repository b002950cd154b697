// Package archive keeps run reports on disk. Each report is written as a
// timestamped JSON file; reports that could not be uploaded wait here until
// the next run flushes them. A size cap drops the oldest reports first.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vitalis-app/hostenum/internal/output"
)

const bytesPerMB = 1024 * 1024

// Archive is a directory of report files.
type Archive struct {
	dir      string
	maxBytes int64
	logger   *zap.Logger
	mu       sync.Mutex
}

// Entry is an archived report. Data holds the report exactly as it was
// stored; only its header fields are decoded.
type Entry struct {
	Path        string    `json:"-"`
	RunID       string    `json:"run_id"`
	Command     string    `json:"command"`
	CollectedAt time.Time `json:"collected_at"`
	Data        []byte    `json:"-"`
}

// New opens the archive in dir, creating the directory if needed. A
// maxSizeMB of zero or less disables the size cap.
func New(dir string, maxSizeMB int, logger *zap.Logger) (*Archive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Archive{
		dir:      dir,
		maxBytes: int64(maxSizeMB) * bytesPerMB,
		logger:   logger,
	}, nil
}

// Dir returns the archive directory.
func (a *Archive) Dir() string { return a.dir }

// Store writes rep to a new file and returns its path. Old reports are
// dropped until the new one fits under the size cap.
func (a *Archive) Store(rep output.Report) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := json.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	if a.maxBytes > 0 {
		for a.currentSize()+int64(len(data)) > a.maxBytes {
			if !a.dropOldest() {
				break
			}
		}
	}

	path := filepath.Join(a.dir, fileName(rep))
	if err := os.WriteFile(path, data, 0640); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	a.logger.Debug("Report archived", zap.String("file", path), zap.String("run_id", rep.RunID))
	return path, nil
}

// Pending returns every archived report in chronological order. Files
// that cannot be parsed are removed and logged.
func (a *Archive) Pending() ([]Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	names, err := a.reportFiles()
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, name := range names {
		path := filepath.Join(a.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			a.logger.Warn("Failed to read archived report",
				zap.String("file", path),
				zap.Error(err))
			continue
		}

		entry := Entry{Path: path, Data: data}
		if err := json.Unmarshal(data, &entry); err != nil || entry.RunID == "" {
			a.logger.Warn("Failed to parse archived report, removing corrupted file",
				zap.String("file", path),
				zap.Error(err))
			os.Remove(path)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Remove deletes an archived report.
func (a *Archive) Remove(e Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.Remove(e.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove archived report: %w", err)
	}
	return nil
}

// Count returns the number of archived reports.
func (a *Archive) Count() int {
	names, err := a.reportFiles()
	if err != nil {
		return 0
	}
	return len(names)
}

// fileName sorts by collection time; the run ID keeps names unique.
func fileName(rep output.Report) string {
	ts := rep.CollectedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	id := rep.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	return ts.UTC().Format("20060102T150405.000") + "-" + id + ".json"
}

func (a *Archive) reportFiles() ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("read archive dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// currentSize returns the total size of the report files in bytes.
// Must be called with a.mu held.
func (a *Archive) currentSize() int64 {
	var total int64
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return 0
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		if info, err := e.Info(); err == nil {
			total += info.Size()
		}
	}
	return total
}

// dropOldest removes the oldest report. It reports false when there was
// nothing left to remove. Must be called with a.mu held.
func (a *Archive) dropOldest() bool {
	names, err := a.reportFiles()
	if err != nil || len(names) == 0 {
		return false
	}
	path := filepath.Join(a.dir, names[0])
	a.logger.Warn("Archive full, dropping oldest report", zap.String("file", path))
	if err := os.Remove(path); err != nil {
		a.logger.Warn("Failed to remove oldest report",
			zap.String("file", path),
			zap.Error(err))
		return false
	}
	return true
}
