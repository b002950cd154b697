// Process list collector. Uses gopsutil, so it only describes the machine
// hostenum runs on.
package collector

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/vitalis-app/hostenum/internal/models"
	"github.com/vitalis-app/hostenum/internal/session"
)

// normalizedStatuses maps raw gopsutil status strings to a consistent set of
// display values used across all platforms.
var normalizedStatuses = map[string]string{
	"running":               "running",
	"sleeping":              "sleeping",
	"idle":                  "idle",
	"stopped":               "stopped",
	"zombie":                "zombie",
	"wait":                  "sleeping",
	"lock":                  "sleeping",
	"sleep":                 "sleeping",
	"disk-sleep":            "sleeping",
	"tracing-stop":          "stopped",
	"dead":                  "zombie",
	"waking":                "running",
	"parked":                "idle",
	"suspended":             "stopped",
	"uninterruptible-sleep": "sleeping",
}

// normalizeStatus maps a raw gopsutil status string to a display value.
// Windows reports no status at all; that becomes Null.
func normalizeStatus(raw string) models.Value {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return models.Null()
	}
	if mapped, ok := normalizedStatuses[key]; ok {
		return models.String(mapped)
	}
	return models.String(key)
}

// processEntry is what the collector reads about one process.
type processEntry struct {
	PID      int32
	PPID     int32
	Name     string
	Username string
	Exe      string
	Status   string
}

// Overridden in tests.
var listProcesses = defaultListProcesses

func defaultListProcesses(ctx context.Context, logger *zap.Logger) ([]processEntry, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]processEntry, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// Exited between listing and inspection.
			logger.Debug("Skipping process", zap.Int32("pid", p.Pid), zap.Error(err))
			continue
		}
		// Protected processes deny these; leave them empty.
		ppid, _ := p.PpidWithContext(ctx)
		username, _ := p.UsernameWithContext(ctx)
		exe, _ := p.ExeWithContext(ctx)
		status, _ := p.StatusWithContext(ctx)

		e := processEntry{PID: p.Pid, PPID: ppid, Name: name, Username: username, Exe: exe}
		if len(status) > 0 {
			e.Status = status[0]
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ProcessCollector lists running processes. Arguments, when given, keep
// only processes whose name contains one of them (case-insensitive).
type ProcessCollector struct{}

func init() {
	Register(Registration{
		Name:    "processes",
		Factory: func() Collector { return &ProcessCollector{} },
		CLI:     Descriptor{Version: "1.0", About: "Running processes [name filters...]"},
	})
}

func (c *ProcessCollector) SupportsRemote() bool { return false }

func (c *ProcessCollector) Execute(ctx context.Context, sess *session.Session, args []string) (models.Result, error) {
	entries, err := listProcesses(ctx, sess.Logger())
	if err != nil {
		return models.Result{}, fmt.Errorf("processes: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].PID < entries[j].PID })

	table := models.NewTable("Processes")
	for _, e := range entries {
		if !matchesAny(e.Name, args) {
			continue
		}
		row := models.NewRow()
		row.Set("PID", models.Int(int64(e.PID)))
		row.Set("PPID", models.Int(int64(e.PPID)))
		row.Set("Name", models.String(e.Name))
		row.Set("User", optionalString(e.Username))
		row.Set("Path", optionalString(e.Exe))
		row.Set("Status", normalizeStatus(e.Status))
		table.Append(row)
	}
	return models.Single(table), nil
}

func matchesAny(name string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	name = strings.ToLower(name)
	for _, f := range filters {
		if strings.Contains(name, strings.ToLower(f)) {
			return true
		}
	}
	return false
}

// optionalString is Null for an empty s.
func optionalString(s string) models.Value {
	if s == "" {
		return models.Null()
	}
	return models.String(s)
}
