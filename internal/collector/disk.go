// Volume collector. Uses gopsutil for partition and usage data.
package collector

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"

	"github.com/vitalis-app/hostenum/internal/models"
	"github.com/vitalis-app/hostenum/internal/session"
)

// pseudoFSTypes are virtual and network filesystems that do not represent
// local storage.
var pseudoFSTypes = map[string]bool{
	"devfs":       true,
	"autofs":      true,
	"tmpfs":       true,
	"sysfs":       true,
	"proc":        true,
	"devtmpfs":    true,
	"cgroup":      true,
	"cgroup2":     true,
	"overlay":     true,
	"squashfs":    true,
	"nsfs":        true,
	"debugfs":     true,
	"tracefs":     true,
	"securityfs":  true,
	"binfmt_misc": true,
	"efivarfs":    true,
	"ramfs":       true,

	"nfs":   true,
	"nfs4":  true,
	"cifs":  true,
	"smbfs": true,
	"9p":    true,
}

// Overridden in tests.
var (
	diskPartitions = disk.PartitionsWithContext
	diskUsage      = disk.UsageWithContext
)

// DiskCollector lists local volumes with their size and free space.
type DiskCollector struct{}

func init() {
	Register(Registration{
		Name:    "disks",
		Factory: func() Collector { return &DiskCollector{} },
		CLI:     Descriptor{Version: "1.0", About: "Local volumes and their usage"},
	})
}

func (c *DiskCollector) SupportsRemote() bool { return false }

// Execute skips pseudo filesystems and volumes whose usage cannot be read.
func (c *DiskCollector) Execute(ctx context.Context, sess *session.Session, _ []string) (models.Result, error) {
	partitions, err := diskPartitions(ctx, false)
	if err != nil {
		return models.Result{}, fmt.Errorf("disks: %w", err)
	}

	table := models.NewTable("Disks")
	for _, p := range partitions {
		if pseudoFSTypes[p.Fstype] {
			continue
		}
		usage, err := diskUsage(ctx, p.Mountpoint)
		if err != nil {
			sess.Logger().Debug("Skipping volume", zap.String("mount", p.Mountpoint), zap.Error(err))
			continue
		}
		if usage.Total == 0 {
			continue
		}

		row := models.NewRow()
		row.Set("Mount", models.String(p.Mountpoint))
		row.Set("Device", models.String(p.Device))
		row.Set("FileSystem", models.String(p.Fstype))
		row.Set("Total", models.Uint(usage.Total))
		row.Set("Used", models.Uint(usage.Used))
		row.Set("Free", models.Uint(usage.Free))
		row.Set("UsedPercent", models.Float(usage.UsedPercent))
		table.Append(row)
	}
	return models.Single(table), nil
}
