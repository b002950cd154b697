// OS info collector. The local machine is described through gopsutil; a
// remote machine through its Win32_OperatingSystem instance.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/vitalis-app/hostenum/internal/models"
	"github.com/vitalis-app/hostenum/internal/platform"
	"github.com/vitalis-app/hostenum/internal/session"
)

const osQuery = "SELECT CSName, Caption, Version, BuildNumber, OSArchitecture, LastBootUpTime FROM Win32_OperatingSystem"

// win32OperatingSystem mirrors the Win32_OperatingSystem properties read
// for remote targets.
type win32OperatingSystem struct {
	CSName         string
	Caption        string
	Version        string
	BuildNumber    string
	OSArchitecture string
	LastBootUpTime time.Time
}

// Overridden in tests.
var (
	hostInfo   = host.InfoWithContext
	isElevated = platform.IsElevated
	now        = time.Now
)

// OSInfoCollector describes the operating system of the target.
type OSInfoCollector struct{}

func init() {
	Register(Registration{
		Name:    "osinfo",
		Factory: func() Collector { return &OSInfoCollector{} },
		CLI:     Descriptor{Version: "1.0", About: "Operating system, version and uptime"},
	})
}

func (c *OSInfoCollector) SupportsRemote() bool { return true }

func (c *OSInfoCollector) Execute(ctx context.Context, sess *session.Session, _ []string) (models.Result, error) {
	if sess.IsRemote() {
		return c.remote(sess)
	}
	return c.local(ctx, sess)
}

func (c *OSInfoCollector) local(ctx context.Context, sess *session.Session) (models.Result, error) {
	info, err := hostInfo(ctx)
	if err != nil {
		return models.Result{}, fmt.Errorf("os info: %w", err)
	}

	boot := time.Unix(int64(info.BootTime), 0).UTC()

	row := models.NewRow()
	row.Set("Hostname", models.String(info.Hostname))
	row.Set("OS", models.String(info.OS))
	row.Set("Platform", models.String(info.Platform))
	row.Set("Version", models.String(info.PlatformVersion))
	row.Set("Kernel", models.String(info.KernelVersion))
	row.Set("Architecture", models.String(info.KernelArch))
	row.Set("BootTime", models.Time(boot))
	row.Set("Uptime", models.String((time.Duration(info.Uptime) * time.Second).String()))

	elevated, err := isElevated()
	if err != nil {
		sess.Logger().Debug("Elevation check failed", zap.Error(err))
		row.Set("Elevated", models.Null())
	} else {
		row.Set("Elevated", models.Bool(elevated))
	}

	return models.Single(models.NewTable("OS Info", row)), nil
}

func (c *OSInfoCollector) remote(sess *session.Session) (models.Result, error) {
	var dst []win32OperatingSystem
	if err := sess.QueryInto(`root\cimv2`, osQuery, &dst); err != nil {
		return models.Result{}, fmt.Errorf("os info: %w", err)
	}

	table := models.NewTable("OS Info")
	for _, sys := range dst {
		boot := sys.LastBootUpTime.UTC()

		row := models.NewRow()
		row.Set("Hostname", models.String(sys.CSName))
		row.Set("OS", models.String("windows"))
		row.Set("Platform", models.String(sys.Caption))
		row.Set("Version", models.String(sys.Version))
		row.Set("Kernel", models.String(sys.BuildNumber))
		row.Set("Architecture", models.String(sys.OSArchitecture))
		row.Set("BootTime", models.Time(boot))
		if boot.IsZero() {
			row.Set("Uptime", models.Null())
		} else {
			row.Set("Uptime", models.String(now().Sub(boot).Truncate(time.Second).String()))
		}
		table.Append(row)
	}
	return models.Single(table), nil
}
