package collector

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/vitalis-app/hostenum/internal/errs"
	"github.com/vitalis-app/hostenum/internal/models"
	"github.com/vitalis-app/hostenum/internal/platform"
	"github.com/vitalis-app/hostenum/internal/session"
)

const (
	shutdownKey   = `SYSTEM\CurrentControlSet\Control\Windows`
	shutdownValue = "ShutdownTime"

	// 100ns intervals between 1601-01-01 and 1970-01-01.
	fileTimeEpochDelta = 116444736000000000
)

// LastShutdownCollector reports when the machine was last shut down
// cleanly, as recorded by the kernel in the registry.
type LastShutdownCollector struct{}

func init() {
	Register(Registration{
		Name:    "lastshutdown",
		Factory: func() Collector { return &LastShutdownCollector{} },
		CLI:     Descriptor{Version: "1.0", About: "Time of the last clean shutdown"},
	})
}

func (c *LastShutdownCollector) SupportsRemote() bool { return true }

func (c *LastShutdownCollector) Execute(_ context.Context, sess *session.Session, _ []string) (models.Result, error) {
	raw, err := sess.BinaryValue(platform.LocalMachine, shutdownKey, shutdownValue)
	if err != nil {
		return models.Result{}, fmt.Errorf("last shutdown: %w", err)
	}

	v, err := decodeFileTime(raw)
	if err != nil {
		return models.Result{}, fmt.Errorf("last shutdown: %w", err)
	}

	row := models.NewRow()
	row.Set("LastShutdown", v)
	return models.Single(models.NewTable("Last Shutdown", row)), nil
}

// decodeFileTime converts a little-endian FILETIME into a UTC time cell.
// A zero FILETIME means the value was never written and decodes to null.
func decodeFileTime(raw []byte) (models.Value, error) {
	if len(raw) != 8 {
		return models.Value{}, errs.Decode(shutdownValue, fmt.Errorf("want 8 bytes, got %d", len(raw)))
	}
	ft := binary.LittleEndian.Uint64(raw)
	if ft == 0 {
		return models.Null(), nil
	}
	if ft < fileTimeEpochDelta {
		return models.Value{}, errs.Decode(shutdownValue, fmt.Errorf("filetime %d precedes the unix epoch", ft))
	}
	ticks := ft - fileTimeEpochDelta
	if ticks > math.MaxInt64/100 {
		return models.Value{}, errs.Decode(shutdownValue, fmt.Errorf("filetime %d out of range", ft))
	}
	return models.Time(time.Unix(0, int64(ticks)*100).UTC()), nil
}
