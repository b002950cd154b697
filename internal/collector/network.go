// Network interface collector. Uses gopsutil for the interface list.
package collector

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/vitalis-app/hostenum/internal/models"
	"github.com/vitalis-app/hostenum/internal/session"
)

// Overridden in tests.
var netInterfaces = net.InterfacesWithContext

// NetworkCollector lists network interfaces with their addresses.
type NetworkCollector struct{}

func init() {
	Register(Registration{
		Name:    "netinterfaces",
		Factory: func() Collector { return &NetworkCollector{} },
		CLI:     Descriptor{Version: "1.0", About: "Network interfaces and addresses"},
	})
}

func (c *NetworkCollector) SupportsRemote() bool { return false }

func (c *NetworkCollector) Execute(ctx context.Context, _ *session.Session, _ []string) (models.Result, error) {
	ifaces, err := netInterfaces(ctx)
	if err != nil {
		return models.Result{}, fmt.Errorf("network interfaces: %w", err)
	}

	table := models.NewTable("Network Interfaces")
	for _, iface := range ifaces {
		addrs := make([]string, 0, len(iface.Addrs))
		for _, a := range iface.Addrs {
			addrs = append(addrs, a.Addr)
		}

		row := models.NewRow()
		row.Set("Index", models.Int(int64(iface.Index)))
		row.Set("Name", models.String(iface.Name))
		row.Set("MAC", optionalString(iface.HardwareAddr))
		row.Set("MTU", models.Int(int64(iface.MTU)))
		row.Set("Flags", models.Strings(iface.Flags))
		row.Set("Addresses", models.Strings(addrs))
		table.Append(row)
	}
	return models.Single(table), nil
}
