package collector

import (
	"context"

	"github.com/vitalis-app/hostenum/internal/models"
	"github.com/vitalis-app/hostenum/internal/session"
)

// ExampleCollector is the smallest possible collector. Copy it to start a
// new one: pick a unique name, register it from init and return a single
// table from Execute.
type ExampleCollector struct{}

func init() {
	Register(Registration{
		Name:    "example",
		Factory: func() Collector { return &ExampleCollector{} },
		CLI:     Descriptor{Version: "1.0", About: "Example collector returning an empty table"},
	})
}

// SupportsRemote is false, so the example is refused for remote targets.
func (c *ExampleCollector) SupportsRemote() bool { return false }

func (c *ExampleCollector) Execute(context.Context, *session.Session, []string) (models.Result, error) {
	return models.Single(models.NewTable("Example")), nil
}
