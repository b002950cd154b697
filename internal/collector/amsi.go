package collector

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vitalis-app/hostenum/internal/errs"
	"github.com/vitalis-app/hostenum/internal/models"
	"github.com/vitalis-app/hostenum/internal/platform"
	"github.com/vitalis-app/hostenum/internal/session"
)

const amsiProvidersKey = `SOFTWARE\Microsoft\AMSI\Providers`

// AmsiProvidersCollector resolves each registered AMSI provider CLSID to
// the DLL that implements it.
type AmsiProvidersCollector struct{}

func init() {
	Register(Registration{
		Name:    "amsiproviders",
		Factory: func() Collector { return &AmsiProvidersCollector{} },
		CLI:     Descriptor{Version: "1.0", About: "Registered AMSI providers"},
	})
}

func (c *AmsiProvidersCollector) SupportsRemote() bool { return true }

func (c *AmsiProvidersCollector) Execute(ctx context.Context, sess *session.Session, _ []string) (models.Result, error) {
	table := models.NewTable("Amsi Providers")

	ids, err := sess.SubKeyNames(platform.LocalMachine, amsiProvidersKey)
	if errors.Is(err, errs.ErrNotFound) {
		return models.Single(table), nil
	}
	if err != nil {
		return models.Result{}, fmt.Errorf("amsi providers: %w", err)
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return models.Result{}, ctx.Err()
		}
		path := `SOFTWARE\Classes\CLSID\` + id + `\InprocServer32`
		dll, err := sess.StringValue(platform.LocalMachine, path, "")
		if err != nil {
			sess.Logger().Debug("Skipping AMSI provider", zap.String("clsid", id), zap.Error(err))
			continue
		}
		row := models.NewRow()
		row.Set("AMSI Provider", models.String(dll))
		table.Append(row)
	}
	return models.Single(table), nil
}
