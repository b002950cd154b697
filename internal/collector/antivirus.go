package collector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vitalis-app/hostenum/internal/models"
	"github.com/vitalis-app/hostenum/internal/session"
)

const (
	securityCenterNamespace = `root\SecurityCenter2`
	antivirusQuery          = "SELECT * FROM AntiVirusProduct"
)

var antivirusFields = []string{"displayName", "pathToSignedProductExe", "pathToSignedReportingExe"}

// AntivirusCollector lists the antivirus products registered with the
// Windows Security Center.
type AntivirusCollector struct{}

func init() {
	Register(Registration{
		Name:    "antivirus",
		Factory: func() Collector { return &AntivirusCollector{} },
		CLI:     Descriptor{Version: "1.0", About: "Antivirus products registered with Security Center"},
	})
}

func (c *AntivirusCollector) SupportsRemote() bool { return true }

// Execute keeps every product that could be read. Products whose fields
// cannot be fetched are logged and skipped.
func (c *AntivirusCollector) Execute(ctx context.Context, sess *session.Session, _ []string) (models.Result, error) {
	rows, err := sess.Rows(securityCenterNamespace, antivirusQuery, antivirusFields...)
	if err != nil {
		return models.Result{}, fmt.Errorf("antivirus: %w", err)
	}
	defer rows.Close()

	table := models.NewTable("Antivirus")
	for row, err := range rows.All() {
		if ctx.Err() != nil {
			return models.Result{}, ctx.Err()
		}
		if err != nil {
			sess.Logger().Warn("Skipping antivirus product", zap.Error(err))
			continue
		}
		table.Append(row)
	}
	return models.Single(table), nil
}
