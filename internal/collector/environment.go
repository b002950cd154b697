package collector

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/vitalis-app/hostenum/internal/cursor"
	"github.com/vitalis-app/hostenum/internal/models"
	"github.com/vitalis-app/hostenum/internal/session"
)

const environmentQuery = "SELECT UserName, Name, VariableValue FROM Win32_Environment"

// Overridden in tests.
var (
	environ     = defaultEnviron
	currentUser = defaultCurrentUser
)

func defaultEnviron() []string { return os.Environ() }

func defaultCurrentUser() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}

// EnvironmentCollector lists environment variables: the collector's own
// process environment locally, the stored system and user variables of a
// remote machine.
type EnvironmentCollector struct{}

func init() {
	Register(Registration{
		Name:    "environment",
		Factory: func() Collector { return &EnvironmentCollector{} },
		CLI:     Descriptor{Version: "1.0", About: "Environment variables"},
	})
}

func (c *EnvironmentCollector) SupportsRemote() bool { return true }

func (c *EnvironmentCollector) Execute(_ context.Context, sess *session.Session, _ []string) (models.Result, error) {
	if sess.IsRemote() {
		return c.remote(sess)
	}

	vars := environ()
	sort.Strings(vars)
	username := currentUser()

	table := models.NewTable("Environment Variables")
	for _, kv := range vars {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		row := models.NewRow()
		row.Set("UserName", models.String(username))
		row.Set("Name", models.String(name))
		row.Set("Value", models.String(value))
		table.Append(row)
	}
	return models.Single(table), nil
}

func (c *EnvironmentCollector) remote(sess *session.Session) (models.Result, error) {
	rows, err := sess.Rows(`root\cimv2`, environmentQuery, "UserName", "Name", "VariableValue")
	if err != nil {
		return models.Result{}, fmt.Errorf("environment: %w", err)
	}

	collected, failed := cursor.Collect(rows)
	for _, err := range failed {
		sess.Logger().Warn("Skipping environment variable", zap.Error(err))
	}
	return models.Single(models.NewTable("Environment Variables", collected...)), nil
}
