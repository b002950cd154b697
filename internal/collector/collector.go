// Package collector defines the Collector interface, the registry that
// collectors add themselves to at startup, and the Group composite that
// runs a fixed list of registered collectors as one.
package collector

import (
	"context"
	"fmt"

	"github.com/vitalis-app/hostenum/internal/errs"
	"github.com/vitalis-app/hostenum/internal/models"
	"github.com/vitalis-app/hostenum/internal/session"
)

// Collector is the interface that every collector and every group
// implements. Execute only reads from the target; it never writes and
// never touches global state.
type Collector interface {
	// Execute runs the collector. Leaf collectors return a single
	// envelope; groups return a group envelope.
	Execute(ctx context.Context, sess *session.Session, args []string) (models.Result, error)

	// SupportsRemote reports whether the collector can run against a
	// remote target.
	SupportsRemote() bool
}

// Run executes c against sess. It refuses to run a local-only collector
// against a remote target.
func Run(ctx context.Context, sess *session.Session, c Collector, args []string) (models.Result, error) {
	if sess.IsRemote() && !c.SupportsRemote() {
		return models.Result{}, fmt.Errorf("%T on %s: remote execution: %w", c, sess.ComputerName(), errs.ErrUnsupported)
	}
	return c.Execute(ctx, sess, args)
}
