package collector

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/vitalis-app/hostenum/internal/errs"
	"github.com/vitalis-app/hostenum/internal/models"
	"github.com/vitalis-app/hostenum/internal/session"
)

// Group runs a fixed, ordered list of registered collectors and flattens
// their tables into one group envelope.
type Group struct {
	registry *Registry
	members  []string
}

// NewGroup creates a group whose members are resolved through reg when the
// group executes.
func NewGroup(reg *Registry, members ...string) *Group {
	return &Group{registry: reg, members: append([]string(nil), members...)}
}

// Members returns the member names in execution order.
func (g *Group) Members() []string {
	return append([]string(nil), g.members...)
}

// SupportsRemote is true; each member is gated on its own.
func (g *Group) SupportsRemote() bool { return true }

// groupPathKey carries the names of the group members currently executing.
type groupPathKey struct{}

// Execute runs the members left to right. An unregistered member, or a
// member already executing further up the call chain, aborts the run with
// errs.ErrMisconfigured. The first member failure is returned as is.
// Nothing collected before a failure is returned.
func (g *Group) Execute(ctx context.Context, sess *session.Session, _ []string) (models.Result, error) {
	logger := sess.Logger()
	path, _ := ctx.Value(groupPathKey{}).([]string)
	var tables []models.Table

	for _, name := range g.members {
		if slices.Contains(path, name) {
			return models.Result{}, fmt.Errorf("group member %q includes itself: %w", name, errs.ErrMisconfigured)
		}
		c, ok := g.registry.Find(name)
		if !ok {
			return models.Result{}, fmt.Errorf("group member %q is not registered: %w", name, errs.ErrMisconfigured)
		}

		logger.Debug("Running group member", zap.String("member", name))
		memberCtx := context.WithValue(ctx, groupPathKey{}, append(slices.Clone(path), name))
		res, err := Run(memberCtx, sess, c, nil)
		if err != nil {
			return models.Result{}, err
		}
		tables = append(tables, res.Tables()...)
	}

	return models.Group(tables...), nil
}

// RegisterGroup adds a group named name with the given members to the
// default registry.
func RegisterGroup(name, about string, members ...string) {
	Register(Registration{
		Name:    name,
		Factory: func() Collector { return NewGroup(Default(), members...) },
		CLI:     Descriptor{Name: name, Version: "1.0", About: about},
	})
}
