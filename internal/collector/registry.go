package collector

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vitalis-app/hostenum/internal/errs"
)

// Descriptor is the CLI metadata of a registration. The registry stores
// and returns it without interpreting it.
type Descriptor struct {
	Name    string
	Version string
	About   string
}

// Registration advertises one collector: its unique name, a factory
// building a fresh instance per invocation, and its CLI metadata.
type Registration struct {
	Name    string
	Factory func() Collector
	CLI     Descriptor
}

// Registry is a catalog of registrations. It is filled during package
// initialisation and read-only afterwards, so it needs no locking.
//
// Names must be unique. Register does not check this: Find returns the
// first match, and Validate reports collisions.
type Registry struct {
	registrations []Registration
	logger        *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		registrations: make([]Registration, 0),
		logger:        logger,
	}
}

// SetLogger replaces the registry's logger. The default registry is filled
// before any logger exists, so the CLI attaches one once it has been built.
func (r *Registry) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r.logger = logger
}

// Register adds a registration.
func (r *Registry) Register(reg Registration) {
	if reg.CLI.Name == "" {
		reg.CLI.Name = reg.Name
	}
	r.registrations = append(r.registrations, reg)
	r.logger.Debug("Registered collector", zap.String("name", reg.Name))
}

// Find returns a fresh instance of the collector registered under name.
// Matching is exact and case-sensitive.
func (r *Registry) Find(name string) (Collector, bool) {
	for _, reg := range r.registrations {
		if reg.Name == name {
			return reg.Factory(), true
		}
	}
	return nil, false
}

// All returns a copy of every registration in registration order.
func (r *Registry) All() []Registration {
	result := make([]Registration, len(r.registrations))
	copy(result, r.registrations)
	return result
}

// Validate reports duplicate names, group members that do not resolve and
// groups that reach themselves through their members.
// It is meant for tests and strict startup checks; lookups never call it.
func (r *Registry) Validate() error {
	var problems []error

	seen := make(map[string]int)
	for _, reg := range r.registrations {
		seen[reg.Name]++
	}
	for _, reg := range r.registrations {
		if n := seen[reg.Name]; n > 1 {
			problems = append(problems, fmt.Errorf("name %q registered %d times", reg.Name, n))
			seen[reg.Name] = 0
		}
	}

	for _, reg := range r.registrations {
		g, ok := reg.Factory().(*Group)
		if !ok {
			continue
		}
		for _, member := range g.Members() {
			if _, ok := r.Find(member); !ok {
				problems = append(problems, fmt.Errorf("group %q: member %q is not registered", reg.Name, member))
			}
		}
		if via, ok := r.cycleVia(reg.Name, g, map[string]bool{}); ok {
			problems = append(problems, fmt.Errorf("group %q: cycle via %q", reg.Name, via))
		}
	}

	r.logger.Debug("Validated collector registry",
		zap.Int("registrations", len(r.registrations)),
		zap.Int("problems", len(problems)))

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("registry: %w: %w", errs.ErrMisconfigured, errors.Join(problems...))
}

// cycleVia walks g's members depth-first and returns the first member that
// is already on the current path.
func (r *Registry) cycleVia(name string, g *Group, visiting map[string]bool) (string, bool) {
	visiting[name] = true
	defer delete(visiting, name)

	for _, member := range g.Members() {
		if visiting[member] {
			return member, true
		}
		c, ok := r.Find(member)
		if !ok {
			continue
		}
		sub, ok := c.(*Group)
		if !ok {
			continue
		}
		if via, ok := r.cycleVia(member, sub, visiting); ok {
			return via, true
		}
	}
	return "", false
}

// Names returns every registered name, sorted by registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.registrations))
	for _, reg := range r.registrations {
		names = append(names, reg.Name)
	}
	return names
}

func (r *Registry) String() string {
	return "registry[" + strings.Join(r.Names(), ",") + "]"
}

var defaultRegistry = NewRegistry(nil)

// Default returns the process-wide registry that built-in collectors
// register with from their init functions.
func Default() *Registry { return defaultRegistry }

// Register adds reg to the default registry.
func Register(reg Registration) { defaultRegistry.Register(reg) }

// Find looks name up in the default registry.
func Find(name string) (Collector, bool) { return defaultRegistry.Find(name) }

// All returns the default registry's registrations.
func All() []Registration { return defaultRegistry.All() }
