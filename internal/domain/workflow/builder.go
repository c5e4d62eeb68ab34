package workflow

import (
	"context"
	"fmt"
)

// GuardFunc evaluates a transition precondition. A nil return allows the
// transition; returning an error blocks it. Guards surface typed errors
// (e.g. *RequirementsError) so callers can report exactly what is missing.
type GuardFunc func(ctx context.Context) error

// Builder assembles the transition table for a dossier state machine
type Builder interface {
	// Configure returns the edge configuration for the given source status
	Configure(status Status) StatusConfiguration

	// Build creates a machine instance positioned at the initial status
	Build(initial Status) Machine
}

// StatusConfiguration declares outgoing edges for one source status
type StatusConfiguration interface {
	// Permit allows the role to transition to the target status
	Permit(role Role, target Status) StatusConfiguration

	// PermitIf allows the transition only when the guard passes
	PermitIf(role Role, target Status, guard GuardFunc) StatusConfiguration
}

// edge is one row of the transition table
type edge struct {
	role   Role
	target Status
	guard  GuardFunc
}

type statusConfig struct {
	from  Status
	edges []edge
}

type builder struct {
	configs map[Status]*statusConfig
}

type machine struct {
	current Status
	configs map[Status]*statusConfig
}

// NewBuilder creates an empty transition table builder
func NewBuilder() Builder {
	return &builder{configs: make(map[Status]*statusConfig)}
}

func (b *builder) Configure(status Status) StatusConfiguration {
	if !status.IsValid() {
		panic(fmt.Sprintf("configure: unknown status %s", status))
	}
	cfg, ok := b.configs[status]
	if !ok {
		cfg = &statusConfig{from: status}
		b.configs[status] = cfg
	}
	return cfg
}

func (b *builder) Build(initial Status) Machine {
	if !initial.IsValid() {
		panic(fmt.Sprintf("build: unknown initial status %s", initial))
	}

	// Copy the table so machines built later are unaffected by further Configure calls
	configs := make(map[Status]*statusConfig, len(b.configs))
	for status, cfg := range b.configs {
		configs[status] = &statusConfig{
			from:  status,
			edges: append([]edge(nil), cfg.edges...),
		}
	}

	return &machine{current: initial, configs: configs}
}

func (c *statusConfig) Permit(role Role, target Status) StatusConfiguration {
	return c.PermitIf(role, target, nil)
}

func (c *statusConfig) PermitIf(role Role, target Status, guard GuardFunc) StatusConfiguration {
	if !target.IsValid() {
		panic(fmt.Sprintf("permit: unknown target status %s", target))
	}
	if !role.IsValid() {
		panic(fmt.Sprintf("permit: unknown role %s", role))
	}
	if c.from.IsTerminal() {
		panic(fmt.Sprintf("permit: %s is terminal", c.from))
	}
	c.edges = append(c.edges, edge{role: role, target: target, guard: guard})
	return c
}

func (m *machine) Status() Status {
	return m.current
}

func (m *machine) CanFire(role Role, target Status) bool {
	return m.findEdge(role, target) != nil
}

func (m *machine) Fire(ctx context.Context, role Role, target Status) error {
	e := m.findEdge(role, target)
	if e == nil {
		return fmt.Errorf("%w: %s -> %s by %s", ErrInvalidTransition, m.current, target, role)
	}
	if e.guard != nil {
		if err := e.guard(ctx); err != nil {
			return err
		}
	}
	m.current = target
	return nil
}

func (m *machine) PermittedTargets(role Role) []Status {
	cfg, ok := m.configs[m.current]
	if !ok {
		return nil
	}
	var targets []Status
	for _, e := range cfg.edges {
		if e.role == role {
			targets = append(targets, e.target)
		}
	}
	return targets
}

func (m *machine) findEdge(role Role, target Status) *edge {
	cfg, ok := m.configs[m.current]
	if !ok {
		return nil
	}
	for i := range cfg.edges {
		if cfg.edges[i].role == role && cfg.edges[i].target == target {
			return &cfg.edges[i]
		}
	}
	return nil
}
