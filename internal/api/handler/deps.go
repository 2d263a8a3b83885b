package handler

import (
	"context"

	"github.com/ricirt/tier-probe/internal/domain"
	"github.com/ricirt/tier-probe/internal/host"
)

// Prober is satisfied by *probe.HealthProbe; tests substitute a fake.
type Prober interface {
	Probe(ctx context.Context, cfg domain.ConnectionConfig) domain.ProbeResult
}

// HostInfo is satisfied by *host.Resolver.
type HostInfo interface {
	Hostname() string
	Identity(ctx context.Context) host.Identity
}

// DatabaseCheck pairs a Prober with the source of its configuration.
// A nil *DatabaseCheck means the binary has no database tier.
type DatabaseCheck struct {
	probe  Prober
	config func() domain.ConnectionConfig
}

// NewDatabaseCheck builds a check that asks config for a fresh
// ConnectionConfig on every call.
func NewDatabaseCheck(p Prober, config func() domain.ConnectionConfig) *DatabaseCheck {
	return &DatabaseCheck{probe: p, config: config}
}

// Status probes the database and returns the user-visible status line.
func (c *DatabaseCheck) Status(ctx context.Context) string {
	return c.probe.Probe(ctx, c.config()).Status()
}
