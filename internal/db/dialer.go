package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ricirt/tier-probe/internal/domain"
)

// Conn is a single unpooled connection held for the duration of one probe.
type Conn interface {
	// Version runs the liveness query and returns the server version.
	// Failures are reported as *domain.QueryError.
	Version(ctx context.Context) (string, error)
	Close() error
}

// Dialer opens a Conn. Every failure is reported as *domain.ConnectionError
// and the attempt never outlives cfg.ConnectTimeout.
type Dialer interface {
	Dial(ctx context.Context, cfg domain.ConnectionConfig) (Conn, error)
}

// Drivers dispatches to the Dialer registered for cfg.Driver.
type Drivers map[domain.Driver]Dialer

// NewDrivers returns the production dialers for every supported engine.
func NewDrivers() Drivers {
	return Drivers{
		domain.DriverMySQL:    MySQLDialer{},
		domain.DriverPostgres: PostgresDialer{},
	}
}

func (d Drivers) Dial(ctx context.Context, cfg domain.ConnectionConfig) (Conn, error) {
	dialer, ok := d[cfg.Driver]
	if !ok {
		return nil, &domain.ConnectionError{
			Addr: cfg.Addr(),
			Err:  fmt.Errorf("%w: %q", domain.ErrUnknownDriver, cfg.Driver),
		}
	}
	return dialer.Dial(ctx, cfg)
}

func checkPort(cfg domain.ConnectionConfig) error {
	if cfg.ValidPort() {
		return nil
	}
	return &domain.ConnectionError{
		Addr: cfg.Addr(),
		Err:  fmt.Errorf("%w: %d", domain.ErrInvalidPort, cfg.Port),
	}
}

func connectTimeout(cfg domain.ConnectionConfig) time.Duration {
	if cfg.ConnectTimeout <= 0 {
		return domain.DefaultConnectTimeout
	}
	return cfg.ConnectTimeout
}
