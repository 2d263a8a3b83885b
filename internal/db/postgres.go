package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ricirt/tier-probe/internal/domain"
)

const postgresVersionQuery = "SHOW server_version"

// PostgresDialer connects with pgx when DB_DRIVER=postgres.
type PostgresDialer struct{}

func (PostgresDialer) Dial(ctx context.Context, cfg domain.ConnectionConfig) (Conn, error) {
	if err := checkPort(cfg); err != nil {
		return nil, err
	}

	// sslmode and friends still come from PG* env vars; default is prefer.
	pc, err := pgx.ParseConfig("")
	if err != nil {
		return nil, &domain.ConnectionError{Addr: cfg.Addr(), Err: fmt.Errorf("parse config: %w", err)}
	}
	applyConnection(pc, cfg)

	dialCtx, cancel := context.WithTimeout(ctx, pc.ConnectTimeout)
	defer cancel()

	conn, err := pgx.ConnectConfig(dialCtx, pc)
	if err != nil {
		return nil, &domain.ConnectionError{Addr: cfg.Addr(), Err: err}
	}
	return &pgConn{conn: conn}, nil
}

// applyConnection points pc at the configured server. The TLS settings
// pgx derived from sslmode are kept, re-aimed at cfg.Host; fallbacks are
// reduced to the plaintext retry against the same host, if sslmode allowed one.
func applyConnection(pc *pgx.ConnConfig, cfg domain.ConnectionConfig) {
	port := uint16(cfg.Port)

	pc.Host = cfg.Host
	pc.Port = port
	pc.Database = cfg.Database
	pc.User = cfg.User
	pc.Password = cfg.Password.Reveal()
	pc.ConnectTimeout = connectTimeout(cfg)

	if pc.TLSConfig != nil {
		tc := pc.TLSConfig.Clone()
		tc.ServerName = cfg.Host
		pc.TLSConfig = tc
	}

	var fallbacks []*pgconn.FallbackConfig
	if pc.TLSConfig != nil {
		for _, fb := range pc.Fallbacks {
			if fb.TLSConfig == nil {
				fallbacks = []*pgconn.FallbackConfig{{Host: cfg.Host, Port: port}}
				break
			}
		}
	}
	pc.Fallbacks = fallbacks
}

type pgConn struct {
	conn *pgx.Conn
}

func (c *pgConn) Version(ctx context.Context) (string, error) {
	var version string
	if err := c.conn.QueryRow(ctx, postgresVersionQuery).Scan(&version); err != nil {
		return "", &domain.QueryError{Err: err}
	}
	return version, nil
}

func (c *pgConn) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.conn.Close(ctx)
}
