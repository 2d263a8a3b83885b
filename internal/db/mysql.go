package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/ricirt/tier-probe/internal/domain"
)

const mysqlVersionQuery = "SELECT VERSION()"

// MySQLDialer connects with go-sql-driver/mysql.
type MySQLDialer struct{}

// Dial opens exactly one connection. The *sql.DB wrapper is capped at a
// single connection and closed together with it, so nothing is pooled
// across probes.
func (MySQLDialer) Dial(ctx context.Context, cfg domain.ConnectionConfig) (Conn, error) {
	if err := checkPort(cfg); err != nil {
		return nil, err
	}
	timeout := connectTimeout(cfg)

	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = cfg.Addr()
	mc.DBName = cfg.Database
	mc.User = cfg.User
	mc.Passwd = cfg.Password.Reveal()
	mc.Timeout = timeout

	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, &domain.ConnectionError{Addr: cfg.Addr(), Err: err}
	}

	handle := sql.OpenDB(connector)
	handle.SetMaxOpenConns(1)
	handle.SetMaxIdleConns(1)

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := handle.Conn(dialCtx)
	if err != nil {
		_ = handle.Close()
		return nil, &domain.ConnectionError{Addr: cfg.Addr(), Err: err}
	}

	return &mysqlConn{handle: handle, conn: conn}, nil
}

type mysqlConn struct {
	handle *sql.DB
	conn   *sql.Conn
}

func (c *mysqlConn) Version(ctx context.Context) (string, error) {
	var version string
	if err := c.conn.QueryRowContext(ctx, mysqlVersionQuery).Scan(&version); err != nil {
		return "", &domain.QueryError{Err: err}
	}
	return version, nil
}

func (c *mysqlConn) Close() error {
	return errors.Join(c.conn.Close(), c.handle.Close())
}

// RouteMySQLLogs sends the driver's internal diagnostics (packet errors,
// aborted connections) through zap instead of the default stderr logger.
func RouteMySQLLogs(logger *zap.Logger) error {
	return mysql.SetLogger(zap.NewStdLog(logger.Named("mysql")))
}
