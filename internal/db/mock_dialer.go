package db

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ricirt/tier-probe/internal/domain"
)

// MockDialer is a hand-written, in-memory Dialer used in unit tests.
// It counts dials and closes so tests can assert every connection it
// hands out is released.
type MockDialer struct {
	// Set in tests to simulate the server or a failure path.
	ServerVersion string
	DialErr       error
	VersionErr    error
	PanicOnDial   bool

	dials  atomic.Int64
	closes atomic.Int64

	mu   sync.Mutex
	open map[*mockConn]struct{}
}

func NewMockDialer(version string) *MockDialer {
	return &MockDialer{ServerVersion: version, open: make(map[*mockConn]struct{})}
}

func (m *MockDialer) Dial(_ context.Context, cfg domain.ConnectionConfig) (Conn, error) {
	if m.PanicOnDial {
		panic("mock dialer: forced panic")
	}
	if m.DialErr != nil {
		return nil, &domain.ConnectionError{Addr: cfg.Addr(), Err: m.DialErr}
	}
	m.dials.Add(1)
	c := &mockConn{parent: m}
	m.mu.Lock()
	m.open[c] = struct{}{}
	m.mu.Unlock()
	return c, nil
}

// Dials returns the number of successful dials.
func (m *MockDialer) Dials() int { return int(m.dials.Load()) }

// Closes returns the total number of Close calls across all connections.
func (m *MockDialer) Closes() int { return int(m.closes.Load()) }

// OpenConns returns the number of connections not yet closed.
func (m *MockDialer) OpenConns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}

type mockConn struct {
	parent *MockDialer
}

func (c *mockConn) Version(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.QueryError{Err: err}
	}
	if c.parent.VersionErr != nil {
		return "", &domain.QueryError{Err: c.parent.VersionErr}
	}
	return c.parent.ServerVersion, nil
}

func (c *mockConn) Close() error {
	c.parent.closes.Add(1)
	c.parent.mu.Lock()
	delete(c.parent.open, c)
	c.parent.mu.Unlock()
	return nil
}
