package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ricirt/tier-probe/internal/domain"
)

func TestDrivers_UnknownDriver(t *testing.T) {
	d := NewDrivers()
	_, err := d.Dial(context.Background(), domain.ConnectionConfig{Driver: "oracle", Host: "db", Port: 1521})

	var connErr *domain.ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *domain.ConnectionError, got %T (%v)", err, err)
	}
	if !errors.Is(err, domain.ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver in chain, got %v", err)
	}
}

func TestDrivers_DispatchesByDriver(t *testing.T) {
	mock := NewMockDialer("8.0.35")
	d := Drivers{domain.DriverMySQL: mock}

	conn, err := d.Dial(context.Background(), domain.ConnectionConfig{Driver: domain.DriverMySQL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close()

	if mock.Dials() != 1 {
		t.Fatalf("expected 1 dial, got %d", mock.Dials())
	}
}

func TestDialers_InvalidPort(t *testing.T) {
	for _, port := range []int{domain.InvalidPort, 0, 70000} {
		for name, dialer := range NewDrivers() {
			t.Run(fmt.Sprintf("%s/%d", name, port), func(t *testing.T) {
				_, err := dialer.Dial(context.Background(), domain.ConnectionConfig{
					Driver: name, Host: "127.0.0.1", Port: port,
				})
				var connErr *domain.ConnectionError
				if !errors.As(err, &connErr) {
					t.Fatalf("expected *domain.ConnectionError, got %T (%v)", err, err)
				}
				if !errors.Is(err, domain.ErrInvalidPort) {
					t.Fatalf("expected ErrInvalidPort in chain, got %v", err)
				}
			})
		}
	}
}

// Port 1 on loopback is closed on any sane host, so the driver fails fast
// with a refused connection.
func TestDialers_RefusedConnection(t *testing.T) {
	for name, dialer := range NewDrivers() {
		t.Run(string(name), func(t *testing.T) {
			start := time.Now()
			_, err := dialer.Dial(context.Background(), domain.ConnectionConfig{
				Driver:         name,
				Host:           "127.0.0.1",
				Port:           1,
				Database:       "lampdb",
				User:           "lampuser",
				Password:       "pw",
				ConnectTimeout: 2 * time.Second,
			})
			var connErr *domain.ConnectionError
			if !errors.As(err, &connErr) {
				t.Fatalf("expected *domain.ConnectionError, got %T (%v)", err, err)
			}
			if elapsed := time.Since(start); elapsed > 3*time.Second {
				t.Fatalf("dial took %s, exceeds connect timeout", elapsed)
			}
		})
	}
}
