// Package host resolves the identity of the machine serving the request,
// which is what tells load-balanced instances apart.
package host

import (
	"context"
	"net"
	"os"
	"time"
)

const unknown = "unknown"

// Identity is the serving host as shown on the home page.
type Identity struct {
	Hostname string
	IP       string
}

// Resolver looks up the local hostname and its address.
type Resolver struct {
	hostname   func() (string, error)
	lookupHost func(ctx context.Context, host string) ([]string, error)
	timeout    time.Duration
}

func NewResolver() *Resolver {
	return &Resolver{
		hostname:   os.Hostname,
		lookupHost: net.DefaultResolver.LookupHost,
		timeout:    2 * time.Second,
	}
}

// Hostname returns the OS hostname, or "unknown" if it cannot be read.
func (r *Resolver) Hostname() string {
	name, err := r.hostname()
	if err != nil || name == "" {
		return unknown
	}
	return name
}

// Identity returns the hostname and the first IPv4 address it resolves to,
// preferring IPv4 the way the instance is addressed behind the balancer.
func (r *Resolver) Identity(ctx context.Context) Identity {
	id := Identity{Hostname: r.Hostname(), IP: unknown}
	if id.Hostname == unknown {
		return id
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	addrs, err := r.lookupHost(ctx, id.Hostname)
	if err != nil || len(addrs) == 0 {
		return id
	}
	id.IP = addrs[0]
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			id.IP = a
			break
		}
	}
	return id
}
