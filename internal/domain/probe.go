package domain

import (
	"net"
	"strconv"
	"time"
)

// Driver names the database engine a probe talks to.
type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
)

func (d Driver) IsValid() bool {
	switch d {
	case DriverMySQL, DriverPostgres:
		return true
	}
	return false
}

// Product is the human-readable engine name shown next to the version.
func (d Driver) Product() string {
	if d == DriverPostgres {
		return "PostgreSQL"
	}
	return "MySQL"
}

const (
	// InvalidPort marks a DB_PORT that did not parse; dialing it fails.
	InvalidPort           = -1
	DefaultPort           = 3306
	DefaultConnectTimeout = 5 * time.Second
)

// Secret holds a credential that must never be printed or serialised.
type Secret string

const redacted = "******"

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

func (s Secret) GoString() string { return s.String() }

func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}

// Reveal returns the raw value for handing to a driver.
func (s Secret) Reveal() string { return string(s) }

// ConnectionConfig describes where and how a probe connects.
// It is rebuilt for every probe and never cached.
type ConnectionConfig struct {
	Driver         Driver        `json:"driver"`
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	Database       string        `json:"database"`
	User           string        `json:"user"`
	Password       Secret        `json:"password"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
}

// Addr is the host:port pair the driver dials.
func (c ConnectionConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ValidPort reports whether Port is a usable TCP port.
func (c ConnectionConfig) ValidPort() bool {
	return c.Port > 0 && c.Port <= 65535
}

// ResultKind discriminates the two ProbeResult variants.
type ResultKind string

const (
	KindConnected   ResultKind = "connected"
	KindUnreachable ResultKind = "unreachable"
)

const (
	ReasonUnreachable = "Database unreachable"
	queryFailedPrefix = "Query failed: "
)

// ProbeResult is the outcome of a single probe. Exactly one of
// Version (Connected) or Reason (Unreachable) is meaningful.
type ProbeResult struct {
	Kind    ResultKind `json:"kind"`
	Product string     `json:"product,omitempty"`
	Version string     `json:"version,omitempty"`
	Reason  string     `json:"reason,omitempty"`
}

func Connected(product, version string) ProbeResult {
	return ProbeResult{Kind: KindConnected, Product: product, Version: version}
}

func Unreachable(reason string) ProbeResult {
	return ProbeResult{Kind: KindUnreachable, Reason: reason}
}

// QueryFailed builds the Unreachable variant for a failed liveness query.
// The driver message is included as-is.
func QueryFailed(err error) ProbeResult {
	return Unreachable(queryFailedPrefix + err.Error())
}

func (r ProbeResult) IsConnected() bool { return r.Kind == KindConnected }

// Status renders the result the way both the HTML page and /health show it.
func (r ProbeResult) Status() string {
	if r.IsConnected() {
		return "✅ Connected — " + r.Product + " " + r.Version
	}
	return "❌ " + r.Reason
}
