package probe

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/tier-probe/internal/db"
	"github.com/ricirt/tier-probe/internal/domain"
	"github.com/ricirt/tier-probe/internal/ratelimiter"
)

// Outcome labels a probe for metrics. It is finer-grained than
// domain.ResultKind, which folds both failure modes into Unreachable.
type Outcome string

const (
	OutcomeConnected     Outcome = "connected"
	OutcomeConnectFailed Outcome = "connect_failed"
	OutcomeQueryFailed   Outcome = "query_failed"
)

// MetricHooks decouples the probe from Prometheus. Nil funcs are skipped.
type MetricHooks struct {
	OnProbe func(driver domain.Driver, outcome Outcome, took time.Duration)
}

// HealthProbe checks whether the configured database is reachable and
// reports its version. It holds no per-probe state and is safe for
// concurrent use.
type HealthProbe struct {
	dialer       db.Dialer
	limiter      *ratelimiter.ProbeLimiter
	queryTimeout time.Duration
	hooks        MetricHooks
	logger       *zap.Logger
}

const defaultQueryTimeout = 5 * time.Second

// New builds a HealthProbe. limiter may be nil.
func New(
	dialer db.Dialer,
	limiter *ratelimiter.ProbeLimiter,
	queryTimeout time.Duration,
	hooks MetricHooks,
	logger *zap.Logger,
) *HealthProbe {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &HealthProbe{
		dialer:       dialer,
		limiter:      limiter,
		queryTimeout: queryTimeout,
		hooks:        hooks,
		logger:       logger,
	}
}

// Probe makes one attempt to connect and run the liveness query. It always
// returns a result: connection failures become "Database unreachable" with
// the detail logged only, query failures carry the driver message.
//
// The probe is detached from ctx cancellation; a client that hangs up does
// not abort it mid-flight. The limiter wait and the connect attempt are each
// bounded by cfg.ConnectTimeout, the query by the probe's query timeout.
func (p *HealthProbe) Probe(ctx context.Context, cfg domain.ConnectionConfig) (result domain.ProbeResult) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	outcome := OutcomeConnectFailed

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("database probe panicked",
				zap.String("driver", string(cfg.Driver)),
				zap.String("addr", cfg.Addr()),
				zap.Any("panic", r),
			)
			result = domain.Unreachable(domain.ReasonUnreachable)
			outcome = OutcomeConnectFailed
		}
		if p.hooks.OnProbe != nil {
			p.hooks.OnProbe(cfg.Driver, outcome, time.Since(start))
		}
	}()

	result, outcome = p.run(ctx, cfg)
	return result
}

func (p *HealthProbe) run(ctx context.Context, cfg domain.ConnectionConfig) (domain.ProbeResult, Outcome) {
	p.throttle(ctx, cfg)

	conn, err := p.acquire(ctx, cfg)
	if err != nil {
		p.logger.Warn("database connection failed",
			zap.String("driver", string(cfg.Driver)),
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
			zap.String("database", cfg.Database),
			zap.String("user", cfg.User),
			zap.Error(err),
		)
		return domain.Unreachable(domain.ReasonUnreachable), OutcomeConnectFailed
	}
	defer func() {
		if err := conn.Close(); err != nil {
			p.logger.Warn("close database connection", zap.String("addr", cfg.Addr()), zap.Error(err))
		}
	}()

	qctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	version, err := conn.Version(qctx)
	if err == nil && version == "" {
		err = &domain.QueryError{Err: domain.ErrEmptyVersion}
	}
	if err != nil {
		p.logger.Warn("database liveness query failed",
			zap.String("driver", string(cfg.Driver)),
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return domain.QueryFailed(err), OutcomeQueryFailed
	}

	return domain.Connected(cfg.Driver.Product(), version), OutcomeConnected
}

// throttle waits for the limiter at most one connect timeout. A probe that
// cannot get a token in time proceeds anyway, so queued probes never pile
// up past the bound a single connect attempt already has.
func (p *HealthProbe) throttle(ctx context.Context, cfg domain.ConnectionConfig) {
	if p.limiter == nil {
		return
	}
	budget := cfg.ConnectTimeout
	if budget <= 0 {
		budget = domain.DefaultConnectTimeout
	}
	wctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	if err := p.limiter.Wait(wctx); err != nil {
		p.logger.Warn("probe limiter wait failed, probing anyway",
			zap.Duration("budget", budget),
			zap.Error(err),
		)
	}
}

// acquire dials and normalises every failure into *domain.ConnectionError,
// whatever the dialer returned.
func (p *HealthProbe) acquire(ctx context.Context, cfg domain.ConnectionConfig) (db.Conn, error) {
	conn, err := p.dialer.Dial(ctx, cfg)
	if err != nil {
		var connErr *domain.ConnectionError
		if errors.As(err, &connErr) {
			return nil, err
		}
		return nil, &domain.ConnectionError{Addr: cfg.Addr(), Err: err}
	}
	if conn == nil {
		return nil, &domain.ConnectionError{Addr: cfg.Addr(), Err: errors.New("dialer returned no connection")}
	}
	return conn, nil
}
