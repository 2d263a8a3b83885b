package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/ricirt/tier-probe/internal/api"
	"github.com/ricirt/tier-probe/internal/api/handler"
	"github.com/ricirt/tier-probe/internal/config"
	"github.com/ricirt/tier-probe/internal/db"
	"github.com/ricirt/tier-probe/internal/host"
	"github.com/ricirt/tier-probe/internal/metrics"
	"github.com/ricirt/tier-probe/internal/probe"
	"github.com/ricirt/tier-probe/internal/ratelimiter"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	// Port 5000: NGINX sits in front and forwards traffic here.
	cfg, err := config.Load("5000")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	conn := config.ConnectionFromEnv()
	if !conn.Driver.IsValid() {
		logger.Fatal("invalid DB_DRIVER", zap.String("driver", string(conn.Driver)))
	}
	if !conn.ValidPort() {
		logger.Warn("DB_PORT is not a valid port; every probe will report the database unreachable",
			zap.String("DB_PORT", os.Getenv("DB_PORT")),
		)
	}
	if conn.Host == "" {
		logger.Warn("DB_HOST is not set; every probe will report the database unreachable")
	}

	if err := db.RouteMySQLLogs(logger); err != nil {
		logger.Warn("failed to route mysql driver logs", zap.Error(err))
	}

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	hp := probe.New(
		db.NewDrivers(),
		ratelimiter.New(cfg.ProbeRateLimit),
		cfg.ProbeQueryTimeout,
		m.ProbeHooks(),
		logger,
	)
	check := handler.NewDatabaseCheck(hp, config.ConnectionFromEnv)

	// ---- HTTP server ----
	page := handler.Page{Title: "LAMP Stack Demo", Heading: "🖥️ LAMP Stack Demo App"}
	router := api.NewRouter(page, check, host.NewResolver(), reg, logger)

	logger.Info("probing database per request",
		zap.String("driver", string(conn.Driver)),
		zap.String("addr", conn.Addr()),
		zap.String("database", conn.Database),
	)
	if err := api.Serve(cfg, router, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
