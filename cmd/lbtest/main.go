// Command lbtest serves the instance identity page with no database tier,
// for checking that a load balancer spreads traffic across instances.
package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/ricirt/tier-probe/internal/api"
	"github.com/ricirt/tier-probe/internal/api/handler"
	"github.com/ricirt/tier-probe/internal/config"
	"github.com/ricirt/tier-probe/internal/host"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	cfg, err := config.Load("80")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	page := handler.Page{Title: "Load Balancer Test", Heading: "Load Balancer Test Server"}
	router := api.NewRouter(page, nil, host.NewResolver(), reg, logger)

	if err := api.Serve(cfg, router, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
