package main

import (
	"fmt"
	"net/http"
	"os"

	"cmdjob/internal/config"
	"cmdjob/internal/observability/logging"
	"cmdjob/internal/observability/metrics"
	"cmdjob/internal/storage"
	"cmdjob/internal/web"
)

func main() {
	cfg, err := config.Load()
	must(err)
	must(cfg.Require("RUN_DATA_ROOT", cfg.RunDataRoot))
	must(cfg.Require("TEMPLATES_MAP_PATH", cfg.TemplatesMapPath))

	logger := logging.NewJSONLogger("cmdjob-web", cfg.LogLevel)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	m := metrics.NewServerMetrics("cmdjob-web")
	server := web.NewServer(cfg, db, logger, m)

	logger.Info("web server listening", "addr", cfg.WebAddr, "buildSlots", cfg.WebBuildSlots)
	must(http.ListenAndServe(cfg.WebAddr, server.Router()))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
