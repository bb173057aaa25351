package main

import (
	"context"
	"flag"
	"net"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/2beens/gymsessions/internal/config"
	"github.com/2beens/gymsessions/internal/db"
	"github.com/2beens/gymsessions/internal/logging"
	"github.com/2beens/gymsessions/internal/telemetry/metrics"
	"github.com/2beens/gymsessions/internal/telemetry/tracing"
	"github.com/2beens/gymsessions/internal/workout/sessions"
)

// one-off sweep of stale sessions, meant to be run from cron when the
// service's own sweeper loop is not enough (or the service is down)
func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	olderThan := flag.Duration("older-than", 0, "abandon open sessions created before now minus this (default from config)")
	timeout := flag.Duration("timeout", 5*time.Minute, "max duration of the sweep")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout:      true,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "gymsessions-sweeper",
	})

	if cfg.InMemory {
		log.Fatalln("in memory sessions cannot be swept from outside the service")
	}
	if *olderThan <= 0 {
		*olderThan = cfg.AbandonAfter.Duration
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: os.Getenv("GYMSESSIONS_REDIS_PASS"),
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Errorf("close redis client: %s", err)
		}
	}()

	otelShutdown, err := tracing.HoneycombSetup(os.Getenv("HONEYCOMB_ENABLED") == "true", "gymsessions-sweeper", rdb)
	if err != nil {
		log.Fatalf("tracing setup: %s", err)
	}
	defer otelShutdown()

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:   cfg.PostgresHost,
		DBPort:   cfg.PostgresPort,
		DBName:   cfg.DBName,
		MaxConns: 2,
	})
	if err != nil {
		log.Fatalf("new db pool: %s", err)
	}
	defer dbPool.Close()

	locker := sessions.NewRedisLocker(rdb, *timeout)
	release, err := locker.TryLock(ctx)
	if err != nil {
		log.Fatalf("take sweeper lock: %s", err)
	}
	if release == nil {
		log.Infoln("another sweeper is running, nothing to do")
		return
	}
	defer release()

	metricsManager := metrics.NewManager("gymsessions", "sweeper", prometheus.NewRegistry())
	sweeper := sessions.NewSweeper(sessions.NewPsqlStore(dbPool), nil, metricsManager)

	log.Infof("sweeping sessions older than %s ...", *olderThan)
	swept, err := sweeper.Cleanup(ctx, *olderThan)
	for _, e := range multierr.Errors(err) {
		log.Errorf("sweep: %s", e)
	}
	log.Infof("swept %d sessions", swept)
}
