package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"

	"github.com/2beens/gymsessions/internal/config"
	"github.com/2beens/gymsessions/internal/db"
	"github.com/2beens/gymsessions/internal/middleware"
	"github.com/2beens/gymsessions/internal/telemetry/metrics"
	"github.com/2beens/gymsessions/internal/telemetry/tracing"
	"github.com/2beens/gymsessions/internal/workout/catalog"
	"github.com/2beens/gymsessions/internal/workout/results"
	"github.com/2beens/gymsessions/internal/workout/sessions"
	"github.com/2beens/gymsessions/pkg"
)

const dbName = "gymsessions_db"

type resultReader interface {
	Get(ctx context.Context, id int) (*results.Result, error)
	ListForMember(ctx context.Context, memberID, page, size int) ([]*results.Result, error)
}

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	appSecret         string
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	sessionsService *sessions.Service
	progress        *sessions.ProgressTracker
	sweeper         *sessions.Sweeper
	resultsRepo     resultReader

	sweeperCancel context.CancelFunc
	sweeperDone   sync.WaitGroup

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	AppSecret               string
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (_ *Server, err error) {
	cfg := params.Config
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("gymsessions", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	defer func() {
		if err != nil {
			_ = rdb.Close()
		}
	}()

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gymsessions", rdb)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:         cfg,
		appSecret:      params.AppSecret,
		versionInfo:    params.VersionInfo,
		redisClient:    rdb,
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	var (
		store         sessions.Store
		workoutSource catalog.Catalog
	)
	if cfg.InMemory {
		log.Warnln("sessions are kept in memory, nothing survives a restart")
		memStore := sessions.NewMemoryStore()
		var staticCatalog *catalog.StaticCatalog
		staticCatalog, err = catalog.LoadStaticCatalog(cfg.WorkoutsFile)
		if err != nil {
			return nil, fmt.Errorf("load workouts: %w", err)
		}
		store = memStore
		workoutSource = staticCatalog
		s.resultsRepo = memStore.Results()
	} else {
		var dbPool *pgxpool.Pool
		dbPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.DBName,
			TracingEnabled: params.HoneycombTracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		s.dbPool = dbPool

		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}
		if err = db.Migrate(ctx, dbPool); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		if err := metrics.RegisterDBPool(promRegistry, dbPool, dbName); err != nil {
			log.Errorf("register db pool metrics: %s", err)
		}

		store = sessions.NewPsqlStore(dbPool)
		workoutSource = catalog.NewCachedCatalog(
			catalog.NewPsqlCatalog(dbPool),
			cfg.CatalogCacheSizeMB,
			cfg.CatalogCacheTTLSeconds,
			metricsManager,
		)
		s.resultsRepo = results.NewRepo(dbPool)
	}

	s.sessionsService = sessions.NewService(store, workoutSource, results.NewSynthesizer(), metricsManager)
	s.progress = sessions.NewProgressTracker(store)
	s.sweeper = sessions.NewSweeper(
		store,
		sessions.NewRedisLocker(rdb, cfg.SweeperInterval.Duration),
		metricsManager,
	)

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("gymsessions-router"))

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, "gym sessions")
	}).Methods("GET").Name("root")
	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")
	r.HandleFunc("/health", s.handleHealth).Methods("GET").Name("health")

	rateLimit := middleware.RateLimit(
		redis_rate.NewLimiter(s.redisClient),
		s.metricsManager,
		"sessions",
		s.config.RateLimitPerMin,
	)
	sessions.NewHandler(s.sessionsService, s.progress).RegisterRoutes(r, rateLimit)
	results.NewHandler(s.resultsRepo).RegisterRoutes(r)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.appSecret)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var err error
	if s.dbPool != nil {
		err = multierr.Append(err, s.dbPool.Ping(ctx))
	}
	err = multierr.Append(err, s.redisClient.Ping(ctx).Err())
	if err != nil {
		log.Warnf("health check: %s", err)
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	pkg.WriteTextResponseOK(w, "ok")
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{Registry: s.promRegistry},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	sweeperCtx, cancel := context.WithCancel(ctx)
	s.sweeperCancel = cancel
	s.sweeperDone.Add(1)
	go func() {
		defer s.sweeperDone.Done()
		s.sweeper.Run(sweeperCtx, s.config.SweeperInterval.Duration, s.config.AbandonAfter.Duration)
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	if s.sweeperCancel != nil {
		s.sweeperCancel()
		s.sweeperDone.Wait()
		log.Debugln("sweeper stopped")
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown http server: %w", shutdownErr))
		}
		log.Warnln("server shut down")
	}
	if s.metricsHttpServer != nil {
		if shutdownErr := s.metricsHttpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown metrics http server: %w", shutdownErr))
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if closeErr := s.redisClient.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close redis client: %w", closeErr))
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	for _, e := range multierr.Errors(err) {
		log.Errorf(" >>> %s", e)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
