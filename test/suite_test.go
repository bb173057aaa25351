//go:build integration_test || all_tests

package test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"testing"
	"time"

	"github.com/2beens/gymsessions/internal"
	"github.com/2beens/gymsessions/internal/config"
	"github.com/2beens/gymsessions/internal/db"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/suite"
)

const (
	serverPort = 9000
	serverHost = "127.0.0.1"

	testAppSecret = "app-secret"
	testDBName    = "gymsessions_db"
)

var serverEndpoint = fmt.Sprintf("http://%s:%d", serverHost, serverPort)

// IntegrationTestSuite runs the whole service against postgres and redis
// containers.
type IntegrationTestSuite struct {
	suite.Suite

	DB         *sql.DB
	dockerPool *dockertest.Pool
	server     *internal.Server
	httpClient *http.Client
	teardown   []func()
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	fmt.Println("setting up test suite...")

	s.teardown = make([]func(), 0)
	s.httpClient = &http.Client{Timeout: 10 * time.Second}

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	var err error
	s.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not create new dockertest pool: %s", err)
	}
	if err = s.dockerPool.Client.Ping(); err != nil {
		log.Fatalf("could not ping dockertest pool: %s", err)
	}
	fmt.Println("dockertest pool ping successful")

	redisPort, err := s.redisSetup()
	if err != nil {
		s.cleanup()
		log.Fatalf("failed to setup redis: %s", err.Error())
	}
	fmt.Println("redis setup successful")

	pgPort, err := s.postgresSetup()
	if err != nil {
		s.cleanup()
		log.Fatalf("failed to setup postgres: %s", err)
	}
	fmt.Println("postgres setup successful")

	cfg := getTestConfig(redisPort, pgPort)
	s.server, err = internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			AppSecret:               testAppSecret,
			VersionInfo:             "test-version-info",
			HoneycombTracingEnabled: false,
		},
	)
	if err != nil {
		s.cleanup()
		log.Fatalf("new server: %s", err)
	}
	fmt.Println("server created")

	s.server.Serve(ctx, cfg.Host, cfg.Port)
	if err := s.dockerPool.Retry(func() error {
		resp, err := s.httpClient.Get(serverEndpoint + "/version")
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}); err != nil {
		s.cleanup()
		log.Fatalf("server not reachable: %s", err)
	}
	fmt.Println("server started")
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.cleanup()
}

func (s *IntegrationTestSuite) cleanup() {
	fmt.Println(" --> cleaning up test suite...")
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			fmt.Printf(" --> test suite db close error: %s\n", err)
		}
	}
	if s.server != nil {
		s.server.GracefulShutdown()
	}
	fmt.Println(" --> test suite server shut down")
	for _, teardown := range s.teardown {
		teardown()
	}
	fmt.Println(" --> test suite cleanup done")
}

func getTestConfig(redisPort, postgresPort string) *config.Config {
	cfg := &config.Config{
		Host:                   serverHost,
		Port:                   serverPort,
		Environment:            "test",
		RedisHost:              "localhost",
		RedisPort:              redisPort,
		PostgresHost:           "localhost",
		PostgresPort:           postgresPort,
		DBName:                 testDBName,
		PrometheusMetricsHost:  serverHost,
		PrometheusMetricsPort:  "9001",
		RateLimitPerMin:        600,
		CatalogCacheSizeMB:     1,
		CatalogCacheTTLSeconds: 60,
	}
	cfg.SweeperInterval.Duration = time.Hour
	cfg.AbandonAfter.Duration = 24 * time.Hour
	return cfg
}

func (s *IntegrationTestSuite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Name:       "gymsessions-redis",
		Tag:        "7.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := redisResource.Close(); err != nil {
			fmt.Printf("redis teardown: %s\n", err)
		}
	})

	return redisResource.GetPort("6379/tcp"), nil
}

func (s *IntegrationTestSuite) postgresSetup() (string, error) {
	pgResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=" + testDBName,
			"POSTGRES_HOST_AUTH_METHOD=trust",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("dockerpool run postgres: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := pgResource.Close(); err != nil {
			fmt.Printf("postgres teardown: %s\n", err)
		}
	})

	pgPort := pgResource.GetPort("5432/tcp")
	dsn := fmt.Sprintf(
		"postgres://postgres@localhost:%s/%s?sslmode=disable",
		pgPort, testDBName,
	)
	s.DB, err = sql.Open("postgres", dsn)
	if err != nil {
		return "", fmt.Errorf("open db: %w", err)
	}

	if err := s.dockerPool.Retry(s.DB.Ping); err != nil {
		return "", fmt.Errorf("connect to db: %w", err)
	}

	if _, err := s.DB.Exec(db.Schema); err != nil {
		return "", fmt.Errorf("apply schema: %w", err)
	}
	if _, err := s.DB.Exec(seedSQL); err != nil {
		return "", fmt.Errorf("seed workouts: %w", err)
	}

	return pgPort, nil
}

const seedSQL = `
INSERT INTO workout (id, name, workout_type, phase_config) VALUES
    (1, 'Upper body', NULL, NULL),
    (2, 'Cindy', 'amrap', '{"timeCapMinutes": 20, "exercises": [
        {"exerciseId": 101, "reps": 5},
        {"exerciseId": 102, "reps": 10},
        {"exerciseId": 103, "reps": 15}
    ]}');

INSERT INTO workout_exercise (workout_id, exercise_id, order_in_workout, planned_sets, planned_reps) VALUES
    (1, 11, 1, 3, 8),
    (1, 12, 2, 2, 12),
    (2, 101, 1, NULL, 5),
    (2, 102, 2, NULL, 10),
    (2, 103, 3, NULL, 15);
`
