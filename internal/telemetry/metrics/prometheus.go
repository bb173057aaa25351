package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/IBM/pgxpoolprometheus"
)

func SetupPrometheus() *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()

	// Add Go module build info, runtime metrics and process collectors.
	promRegistry.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return promRegistry
}

// RegisterDBPool exposes pgx pool stats (acquired/idle conns, waits) for dbName.
func RegisterDBPool(reg prometheus.Registerer, pool *pgxpool.Pool, dbName string) error {
	collector := pgxpoolprometheus.NewCollector(pool, map[string]string{"db_name": dbName})
	return reg.Register(collector)
}
