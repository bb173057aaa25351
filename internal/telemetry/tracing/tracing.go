package tracing

import (
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/honeycombio/honeycomb-opentelemetry-go"
	"github.com/honeycombio/otel-config-go/otelconfig"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

var GlobalTracer = otel.Tracer("gymsessions")
var GlobalSweeperTracer = otel.Tracer("gymsessions-sweeper")

// HoneycombSetup configures the OpenTelemetry SDK with the honeycomb distro and
// adds a tracing hook to rdb, if given. The returned func flushes and stops
// the exporters. When disabled, a no-op shutdown func is returned.
func HoneycombSetup(enabled bool, serviceName string, rdb *redis.Client) (func(), error) {
	if !enabled {
		log.Debugf("honeycomb tracing disabled for [%s]", serviceName)
		return func() {}, nil
	}

	// enable multi-span attributes
	bsp := honeycomb.NewBaggageSpanProcessor()

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(serviceName),
		otelconfig.WithSpanProcessor(bsp),
	)
	if err != nil {
		return nil, err
	}

	if rdb != nil {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	log.Debugf("honeycomb tracing enabled for [%s]", serviceName)
	return otelShutdown, nil
}
