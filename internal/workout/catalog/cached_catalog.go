package catalog

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/2beens/gymsessions/internal/telemetry/metrics"
	"github.com/2beens/gymsessions/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const megabyte = 1024 * 1024

// CachedCatalog is a read-through cache in front of another Catalog. Workouts
// rarely change while someone trains them, so entries simply expire.
type CachedCatalog struct {
	next           Catalog
	cache          *freecache.Cache
	ttlSeconds     int
	metricsManager *metrics.Manager
}

func NewCachedCatalog(next Catalog, sizeMB, ttlSeconds int, metricsManager *metrics.Manager) *CachedCatalog {
	return &CachedCatalog{
		next:           next,
		cache:          freecache.NewCache(sizeMB * megabyte),
		ttlSeconds:     ttlSeconds,
		metricsManager: metricsManager,
	}
}

func (c *CachedCatalog) GetWorkout(ctx context.Context, id int) (*Workout, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "catalog.cached.workout.get")
	defer span.End()

	cacheKey := []byte("workout::" + strconv.Itoa(id))
	if cached, err := c.cache.Get(cacheKey); err == nil {
		w := &Workout{}
		if err := json.Unmarshal(cached, w); err == nil {
			span.SetAttributes(attribute.Bool("cache-hit", true))
			c.observe("hit")
			return w, nil
		} else {
			log.Errorf("unmarshal cached workout %d: %s", id, err)
		}
	}
	span.SetAttributes(attribute.Bool("cache-hit", false))
	c.observe("miss")

	w, err := c.next.GetWorkout(ctx, id)
	if err != nil {
		return nil, err
	}

	workoutJson, err := json.Marshal(w)
	if err != nil {
		log.Errorf("marshal workout %d for cache: %s", id, err)
		return w, nil
	}
	if err := c.cache.Set(cacheKey, workoutJson, c.ttlSeconds); err != nil {
		log.Errorf("set workout %d cache: %s", id, err)
	}

	return w, nil
}

func (c *CachedCatalog) observe(outcome string) {
	if c.metricsManager != nil {
		c.metricsManager.CounterCatalogCache.WithLabelValues(outcome).Inc()
	}
}
