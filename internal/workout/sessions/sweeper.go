package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymsessions/internal/telemetry/metrics"
	"github.com/2beens/gymsessions/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

const SweeperLockKey = "gymsessions-sweeper-lock"

//go:generate mockgen -source=$GOFILE -destination=sweeper_mocks_test.go -package=sessions_test

type staleSessionStore interface {
	ListStale(ctx context.Context, createdBefore time.Time) ([]string, error)
	Abandon(ctx context.Context, id string, at time.Time) (bool, error)
}

// Locker guards a sweep pass so that only one replica runs it at a time.
type Locker interface {
	// TryLock returns a release func when the lock was taken, nil otherwise.
	TryLock(ctx context.Context) (release func(), err error)
}

// Sweeper abandons sessions that were left open for too long.
type Sweeper struct {
	store          staleSessionStore
	locker         Locker
	metricsManager *metrics.Manager
	now            func() time.Time
}

// NewSweeper creates a sweeper. locker may be nil when a single instance runs.
func NewSweeper(store staleSessionStore, locker Locker, metricsManager *metrics.Manager) *Sweeper {
	return &Sweeper{
		store:          store,
		locker:         locker,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

// Cleanup abandons open sessions created more than olderThan ago and returns
// how many it actually transitioned. Rows changed concurrently (completed,
// abandoned) are skipped. Per-row failures do not stop the pass.
func (sw *Sweeper) Cleanup(ctx context.Context, olderThan time.Duration) (_ int, err error) {
	ctx, span := tracing.GlobalSweeperTracer.Start(ctx, "sweeper.cleanup")
	defer func() { endSpan(span, err) }()

	begin := sw.now()
	now := begin.UTC()
	ids, err := sw.store.ListStale(ctx, now.Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("list stale sessions: %w", err)
	}
	span.SetAttributes(attribute.Int("stale", len(ids)))

	swept := 0
	var errs error
	for _, id := range ids {
		if ctxErr := ctx.Err(); ctxErr != nil {
			errs = multierr.Append(errs, ctxErr)
			break
		}
		ok, err := sw.store.Abandon(ctx, id, now)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("abandon %s: %w", id, err))
			continue
		}
		if ok {
			swept++
		}
	}

	if sw.metricsManager != nil {
		sw.metricsManager.CounterSessionsSwept.Add(float64(swept))
		sw.metricsManager.HistSweepDuration.Observe(time.Since(begin).Seconds())
	}
	span.SetAttributes(attribute.Int("swept", swept))
	if swept > 0 {
		log.Infof("sweeper: abandoned %d stale sessions", swept)
	}

	return swept, errs
}

// Run sweeps every interval until ctx is done.
func (sw *Sweeper) Run(ctx context.Context, interval, olderThan time.Duration) {
	log.Debugf("sweeper: running every %s, abandoning sessions older than %s", interval, olderThan)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		sw.pass(ctx, olderThan)

		select {
		case <-ctx.Done():
			log.Debugln("sweeper: stopped")
			return
		case <-ticker.C:
		}
	}
}

func (sw *Sweeper) pass(ctx context.Context, olderThan time.Duration) {
	if sw.locker != nil {
		release, err := sw.locker.TryLock(ctx)
		if err != nil {
			log.Errorf("sweeper: take lock: %s", err)
			return
		}
		if release == nil {
			log.Tracef("sweeper: lock held elsewhere, skipping pass")
			return
		}
		defer release()
	}

	if _, err := sw.Cleanup(ctx, olderThan); err != nil && !errors.Is(err, context.Canceled) {
		for _, e := range multierr.Errors(err) {
			log.Errorf("sweeper: %s", e)
		}
	}
}

var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a single-key redis lock with an expiry, so a crashed holder
// cannot block sweeping forever.
type RedisLocker struct {
	rdb redis.Cmdable
	key string
	ttl time.Duration
	// token generator, overridden in tests
	newToken func() string
}

func NewRedisLocker(rdb redis.Cmdable, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		rdb:      rdb,
		key:      SweeperLockKey,
		ttl:      ttl,
		newToken: uuid.NewString,
	}
}

func (l *RedisLocker) TryLock(ctx context.Context) (func(), error) {
	token := l.newToken()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx %s: %w", l.key, err)
	}
	if !ok {
		return nil, nil
	}

	return func() {
		// fresh context, the pass context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseLockScript.Run(releaseCtx, l.rdb, []string{l.key}, token).Err(); err != nil {
			log.Errorf("sweeper: release lock: %s", err)
		}
	}, nil
}
