package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/gymsessions/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// ProgressTracker records per-exercise and per-set progress inside a session.
// Every operation answers false when the target row does not exist, is in an
// incompatible status, or belongs to a finished session.
type ProgressTracker struct {
	store Store
	now   func() time.Time
}

func NewProgressTracker(store Store) *ProgressTracker {
	return &ProgressTracker{
		store: store,
		now:   time.Now,
	}
}

func (t *ProgressTracker) StartExercise(ctx context.Context, sessionID string, exerciseID int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.exercise.start")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("session", sessionID), attribute.Int("exercise", exerciseID))

	ok, err := t.store.StartExercise(ctx, sessionID, exerciseID, t.now().UTC())
	if err != nil {
		return false, fmt.Errorf("start exercise: %w", err)
	}
	log.Debugf("session %s: start exercise %d: %t", sessionID, exerciseID, ok)
	return ok, nil
}

func (t *ProgressTracker) CompleteExercise(ctx context.Context, sessionID string, exerciseID int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.exercise.complete")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("session", sessionID), attribute.Int("exercise", exerciseID))

	ok, err := t.store.FinishExercise(ctx, sessionID, exerciseID, ExerciseCompleted, t.now().UTC())
	if err != nil {
		return false, fmt.Errorf("complete exercise: %w", err)
	}
	log.Debugf("session %s: complete exercise %d: %t", sessionID, exerciseID, ok)
	return ok, nil
}

func (t *ProgressTracker) SkipExercise(ctx context.Context, sessionID string, exerciseID int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.exercise.skip")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("session", sessionID), attribute.Int("exercise", exerciseID))

	ok, err := t.store.FinishExercise(ctx, sessionID, exerciseID, ExerciseSkipped, t.now().UTC())
	if err != nil {
		return false, fmt.Errorf("skip exercise: %w", err)
	}
	log.Debugf("session %s: skip exercise %d: %t", sessionID, exerciseID, ok)
	return ok, nil
}

func (t *ProgressTracker) UpdateExerciseProgress(
	ctx context.Context,
	sessionID string,
	exerciseID int,
	upd ExerciseUpdate,
) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.exercise.update")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("session", sessionID), attribute.Int("exercise", exerciseID))

	ok, err := t.store.UpdateExercise(ctx, sessionID, exerciseID, upd)
	if err != nil {
		return false, fmt.Errorf("update exercise progress: %w", err)
	}
	return ok, nil
}

func (t *ProgressTracker) StartSet(ctx context.Context, sessionID string, exerciseID, setNumber int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.set.start")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(
		attribute.String("session", sessionID),
		attribute.Int("exercise", exerciseID),
		attribute.Int("set", setNumber),
	)

	ok, err := t.store.StartSet(ctx, sessionID, exerciseID, setNumber, t.now().UTC())
	if err != nil {
		return false, fmt.Errorf("start set: %w", err)
	}
	return ok, nil
}

func (t *ProgressTracker) CompleteSet(
	ctx context.Context,
	sessionID string,
	exerciseID, setNumber int,
	actuals SetActuals,
) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.set.complete")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(
		attribute.String("session", sessionID),
		attribute.Int("exercise", exerciseID),
		attribute.Int("set", setNumber),
	)

	if !actuals.Valid() {
		return false, nil
	}
	ok, err := t.store.CompleteSet(ctx, sessionID, exerciseID, setNumber, actuals, t.now().UTC())
	if err != nil {
		return false, fmt.Errorf("complete set: %w", err)
	}
	log.Debugf("session %s: complete set %d/%d: %t", sessionID, exerciseID, setNumber, ok)
	return ok, nil
}

func (t *ProgressTracker) UpdateSetProgress(
	ctx context.Context,
	sessionID string,
	exerciseID, setNumber int,
	actuals SetActuals,
) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.set.update")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(
		attribute.String("session", sessionID),
		attribute.Int("exercise", exerciseID),
		attribute.Int("set", setNumber),
	)

	if !actuals.Valid() {
		return false, nil
	}
	ok, err := t.store.UpdateSet(ctx, sessionID, exerciseID, setNumber, actuals)
	if err != nil {
		return false, fmt.Errorf("update set progress: %w", err)
	}
	return ok, nil
}
