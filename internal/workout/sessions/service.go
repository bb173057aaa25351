package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymsessions/internal/telemetry/metrics"
	"github.com/2beens/gymsessions/internal/telemetry/tracing"
	"github.com/2beens/gymsessions/internal/workout/catalog"
	"github.com/2beens/gymsessions/internal/workout/phase"
	"github.com/2beens/gymsessions/internal/workout/results"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type StartParams struct {
	WorkoutID int `json:"workoutId"`
	// Exercises overrides the catalog's planned exercises when not empty.
	Exercises []catalog.PlannedExercise `json:"exercises,omitempty"`
	Notes     string                    `json:"notes,omitempty"`
}

// Service drives the session lifecycle: start, pause, resume, abandon and
// complete, plus phase actions for action-driven workout types.
type Service struct {
	store          Store
	catalog        catalog.Catalog
	synthesizer    *results.Synthesizer
	metricsManager *metrics.Manager

	now   func() time.Time
	newID func() string
}

func NewService(
	store Store,
	workoutCatalog catalog.Catalog,
	synthesizer *results.Synthesizer,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		store:          store,
		catalog:        workoutCatalog,
		synthesizer:    synthesizer,
		metricsManager: metricsManager,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

func (s *Service) Start(ctx context.Context, memberID int, params StartParams) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.start")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("member", memberID), attribute.Int("workout", params.WorkoutID))

	if memberID <= 0 {
		return "", ErrUnauthorized
	}

	// fast path only, the store enforces the rule atomically
	active, err := s.store.GetActiveForMember(ctx, memberID)
	if err != nil {
		return "", fmt.Errorf("get active session: %w", err)
	}
	if active != nil {
		return "", fmt.Errorf("%w: %s", ErrConflict, active.ID)
	}

	workout, err := s.catalog.GetWorkout(ctx, params.WorkoutID)
	if errors.Is(err, catalog.ErrWorkoutNotFound) {
		return "", fmt.Errorf("%w: workout %d", ErrNotFound, params.WorkoutID)
	}
	if err != nil {
		return "", fmt.Errorf("get workout %d: %w", params.WorkoutID, err)
	}

	if workout.Type != "" {
		if _, err := phase.New(workout.Type, workout.PhaseConfig); err != nil {
			return "", fmt.Errorf("workout %d: %w", workout.ID, err)
		}
	}

	planned := params.Exercises
	if len(planned) == 0 {
		planned = workout.Exercises
	}
	exercises := newExerciseProgress(planned)
	if err := checkUniqueExercises(exercises); err != nil {
		return "", fmt.Errorf("workout %d: %w", workout.ID, err)
	}

	now := s.now().UTC()
	session := &Session{
		ID:           s.newID(),
		WorkoutID:    workout.ID,
		MemberID:     memberID,
		WorkoutType:  workout.Type,
		PhaseConfig:  workout.PhaseConfig,
		PhaseActions: []phase.Event{},
		Status:       StatusActive,
		StartTime:    now,
		Notes:        params.Notes,
		CreatedDate:  now,
		ModifiedDate: now,
		Exercises:    exercises,
	}
	if len(session.Exercises) > 0 {
		session.CurrentExerciseIndex = session.Exercises[0].OrderInWorkout
	}

	if err := s.store.Create(ctx, session); err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrDuplicateExercise) {
			return "", err
		}
		return "", fmt.Errorf("create session: %w", err)
	}

	s.metricsManager.CounterSessionsStarted.Inc()
	log.Infof("member %d started session %s for workout %d", memberID, session.ID, workout.ID)
	return session.ID, nil
}

func newExerciseProgress(planned []catalog.PlannedExercise) []*ExerciseProgress {
	exercises := make([]*ExerciseProgress, 0, len(planned))
	for _, pe := range planned {
		setCount := 1
		if pe.PlannedSets != nil && *pe.PlannedSets > 0 {
			setCount = *pe.PlannedSets
		}
		ep := &ExerciseProgress{
			ExerciseID:             pe.ExerciseID,
			OrderInWorkout:         pe.OrderInWorkout,
			Status:                 ExerciseNotStarted,
			PlannedSets:            pe.PlannedSets,
			PlannedReps:            pe.PlannedReps,
			PlannedWeightKg:        pe.PlannedWeightKg,
			PlannedDistanceMeters:  pe.PlannedDistanceMeters,
			PlannedDurationSeconds: pe.PlannedDurationSeconds,
			PlannedRestSeconds:     pe.PlannedRestSeconds,
			Sets:                   make([]*SetProgress, 0, setCount),
		}
		for n := 1; n <= setCount; n++ {
			ep.Sets = append(ep.Sets, &SetProgress{
				SetNumber: n,
				Status:    SetNotStarted,
			})
		}
		exercises = append(exercises, ep)
	}
	return exercises
}

func (s *Service) Pause(ctx context.Context, id string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.pause")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("session", id))

	ok, err := s.store.Pause(ctx, id, s.now().UTC())
	if err != nil {
		return false, fmt.Errorf("pause session: %w", err)
	}
	log.Debugf("pause session %s: %t", id, ok)
	return ok, nil
}

func (s *Service) Resume(ctx context.Context, id string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.resume")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("session", id))

	ok, err := s.store.Resume(ctx, id, s.now().UTC())
	if err != nil {
		return false, fmt.Errorf("resume session: %w", err)
	}
	log.Debugf("resume session %s: %t", id, ok)
	return ok, nil
}

func (s *Service) Abandon(ctx context.Context, id string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.abandon")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("session", id))

	ok, err := s.store.Abandon(ctx, id, s.now().UTC())
	if err != nil {
		return false, fmt.Errorf("abandon session: %w", err)
	}
	if ok {
		s.metricsManager.CounterSessionsAbandoned.Inc()
		log.Infof("session %s abandoned", id)
	}
	return ok, nil
}

// Complete finishes an open session owned by memberID and stores its result.
// A session can be completed once, later calls get ErrInvalidStateTransition.
func (s *Service) Complete(
	ctx context.Context,
	memberID int,
	id string,
	payload results.CompletionPayload,
) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.complete")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("session", id), attribute.Int("member", memberID))

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if session.MemberID != memberID {
		return 0, ErrUnauthorized
	}
	if !session.Status.IsOpen() {
		return 0, fmt.Errorf("%w: session is %s", ErrInvalidStateTransition, session.Status)
	}

	now := s.now().UTC()
	completed, skipped, sets := session.ExerciseCounts()
	res, err := s.synthesizer.Build(results.SessionSnapshot{
		SessionID:          session.ID,
		WorkoutID:          session.WorkoutID,
		MemberID:           session.MemberID,
		WorkoutType:        session.WorkoutType,
		PhaseConfig:        session.PhaseConfig,
		PhaseActions:       session.PhaseActions,
		ElapsedSeconds:     session.EffectiveElapsed(now),
		ExercisesTotal:     len(session.Exercises),
		ExercisesCompleted: completed,
		ExercisesSkipped:   skipped,
		SetsCompleted:      sets,
		CompletedAt:        now,
	}, payload)
	if err != nil {
		return 0, fmt.Errorf("build result: %w", err)
	}

	if err := s.store.Complete(ctx, session.ID, session.Status, now, res); err != nil {
		if errors.Is(err, ErrInvalidStateTransition) || errors.Is(err, ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("complete session: %w", err)
	}

	s.metricsManager.CounterSessionsCompleted.Inc()
	log.Infof("session %s completed by member %d, result %d [%s]", id, memberID, res.ID, res.Score)
	return res.ID, nil
}

// RecordAction logs one step completion for an AMRAP, ForTime or Ladder
// session and returns the phase right after it.
func (s *Service) RecordAction(ctx context.Context, memberID int, id string) (_ *phase.Phase, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.action")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("session", id), attribute.Int("member", memberID))

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.MemberID != memberID {
		return nil, ErrUnauthorized
	}
	if session.Status != StatusActive {
		return nil, fmt.Errorf("%w: session is %s", ErrInvalidStateTransition, session.Status)
	}
	if session.WorkoutType == "" {
		return nil, ErrNoPhaseConfig
	}
	if !session.WorkoutType.ActionDriven() {
		return nil, fmt.Errorf("%w: %s", phase.ErrTimeDriven, session.WorkoutType)
	}

	engine, err := phase.Replay(session.WorkoutType, session.PhaseConfig, session.PhaseActions)
	if err != nil {
		return nil, fmt.Errorf("replay session %s: %w", id, err)
	}

	now := s.now().UTC()
	ev := phase.Event{
		Kind:           phase.EventStepCompleted,
		ElapsedSeconds: session.EffectiveElapsed(now),
		At:             now,
	}
	before := engine.PhaseAt(ev.ElapsedSeconds)
	if err := engine.Advance(ev); err != nil {
		return nil, err
	}

	ok, err := s.store.AppendAction(ctx, id, len(session.PhaseActions), ev)
	if err != nil {
		return nil, fmt.Errorf("append action: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: session changed concurrently", ErrInvalidStateTransition)
	}

	s.metricsManager.CounterPhaseActions.WithLabelValues(session.WorkoutType.String()).Inc()
	p := engine.PhaseAt(ev.ElapsedSeconds)
	p.Boundaries = phase.Boundaries(before, p)
	return &p, nil
}

// CurrentPhase recomputes where the session is right now. Nothing is stored.
// since is the elapsed second of the caller's previous tick; the boundaries
// crossed after it are reported. A negative since reports none.
func (s *Service) CurrentPhase(ctx context.Context, id string, since int) (_ *phase.Phase, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.phase")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("session", id))

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.WorkoutType == "" {
		return nil, ErrNoPhaseConfig
	}

	p, err := phase.PhaseSince(
		session.WorkoutType,
		session.PhaseConfig,
		session.PhaseActions,
		since,
		session.EffectiveElapsed(s.now().UTC()),
	)
	if err != nil {
		return nil, fmt.Errorf("replay session %s: %w", id, err)
	}
	return &p, nil
}

func (s *Service) Get(ctx context.Context, id string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.get")
	defer func() {
		if errors.Is(err, ErrNotFound) {
			span.End()
			return
		}
		endSpan(span, err)
	}()

	return s.store.Get(ctx, id)
}

func (s *Service) GetActiveForMember(ctx context.Context, memberID int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.getactive")
	defer func() { endSpan(span, err) }()

	session, err := s.store.GetActiveForMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return session, nil
}

func (s *Service) ListForMember(ctx context.Context, params ListParams) (_ []*Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.list")
	defer func() { endSpan(span, err) }()

	if params.Size <= 0 {
		params.Size = 20
	}
	if params.Page < 0 {
		params.Page = 0
	}

	list, err := s.store.ListForMember(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return list, nil
}

func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsActive is true for active and paused sessions.
func (s *Service) IsActive(ctx context.Context, id string) (bool, error) {
	session, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return session.Status.IsOpen(), nil
}

func (s *Service) IsOwnedByMember(ctx context.Context, id string, memberID int) (bool, error) {
	session, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return session.MemberID == memberID, nil
}
