package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymsessions/internal/telemetry/tracing"
	"github.com/2beens/gymsessions/internal/workout/phase"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type PsqlCatalog struct {
	db *pgxpool.Pool
}

func NewPsqlCatalog(db *pgxpool.Pool) *PsqlCatalog {
	return &PsqlCatalog{
		db: db,
	}
}

func (c *PsqlCatalog) GetWorkout(ctx context.Context, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.workout.get")
	defer func() {
		if err != nil && !errors.Is(err, ErrWorkoutNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.Int("workout", id))

	w := &Workout{}
	var (
		workoutType *string
		phaseConfig []byte
	)
	err = c.db.QueryRow(ctx, `
		SELECT id, name, workout_type, phase_config
		FROM workout
		WHERE id = $1
	`, id).Scan(&w.ID, &w.Name, &workoutType, &phaseConfig)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workout %d: %w", id, err)
	}
	if workoutType != nil {
		w.Type = phase.Type(*workoutType)
	}
	if len(phaseConfig) > 0 {
		w.PhaseConfig = phaseConfig
	}

	rows, err := c.db.Query(ctx, `
		SELECT exercise_id, order_in_workout, planned_sets, planned_reps, planned_weight_kg,
			planned_distance_meters, planned_duration_seconds, planned_rest_seconds
		FROM workout_exercise
		WHERE workout_id = $1
		ORDER BY order_in_workout
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get workout %d exercises: %w", id, err)
	}
	defer rows.Close()

	w.Exercises = make([]PlannedExercise, 0)
	for rows.Next() {
		var pe PlannedExercise
		if err := rows.Scan(
			&pe.ExerciseID, &pe.OrderInWorkout, &pe.PlannedSets, &pe.PlannedReps, &pe.PlannedWeightKg,
			&pe.PlannedDistanceMeters, &pe.PlannedDurationSeconds, &pe.PlannedRestSeconds,
		); err != nil {
			return nil, fmt.Errorf("scan workout exercise: %w", err)
		}
		w.Exercises = append(w.Exercises, pe)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return w, nil
}
