package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymsessions/internal/telemetry/tracing"
	"github.com/2beens/gymsessions/internal/workout/phase"
	"github.com/2beens/gymsessions/internal/workout/results"
	"github.com/2beens/gymsessions/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Store = (*PsqlStore)(nil)

type PsqlStore struct {
	db *pgxpool.Pool
}

func NewPsqlStore(db *pgxpool.Pool) *PsqlStore {
	return &PsqlStore{
		db: db,
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *PsqlStore) Create(ctx context.Context, s *Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.create")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("session", s.ID), attribute.Int("member", s.MemberID))

	actionsJson, err := json.Marshal(nonNilActions(s.PhaseActions))
	if err != nil {
		return fmt.Errorf("marshal phase actions: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO workout_session (
			id, workout_id, member_id, workout_type, phase_config, phase_actions,
			status, start_time, paused_at, total_paused_seconds, end_time,
			current_exercise_index, notes, created_date, modified_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		s.ID, s.WorkoutID, s.MemberID, string(s.WorkoutType), nullableJSON(s.PhaseConfig), actionsJson,
		string(s.Status), s.StartTime, s.PausedAt, s.TotalPausedSeconds, s.EndTime,
		s.CurrentExerciseIndex, s.Notes, s.CreatedDate, s.ModifiedDate,
	)
	if pkg.IsUniqueViolationError(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for _, ep := range s.Exercises {
		ep.SessionID = s.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO session_exercise_progress (
				session_id, exercise_id, order_in_workout, status, start_time, end_time,
				total_time_seconds, notes, planned_sets, planned_reps, planned_weight_kg,
				planned_distance_meters, planned_duration_seconds, planned_rest_seconds
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id
		`,
			s.ID, ep.ExerciseID, ep.OrderInWorkout, string(ep.Status), ep.StartTime, ep.EndTime,
			ep.TotalTimeSeconds, ep.Notes, ep.PlannedSets, ep.PlannedReps, ep.PlannedWeightKg,
			ep.PlannedDistanceMeters, ep.PlannedDurationSeconds, ep.PlannedRestSeconds,
		).Scan(&ep.ID)
		if pkg.IsUniqueViolationError(err) {
			return fmt.Errorf("%w: %d", ErrDuplicateExercise, ep.ExerciseID)
		}
		if err != nil {
			return fmt.Errorf("insert exercise progress %d: %w", ep.ExerciseID, err)
		}

		for _, sp := range ep.Sets {
			sp.ExerciseProgressID = ep.ID
			err = tx.QueryRow(ctx, `
				INSERT INTO session_set_progress (exercise_progress_id, set_number, status)
				VALUES ($1, $2, $3)
				RETURNING id
			`, ep.ID, sp.SetNumber, string(sp.Status)).Scan(&sp.ID)
			if err != nil {
				return fmt.Errorf("insert set progress %d/%d: %w", ep.ExerciseID, sp.SetNumber, err)
			}
		}
	}

	return nil
}

const selectSession = `
	SELECT id, workout_id, member_id, workout_type, phase_config, phase_actions,
		status, start_time, paused_at, total_paused_seconds, end_time,
		current_exercise_index, notes, result_id, created_date, modified_date
	FROM workout_session
`

func scanSession(row pgx.Row) (*Session, error) {
	s := &Session{}
	var (
		workoutType string
		status      string
		phaseConfig []byte
		actionsJson []byte
	)
	if err := row.Scan(
		&s.ID, &s.WorkoutID, &s.MemberID, &workoutType, &phaseConfig, &actionsJson,
		&status, &s.StartTime, &s.PausedAt, &s.TotalPausedSeconds, &s.EndTime,
		&s.CurrentExerciseIndex, &s.Notes, &s.ResultID, &s.CreatedDate, &s.ModifiedDate,
	); err != nil {
		return nil, err
	}
	s.WorkoutType = phase.Type(workoutType)
	s.Status = Status(status)
	if len(phaseConfig) > 0 {
		s.PhaseConfig = phaseConfig
	}
	if len(actionsJson) > 0 {
		if err := json.Unmarshal(actionsJson, &s.PhaseActions); err != nil {
			return nil, fmt.Errorf("unmarshal phase actions: %w", err)
		}
	}
	return s, nil
}

func (r *PsqlStore) Get(ctx context.Context, id string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.get")
	defer func() {
		if errors.Is(err, ErrNotFound) {
			span.End()
			return
		}
		endSpan(span, err)
	}()
	span.SetAttributes(attribute.String("session", id))

	s, err := scanSession(r.db.QueryRow(ctx, selectSession+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := r.loadProgress(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PsqlStore) loadProgress(ctx context.Context, s *Session) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, exercise_id, order_in_workout, status, start_time, end_time,
			total_time_seconds, notes, planned_sets, planned_reps, planned_weight_kg,
			planned_distance_meters, planned_duration_seconds, planned_rest_seconds
		FROM session_exercise_progress
		WHERE session_id = $1
		ORDER BY order_in_workout, id
	`, s.ID)
	if err != nil {
		return fmt.Errorf("list exercise progress: %w", err)
	}
	defer rows.Close()

	byID := make(map[int]*ExerciseProgress)
	s.Exercises = make([]*ExerciseProgress, 0)
	for rows.Next() {
		ep := &ExerciseProgress{SessionID: s.ID, Sets: make([]*SetProgress, 0)}
		var status string
		if err := rows.Scan(
			&ep.ID, &ep.ExerciseID, &ep.OrderInWorkout, &status, &ep.StartTime, &ep.EndTime,
			&ep.TotalTimeSeconds, &ep.Notes, &ep.PlannedSets, &ep.PlannedReps, &ep.PlannedWeightKg,
			&ep.PlannedDistanceMeters, &ep.PlannedDurationSeconds, &ep.PlannedRestSeconds,
		); err != nil {
			return fmt.Errorf("scan exercise progress: %w", err)
		}
		ep.Status = ExerciseStatus(status)
		byID[ep.ID] = ep
		s.Exercises = append(s.Exercises, ep)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	setRows, err := r.db.Query(ctx, `
		SELECT sp.id, sp.exercise_progress_id, sp.set_number, sp.status, sp.start_time, sp.end_time,
			sp.actual_reps, sp.actual_weight_kg, sp.actual_distance_meters,
			sp.actual_duration_seconds, sp.actual_rest_seconds,
			sp.rest_start_time, sp.rest_end_time, sp.notes, sp.rpe
		FROM session_set_progress sp
		JOIN session_exercise_progress ep ON ep.id = sp.exercise_progress_id
		WHERE ep.session_id = $1
		ORDER BY sp.exercise_progress_id, sp.set_number
	`, s.ID)
	if err != nil {
		return fmt.Errorf("list set progress: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		sp := &SetProgress{}
		var status string
		if err := setRows.Scan(
			&sp.ID, &sp.ExerciseProgressID, &sp.SetNumber, &status, &sp.StartTime, &sp.EndTime,
			&sp.ActualReps, &sp.ActualWeightKg, &sp.ActualDistanceMeters,
			&sp.ActualDurationSeconds, &sp.ActualRestSeconds,
			&sp.RestStartTime, &sp.RestEndTime, &sp.Notes, &sp.RPE,
		); err != nil {
			return fmt.Errorf("scan set progress: %w", err)
		}
		sp.Status = SetStatus(status)
		if ep, ok := byID[sp.ExerciseProgressID]; ok {
			ep.Sets = append(ep.Sets, sp)
		}
	}
	return setRows.Err()
}

func (r *PsqlStore) GetActiveForMember(ctx context.Context, memberID int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.getactive")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("member", memberID))

	var id string
	err = r.db.QueryRow(ctx, `
		SELECT id FROM workout_session
		WHERE member_id = $1 AND status IN ('active', 'paused')
	`, memberID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}

	s, err := r.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return s, err
}

// ListForMember returns the member's sessions, newest first, without progress rows.
func (r *PsqlStore) ListForMember(ctx context.Context, params ListParams) (_ []*Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.list")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("member", params.MemberID))
	if params.WorkoutID != nil {
		span.SetAttributes(attribute.Int("workout", *params.WorkoutID))
	}

	rows, err := r.db.Query(ctx, selectSession+`
		WHERE member_id = $1
		  AND ($2::int IS NULL OR workout_id = $2)
		ORDER BY created_date DESC
		LIMIT $3 OFFSET $4
	`, params.MemberID, params.WorkoutID, params.Size, params.Size*params.Page)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		s.Exercises = make([]*ExerciseProgress, 0)
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// execOne runs a conditional update and reports whether exactly one row changed.
func (r *PsqlStore) execOne(ctx context.Context, spanName, sql string, args ...any) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, spanName)
	defer func() { endSpan(span, err) }()

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	span.SetAttributes(attribute.Int64("rows", tag.RowsAffected()))
	return tag.RowsAffected() == 1, nil
}

func (r *PsqlStore) Pause(ctx context.Context, id string, at time.Time) (bool, error) {
	return r.execOne(ctx, "repo.sessions.pause", `
		UPDATE workout_session
		SET status = 'paused', paused_at = $2, modified_date = $2
		WHERE id = $1 AND status = 'active'
	`, id, at)
}

func (r *PsqlStore) Resume(ctx context.Context, id string, at time.Time) (bool, error) {
	return r.execOne(ctx, "repo.sessions.resume", `
		UPDATE workout_session
		SET status = 'active',
			total_paused_seconds = total_paused_seconds
				+ GREATEST(0, FLOOR(EXTRACT(EPOCH FROM ($2::timestamptz - paused_at))))::int,
			paused_at = NULL,
			modified_date = $2
		WHERE id = $1 AND status = 'paused'
	`, id, at)
}

func (r *PsqlStore) Abandon(ctx context.Context, id string, at time.Time) (bool, error) {
	return r.execOne(ctx, "repo.sessions.abandon", `
		UPDATE workout_session
		SET status = 'abandoned',
			total_paused_seconds = total_paused_seconds + CASE
				WHEN status = 'paused' AND paused_at IS NOT NULL
				THEN GREATEST(0, FLOOR(EXTRACT(EPOCH FROM ($2::timestamptz - paused_at))))::int
				ELSE 0 END,
			paused_at = NULL,
			end_time = $2,
			modified_date = $2
		WHERE id = $1 AND status IN ('active', 'paused')
	`, id, at)
}

func (r *PsqlStore) Complete(
	ctx context.Context,
	id string,
	expectedStatus Status,
	at time.Time,
	res *results.Result,
) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.complete")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("session", id))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	if err = results.Insert(ctx, tx, res); err != nil {
		// a concurrent completion already stored the result for this session
		if pkg.IsUniqueViolationError(err) {
			return ErrInvalidStateTransition
		}
		return fmt.Errorf("insert result: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE workout_session
		SET status = 'completed',
			total_paused_seconds = total_paused_seconds + CASE
				WHEN status = 'paused' AND paused_at IS NOT NULL
				THEN GREATEST(0, FLOOR(EXTRACT(EPOCH FROM ($2::timestamptz - paused_at))))::int
				ELSE 0 END,
			paused_at = NULL,
			end_time = $2,
			result_id = $3,
			modified_date = $2
		WHERE id = $1 AND status = $4
	`, id, at, res.ID, string(expectedStatus))
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return ErrInvalidStateTransition
	}
	return nil
}

func (r *PsqlStore) AppendAction(ctx context.Context, id string, expectedCount int, ev phase.Event) (bool, error) {
	evJson, err := json.Marshal([]phase.Event{ev})
	if err != nil {
		return false, fmt.Errorf("marshal action: %w", err)
	}
	return r.execOne(ctx, "repo.sessions.appendaction", `
		UPDATE workout_session
		SET phase_actions = phase_actions || $3::jsonb, modified_date = $4
		WHERE id = $1 AND status = 'active' AND jsonb_array_length(phase_actions) = $2
	`, id, expectedCount, evJson, ev.At)
}

func (r *PsqlStore) ListStale(ctx context.Context, createdBefore time.Time) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.liststale")
	defer func() { endSpan(span, err) }()

	rows, err := r.db.Query(ctx, `
		SELECT id FROM workout_session
		WHERE status IN ('active', 'paused') AND created_date < $1
		ORDER BY created_date
	`, createdBefore)
	if err != nil {
		return nil, fmt.Errorf("list stale sessions: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PsqlStore) StartExercise(ctx context.Context, sessionID string, exerciseID int, at time.Time) (bool, error) {
	return r.execOne(ctx, "repo.sessions.exercise.start", `
		WITH started AS (
			UPDATE session_exercise_progress ep
			SET status = 'in_progress', start_time = $3
			FROM workout_session s
			WHERE ep.session_id = s.id
			  AND s.id = $1 AND ep.exercise_id = $2
			  AND ep.status = 'not_started'
			  AND s.status IN ('active', 'paused')
			RETURNING ep.order_in_workout
		)
		UPDATE workout_session
		SET current_exercise_index = started.order_in_workout, modified_date = $3
		FROM started
		WHERE workout_session.id = $1
	`, sessionID, exerciseID, at)
}

func (r *PsqlStore) FinishExercise(
	ctx context.Context,
	sessionID string,
	exerciseID int,
	status ExerciseStatus,
	at time.Time,
) (bool, error) {
	return r.execOne(ctx, "repo.sessions.exercise.finish", `
		UPDATE session_exercise_progress ep
		SET status = $3,
			end_time = $4,
			total_time_seconds = CASE
				WHEN ep.start_time IS NULL THEN 0
				ELSE GREATEST(0, FLOOR(EXTRACT(EPOCH FROM ($4::timestamptz - ep.start_time))))::int
				END
		FROM workout_session s
		WHERE ep.session_id = s.id
		  AND s.id = $1 AND ep.exercise_id = $2
		  AND ep.status IN ('not_started', 'in_progress')
		  AND s.status IN ('active', 'paused')
	`, sessionID, exerciseID, string(status), at)
}

func (r *PsqlStore) UpdateExercise(ctx context.Context, sessionID string, exerciseID int, upd ExerciseUpdate) (bool, error) {
	return r.execOne(ctx, "repo.sessions.exercise.update", `
		UPDATE session_exercise_progress ep
		SET notes = COALESCE($3, ep.notes),
			planned_reps = COALESCE($4, ep.planned_reps),
			planned_weight_kg = COALESCE($5, ep.planned_weight_kg),
			planned_distance_meters = COALESCE($6, ep.planned_distance_meters),
			planned_duration_seconds = COALESCE($7, ep.planned_duration_seconds),
			planned_rest_seconds = COALESCE($8, ep.planned_rest_seconds)
		FROM workout_session s
		WHERE ep.session_id = s.id
		  AND s.id = $1 AND ep.exercise_id = $2
		  AND s.status IN ('active', 'paused')
	`,
		sessionID, exerciseID,
		upd.Notes, upd.PlannedReps, upd.PlannedWeightKg,
		upd.PlannedDistanceMeters, upd.PlannedDurationSeconds, upd.PlannedRestSeconds,
	)
}

func (r *PsqlStore) StartSet(ctx context.Context, sessionID string, exerciseID, setNumber int, at time.Time) (bool, error) {
	return r.execOne(ctx, "repo.sessions.set.start", `
		UPDATE session_set_progress sp
		SET status = 'in_progress', start_time = $4
		FROM session_exercise_progress ep
		JOIN workout_session s ON s.id = ep.session_id
		WHERE sp.exercise_progress_id = ep.id
		  AND s.id = $1 AND ep.exercise_id = $2 AND sp.set_number = $3
		  AND sp.status = 'not_started'
		  AND s.status IN ('active', 'paused')
	`, sessionID, exerciseID, setNumber, at)
}

func (r *PsqlStore) CompleteSet(
	ctx context.Context,
	sessionID string,
	exerciseID, setNumber int,
	actuals SetActuals,
	at time.Time,
) (bool, error) {
	return r.execOne(ctx, "repo.sessions.set.complete", `
		UPDATE session_set_progress sp
		SET status = 'completed',
			end_time = $4,
			actual_reps = COALESCE($5, sp.actual_reps),
			actual_weight_kg = COALESCE($6, sp.actual_weight_kg),
			actual_distance_meters = COALESCE($7, sp.actual_distance_meters),
			actual_duration_seconds = COALESCE($8, sp.actual_duration_seconds),
			actual_rest_seconds = COALESCE($9, sp.actual_rest_seconds),
			rest_start_time = COALESCE($10, sp.rest_start_time),
			rest_end_time = COALESCE($11, sp.rest_end_time),
			notes = COALESCE($12, sp.notes),
			rpe = COALESCE($13, sp.rpe)
		FROM session_exercise_progress ep
		JOIN workout_session s ON s.id = ep.session_id
		WHERE sp.exercise_progress_id = ep.id
		  AND s.id = $1 AND ep.exercise_id = $2 AND sp.set_number = $3
		  AND sp.status <> 'completed'
		  AND s.status IN ('active', 'paused')
	`,
		sessionID, exerciseID, setNumber, at,
		actuals.ActualReps, actuals.ActualWeightKg, actuals.ActualDistanceMeters,
		actuals.ActualDurationSeconds, actuals.ActualRestSeconds,
		actuals.RestStartTime, actuals.RestEndTime, actuals.Notes, actuals.RPE,
	)
}

func (r *PsqlStore) UpdateSet(
	ctx context.Context,
	sessionID string,
	exerciseID, setNumber int,
	actuals SetActuals,
) (bool, error) {
	return r.execOne(ctx, "repo.sessions.set.update", `
		UPDATE session_set_progress sp
		SET actual_reps = COALESCE($4, sp.actual_reps),
			actual_weight_kg = COALESCE($5, sp.actual_weight_kg),
			actual_distance_meters = COALESCE($6, sp.actual_distance_meters),
			actual_duration_seconds = COALESCE($7, sp.actual_duration_seconds),
			actual_rest_seconds = COALESCE($8, sp.actual_rest_seconds),
			rest_start_time = COALESCE($9, sp.rest_start_time),
			rest_end_time = COALESCE($10, sp.rest_end_time),
			notes = COALESCE($11, sp.notes),
			rpe = COALESCE($12, sp.rpe)
		FROM session_exercise_progress ep
		JOIN workout_session s ON s.id = ep.session_id
		WHERE sp.exercise_progress_id = ep.id
		  AND s.id = $1 AND ep.exercise_id = $2 AND sp.set_number = $3
		  AND s.status IN ('active', 'paused')
	`,
		sessionID, exerciseID, setNumber,
		actuals.ActualReps, actuals.ActualWeightKg, actuals.ActualDistanceMeters,
		actuals.ActualDurationSeconds, actuals.ActualRestSeconds,
		actuals.RestStartTime, actuals.RestEndTime, actuals.Notes, actuals.RPE,
	)
}

func nonNilActions(actions []phase.Event) []phase.Event {
	if actions == nil {
		return []phase.Event{}
	}
	return actions
}

func nullableJSON(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
