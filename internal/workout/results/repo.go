package results

import (
	"context"
	"errors"

	"github.com/2beens/gymsessions/internal/telemetry/tracing"
	"github.com/2beens/gymsessions/internal/workout/phase"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so a result can be
// written inside the transaction that completes its session.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Insert stores res and sets its ID.
func Insert(ctx context.Context, q Querier, res *Result) error {
	return q.QueryRow(ctx, `
		INSERT INTO workout_result (
			session_id, workout_id, member_id, workout_type,
			completion_time_seconds, score, rounds_completed,
			exercises_completed, exercises_skipped, total_sets, payload,
			notes, rating, mood, energy_level, avg_heart_rate, calories_burned,
			is_public, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`,
		res.SessionID, res.WorkoutID, res.MemberID, string(res.WorkoutType),
		res.CompletionTimeSeconds, res.Score, res.RoundsCompleted,
		res.ExercisesCompleted, res.ExercisesSkipped, res.TotalSets, []byte(res.Payload),
		res.Notes, res.Rating, res.Mood, res.EnergyLevel, res.AvgHeartRate, res.CaloriesBurned,
		res.IsPublic, res.CreatedAt,
	).Scan(&res.ID)
}

const selectResult = `
	SELECT id, session_id, workout_id, member_id, workout_type,
		completion_time_seconds, score, rounds_completed,
		exercises_completed, exercises_skipped, total_sets, payload,
		notes, rating, mood, energy_level, avg_heart_rate, calories_burned,
		is_public, created_at
	FROM workout_result
`

func (r *Repo) Get(ctx context.Context, id int) (_ *Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.results.get")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	res, err := scanResult(r.db.QueryRow(ctx, selectResult+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Repo) ListForMember(ctx context.Context, memberID, page, size int) (_ []*Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.results.list")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.Int("member", memberID))

	rows, err := r.db.Query(ctx, selectResult+`
		WHERE member_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, memberID, size, size*page)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*Result, 0)
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func scanResult(row pgx.Row) (*Result, error) {
	res := &Result{}
	var (
		workoutType string
		payload     []byte
	)
	err := row.Scan(
		&res.ID, &res.SessionID, &res.WorkoutID, &res.MemberID, &workoutType,
		&res.CompletionTimeSeconds, &res.Score, &res.RoundsCompleted,
		&res.ExercisesCompleted, &res.ExercisesSkipped, &res.TotalSets, &payload,
		&res.Notes, &res.Rating, &res.Mood, &res.EnergyLevel, &res.AvgHeartRate, &res.CaloriesBurned,
		&res.IsPublic, &res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.WorkoutType = phase.Type(workoutType)
	if len(payload) > 0 {
		res.Payload = payload
	}
	return res, nil
}
