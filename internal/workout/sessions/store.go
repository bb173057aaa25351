package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/gymsessions/internal/workout/phase"
	"github.com/2beens/gymsessions/internal/workout/results"
)

type ListParams struct {
	MemberID  int
	WorkoutID *int
	Page      int
	Size      int
}

// Store persists sessions with their progress rows. Every mutation is a
// conditional update: a false return means the precondition did not hold
// (row missing, wrong status, terminal session), never a storage failure.
type Store interface {
	// Create inserts the session with its exercise and set rows. Returns
	// ErrConflict when the member already has an open session and
	// ErrDuplicateExercise when two exercise rows share an exercise id.
	Create(ctx context.Context, s *Session) error
	// Get returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (*Session, error)
	// GetActiveForMember returns nil, nil when the member has no open session.
	GetActiveForMember(ctx context.Context, memberID int) (*Session, error)
	ListForMember(ctx context.Context, params ListParams) ([]*Session, error)

	Pause(ctx context.Context, id string, at time.Time) (bool, error)
	Resume(ctx context.Context, id string, at time.Time) (bool, error)
	// Abandon moves an open session to abandoned. An open pause is folded into
	// the total paused time.
	Abandon(ctx context.Context, id string, at time.Time) (bool, error)
	// Complete moves the session from expectedStatus to completed and stores res
	// in the same transaction, setting res.ID. Returns ErrInvalidStateTransition
	// when the session is no longer in expectedStatus.
	Complete(ctx context.Context, id string, expectedStatus Status, at time.Time, res *results.Result) error
	// AppendAction adds ev to the action log of an active session, provided the
	// log still holds expectedCount entries.
	AppendAction(ctx context.Context, id string, expectedCount int, ev phase.Event) (bool, error)
	// ListStale returns ids of open sessions created before createdBefore.
	ListStale(ctx context.Context, createdBefore time.Time) ([]string, error)

	StartExercise(ctx context.Context, sessionID string, exerciseID int, at time.Time) (bool, error)
	FinishExercise(ctx context.Context, sessionID string, exerciseID int, status ExerciseStatus, at time.Time) (bool, error)
	UpdateExercise(ctx context.Context, sessionID string, exerciseID int, upd ExerciseUpdate) (bool, error)
	StartSet(ctx context.Context, sessionID string, exerciseID, setNumber int, at time.Time) (bool, error)
	CompleteSet(ctx context.Context, sessionID string, exerciseID, setNumber int, actuals SetActuals, at time.Time) (bool, error)
	UpdateSet(ctx context.Context, sessionID string, exerciseID, setNumber int, actuals SetActuals) (bool, error)
}

// checkUniqueExercises makes sure every exercise id appears once, so progress
// calls keyed by exercise id always address a single row.
func checkUniqueExercises(exercises []*ExerciseProgress) error {
	seen := make(map[int]struct{}, len(exercises))
	for _, ep := range exercises {
		if _, ok := seen[ep.ExerciseID]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateExercise, ep.ExerciseID)
		}
		seen[ep.ExerciseID] = struct{}{}
	}
	return nil
}

// pausedSecondsUntil is the length of an open pause started at pausedAt, measured at at.
func pausedSecondsUntil(pausedAt *time.Time, at time.Time) int {
	if pausedAt == nil {
		return 0
	}
	secs := int(at.Sub(*pausedAt).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}
