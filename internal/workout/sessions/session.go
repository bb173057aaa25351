package sessions

import (
	"encoding/json"
	"time"

	"github.com/2beens/gymsessions/internal/workout/phase"
)

// Status can be one of:
//   - active
//   - paused
//   - completed (terminal)
//   - abandoned (terminal)
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

func (s Status) String() string {
	return string(s)
}

// IsOpen is true for the statuses covered by the one-open-session-per-member rule.
func (s Status) IsOpen() bool {
	return s == StatusActive || s == StatusPaused
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

type ExerciseStatus string

const (
	ExerciseNotStarted ExerciseStatus = "not_started"
	ExerciseInProgress ExerciseStatus = "in_progress"
	ExerciseCompleted  ExerciseStatus = "completed"
	ExerciseSkipped    ExerciseStatus = "skipped"
)

func (s ExerciseStatus) IsTerminal() bool {
	return s == ExerciseCompleted || s == ExerciseSkipped
}

type SetStatus string

const (
	SetNotStarted SetStatus = "not_started"
	SetInProgress SetStatus = "in_progress"
	SetCompleted  SetStatus = "completed"
)

// Session is one timed attempt at a workout. Sessions are never deleted,
// terminal ones stay around as history.
type Session struct {
	ID                   string          `json:"id"`
	WorkoutID            int             `json:"workoutId"`
	MemberID             int             `json:"memberId"`
	WorkoutType          phase.Type      `json:"workoutType,omitempty"`
	PhaseConfig          json.RawMessage `json:"phaseConfig,omitempty"`
	PhaseActions         []phase.Event   `json:"phaseActions"`
	Status               Status          `json:"status"`
	StartTime            time.Time       `json:"startTime"`
	PausedAt             *time.Time      `json:"pausedAt,omitempty"`
	TotalPausedSeconds   int             `json:"totalPausedSeconds"`
	EndTime              *time.Time      `json:"endTime,omitempty"`
	CurrentExerciseIndex int             `json:"currentExerciseIndex"`
	Notes                string          `json:"notes,omitempty"`
	ResultID             *int            `json:"resultId,omitempty"`
	CreatedDate          time.Time       `json:"createdDate"`
	ModifiedDate         time.Time       `json:"modifiedDate"`

	Exercises []*ExerciseProgress `json:"exerciseProgress"`
}

// EffectiveElapsed is the wall-clock time since start minus paused time, in
// whole seconds. A paused session is measured up to pausedAt, so the value
// never moves backwards across pause/resume.
func (s *Session) EffectiveElapsed(now time.Time) int {
	end := now
	switch {
	case s.EndTime != nil:
		end = *s.EndTime
	case s.Status == StatusPaused && s.PausedAt != nil:
		end = *s.PausedAt
	}

	elapsed := int(end.Sub(s.StartTime).Seconds()) - s.TotalPausedSeconds
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (s *Session) Exercise(exerciseID int) *ExerciseProgress {
	for _, ep := range s.Exercises {
		if ep.ExerciseID == exerciseID {
			return ep
		}
	}
	return nil
}

// ExerciseCounts returns how many exercises ended completed and skipped, and
// how many sets were completed across the session.
func (s *Session) ExerciseCounts() (completed, skipped, setsCompleted int) {
	for _, ep := range s.Exercises {
		switch ep.Status {
		case ExerciseCompleted:
			completed++
		case ExerciseSkipped:
			skipped++
		}
		for _, sp := range ep.Sets {
			if sp.Status == SetCompleted {
				setsCompleted++
			}
		}
	}
	return completed, skipped, setsCompleted
}

type ExerciseProgress struct {
	ID               int            `json:"id"`
	SessionID        string         `json:"sessionId"`
	ExerciseID       int            `json:"exerciseId"`
	OrderInWorkout   int            `json:"orderInWorkout"`
	Status           ExerciseStatus `json:"status"`
	StartTime        *time.Time     `json:"startTime,omitempty"`
	EndTime          *time.Time     `json:"endTime,omitempty"`
	TotalTimeSeconds int            `json:"totalTimeSeconds"`
	Notes            string         `json:"notes,omitempty"`

	PlannedSets            *int     `json:"plannedSets,omitempty"`
	PlannedReps            *int     `json:"plannedReps,omitempty"`
	PlannedWeightKg        *float64 `json:"plannedWeightKg,omitempty"`
	PlannedDistanceMeters  *int     `json:"plannedDistanceMeters,omitempty"`
	PlannedDurationSeconds *int     `json:"plannedDurationSeconds,omitempty"`
	PlannedRestSeconds     *int     `json:"plannedRestSeconds,omitempty"`

	Sets []*SetProgress `json:"sets"`
}

func (ep *ExerciseProgress) Set(setNumber int) *SetProgress {
	for _, sp := range ep.Sets {
		if sp.SetNumber == setNumber {
			return sp
		}
	}
	return nil
}

type SetProgress struct {
	ID                    int        `json:"id"`
	ExerciseProgressID    int        `json:"exerciseProgressId"`
	SetNumber             int        `json:"setNumber"`
	Status                SetStatus  `json:"status"`
	StartTime             *time.Time `json:"startTime,omitempty"`
	EndTime               *time.Time `json:"endTime,omitempty"`
	ActualReps            *int       `json:"actualReps,omitempty"`
	ActualWeightKg        *float64   `json:"actualWeightKg,omitempty"`
	ActualDistanceMeters  *int       `json:"actualDistanceMeters,omitempty"`
	ActualDurationSeconds *int       `json:"actualDurationSeconds,omitempty"`
	ActualRestSeconds     *int       `json:"actualRestSeconds,omitempty"`
	RestStartTime         *time.Time `json:"restStartTime,omitempty"`
	RestEndTime           *time.Time `json:"restEndTime,omitempty"`
	Notes                 string     `json:"notes,omitempty"`
	RPE                   *int       `json:"rpe,omitempty"`
}

// SetActuals carries the values a client reports for a set. Nil fields are
// left untouched when merged.
type SetActuals struct {
	ActualReps            *int       `json:"actualReps,omitempty"`
	ActualWeightKg        *float64   `json:"actualWeightKg,omitempty"`
	ActualDistanceMeters  *int       `json:"actualDistanceMeters,omitempty"`
	ActualDurationSeconds *int       `json:"actualDurationSeconds,omitempty"`
	ActualRestSeconds     *int       `json:"actualRestSeconds,omitempty"`
	RestStartTime         *time.Time `json:"restStartTime,omitempty"`
	RestEndTime           *time.Time `json:"restEndTime,omitempty"`
	Notes                 *string    `json:"notes,omitempty"`
	RPE                   *int       `json:"rpe,omitempty"`
}

func (sp *SetProgress) Apply(a SetActuals) {
	if a.ActualReps != nil {
		sp.ActualReps = a.ActualReps
	}
	if a.ActualWeightKg != nil {
		sp.ActualWeightKg = a.ActualWeightKg
	}
	if a.ActualDistanceMeters != nil {
		sp.ActualDistanceMeters = a.ActualDistanceMeters
	}
	if a.ActualDurationSeconds != nil {
		sp.ActualDurationSeconds = a.ActualDurationSeconds
	}
	if a.ActualRestSeconds != nil {
		sp.ActualRestSeconds = a.ActualRestSeconds
	}
	if a.RestStartTime != nil {
		sp.RestStartTime = a.RestStartTime
	}
	if a.RestEndTime != nil {
		sp.RestEndTime = a.RestEndTime
	}
	if a.Notes != nil {
		sp.Notes = *a.Notes
	}
	if a.RPE != nil {
		sp.RPE = a.RPE
	}
}

// ExerciseUpdate holds notes and planned-value overrides for an exercise.
type ExerciseUpdate struct {
	Notes                  *string  `json:"notes,omitempty"`
	PlannedReps            *int     `json:"plannedReps,omitempty"`
	PlannedWeightKg        *float64 `json:"plannedWeightKg,omitempty"`
	PlannedDistanceMeters  *int     `json:"plannedDistanceMeters,omitempty"`
	PlannedDurationSeconds *int     `json:"plannedDurationSeconds,omitempty"`
	PlannedRestSeconds     *int     `json:"plannedRestSeconds,omitempty"`
}

func (ep *ExerciseProgress) Apply(u ExerciseUpdate) {
	if u.Notes != nil {
		ep.Notes = *u.Notes
	}
	if u.PlannedReps != nil {
		ep.PlannedReps = u.PlannedReps
	}
	if u.PlannedWeightKg != nil {
		ep.PlannedWeightKg = u.PlannedWeightKg
	}
	if u.PlannedDistanceMeters != nil {
		ep.PlannedDistanceMeters = u.PlannedDistanceMeters
	}
	if u.PlannedDurationSeconds != nil {
		ep.PlannedDurationSeconds = u.PlannedDurationSeconds
	}
	if u.PlannedRestSeconds != nil {
		ep.PlannedRestSeconds = u.PlannedRestSeconds
	}
}

// Valid rejects negative measurements and an rpe outside 1-10.
func (a SetActuals) Valid() bool {
	for _, v := range []*int{a.ActualReps, a.ActualDistanceMeters, a.ActualDurationSeconds, a.ActualRestSeconds} {
		if v != nil && *v < 0 {
			return false
		}
	}
	if a.ActualWeightKg != nil && *a.ActualWeightKg < 0 {
		return false
	}
	return a.RPE == nil || (*a.RPE >= 1 && *a.RPE <= 10)
}
