package results

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/gymsessions/internal/workout/phase"
)

// SessionSnapshot is the part of a session the synthesizer needs. Progress
// counts come from the exercise/set tracker, everything else from the
// session row itself.
type SessionSnapshot struct {
	SessionID    string
	WorkoutID    int
	MemberID     int
	WorkoutType  phase.Type
	PhaseConfig  []byte
	PhaseActions []phase.Event

	ElapsedSeconds     int
	ExercisesTotal     int
	ExercisesCompleted int
	ExercisesSkipped   int
	SetsCompleted      int

	CompletedAt time.Time
}

type Synthesizer struct{}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Build turns a finished session into a Result. Workouts without a type tag
// are scored by tracked exercise progress only.
func (s *Synthesizer) Build(snap SessionSnapshot, payload CompletionPayload) (*Result, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		SessionID:             snap.SessionID,
		WorkoutID:             snap.WorkoutID,
		MemberID:              snap.MemberID,
		WorkoutType:           snap.WorkoutType,
		CompletionTimeSeconds: snap.ElapsedSeconds,
		ExercisesCompleted:    snap.ExercisesCompleted,
		ExercisesSkipped:      snap.ExercisesSkipped,
		TotalSets:             snap.SetsCompleted,
		Notes:                 payload.Notes,
		Rating:                payload.Rating,
		Mood:                  payload.Mood,
		EnergyLevel:           payload.EnergyLevel,
		AvgHeartRate:          payload.AvgHeartRate,
		CaloriesBurned:        payload.CaloriesBurned,
		IsPublic:              payload.IsPublic,
		CreatedAt:             snap.CompletedAt,
	}

	if snap.WorkoutType == "" {
		res.Score = fmt.Sprintf("%d/%d exercises", snap.ExercisesCompleted, snap.ExercisesTotal)
		return res, nil
	}

	engine, err := phase.Replay(snap.WorkoutType, snap.PhaseConfig, snap.PhaseActions)
	if err != nil {
		return nil, fmt.Errorf("replay %s engine: %w", snap.WorkoutType, err)
	}
	summary := engine.Finalize(snap.ElapsedSeconds)

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	res.Payload = summaryJson
	res.RoundsCompleted = summary.RoundsCompleted
	if summary.ExercisesCompleted > res.ExercisesCompleted {
		res.ExercisesCompleted = summary.ExercisesCompleted
	}
	res.Score = Score(summary)

	return res, nil
}

// Score renders the type specific headline of a summary, e.g. "5 rounds + 2"
// for an AMRAP or "12:34" for a finished ForTime.
func Score(summary phase.Summary) string {
	switch summary.Type {
	case phase.TypeEMOM:
		return fmt.Sprintf("%d/%d minutes", min(summary.ExercisesCompleted, summary.TotalMinutes), summary.TotalMinutes)
	case phase.TypeAMRAP:
		return fmt.Sprintf("%d rounds + %d", summary.RoundsCompleted, summary.PartialRound)
	case phase.TypeForTime:
		if summary.Finished {
			return FormatDuration(summary.ElapsedSeconds)
		}
		return fmt.Sprintf("DNF (%d steps)", summary.ExercisesCompleted)
	case phase.TypeTabata:
		return fmt.Sprintf("%d intervals", summary.IntervalsCompleted)
	case phase.TypeLadder:
		return fmt.Sprintf("%d steps", summary.StepsCompleted)
	default:
		return ""
	}
}

// FormatDuration formats seconds as m:ss, or h:mm:ss past one hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
