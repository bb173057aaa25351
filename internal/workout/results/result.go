package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymsessions/internal/workout/phase"
)

var (
	ErrInvalidPayload = errors.New("invalid completion payload")
	ErrNotFound       = errors.New("result not found")
)

var validMoods = map[string]bool{
	"great":     true,
	"good":      true,
	"okay":      true,
	"tired":     true,
	"exhausted": true,
}

var validEnergyLevels = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

// CompletionPayload is what the athlete reports when finishing a session.
type CompletionPayload struct {
	Notes          string `json:"notes,omitempty"`
	Rating         int    `json:"rating,omitempty"`
	Mood           string `json:"mood,omitempty"`
	EnergyLevel    string `json:"energyLevel,omitempty"`
	AvgHeartRate   *int   `json:"avgHeartRate,omitempty"`
	CaloriesBurned *int   `json:"caloriesBurned,omitempty"`
	IsPublic       bool   `json:"isPublic"`
}

func (p CompletionPayload) Validate() error {
	if p.Rating < 0 || p.Rating > 5 {
		return fmt.Errorf("%w: rating %d out of range 1-5", ErrInvalidPayload, p.Rating)
	}
	if p.Mood != "" && !validMoods[p.Mood] {
		return fmt.Errorf("%w: unknown mood %q", ErrInvalidPayload, p.Mood)
	}
	if p.EnergyLevel != "" && !validEnergyLevels[p.EnergyLevel] {
		return fmt.Errorf("%w: unknown energy level %q", ErrInvalidPayload, p.EnergyLevel)
	}
	if p.AvgHeartRate != nil && *p.AvgHeartRate < 0 {
		return fmt.Errorf("%w: negative heart rate", ErrInvalidPayload)
	}
	if p.CaloriesBurned != nil && *p.CaloriesBurned < 0 {
		return fmt.Errorf("%w: negative calories", ErrInvalidPayload)
	}
	return nil
}

// Result is the normalized outcome of a completed session. Payload carries the
// workout-type specific summary as opaque JSON.
type Result struct {
	ID                    int             `json:"id"`
	SessionID             string          `json:"sessionId"`
	WorkoutID             int             `json:"workoutId"`
	MemberID              int             `json:"memberId"`
	WorkoutType           phase.Type      `json:"workoutType,omitempty"`
	CompletionTimeSeconds int             `json:"completionTimeSeconds"`
	Score                 string          `json:"score"`
	RoundsCompleted       int             `json:"roundsCompleted"`
	ExercisesCompleted    int             `json:"exercisesCompleted"`
	ExercisesSkipped      int             `json:"exercisesSkipped"`
	TotalSets             int             `json:"totalSets"`
	Payload               json.RawMessage `json:"payload,omitempty"`

	Notes          string `json:"notes,omitempty"`
	Rating         int    `json:"rating,omitempty"`
	Mood           string `json:"mood,omitempty"`
	EnergyLevel    string `json:"energyLevel,omitempty"`
	AvgHeartRate   *int   `json:"avgHeartRate,omitempty"`
	CaloriesBurned *int   `json:"caloriesBurned,omitempty"`
	IsPublic       bool   `json:"isPublic"`

	CreatedAt time.Time `json:"createdAt"`
}
