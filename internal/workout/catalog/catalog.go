package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/2beens/gymsessions/internal/workout/phase"
)

var ErrWorkoutNotFound = errors.New("workout not found")

type Workout struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	Type        phase.Type        `json:"type,omitempty"`
	PhaseConfig json.RawMessage   `json:"phaseConfig,omitempty"`
	Exercises   []PlannedExercise `json:"exercises"`
}

// PlannedExercise is one exercise of a workout template, with optional
// planned values. A nil PlannedSets means one set.
type PlannedExercise struct {
	ExerciseID             int      `json:"exerciseId"`
	OrderInWorkout         int      `json:"orderInWorkout"`
	PlannedSets            *int     `json:"plannedSets,omitempty"`
	PlannedReps            *int     `json:"plannedReps,omitempty"`
	PlannedWeightKg        *float64 `json:"plannedWeightKg,omitempty"`
	PlannedDistanceMeters  *int     `json:"plannedDistanceMeters,omitempty"`
	PlannedDurationSeconds *int     `json:"plannedDurationSeconds,omitempty"`
	PlannedRestSeconds     *int     `json:"plannedRestSeconds,omitempty"`
}

// Catalog answers which workouts exist and what they consist of.
type Catalog interface {
	GetWorkout(ctx context.Context, id int) (*Workout, error)
}

// StaticCatalog serves a fixed set of workouts. Used in development mode and tests.
type StaticCatalog struct {
	mu       sync.RWMutex
	workouts map[int]*Workout
}

func NewStaticCatalog(workouts ...*Workout) *StaticCatalog {
	c := &StaticCatalog{
		workouts: make(map[int]*Workout, len(workouts)),
	}
	for _, w := range workouts {
		c.workouts[w.ID] = w
	}
	return c
}

// LoadStaticCatalog reads a JSON array of workouts from path.
func LoadStaticCatalog(path string) (*StaticCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workouts file: %w", err)
	}
	defer f.Close()

	var workouts []*Workout
	if err := json.NewDecoder(f).Decode(&workouts); err != nil {
		return nil, fmt.Errorf("decode workouts file [%s]: %w", path, err)
	}
	for _, w := range workouts {
		if w.Type != "" && !w.Type.IsValid() {
			return nil, fmt.Errorf("workout %d: %w: %s", w.ID, phase.ErrUnknownType, w.Type)
		}
	}
	return NewStaticCatalog(workouts...), nil
}

func (c *StaticCatalog) Add(w *Workout) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workouts[w.ID] = w
}

func (c *StaticCatalog) GetWorkout(_ context.Context, id int) (*Workout, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	w, ok := c.workouts[id]
	if !ok {
		return nil, ErrWorkoutNotFound
	}
	return w, nil
}
