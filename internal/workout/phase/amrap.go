package phase

import "fmt"

type AMRAPExercise struct {
	ExerciseID    int `json:"exerciseId"`
	Reps          int `json:"reps"`
	RoundPosition int `json:"roundPosition"`
}

type AMRAPConfig struct {
	TimeCapMinutes int             `json:"timeCapMinutes"`
	Exercises      []AMRAPExercise `json:"exercises"`
}

// AMRAP is the time-capped repeat-until-timeout variant. The athlete moves
// through the round only by completing exercises; the clock just caps it.
type AMRAP struct {
	cfg AMRAPConfig

	exerciseIndex      int
	roundsCompleted    int
	exercisesCompleted int
}

func NewAMRAP(cfg AMRAPConfig) (*AMRAP, error) {
	if cfg.TimeCapMinutes <= 0 || len(cfg.Exercises) == 0 {
		return nil, fmt.Errorf("%w: amrap needs a time cap and at least one exercise", ErrInvalidConfig)
	}
	return &AMRAP{cfg: cfg}, nil
}

func (a *AMRAP) Type() Type {
	return TypeAMRAP
}

func (a *AMRAP) Advance(ev Event) error {
	if ev.Kind != EventStepCompleted {
		return fmt.Errorf("amrap: unsupported event %q", ev.Kind)
	}
	if a.timeRemaining(ev.ElapsedSeconds) == 0 {
		return ErrTimeCapReached
	}

	a.exercisesCompleted++
	a.exerciseIndex++
	if a.exerciseIndex >= len(a.cfg.Exercises) {
		a.exerciseIndex = 0
		a.roundsCompleted++
	}
	return nil
}

func (a *AMRAP) PhaseAt(elapsed int) Phase {
	elapsed = clampElapsed(elapsed)
	remaining := a.timeRemaining(elapsed)
	ex := a.cfg.Exercises[a.exerciseIndex]
	return Phase{
		Type:            TypeAMRAP,
		Elapsed:         elapsed,
		ExerciseIndex:   a.exerciseIndex,
		ExerciseID:      ex.ExerciseID,
		TargetReps:      ex.Reps,
		Round:           a.roundsCompleted + 1,
		IsWork:          remaining > 0,
		PhaseElapsed:    elapsed,
		PhaseRemaining:  remaining,
		TimeRemaining:   remaining,
		RoundsCompleted: a.roundsCompleted,
		Finished:        remaining == 0,
	}
}

func (a *AMRAP) Finalize(elapsed int) Summary {
	elapsed = clampElapsed(elapsed)
	return Summary{
		Type:               TypeAMRAP,
		ElapsedSeconds:     elapsed,
		RoundsCompleted:    a.roundsCompleted,
		PartialRound:       a.exerciseIndex,
		ExercisesCompleted: a.exercisesCompleted,
		TimeCapMinutes:     a.cfg.TimeCapMinutes,
		Finished:           a.timeRemaining(elapsed) == 0,
	}
}

func (a *AMRAP) timeRemaining(elapsed int) int {
	remaining := a.cfg.TimeCapMinutes*60 - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
