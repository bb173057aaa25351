package phase

import "fmt"

type LadderType string

const (
	LadderAscending  LadderType = "ascending"
	LadderDescending LadderType = "descending"
	LadderPyramid    LadderType = "pyramid"
)

type LadderExercise struct {
	ExerciseID int        `json:"exerciseId"`
	StartReps  int        `json:"startReps"`
	EndReps    int        `json:"endReps"`
	Increment  int        `json:"increment"`
	LadderType LadderType `json:"ladderType"`
}

type LadderConfig struct {
	// LadderType applies to exercises that do not set their own.
	LadderType LadderType       `json:"ladderType"`
	Exercises  []LadderExercise `json:"exercises"`
}

// Ladder walks a generated rep sequence per exercise, one explicit step
// completion at a time, then moves to the next exercise.
type Ladder struct {
	steps [][]int
	ids   []int

	exerciseIndex      int
	stepIndex          int
	stepsCompleted     int
	exercisesCompleted int
	volume             int
}

func NewLadder(cfg LadderConfig) (*Ladder, error) {
	if len(cfg.Exercises) == 0 {
		return nil, fmt.Errorf("%w: ladder needs at least one exercise", ErrInvalidConfig)
	}

	l := &Ladder{}
	for i, ex := range cfg.Exercises {
		if ex.LadderType == "" {
			ex.LadderType = cfg.LadderType
		}
		steps, err := LadderSteps(ex)
		if err != nil {
			return nil, fmt.Errorf("ladder exercise %d: %w", i, err)
		}
		l.steps = append(l.steps, steps)
		l.ids = append(l.ids, ex.ExerciseID)
	}
	return l, nil
}

// LadderSteps generates the rep sequence of one ladder exercise.
func LadderSteps(ex LadderExercise) ([]int, error) {
	inc := ex.Increment
	if inc == 0 {
		inc = 1
	}
	if inc < 0 || ex.StartReps <= 0 || ex.EndReps <= 0 {
		return nil, fmt.Errorf("%w: reps and increment must be positive", ErrInvalidConfig)
	}

	var steps []int
	switch ex.LadderType {
	case LadderAscending, LadderPyramid:
		if ex.StartReps > ex.EndReps {
			return nil, fmt.Errorf("%w: %s ladder needs start <= end", ErrInvalidConfig, ex.LadderType)
		}
		for reps := ex.StartReps; reps <= ex.EndReps; reps += inc {
			steps = append(steps, reps)
		}
		if ex.LadderType == LadderPyramid {
			for reps := ex.EndReps - inc; reps >= ex.StartReps; reps -= inc {
				steps = append(steps, reps)
			}
		}
	case LadderDescending:
		if ex.StartReps < ex.EndReps {
			return nil, fmt.Errorf("%w: descending ladder needs start >= end", ErrInvalidConfig)
		}
		for reps := ex.StartReps; reps >= ex.EndReps; reps -= inc {
			steps = append(steps, reps)
		}
	default:
		return nil, fmt.Errorf("%w: unknown ladder type %q", ErrInvalidConfig, ex.LadderType)
	}
	return steps, nil
}

func (l *Ladder) Type() Type {
	return TypeLadder
}

func (l *Ladder) finished() bool {
	return l.exerciseIndex >= len(l.steps)
}

func (l *Ladder) Advance(ev Event) error {
	if ev.Kind != EventStepCompleted {
		return fmt.Errorf("ladder: unsupported event %q", ev.Kind)
	}
	if l.finished() {
		return ErrSequenceComplete
	}

	l.volume += l.steps[l.exerciseIndex][l.stepIndex]
	l.stepsCompleted++
	l.stepIndex++
	if l.stepIndex >= len(l.steps[l.exerciseIndex]) {
		l.exerciseIndex++
		l.exercisesCompleted++
		l.stepIndex = 0
	}
	return nil
}

func (l *Ladder) PhaseAt(elapsed int) Phase {
	elapsed = clampElapsed(elapsed)
	p := Phase{
		Type:            TypeLadder,
		Elapsed:         elapsed,
		RoundsCompleted: l.exercisesCompleted,
		IsWork:          !l.finished(),
		Finished:        l.finished(),
	}
	if l.finished() {
		last := len(l.steps) - 1
		p.ExerciseIndex = last
		p.ExerciseID = l.ids[last]
		p.Step = len(l.steps[last])
		p.Round = len(l.steps)
		return p
	}
	p.ExerciseIndex = l.exerciseIndex
	p.ExerciseID = l.ids[l.exerciseIndex]
	p.Round = l.exerciseIndex + 1
	p.Step = l.stepIndex + 1
	p.TargetReps = l.steps[l.exerciseIndex][l.stepIndex]
	return p
}

func (l *Ladder) Finalize(elapsed int) Summary {
	return Summary{
		Type:               TypeLadder,
		ElapsedSeconds:     clampElapsed(elapsed),
		ExercisesCompleted: l.exercisesCompleted,
		StepsCompleted:     l.stepsCompleted,
		TotalVolume:        l.volume,
		Finished:           l.finished(),
	}
}
