package phase

import "fmt"

type ForTimeExercise struct {
	ExerciseID int `json:"exerciseId"`
	Reps       int `json:"reps"`
}

type ForTimeConfig struct {
	TotalRounds int               `json:"totalRounds"`
	Exercises   []ForTimeExercise `json:"exercises"`
}

// ForTime walks a fixed sequence of totalRounds x exercises steps as fast as
// possible. Elapsed time is only a stopwatch used for splits.
type ForTime struct {
	cfg ForTimeConfig
	// elapsed second at which each step was completed, in order
	completions []int
}

func NewForTime(cfg ForTimeConfig) (*ForTime, error) {
	if cfg.TotalRounds <= 0 {
		cfg.TotalRounds = 1
	}
	if len(cfg.Exercises) == 0 {
		return nil, fmt.Errorf("%w: for time needs at least one exercise", ErrInvalidConfig)
	}
	return &ForTime{cfg: cfg}, nil
}

func (f *ForTime) Type() Type {
	return TypeForTime
}

func (f *ForTime) totalSteps() int {
	return f.cfg.TotalRounds * len(f.cfg.Exercises)
}

func (f *ForTime) Advance(ev Event) error {
	if ev.Kind != EventStepCompleted {
		return fmt.Errorf("for time: unsupported event %q", ev.Kind)
	}
	if len(f.completions) >= f.totalSteps() {
		return ErrSequenceComplete
	}
	at := clampElapsed(ev.ElapsedSeconds)
	if start := f.stepStart(len(f.completions)); at < start {
		at = start
	}
	f.completions = append(f.completions, at)
	return nil
}

func (f *ForTime) PhaseAt(elapsed int) Phase {
	elapsed = clampElapsed(elapsed)
	step := len(f.completions)
	finished := step >= f.totalSteps()
	n := len(f.cfg.Exercises)

	p := Phase{
		Type:            TypeForTime,
		Elapsed:         elapsed,
		RoundsCompleted: step / n,
		IsWork:          !finished,
		Finished:        finished,
	}
	if finished {
		p.ExerciseIndex = n - 1
		p.Round = f.cfg.TotalRounds
		p.Step = f.totalSteps()
	} else {
		p.Step = step + 1
		p.ExerciseIndex = step % n
		p.Round = step/n + 1
		if phaseElapsed := elapsed - f.stepStart(step); phaseElapsed > 0 {
			p.PhaseElapsed = phaseElapsed
		}
	}
	p.ExerciseID = f.cfg.Exercises[p.ExerciseIndex].ExerciseID
	p.TargetReps = f.cfg.Exercises[p.ExerciseIndex].Reps
	return p
}

func (f *ForTime) Finalize(elapsed int) Summary {
	elapsed = clampElapsed(elapsed)
	step := len(f.completions)
	finished := step >= f.totalSteps()

	splits := make([]int, 0, step)
	for i, doneAt := range f.completions {
		splits = append(splits, doneAt-f.stepStart(i))
	}

	totalTime := elapsed
	if finished && step > 0 {
		totalTime = f.completions[step-1]
	}

	volume := 0
	for _, ex := range f.cfg.Exercises {
		volume += ex.Reps * f.cfg.TotalRounds
	}

	return Summary{
		Type:               TypeForTime,
		ElapsedSeconds:     totalTime,
		RoundsCompleted:    step / len(f.cfg.Exercises),
		ExercisesCompleted: step,
		ExerciseSplits:     splits,
		TotalVolume:        volume,
		Finished:           finished,
	}
}

// stepStart is the elapsed second at which step i began: zero for the first
// step, the previous completion otherwise.
func (f *ForTime) stepStart(i int) int {
	if i == 0 || len(f.completions) == 0 {
		return 0
	}
	return f.completions[i-1]
}
