package phase

import "fmt"

type EMOMExercise struct {
	ExerciseID    int `json:"exerciseId"`
	Reps          int `json:"reps"`
	RoundPosition int `json:"roundPosition"`
}

type EMOMConfig struct {
	TotalMinutes      int            `json:"totalMinutes"`
	ExercisesPerRound int            `json:"exercisesPerRound"`
	RoundCount        int            `json:"roundCount"`
	Exercises         []EMOMExercise `json:"exercises"`
}

// EMOM is the fixed-interval repeating sequence: one exercise per minute,
// cycling through the round pattern until the minutes run out.
type EMOM struct {
	cfg EMOMConfig
}

func NewEMOM(cfg EMOMConfig) (*EMOM, error) {
	if cfg.ExercisesPerRound <= 0 {
		cfg.ExercisesPerRound = len(cfg.Exercises)
	}
	if cfg.TotalMinutes <= 0 {
		cfg.TotalMinutes = cfg.ExercisesPerRound * cfg.RoundCount
	}
	if cfg.ExercisesPerRound <= 0 || cfg.TotalMinutes <= 0 {
		return nil, fmt.Errorf("%w: emom needs exercises per round and total minutes", ErrInvalidConfig)
	}
	return &EMOM{cfg: cfg}, nil
}

func (e *EMOM) Type() Type {
	return TypeEMOM
}

func (e *EMOM) Advance(Event) error {
	return ErrTimeDriven
}

func (e *EMOM) PhaseAt(elapsed int) Phase {
	elapsed = clampElapsed(elapsed)
	minute := e.currentMinute(elapsed)
	finished := elapsed >= e.cfg.TotalMinutes*60

	p := Phase{
		Type:            TypeEMOM,
		Elapsed:         elapsed,
		Minute:          minute,
		ExerciseIndex:   (minute - 1) % e.cfg.ExercisesPerRound,
		Round:           (minute-1)/e.cfg.ExercisesPerRound + 1,
		IsWork:          !finished,
		RoundsCompleted: e.roundsCompleted(elapsed),
		Finished:        finished,
	}
	if p.ExerciseIndex < len(e.cfg.Exercises) {
		p.ExerciseID = e.cfg.Exercises[p.ExerciseIndex].ExerciseID
		p.TargetReps = e.cfg.Exercises[p.ExerciseIndex].Reps
	}
	if !finished {
		p.PhaseElapsed = elapsed - (minute-1)*60
		p.PhaseRemaining = 60 - p.PhaseElapsed
		p.TimeRemaining = e.cfg.TotalMinutes*60 - elapsed
	}
	return p
}

func (e *EMOM) Finalize(elapsed int) Summary {
	elapsed = clampElapsed(elapsed)
	minutesDone := elapsed / 60
	if minutesDone > e.cfg.TotalMinutes {
		minutesDone = e.cfg.TotalMinutes
	}
	return Summary{
		Type:               TypeEMOM,
		ElapsedSeconds:     elapsed,
		RoundsCompleted:    e.roundsCompleted(elapsed),
		ExercisesCompleted: minutesDone,
		TotalMinutes:       e.cfg.TotalMinutes,
		Finished:           elapsed >= e.cfg.TotalMinutes*60,
	}
}

func (e *EMOM) currentMinute(elapsed int) int {
	minute := elapsed/60 + 1
	if minute > e.cfg.TotalMinutes {
		return e.cfg.TotalMinutes
	}
	return minute
}

// a round counts once every minute of it has fully elapsed
func (e *EMOM) roundsCompleted(elapsed int) int {
	minutesDone := elapsed / 60
	if minutesDone > e.cfg.TotalMinutes {
		minutesDone = e.cfg.TotalMinutes
	}
	return minutesDone / e.cfg.ExercisesPerRound
}
