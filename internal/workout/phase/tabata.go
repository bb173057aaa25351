package phase

import "fmt"

const (
	defaultTabataWorkSeconds = 20
	defaultTabataRestSeconds = 10
	defaultTabataRounds      = 8
)

// TabataExercise configures one exercise. A nil RestSeconds means the
// default rest; an explicit 0 means back to back work intervals.
type TabataExercise struct {
	ExerciseID  int  `json:"exerciseId"`
	WorkSeconds int  `json:"workSeconds"`
	RestSeconds *int `json:"restSeconds,omitempty"`
	Rounds      int  `json:"rounds"`
}

type tabataInterval struct {
	exerciseID  int
	workSeconds int
	restSeconds int
	rounds      int
}

type TabataConfig struct {
	Exercises []TabataExercise `json:"exercises"`
}

// Tabata cycles work/rest intervals per exercise, processing exercises in
// order. It is fully time driven: the phase is recomputed from elapsed alone.
type Tabata struct {
	intervals []tabataInterval
}

func NewTabata(cfg TabataConfig) (*Tabata, error) {
	if len(cfg.Exercises) == 0 {
		return nil, fmt.Errorf("%w: tabata needs at least one exercise", ErrInvalidConfig)
	}
	intervals := make([]tabataInterval, 0, len(cfg.Exercises))
	for i, ex := range cfg.Exercises {
		in := tabataInterval{
			exerciseID:  ex.ExerciseID,
			workSeconds: ex.WorkSeconds,
			restSeconds: defaultTabataRestSeconds,
			rounds:      ex.Rounds,
		}
		if in.workSeconds <= 0 {
			in.workSeconds = defaultTabataWorkSeconds
		}
		if ex.RestSeconds != nil {
			if *ex.RestSeconds < 0 {
				return nil, fmt.Errorf("%w: tabata exercise %d has negative rest", ErrInvalidConfig, i)
			}
			in.restSeconds = *ex.RestSeconds
		}
		if in.rounds <= 0 {
			in.rounds = defaultTabataRounds
		}
		intervals = append(intervals, in)
	}
	return &Tabata{intervals: intervals}, nil
}

func (t *Tabata) Type() Type {
	return TypeTabata
}

func (t *Tabata) Advance(Event) error {
	return ErrTimeDriven
}

// locate finds the exercise containing elapsed and the offset into it.
// ok is false once every exercise has run out.
func (t *Tabata) locate(elapsed int) (index, offset int, ok bool) {
	offset = elapsed
	for i, in := range t.intervals {
		duration := in.rounds * (in.workSeconds + in.restSeconds)
		if offset < duration {
			return i, offset, true
		}
		offset -= duration
	}
	return len(t.intervals) - 1, 0, false
}

func (t *Tabata) PhaseAt(elapsed int) Phase {
	elapsed = clampElapsed(elapsed)
	index, offset, ok := t.locate(elapsed)
	in := t.intervals[index]

	p := Phase{
		Type:          TypeTabata,
		Elapsed:       elapsed,
		ExerciseIndex: index,
		ExerciseID:    in.exerciseID,
	}
	if !ok {
		p.Round = in.rounds
		p.RoundsCompleted = in.rounds
		p.Finished = true
		return p
	}

	cycle := in.workSeconds + in.restSeconds
	inCycle := offset % cycle
	p.Round = offset/cycle + 1
	p.RoundsCompleted = p.Round - 1
	p.IsWork = inCycle < in.workSeconds
	if p.IsWork {
		p.PhaseElapsed = inCycle
		p.PhaseRemaining = in.workSeconds - inCycle
	} else {
		p.PhaseElapsed = inCycle - in.workSeconds
		p.PhaseRemaining = cycle - inCycle
	}
	return p
}

func (t *Tabata) Finalize(elapsed int) Summary {
	elapsed = clampElapsed(elapsed)
	index, offset, ok := t.locate(elapsed)

	s := Summary{
		Type:           TypeTabata,
		ElapsedSeconds: elapsed,
		Finished:       !ok,
	}
	reached := index
	if !ok {
		reached = len(t.intervals)
	}
	for i := 0; i < reached; i++ {
		s.IntervalsCompleted += t.intervals[i].rounds
		s.RoundsCompleted += t.intervals[i].rounds
	}
	s.ExercisesCompleted = reached

	if ok {
		in := t.intervals[index]
		cycle := in.workSeconds + in.restSeconds
		fullCycles := offset / cycle
		s.RoundsCompleted += fullCycles
		s.IntervalsCompleted += fullCycles
		// the work half of the running cycle is done once rest has started
		if offset%cycle >= in.workSeconds {
			s.IntervalsCompleted++
		}
	}
	return s
}
