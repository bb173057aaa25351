package phase

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownType      = errors.New("unknown workout type")
	ErrInvalidConfig    = errors.New("invalid workout type config")
	ErrTimeDriven       = errors.New("workout type progresses with time only")
	ErrSequenceComplete = errors.New("workout sequence already complete")
	ErrTimeCapReached   = errors.New("time cap reached")
)

// Type is the workout type tag stored with a session. It selects the Engine variant.
type Type string

const (
	TypeEMOM    Type = "emom"
	TypeAMRAP   Type = "amrap"
	TypeForTime Type = "for_time"
	TypeTabata  Type = "tabata"
	TypeLadder  Type = "ladder"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case TypeEMOM,
		TypeAMRAP,
		TypeForTime,
		TypeTabata,
		TypeLadder:
		return true
	default:
		return false
	}
}

// ActionDriven reports whether the type only progresses on explicit step completions.
func (t Type) ActionDriven() bool {
	return t == TypeAMRAP || t == TypeForTime || t == TypeLadder
}

type EventKind string

const (
	EventStepCompleted EventKind = "step_completed"
)

// Event is a single entry in a session action log.
type Event struct {
	Kind           EventKind `json:"kind"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
	At             time.Time `json:"at"`
}

// Phase describes where the athlete is right now. Fields irrelevant to the
// workout type are left zero.
type Phase struct {
	Type            Type `json:"type"`
	Elapsed         int  `json:"elapsed"`
	ExerciseIndex   int  `json:"exerciseIndex"`
	ExerciseID      int  `json:"exerciseId"`
	Round           int  `json:"round"`
	Minute          int  `json:"minute,omitempty"`
	Step            int  `json:"step,omitempty"`
	TargetReps      int  `json:"targetReps,omitempty"`
	IsWork          bool `json:"isWork"`
	PhaseElapsed    int  `json:"phaseElapsed"`
	PhaseRemaining  int  `json:"phaseRemaining"`
	TimeRemaining   int  `json:"timeRemaining,omitempty"`
	RoundsCompleted int  `json:"roundsCompleted"`
	Finished        bool `json:"finished"`
	// Boundaries crossed since the previous action or client tick, when known.
	Boundaries []BoundaryKind `json:"boundaries,omitempty"`
}

// Summary is the finalize output of an engine. The Type field tags which
// of the optional fields carry meaning.
type Summary struct {
	Type               Type  `json:"type"`
	ElapsedSeconds     int   `json:"elapsedSeconds"`
	RoundsCompleted    int   `json:"roundsCompleted"`
	ExercisesCompleted int   `json:"exercisesCompleted"`
	PartialRound       int   `json:"partialRound,omitempty"`
	StepsCompleted     int   `json:"stepsCompleted,omitempty"`
	IntervalsCompleted int   `json:"intervalsCompleted,omitempty"`
	TotalVolume        int   `json:"totalVolume,omitempty"`
	ExerciseSplits     []int `json:"exerciseSplits,omitempty"`
	TimeCapMinutes     int   `json:"timeCapMinutes,omitempty"`
	TotalMinutes       int   `json:"totalMinutes,omitempty"`
	Finished           bool  `json:"finished"`
}

// Engine maps configuration, elapsed seconds and the action log to a Phase.
// PhaseAt never mutates the engine, so the same engine can be asked about
// any point in time.
type Engine interface {
	Type() Type
	Advance(ev Event) error
	PhaseAt(elapsed int) Phase
	Finalize(elapsed int) Summary
}

// New decodes rawConfig for the given type and returns a fresh engine.
func New(t Type, rawConfig []byte) (Engine, error) {
	switch t {
	case TypeEMOM:
		var cfg EMOMConfig
		if err := decode(rawConfig, &cfg); err != nil {
			return nil, err
		}
		return NewEMOM(cfg)
	case TypeAMRAP:
		var cfg AMRAPConfig
		if err := decode(rawConfig, &cfg); err != nil {
			return nil, err
		}
		return NewAMRAP(cfg)
	case TypeForTime:
		var cfg ForTimeConfig
		if err := decode(rawConfig, &cfg); err != nil {
			return nil, err
		}
		return NewForTime(cfg)
	case TypeTabata:
		var cfg TabataConfig
		if err := decode(rawConfig, &cfg); err != nil {
			return nil, err
		}
		return NewTabata(cfg)
	case TypeLadder:
		var cfg LadderConfig
		if err := decode(rawConfig, &cfg); err != nil {
			return nil, err
		}
		return NewLadder(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

// Replay builds an engine and feeds it the recorded action log in order.
// Time-driven engines ignore the log.
func Replay(t Type, rawConfig []byte, actions []Event) (Engine, error) {
	engine, err := New(t, rawConfig)
	if err != nil {
		return nil, err
	}
	if !t.ActionDriven() {
		return engine, nil
	}
	for i, ev := range actions {
		if err := engine.Advance(ev); err != nil {
			return nil, fmt.Errorf("replay action %d: %w", i, err)
		}
	}
	return engine, nil
}

// PhaseSince recomputes the phase at elapsed and lists the boundaries crossed
// since an earlier tick at since. The earlier snapshot only sees the actions
// recorded up to since. A negative since skips the comparison.
func PhaseSince(t Type, rawConfig []byte, actions []Event, since, elapsed int) (Phase, error) {
	engine, err := Replay(t, rawConfig, actions)
	if err != nil {
		return Phase{}, err
	}
	cur := engine.PhaseAt(elapsed)
	if since < 0 || since > elapsed {
		return cur, nil
	}

	n := 0
	for n < len(actions) && actions[n].ElapsedSeconds <= since {
		n++
	}
	earlier, err := Replay(t, rawConfig, actions[:n])
	if err != nil {
		return Phase{}, err
	}
	cur.Boundaries = Boundaries(earlier.PhaseAt(since), cur)
	return cur, nil
}

func decode(rawConfig []byte, v any) error {
	if len(rawConfig) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidConfig)
	}
	if err := json.Unmarshal(rawConfig, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

type BoundaryKind string

const (
	BoundaryRound    BoundaryKind = "round_complete"
	BoundaryExercise BoundaryKind = "exercise_changed"
	BoundaryWork     BoundaryKind = "work_started"
	BoundaryRest     BoundaryKind = "rest_started"
	BoundaryFinished BoundaryKind = "finished"
)

// Boundaries lists what changed between two phase snapshots, e.g. a client
// tick that crossed a minute mark in an EMOM.
func Boundaries(prev, cur Phase) []BoundaryKind {
	var out []BoundaryKind
	if cur.RoundsCompleted > prev.RoundsCompleted {
		out = append(out, BoundaryRound)
	}
	if cur.ExerciseIndex != prev.ExerciseIndex {
		out = append(out, BoundaryExercise)
	}
	if cur.Type == TypeTabata && !cur.Finished && cur.IsWork != prev.IsWork {
		if cur.IsWork {
			out = append(out, BoundaryWork)
		} else {
			out = append(out, BoundaryRest)
		}
	}
	if cur.Finished && !prev.Finished {
		out = append(out, BoundaryFinished)
	}
	return out
}

func clampElapsed(elapsed int) int {
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
