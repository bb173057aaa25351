package sessions

import "errors"

var (
	ErrConflict               = errors.New("member already has an open workout session")
	ErrNotFound               = errors.New("not found")
	ErrUnauthorized           = errors.New("session does not belong to member")
	ErrInvalidStateTransition = errors.New("invalid session state transition")
	ErrNoPhaseConfig          = errors.New("workout has no phase configuration")
	ErrDuplicateExercise      = errors.New("exercise is listed more than once")
)
