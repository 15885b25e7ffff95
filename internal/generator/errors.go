package generator

import (
	"errors"
	"fmt"

	"dailytrivia/internal/selection"
)

// Fatal generation errors. Check with errors.Is.
var (
	ErrNotEnoughQuestions     = errors.New("not enough available questions")
	ErrNoFinalClue            = errors.New("no available final clue")
	ErrInsufficientCategories = selection.ErrInsufficientCategories
)

// Error reports the state a generation run failed in and, during assembly,
// the 1-based round that could not be filled.
type Error struct {
	State State
	Round int
	Err   error
}

func (e *Error) Error() string {
	if e.Round > 0 {
		return fmt.Sprintf("generation failed in %s at round %d: %v", e.State, e.Round, e.Err)
	}
	return fmt.Sprintf("generation failed in %s: %v", e.State, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
