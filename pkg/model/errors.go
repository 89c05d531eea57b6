package model

import (
	"errors"
	"fmt"
)

// Input errors. All of them wrap ErrMalformedInput so callers can reject a
// snapshot with a single errors.Is check.
var (
	ErrMalformedInput = errors.New("malformed input")
	ErrDuplicateID    = fmt.Errorf("%w: duplicate identifier", ErrMalformedInput)
	ErrUnknownCourse  = fmt.Errorf("%w: unknown course", ErrMalformedInput)
	ErrUnknownGroup   = fmt.Errorf("%w: unknown group", ErrMalformedInput)
	ErrBadRanking     = fmt.Errorf("%w: preference list is not a ranking of all courses", ErrMalformedInput)
	ErrBadCourse      = fmt.Errorf("%w: invalid course record", ErrMalformedInput)
	ErrBadStudent     = fmt.Errorf("%w: invalid student record", ErrMalformedInput)
)
