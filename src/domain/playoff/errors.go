package playoff

import (
	"errors"
	"fmt"

	"github.com/fencerfight/tourney/src/domain/shared"
)

var (
	ErrTooFewEntrants    = errors.New("at least two entrants are required")
	ErrOddEntrants       = errors.New("entrant count must be even")
	ErrNoSuchMatch       = fmt.Errorf("no such bracket match: %w", shared.ErrOutOfRange)
	ErrRoundIncomplete   = fmt.Errorf("current round has undecided matches: %w", shared.ErrInvalidState)
	ErrBracketComplete   = fmt.Errorf("bracket already complete: %w", shared.ErrInvalidState)
	ErrBracketIncomplete = fmt.Errorf("bracket not complete: %w", shared.ErrInvalidState)
)
