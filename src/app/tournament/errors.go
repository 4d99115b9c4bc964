package tournament

import (
	"errors"
	"fmt"

	"github.com/fencerfight/tourney/src/domain/shared"
)

var (
	ErrNoSuchPool       = fmt.Errorf("no such pool: %w", shared.ErrOutOfRange)
	ErrPoolProtected    = errors.New("pool 0 cannot be deleted")
	ErrNoSuchPair       = fmt.Errorf("no such pair in the current round: %w", shared.ErrOutOfRange)
	ErrByeBout          = errors.New("bye pairs are not fought")
	ErrPoolsNotFinished = fmt.Errorf("all pools must finish before the playoff: %w", shared.ErrInvalidState)
	ErrNoPlayoff        = fmt.Errorf("no playoff bracket: %w", shared.ErrNotFound)
)
