package pool

import (
	"errors"
	"fmt"

	"github.com/fencerfight/tourney/src/domain/shared"
)

var (
	ErrNotEnoughFighters = errors.New("at least two fighters are required")
	ErrRoundInProgress   = fmt.Errorf("round already in progress: %w", shared.ErrInvalidState)
	ErrNoRound           = fmt.Errorf("no round in progress: %w", shared.ErrInvalidState)
	ErrUnresolvedBouts   = errors.New("stage has unresolved bouts")
	ErrPoolEnded         = fmt.Errorf("pool already ended: %w", shared.ErrInvalidState)
)
