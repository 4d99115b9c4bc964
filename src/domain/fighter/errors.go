package fighter

import (
	"errors"
	"fmt"

	"github.com/fencerfight/tourney/src/domain/shared"
)

var (
	ErrNameRequired    = errors.New("fighter name is required")
	ErrFighterNotFound = fmt.Errorf("fighter not found: %w", shared.ErrNotFound)
)
