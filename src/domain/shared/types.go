package shared

import (
	"errors"
	"strings"
)

// ID types keep domain entities distinct while remaining simple strings at runtime.
type (
	FighterID   string
	ClientToken string
	ConnID      string
)

// Validate ensures IDs are not blank and normalized.
func (id FighterID) Validate() error {
	if strings.TrimSpace(string(id)) == "" {
		return errors.New("fighter id is required")
	}
	return nil
}

func (t ClientToken) Validate() error {
	if strings.TrimSpace(string(t)) == "" {
		return errors.New("client token is required")
	}
	return nil
}
