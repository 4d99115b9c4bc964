package peer

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Signal payloads are exchanged out of band, by copy/paste or a visual code,
// so they are JSON wrapped in base64 to survive narrow text channels.

// ErrBadSignal marks a signal that could not be decoded. Non-fatal: the
// operator re-enters or re-scans it.
var ErrBadSignal = fmt.Errorf("invalid signal data")

// Invite is the signaling payload exchanged to join a sync session: where to
// connect and which token to present.
type Invite struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// EncodeSignal serializes a signaling payload for manual exchange.
func EncodeSignal(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeSignal parses a manually exchanged signal. Plain JSON is accepted
// too, for peers that skip the base64 wrapping.
func DecodeSignal(s string, v any) error {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		raw = []byte(s)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignal, err)
	}
	return nil
}
