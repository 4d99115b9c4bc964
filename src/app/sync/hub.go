// Package sync merges remote tournament snapshots into local state over a
// message-based peer channel.
//
// The conflict policy is deliberate last-writer-wins: every incoming message
// overwrites the addressed slice of local state, with no vector clocks or
// causal ordering. A tournament desk has one operator at a time; conflict-free
// merging is an explicit non-goal.
package sync

import (
	"sync"

	"go.uber.org/zap"

	"github.com/fencerfight/tourney/src/app/tournament"
	"github.com/fencerfight/tourney/src/domain/shared"
)

// Role fixes a party's side for the lifetime of a connection, determined at
// connect time.
type Role string

const (
	RoleServer Role = "server"
	RoleClient Role = "client"
)

// Sender delivers an encoded message over one established peer connection.
// The underlying channel guarantees ordered, reliable delivery.
type Sender interface {
	Send(data []byte) error
}

// conn is one registered remote party.
type conn struct {
	id     shared.ConnID
	token  shared.ClientToken
	sender Sender
}

// Hub reconciles incoming sync messages into the tournament state and routes
// outgoing ones. It supports pairwise links and star topologies: a client's
// sync actions target the server only, a server may broadcast to all clients
// or answer individual requests.
type Hub struct {
	svc    *tournament.Service
	logger *zap.Logger
	role   Role

	mu    sync.Mutex
	conns map[shared.ConnID]*conn

	// notice surfaces recoverable sync problems to the operator.
	notice func(msg string)
	// onMessage observes handled messages for instrumentation.
	onMessage func(kind string, ok bool)
}

// NewHub creates a hub with the given local role.
func NewHub(svc *tournament.Service, role Role, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		svc:    svc,
		logger: logger,
		role:   role,
		conns:  make(map[shared.ConnID]*conn),
	}
}

// OnNotice registers the operator-notice callback.
func (h *Hub) OnNotice(fn func(msg string)) { h.notice = fn }

// OnMessage registers an observer called for every handled message.
func (h *Hub) OnMessage(fn func(kind string, ok bool)) { h.onMessage = fn }

// Role returns the hub's fixed local role.
func (h *Hub) Role() Role { return h.role }

// Register adds an established connection. The client token survives
// transport reconnects and is used as the fallback identity.
func (h *Hub) Register(id shared.ConnID, token shared.ClientToken, sender Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[id] = &conn{id: id, token: token, sender: sender}
	h.logger.Info("sync connection registered",
		zap.String("conn_id", string(id)),
		zap.String("role", string(h.role)))
}

// Unregister discards a connection after an error or close. Tournament state
// is unaffected; the peer reconnects and requests a fresh sync if needed.
func (h *Hub) Unregister(id shared.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
	h.logger.Info("sync connection discarded", zap.String("conn_id", string(id)))
}

// ConnCount returns the number of registered connections.
func (h *Hub) ConnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// HandleData applies one raw inbound message. Malformed payloads and unknown
// kinds are logged, surfaced as a notice and dropped without touching state;
// the connection stays open. The returned error mirrors what was logged so
// transports can count failures, it never requires closing the connection.
func (h *Hub) HandleData(id shared.ConnID, raw []byte) error {
	env, err := Decode(raw)
	if err != nil {
		h.logger.Warn("sync message rejected",
			zap.String("conn_id", string(id)),
			zap.Error(err))
		h.surface("sync message rejected: " + err.Error())
		h.observe("invalid", false)
		return err
	}

	switch env.Kind {
	case KindFullSync:
		h.svc.ApplySnapshot(*env.State)
		h.logger.Info("full sync applied", zap.String("conn_id", string(id)))
		h.observe(string(env.Kind), true)
		return nil
	case KindPoolSync:
		if err := h.svc.ApplyPoolSlice(*env.PoolIndex, *env.Pool); err != nil {
			h.logger.Warn("pool sync rejected",
				zap.Int("pool", *env.PoolIndex),
				zap.Error(err))
			h.surface("pool sync rejected: " + err.Error())
			h.observe(string(env.Kind), false)
			return err
		}
		h.logger.Info("pool sync applied", zap.Int("pool", *env.PoolIndex))
		h.observe(string(env.Kind), true)
		return nil
	case KindRequestSync:
		err := h.answerRequest(id, env.Token)
		h.observe(string(env.Kind), err == nil)
		return err
	}
	return nil
}

// answerRequest sends a full-sync back to the requesting party. The target
// connection is resolved by connection identity first, falling back to the
// application-level client token when the physical connection cannot be
// matched, which covers reconnects under a new transport identity.
func (h *Hub) answerRequest(id shared.ConnID, token shared.ClientToken) error {
	target := h.resolve(id, token)
	if target == nil {
		h.logger.Warn("request-sync from unknown party",
			zap.String("conn_id", string(id)),
			zap.String("token", string(token)))
		return ErrNoConnection
	}
	return h.sendFullSync(target)
}

func (h *Hub) resolve(id shared.ConnID, token shared.ClientToken) *conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.conns[id]; ok {
		return c
	}
	if token == "" {
		return nil
	}
	for _, c := range h.conns {
		if c.token == token {
			return c
		}
	}
	return nil
}

// SyncAll sends the full local state out: to every client when the hub is the
// server, to the server when the hub is a client.
func (h *Hub) SyncAll() error {
	h.mu.Lock()
	targets := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.Unlock()
	if len(targets) == 0 {
		return ErrNoConnection
	}
	var firstErr error
	for _, c := range targets {
		if err := h.sendFullSync(c); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SyncPool sends one pool's slice to every registered connection.
func (h *Hub) SyncPool(index int) error {
	slice, err := h.svc.PoolSlice(index)
	if err != nil {
		return err
	}
	raw, err := Encode(&Envelope{Kind: KindPoolSync, PoolIndex: &index, Pool: &slice})
	if err != nil {
		return err
	}
	return h.broadcast(raw)
}

// RequestSync asks the connected party (the server, in star mode) for a
// full-sync, identifying this hub by the given client token.
func (h *Hub) RequestSync(token shared.ClientToken) error {
	if err := token.Validate(); err != nil {
		return err
	}
	raw, err := Encode(&Envelope{Kind: KindRequestSync, Token: token})
	if err != nil {
		return err
	}
	return h.broadcast(raw)
}

func (h *Hub) sendFullSync(c *conn) error {
	snap := h.svc.Snapshot()
	raw, err := Encode(&Envelope{Kind: KindFullSync, State: &snap})
	if err != nil {
		return err
	}
	if err := c.sender.Send(raw); err != nil {
		h.logger.Warn("full sync send failed",
			zap.String("conn_id", string(c.id)),
			zap.Error(err))
		return err
	}
	return nil
}

func (h *Hub) broadcast(raw []byte) error {
	h.mu.Lock()
	targets := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.Unlock()
	if len(targets) == 0 {
		return ErrNoConnection
	}
	var firstErr error
	for _, c := range targets {
		if err := c.sender.Send(raw); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *Hub) surface(msg string) {
	if h.notice != nil {
		h.notice(msg)
	}
}

func (h *Hub) observe(kind string, ok bool) {
	if h.onMessage != nil {
		h.onMessage(kind, ok)
	}
}
