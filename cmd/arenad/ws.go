package main

import (
	"errors"
	"net/http"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/fencerfight/tourney/src/domain/shared"
	"github.com/fencerfight/tourney/src/infra/peer"
)

var errTokenMismatch = errors.New("sync token mismatch")

// handleSyncWS upgrades the request and attaches the connection to the sync
// hub. Peers identify themselves with a token query parameter; when the
// daemon is configured with a token the values must match.
func (s *Server) handleSyncWS(w http.ResponseWriter, r *http.Request) {
	token := shared.ClientToken(r.URL.Query().Get("token"))
	if s.cfg.SyncToken != "" && string(token) != s.cfg.SyncToken {
		s.writeError(w, http.StatusUnauthorized, errTokenMismatch)
		return
	}

	connID := shared.ConnID(uuid.Must(uuid.NewV4()).String())
	hub := s.cfg.Hub
	logger := s.cfg.Logger

	channel, err := peer.Accept(w, r, peer.Callbacks{
		OnData: func(data []byte) {
			// Errors are already logged and surfaced by the hub; the
			// connection stays open.
			_ = hub.HandleData(connID, data)
		},
		OnError: func(err error) {
			logger.Warn("sync channel error", zap.String("conn", string(connID)), zap.Error(err))
		},
		OnClose: func() {
			hub.Unregister(connID)
		},
	}, logger)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	hub.Register(connID, token, channel)
	logger.Info("sync peer connected", zap.String("conn", string(connID)))
}
