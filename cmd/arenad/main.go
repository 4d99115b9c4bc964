package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fencerfight/tourney/src/app/sync"
	"github.com/fencerfight/tourney/src/app/tournament"
	"github.com/fencerfight/tourney/src/domain/playoff"
	"github.com/fencerfight/tourney/src/domain/shared"
	"github.com/fencerfight/tourney/src/infra/kvstore"
	"github.com/fencerfight/tourney/src/infra/peer"
)

const stateKey = "tournament"

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	baseCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	svc := tournament.NewService(tournament.Settings{
		SameGenderOnly: cfg.Pairing.SameGenderOnly,
		Accumulating:   cfg.Pairing.Accumulating,
	})
	if cfg.State.Seed != 0 {
		svc.SetSeed(cfg.State.Seed)
	}

	var store kvstore.Store = kvstore.NewMemoryStore()
	if cfg.State.File != "" {
		fileStore, err := kvstore.NewFileStore(cfg.State.File)
		if err != nil {
			logger.Fatal("failed to open state file", zap.String("path", cfg.State.File), zap.Error(err))
		}
		store = fileStore
		var snap tournament.Snapshot
		found, err := store.Get(stateKey, &snap)
		if err != nil {
			logger.Warn("failed to restore state", zap.Error(err))
		} else if found {
			svc.ApplySnapshot(snap)
			logger.Info("state restored", zap.String("path", cfg.State.File))
		}
	}

	role := sync.RoleServer
	if cfg.Sync.Role == "client" {
		role = sync.RoleClient
	}
	hub := sync.NewHub(svc, role, logger)

	if role == sync.RoleClient && cfg.Sync.ServerURL != "" {
		if err := connectUpstream(hub, cfg, logger); err != nil {
			logger.Fatal("failed to reach sync server", zap.String("url", cfg.Sync.ServerURL), zap.Error(err))
		}
	}

	svc.OnComplete(func(p playoff.Podium) {
		logger.Info("tournament complete",
			zap.String("first", podiumName(p.First)),
			zap.String("second", podiumName(p.Second)),
			zap.String("third", podiumName(p.Third)),
		)
	})

	server := NewServer(ServerConfig{
		Logger:     logger,
		Tournament: svc,
		Hub:        hub,
		SyncToken:  cfg.Sync.Token,
	})

	saveState := func() {
		if err := store.Set(stateKey, svc.Snapshot()); err != nil {
			logger.Error("failed to persist state", zap.Error(err))
		}
	}
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-baseCtx.Done():
				return
			case <-ticker.C:
				saveState()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("arenad listening", zap.String("addr", cfg.HTTP.Addr), zap.String("role", string(role)))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-baseCtx.Done()
	saveState()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildLogger(cfg Config) (*zap.Logger, error) {
	if cfg.Log.File == "" {
		return zap.NewProduction()
	}
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	core := zapcore.NewCore(encoder, sink, zapcore.InfoLevel)
	return zap.New(core), nil
}

func podiumName(e *playoff.Entrant) string {
	if e == nil {
		return ""
	}
	return e.Name
}

// connectUpstream dials the sync server, attaches the channel to the hub and
// asks for the current state.
func connectUpstream(hub *sync.Hub, cfg Config, logger *zap.Logger) error {
	connID := shared.ConnID(uuid.Must(uuid.NewV4()).String())
	channel, err := peer.Dial(cfg.Sync.ServerURL+"?token="+cfg.Sync.Token, peer.Callbacks{
		OnData: func(data []byte) {
			_ = hub.HandleData(connID, data)
		},
		OnError: func(err error) {
			logger.Warn("upstream sync error", zap.Error(err))
		},
		OnClose: func() {
			hub.Unregister(connID)
		},
	}, logger)
	if err != nil {
		return err
	}
	hub.Register(connID, shared.ClientToken(cfg.Sync.Token), channel)
	if err := hub.RequestSync(shared.ClientToken(cfg.Sync.Token)); err != nil {
		logger.Warn("initial sync request failed", zap.Error(err))
	}
	return nil
}
