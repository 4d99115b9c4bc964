package main

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/fencerfight/tourney/src/infra/peer"
)

type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Sync struct {
		Role string `yaml:"role"`
		// ServerURL is the websocket endpoint a client-role daemon connects
		// to, e.g. ws://desk.local:8080/v1/sync/ws.
		ServerURL string `yaml:"serverUrl"`
		Token     string `yaml:"token"`
		// Invite is an encoded invite code carrying server URL and token,
		// as produced by arenactl invite. It overrides both fields.
		Invite string `yaml:"invite"`
	} `yaml:"sync"`
	Pairing struct {
		SameGenderOnly bool `yaml:"sameGenderOnly"`
		Accumulating   bool `yaml:"accumulating"`
	} `yaml:"pairing"`
	State struct {
		File string `yaml:"file"`
		Seed int64  `yaml:"seed"`
	} `yaml:"state"`
	Log struct {
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"maxSizeMb"`
		MaxBackups int    `yaml:"maxBackups"`
	} `yaml:"log"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.HTTP.Addr = ":8080"
	cfg.Sync.Role = "server"
	cfg.Log.MaxSizeMB = 50
	cfg.Log.MaxBackups = 3
	return cfg
}

// loadConfig reads the YAML file when present, then applies environment
// overrides on top so deployments can tweak single values.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.HTTP.Addr = getEnv("ARENAD_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.Sync.Role = getEnv("ARENAD_SYNC_ROLE", cfg.Sync.Role)
	cfg.Sync.ServerURL = getEnv("ARENAD_SYNC_SERVER_URL", cfg.Sync.ServerURL)
	cfg.Sync.Token = getEnv("ARENAD_SYNC_TOKEN", cfg.Sync.Token)
	cfg.Sync.Invite = getEnv("ARENAD_SYNC_INVITE", cfg.Sync.Invite)
	if cfg.Sync.Invite != "" {
		var invite peer.Invite
		if err := peer.DecodeSignal(cfg.Sync.Invite, &invite); err != nil {
			return cfg, err
		}
		cfg.Sync.ServerURL = invite.URL
		cfg.Sync.Token = invite.Token
	}
	cfg.State.File = getEnv("ARENAD_STATE_FILE", cfg.State.File)
	cfg.Log.File = getEnv("ARENAD_LOG_FILE", cfg.Log.File)
	if v := os.Getenv("ARENAD_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.State.Seed = seed
		}
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
