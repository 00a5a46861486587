package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`
	Push struct {
		Mode         string `yaml:"mode"` // "none", "websocket" or "nats"
		WebSocketURL string `yaml:"websocket_url"`
		NATSURL      string `yaml:"nats_url"`
	} `yaml:"push"`
	Game struct {
		SessionID          string `yaml:"session_id"`
		RoundID            string `yaml:"round_id"`
		PlayerID           int64  `yaml:"player_id"`
		PollIntervalMs     int    `yaml:"poll_interval_ms"`
		ReconnectThreshold int    `yaml:"reconnect_threshold"`
	} `yaml:"game"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment overrides for deployment-specific values.
	config.Server.BaseURL = getEnv("BRAINRING_SERVER_URL", config.Server.BaseURL)
	config.Push.Mode = getEnv("BRAINRING_PUSH_MODE", config.Push.Mode)
	config.Push.WebSocketURL = getEnv("BRAINRING_WS_URL", config.Push.WebSocketURL)
	config.Push.NATSURL = getEnv("BRAINRING_NATS_URL", config.Push.NATSURL)
	config.Game.SessionID = getEnv("BRAINRING_SESSION_ID", config.Game.SessionID)
	config.Game.RoundID = getEnv("BRAINRING_ROUND_ID", config.Game.RoundID)
	config.Game.PlayerID = int64(getEnvAsInt("BRAINRING_PLAYER_ID", int(config.Game.PlayerID)))

	if config.Server.BaseURL == "" {
		return nil, fmt.Errorf("server base_url is required")
	}

	return &config, nil
}
