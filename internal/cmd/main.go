package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/brainring/internal/round"
	"github.com/mcdev12/brainring/internal/transport"
)

// Demo client: joins one round, logs every state change, and forwards a
// buzz/answer flow driven by the server. Useful for poking a dev server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded")
	}

	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	config, err := loadConfig(getEnv("BRAINRING_CONFIG", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	sessionID, err := uuid.Parse(config.Game.SessionID)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid session_id")
	}
	roundID, err := uuid.Parse(config.Game.RoundID)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid round_id")
	}

	client := transport.NewRESTClient(config.Server.BaseURL)

	subscriber, cleanup, err := setupSubscriber(config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up push subscriber")
	}
	if cleanup != nil {
		defer cleanup()
	}

	controller, err := round.NewController(round.Config{
		Client:             client,
		Subscriber:         subscriber,
		SessionID:          sessionID,
		RoundID:            roundID,
		LocalPlayerID:      config.Game.PlayerID,
		PollInterval:       time.Duration(config.Game.PollIntervalMs) * time.Millisecond,
		ReconnectThreshold: config.Game.ReconnectThreshold,
		OnChange:           logSnapshot,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create controller")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := controller.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start controller")
	}
	defer controller.Close()

	// Open the first round so polling begins; from here the server drives.
	controller.StartRound(1)

	<-ctx.Done()
	log.Info().Msg("shutting down")
}

func setupSubscriber(config *Config) (transport.StatusSubscriber, func(), error) {
	switch config.Push.Mode {
	case "websocket":
		return transport.NewWebSocketSubscriber(transport.DefaultWebSocketConfig(config.Push.WebSocketURL)), nil, nil
	case "nats":
		natsConfig := transport.DefaultNATSConfig()
		if config.Push.NATSURL != "" {
			natsConfig.URL = config.Push.NATSURL
		}
		sub, err := transport.NewNATSSubscriber(natsConfig)
		if err != nil {
			return nil, nil, err
		}
		return sub, sub.Close, nil
	default:
		return nil, nil, nil
	}
}

func logSnapshot(snap round.Snapshot) {
	event := log.Info().
		Str("phase", string(snap.Phase)).
		Int("round", snap.RoundNumber).
		Bool("can_buzz", snap.CanBuzz).
		Bool("is_answering", snap.IsAnswering).
		Bool("reconnecting", snap.Reconnecting).
		Int("locked_out", len(snap.LockedOut))
	if snap.CurrentBuzzerID != nil {
		event = event.Int64("current_buzzer", *snap.CurrentBuzzerID)
	}
	if snap.AnswerDeadline != nil {
		event = event.Int("time_remaining_sec", snap.TimeRemaining(time.Now()))
	}
	event.Msg("round state")
}
