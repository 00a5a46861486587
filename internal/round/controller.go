package round

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/brainring/internal/game"
	"github.com/mcdev12/brainring/internal/transport"
)

const (
	defaultPollInterval       = time.Second
	defaultReconnectThreshold = 3
)

// Config holds the collaborators and tuning for a round controller.
type Config struct {
	Client        transport.Client
	Subscriber    transport.StatusSubscriber // optional push delivery
	SessionID     uuid.UUID
	RoundID       uuid.UUID
	LocalPlayerID int64

	// PollInterval is the cadence of state polls while a round is live.
	// Defaults to one second.
	PollInterval time.Duration

	// ReconnectThreshold is the number of consecutive poll failures before
	// the snapshot reports Reconnecting. Defaults to 3.
	ReconnectThreshold int

	// Clock defaults to the real clock; tests inject a fake.
	Clock clockwork.Clock

	// OnChange, when set, receives a snapshot after every dispatch that
	// alters observable state.
	OnChange func(Snapshot)
}

// Snapshot is the read-only view handed to the presentation layer.
type Snapshot struct {
	game.RoundState

	// Reconnecting reports that recent consecutive polls failed and the
	// client may be out of touch with the server.
	Reconnecting bool
}

// Controller binds the transport and the phase state machine into one game
// round. It owns the round state exclusively: every mutation goes through an
// event dispatched into game.Transition, and the state value is replaced
// wholesale on each dispatch.
type Controller struct {
	client             transport.Client
	subscriber         transport.StatusSubscriber
	clock              clockwork.Clock
	sessionID          uuid.UUID
	roundID            uuid.UUID
	localPlayerID      int64
	pollInterval       time.Duration
	reconnectThreshold int
	onChange           func(Snapshot)

	cancel context.CancelFunc
	wake   chan struct{}

	mu           sync.Mutex
	state        game.RoundState
	pollFailures int
	reconnecting bool
	started      bool
	closed       bool
}

// NewController creates a controller for one round of play.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Client == nil {
		return nil, errors.New("transport client is required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.ReconnectThreshold <= 0 {
		cfg.ReconnectThreshold = defaultReconnectThreshold
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	return &Controller{
		client:             cfg.Client,
		subscriber:         cfg.Subscriber,
		clock:              cfg.Clock,
		sessionID:          cfg.SessionID,
		roundID:            cfg.RoundID,
		localPlayerID:      cfg.LocalPlayerID,
		pollInterval:       cfg.PollInterval,
		reconnectThreshold: cfg.ReconnectThreshold,
		onChange:           cfg.OnChange,
		wake:               make(chan struct{}, 1),
		state:              game.NewRoundState(cfg.LocalPlayerID),
	}, nil
}

// Start launches the polling loop and, if configured, the push subscription.
// Returns immediately; Close or cancelling ctx tears everything down.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("controller is closed")
	}
	if c.started {
		c.mu.Unlock()
		return errors.New("controller already started")
	}
	c.started = true
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	if c.subscriber != nil {
		updates, err := c.subscriber.Subscribe(runCtx, c.sessionID, c.roundID)
		if err != nil {
			log.Warn().Err(err).Msg("push subscription unavailable, polling only")
		} else {
			go c.pump(runCtx, updates)
		}
	}

	go c.run(runCtx)

	log.Info().
		Str("session_id", c.sessionID.String()).
		Str("round_id", c.roundID.String()).
		Int64("player_id", c.localPlayerID).
		Msg("round controller started")
	return nil
}

// Close stops polling and guarantees no further dispatches, including from
// network responses still in flight.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	log.Debug().Str("round_id", c.roundID.String()).Msg("round controller closed")
}

// Snapshot returns the current read-only state view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{RoundState: c.state, Reconnecting: c.reconnecting}
}

// Buzz attempts to win the floor. Silently ignored unless buzzing is open
// for the local player; the flag only flips once a server response or sync
// is processed, so at most one attempt is in flight per opening.
func (c *Controller) Buzz(ctx context.Context) {
	c.mu.Lock()
	ok := !c.closed && c.state.CanBuzz
	c.mu.Unlock()
	if !ok {
		log.Debug().Msg("buzz ignored, buzzing not open")
		return
	}

	result, err := c.client.SubmitBuzz(ctx, c.sessionID, c.roundID, c.localPlayerID, c.clock.Now())
	if err != nil {
		log.Warn().Err(err).Msg("buzz failed, next sync will reconcile")
		return
	}
	if !result.Accepted {
		log.Debug().Msg("buzz not accepted")
		return
	}

	// A lost race (IsFirstBuzzer=false) is a no-op transition; the winner
	// shows up in the next server sync.
	c.apply(game.BuzzSucceeded{IsFirst: result.IsFirstBuzzer, Deadline: result.AnswerDeadline}, false)
}

// SubmitAnswer sends the local player's answer. Silently ignored unless this
// player holds the floor. The result is dispatched into state and also
// returned so the caller can show immediate feedback.
func (c *Controller) SubmitAnswer(ctx context.Context, text string) (*transport.AnswerResult, error) {
	c.mu.Lock()
	ok := !c.closed && c.state.IsAnswering
	c.mu.Unlock()
	if !ok {
		log.Debug().Msg("answer ignored, not answering")
		return nil, nil
	}

	result, err := c.client.SubmitAnswer(ctx, c.sessionID, c.roundID, c.localPlayerID, text)
	if err != nil {
		log.Warn().Err(err).Msg("answer submission failed, next sync will reconcile")
		return nil, err
	}

	c.apply(game.AnswerSubmitted{IsCorrect: result.IsCorrect, RoundComplete: result.RoundComplete}, false)
	return result, nil
}

// StartRound begins a new round. Driven by session coordination, not by the
// presentation layer.
func (c *Controller) StartRound(roundNumber int) {
	c.apply(game.RoundStarted{RoundNumber: roundNumber}, false)
}

// RequestNextRound parks the state machine between rounds.
func (c *Controller) RequestNextRound() {
	c.apply(game.NextRoundRequested{}, false)
}

// CompleteGame moves to the terminal phase; all later events are ignored.
func (c *Controller) CompleteGame() {
	c.apply(game.GameCompleted{}, false)
}

// run is the polling loop: strictly sequential, one request outstanding at a
// time, active only while the phase calls for it.
func (c *Controller) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if !c.pollActive() {
			select {
			case <-ctx.Done():
				return
			case <-c.wake:
			}
			continue
		}

		c.pollOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-c.clock.After(c.pollInterval):
		case <-c.wake:
		}
	}
}

func (c *Controller) pollActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && pollable(c.state.Phase)
}

func pollable(phase game.GamePhase) bool {
	return phase == game.PhaseQuestionDisplay || phase == game.PhasePlayerAnswering
}

func (c *Controller) pollOnce(ctx context.Context) {
	status, err := c.client.FetchRoundStatus(ctx, c.sessionID, c.roundID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.recordPollFailure(err)
		return
	}
	c.handleStatus(*status)
}

func (c *Controller) recordPollFailure(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pollFailures++
	failures := c.pollFailures
	notify := false
	if failures >= c.reconnectThreshold && !c.reconnecting {
		c.reconnecting = true
		notify = true
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	log.Warn().Err(err).Int("consecutive_failures", failures).Msg("round status poll failed")
	if notify {
		log.Warn().Msg("poll failures reached threshold, reporting reconnecting")
		if c.onChange != nil {
			c.onChange(snap)
		}
	}
}

// handleStatus feeds one server snapshot into the state machine, whether it
// arrived via poll or push. Safe to receive the same status repeatedly.
func (c *Controller) handleStatus(status transport.RoundStatus) {
	c.apply(game.ServerStateSynced{
		Status:          status.RoundStatus,
		CurrentBuzzerID: status.CurrentBuzzerID,
		LockedOut:       status.LockedOutPlayers,
		AnswerDeadline:  status.AnswerDeadline,
	}, true)
}

// apply dispatches one event through the reducer and handles the fallout:
// polling re-evaluation, reconnect bookkeeping, and change notification.
// synced marks events that prove the server was reachable.
func (c *Controller) apply(ev game.Event, synced bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	flagCleared := false
	if synced {
		c.pollFailures = 0
		if c.reconnecting {
			c.reconnecting = false
			flagCleared = true
		}
	}

	prev := c.state
	next := game.Transition(prev, ev)
	c.state = next
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if pollable(prev.Phase) != pollable(next.Phase) {
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}

	if prev.Phase != next.Phase {
		log.Debug().
			Str("from", string(prev.Phase)).
			Str("to", string(next.Phase)).
			Int("round", next.RoundNumber).
			Msg("phase changed")
	}

	if (flagCleared || !next.Equal(prev)) && c.onChange != nil {
		c.onChange(snap)
	}
}

// pump forwards push updates into the same sync path as poll results.
func (c *Controller) pump(ctx context.Context, updates <-chan transport.RoundStatus) {
	for {
		select {
		case <-ctx.Done():
			return
		case status, ok := <-updates:
			if !ok {
				log.Debug().Msg("push updates ended, polling continues")
				return
			}
			c.handleStatus(status)
		}
	}
}
