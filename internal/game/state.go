package game

import "time"

// RoundState is the client's view of one round of buzzer play. It is a value
// type: transitions build a new state rather than mutating in place, and the
// lockout map is never written after construction, so snapshots handed to the
// presentation layer stay stable while the controller keeps dispatching.
type RoundState struct {
	Phase         GamePhase
	RoundNumber   int
	LocalPlayerID int64

	// CurrentBuzzerID is set only while a player holds the floor
	// (PLAYER_ANSWERING / ANSWER_FEEDBACK).
	CurrentBuzzerID *int64

	// LockedOut holds players who forfeited further buzz attempts this round.
	// Grows within a round, reset on RoundStarted / NextRoundRequested.
	LockedOut map[int64]bool

	// AnswerDeadline is the server's cutoff for the answering player.
	// Advisory only; the server enforces the timeout.
	AnswerDeadline *time.Time

	// Derived flags, recomputed on every transition.
	CanBuzz     bool
	IsAnswering bool
}

// NewRoundState returns the initial state for a controller bound to the
// given local player.
func NewRoundState(localPlayerID int64) RoundState {
	return RoundState{
		Phase:         PhaseWaiting,
		LocalPlayerID: localPlayerID,
		LockedOut:     map[int64]bool{},
	}
}

// TimeRemaining returns whole seconds until the answer deadline, clamped at
// zero. Returns 0 when no deadline is set.
func (s RoundState) TimeRemaining(now time.Time) int {
	if s.AnswerDeadline == nil {
		return 0
	}
	remaining := int(s.AnswerDeadline.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsLockedOut reports whether the given player has forfeited buzzing this round.
func (s RoundState) IsLockedOut(playerID int64) bool {
	return s.LockedOut[playerID]
}

// Equal reports whether two states are observably identical.
func (s RoundState) Equal(o RoundState) bool {
	if s.Phase != o.Phase ||
		s.RoundNumber != o.RoundNumber ||
		s.LocalPlayerID != o.LocalPlayerID ||
		s.CanBuzz != o.CanBuzz ||
		s.IsAnswering != o.IsAnswering {
		return false
	}
	if (s.CurrentBuzzerID == nil) != (o.CurrentBuzzerID == nil) {
		return false
	}
	if s.CurrentBuzzerID != nil && *s.CurrentBuzzerID != *o.CurrentBuzzerID {
		return false
	}
	if (s.AnswerDeadline == nil) != (o.AnswerDeadline == nil) {
		return false
	}
	if s.AnswerDeadline != nil && !s.AnswerDeadline.Equal(*o.AnswerDeadline) {
		return false
	}
	if len(s.LockedOut) != len(o.LockedOut) {
		return false
	}
	for id := range s.LockedOut {
		if !o.LockedOut[id] {
			return false
		}
	}
	return true
}

func lockoutSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func lockoutWith(set map[int64]bool, id int64) map[int64]bool {
	next := make(map[int64]bool, len(set)+1)
	for k := range set {
		next[k] = true
	}
	next[id] = true
	return next
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
