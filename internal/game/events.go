package game

import "time"

// Event is the closed set of inputs the round state machine accepts. Each
// variant carries exactly the data its transition needs; the reducer switches
// exhaustively over the concrete types.
type Event interface {
	isEvent()
}

// RoundStarted begins a fresh round: lockouts clear and buzzing opens.
type RoundStarted struct {
	RoundNumber int
}

// ServerStateSynced carries a full server-authoritative snapshot, delivered
// by a poll result or a push update. Server values overwrite local ones.
type ServerStateSynced struct {
	Status          ServerRoundStatus
	CurrentBuzzerID *int64
	LockedOut       []int64
	AnswerDeadline  *time.Time
}

// BuzzSucceeded reports the server's verdict on a local buzz attempt.
// Only IsFirst=true transitions state; losing the race is left to the next
// sync to reflect.
type BuzzSucceeded struct {
	IsFirst  bool
	Deadline *time.Time
}

// AnswerSubmitted reports the server's grading of the local player's answer.
type AnswerSubmitted struct {
	IsCorrect     bool
	RoundComplete bool
}

// NextRoundRequested parks the state machine until the next RoundStarted.
type NextRoundRequested struct{}

// GameCompleted is terminal; every later event is a no-op.
type GameCompleted struct{}

func (RoundStarted) isEvent()       {}
func (ServerStateSynced) isEvent()  {}
func (BuzzSucceeded) isEvent()      {}
func (AnswerSubmitted) isEvent()    {}
func (NextRoundRequested) isEvent() {}
func (GameCompleted) isEvent()      {}
