package transport

import (
	"time"

	"github.com/mcdev12/brainring/internal/game"
)

// RoundStatus is the server-authoritative snapshot of one round, as returned
// by the state endpoint and carried by push updates.
type RoundStatus struct {
	RoundStatus      game.ServerRoundStatus `json:"roundStatus"`
	CurrentBuzzerID  *int64                 `json:"currentBuzzerUserId"`
	LockedOutPlayers []int64                `json:"lockedOutPlayers"`
	AnswerDeadline   *time.Time             `json:"answerDeadline"`
}

// BuzzResult is the server's verdict on a buzz attempt.
type BuzzResult struct {
	Accepted       bool       `json:"success"`
	IsFirstBuzzer  bool       `json:"isFirstBuzzer"`
	AnswerDeadline *time.Time `json:"answerDeadline"`
}

// AnswerResult is the server's grading of a submitted answer.
type AnswerResult struct {
	IsCorrect     bool `json:"isCorrect"`
	RoundComplete bool `json:"roundComplete"`
}

type buzzRequest struct {
	UserID    int64     `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

type answerRequest struct {
	UserID int64  `json:"userId"`
	Answer string `json:"answer"`
}
