package game

// GamePhase defines the stage of a single round's lifecycle on the client.
type GamePhase string

const (
	PhaseWaiting         GamePhase = "WAITING"
	PhaseQuestionDisplay GamePhase = "QUESTION_DISPLAY"
	PhasePlayerAnswering GamePhase = "PLAYER_ANSWERING"
	PhaseAnswerFeedback  GamePhase = "ANSWER_FEEDBACK"
	PhaseRoundComplete   GamePhase = "ROUND_COMPLETE"
	PhaseGameComplete    GamePhase = "GAME_COMPLETE"
)

// ServerRoundStatus is the round status string reported by the game server.
type ServerRoundStatus string

const (
	StatusWaitingForBuzz  ServerRoundStatus = "WAITING_FOR_BUZZ"
	StatusPlayerAnswering ServerRoundStatus = "PLAYER_ANSWERING"
	StatusCorrectAnswer   ServerRoundStatus = "CORRECT_ANSWER"
	StatusAllLockedOut    ServerRoundStatus = "ALL_LOCKED_OUT"
)

// Phase maps a server-reported status to the local phase. The second return
// is false for status strings this client version does not know about.
func (s ServerRoundStatus) Phase() (GamePhase, bool) {
	switch s {
	case StatusWaitingForBuzz:
		return PhaseQuestionDisplay, true
	case StatusPlayerAnswering:
		return PhasePlayerAnswering, true
	case StatusCorrectAnswer:
		return PhaseAnswerFeedback, true
	case StatusAllLockedOut:
		return PhaseRoundComplete, true
	default:
		return "", false
	}
}
