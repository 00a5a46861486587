package game

// Transition applies one event to a round state and returns the next state.
// It is a pure function: no I/O, no clocks, and the input state (including
// its lockout map) is never mutated.
func Transition(state RoundState, event Event) RoundState {
	// GAME_COMPLETE is absorbing.
	if state.Phase == PhaseGameComplete {
		return state
	}

	switch ev := event.(type) {
	case RoundStarted:
		return RoundState{
			Phase:         PhaseQuestionDisplay,
			RoundNumber:   ev.RoundNumber,
			LocalPlayerID: state.LocalPlayerID,
			LockedOut:     map[int64]bool{},
			CanBuzz:       true,
		}

	case ServerStateSynced:
		phase, ok := ev.Status.Phase()
		if !ok {
			// Unknown status from a newer server: ignore the whole update
			// rather than applying fields against a stale phase.
			return state
		}
		next := state
		next.Phase = phase
		next.CurrentBuzzerID = cloneID(ev.CurrentBuzzerID)
		next.LockedOut = lockoutSet(ev.LockedOut)
		next.AnswerDeadline = cloneTime(ev.AnswerDeadline)
		next.CanBuzz = ev.Status == StatusWaitingForBuzz && !next.LockedOut[state.LocalPlayerID]
		next.IsAnswering = ev.Status == StatusPlayerAnswering &&
			ev.CurrentBuzzerID != nil && *ev.CurrentBuzzerID == state.LocalPlayerID
		return next

	case BuzzSucceeded:
		if !ev.IsFirst {
			// Lost the race; the winner arrives via the next sync.
			return state
		}
		next := state
		next.Phase = PhasePlayerAnswering
		buzzer := state.LocalPlayerID
		next.CurrentBuzzerID = &buzzer
		next.AnswerDeadline = cloneTime(ev.Deadline)
		next.CanBuzz = false
		next.IsAnswering = true
		return next

	case AnswerSubmitted:
		next := state
		next.IsAnswering = false
		switch {
		case ev.IsCorrect:
			next.Phase = PhaseAnswerFeedback
		case ev.RoundComplete:
			next.Phase = PhaseRoundComplete
			next.CurrentBuzzerID = nil
			next.AnswerDeadline = nil
		default:
			// Wrong answer, round continues for the others. The local
			// player spent their attempt and may not buzz again.
			next.Phase = PhaseQuestionDisplay
			next.CurrentBuzzerID = nil
			next.AnswerDeadline = nil
			next.LockedOut = lockoutWith(state.LockedOut, state.LocalPlayerID)
		}
		next.CanBuzz = next.Phase == PhaseQuestionDisplay && !next.LockedOut[state.LocalPlayerID]
		return next

	case NextRoundRequested:
		return RoundState{
			Phase:         PhaseWaiting,
			RoundNumber:   state.RoundNumber,
			LocalPlayerID: state.LocalPlayerID,
			LockedOut:     map[int64]bool{},
		}

	case GameCompleted:
		return RoundState{
			Phase:         PhaseGameComplete,
			RoundNumber:   state.RoundNumber,
			LocalPlayerID: state.LocalPlayerID,
			LockedOut:     map[int64]bool{},
		}
	}

	return state
}
