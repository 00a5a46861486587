package game

import (
	"reflect"
	"testing"
	"time"
)

func int64p(v int64) *int64 { return &v }

func timep(t time.Time) *time.Time { return &t }

func TestTransition_RoundStarted(t *testing.T) {
	state := NewRoundState(7)
	next := Transition(state, RoundStarted{RoundNumber: 1})

	if next.Phase != PhaseQuestionDisplay {
		t.Errorf("phase %s, want %s", next.Phase, PhaseQuestionDisplay)
	}
	if next.RoundNumber != 1 {
		t.Errorf("round %d, want 1", next.RoundNumber)
	}
	if !next.CanBuzz {
		t.Error("CanBuzz should be true at round start")
	}
	if next.IsAnswering {
		t.Error("IsAnswering should be false at round start")
	}
	if next.CurrentBuzzerID != nil {
		t.Error("CurrentBuzzerID should be nil at round start")
	}
	if len(next.LockedOut) != 0 {
		t.Error("LockedOut should be empty at round start")
	}
}

// Syncing the same WAITING_FOR_BUZZ status twice leaves the state
// observably unchanged.
func TestTransition_ServerSyncIdempotent(t *testing.T) {
	state := Transition(NewRoundState(7), RoundStarted{RoundNumber: 1})
	sync := ServerStateSynced{Status: StatusWaitingForBuzz}

	next := Transition(state, sync)
	if next.Phase != PhaseQuestionDisplay || !next.CanBuzz {
		t.Errorf("phase=%s canBuzz=%v, want QUESTION_DISPLAY true", next.Phase, next.CanBuzz)
	}
	again := Transition(next, sync)
	if !again.Equal(next) {
		t.Error("repeated identical sync should not change state")
	}
}

// Winning the buzz race moves the local player onto the floor.
func TestTransition_BuzzSucceeded(t *testing.T) {
	deadline := time.Date(2025, 1, 1, 0, 0, 10, 0, time.UTC)
	state := Transition(NewRoundState(7), RoundStarted{RoundNumber: 1})

	next := Transition(state, BuzzSucceeded{IsFirst: true, Deadline: timep(deadline)})

	if next.Phase != PhasePlayerAnswering {
		t.Errorf("phase %s, want %s", next.Phase, PhasePlayerAnswering)
	}
	if next.CurrentBuzzerID == nil || *next.CurrentBuzzerID != 7 {
		t.Errorf("CurrentBuzzerID %v, want 7", next.CurrentBuzzerID)
	}
	if !next.IsAnswering {
		t.Error("IsAnswering should be true")
	}
	if next.CanBuzz {
		t.Error("CanBuzz should be false")
	}
	if next.AnswerDeadline == nil || !next.AnswerDeadline.Equal(deadline) {
		t.Errorf("AnswerDeadline %v, want %v", next.AnswerDeadline, deadline)
	}
}

// A correct answer moves to feedback and clears IsAnswering.
func TestTransition_AnswerCorrect(t *testing.T) {
	state := Transition(NewRoundState(7), RoundStarted{RoundNumber: 1})
	state = Transition(state, BuzzSucceeded{IsFirst: true})

	next := Transition(state, AnswerSubmitted{IsCorrect: true, RoundComplete: true})

	if next.Phase != PhaseAnswerFeedback {
		t.Errorf("phase %s, want %s", next.Phase, PhaseAnswerFeedback)
	}
	if next.IsAnswering {
		t.Error("IsAnswering should be cleared")
	}
}

// A locked-out local player may not buzz even in QUESTION_DISPLAY.
func TestTransition_SyncLockedOutLocalPlayer(t *testing.T) {
	state := Transition(NewRoundState(7), RoundStarted{RoundNumber: 1})

	next := Transition(state, ServerStateSynced{
		Status:    StatusWaitingForBuzz,
		LockedOut: []int64{7},
	})

	if next.Phase != PhaseQuestionDisplay {
		t.Errorf("phase %s, want %s", next.Phase, PhaseQuestionDisplay)
	}
	if next.CanBuzz {
		t.Error("CanBuzz should be false for a locked-out player")
	}
	if !next.IsLockedOut(7) {
		t.Error("player 7 should be locked out")
	}
}

// Next-round reset followed by a fresh round start.
func TestTransition_NextRoundThenStart(t *testing.T) {
	state := Transition(NewRoundState(7), RoundStarted{RoundNumber: 1})
	state = Transition(state, ServerStateSynced{
		Status:          StatusPlayerAnswering,
		CurrentBuzzerID: int64p(3),
		LockedOut:       []int64{5},
	})

	parked := Transition(state, NextRoundRequested{})
	if parked.Phase != PhaseWaiting {
		t.Errorf("phase %s, want %s", parked.Phase, PhaseWaiting)
	}
	if parked.CurrentBuzzerID != nil {
		t.Error("CurrentBuzzerID should be cleared")
	}
	if len(parked.LockedOut) != 0 {
		t.Error("LockedOut should be cleared")
	}
	if parked.CanBuzz || parked.IsAnswering {
		t.Error("derived flags should be false while waiting")
	}

	next := Transition(parked, RoundStarted{RoundNumber: 2})
	if next.Phase != PhaseQuestionDisplay || next.RoundNumber != 2 || !next.CanBuzz {
		t.Errorf("phase=%s round=%d canBuzz=%v, want QUESTION_DISPLAY 2 true",
			next.Phase, next.RoundNumber, next.CanBuzz)
	}
}

func TestTransition_ServerSyncOverwritesLocalView(t *testing.T) {
	state := Transition(NewRoundState(7), RoundStarted{RoundNumber: 1})
	deadline := time.Date(2025, 1, 1, 0, 0, 30, 0, time.UTC)

	next := Transition(state, ServerStateSynced{
		Status:          StatusPlayerAnswering,
		CurrentBuzzerID: int64p(3),
		LockedOut:       []int64{2, 5},
		AnswerDeadline:  timep(deadline),
	})

	if next.Phase != PhasePlayerAnswering {
		t.Errorf("phase %s, want %s", next.Phase, PhasePlayerAnswering)
	}
	if next.CurrentBuzzerID == nil || *next.CurrentBuzzerID != 3 {
		t.Errorf("CurrentBuzzerID %v, want 3", next.CurrentBuzzerID)
	}
	if next.IsAnswering {
		t.Error("IsAnswering should be false when another player holds the floor")
	}
	if next.CanBuzz {
		t.Error("CanBuzz should be false outside QUESTION_DISPLAY")
	}
	if !next.IsLockedOut(2) || !next.IsLockedOut(5) {
		t.Error("lockouts should mirror the server")
	}
	if next.AnswerDeadline == nil || !next.AnswerDeadline.Equal(deadline) {
		t.Errorf("AnswerDeadline %v, want %v", next.AnswerDeadline, deadline)
	}
}

func TestTransition_AnswerWrongLocksOutLocalPlayer(t *testing.T) {
	state := Transition(NewRoundState(7), RoundStarted{RoundNumber: 1})
	state = Transition(state, BuzzSucceeded{IsFirst: true})

	next := Transition(state, AnswerSubmitted{IsCorrect: false, RoundComplete: false})

	if next.Phase != PhaseQuestionDisplay {
		t.Errorf("phase %s, want %s", next.Phase, PhaseQuestionDisplay)
	}
	if next.IsAnswering {
		t.Error("IsAnswering should be cleared")
	}
	if next.CanBuzz {
		t.Error("a wrong answer spends the local player's attempt")
	}
	if !next.IsLockedOut(7) {
		t.Error("local player should be locked out after a wrong answer")
	}
	if next.CurrentBuzzerID != nil {
		t.Error("CurrentBuzzerID should be cleared")
	}
}

func TestTransition_AnswerWrongEndsRound(t *testing.T) {
	state := Transition(NewRoundState(7), RoundStarted{RoundNumber: 1})
	state = Transition(state, BuzzSucceeded{IsFirst: true})

	next := Transition(state, AnswerSubmitted{IsCorrect: false, RoundComplete: true})

	if next.Phase != PhaseRoundComplete {
		t.Errorf("phase %s, want %s", next.Phase, PhaseRoundComplete)
	}
	if next.CurrentBuzzerID != nil {
		t.Error("CurrentBuzzerID should be cleared when the round ends")
	}
}

func TestTransition_UnknownStatusIgnoresWholeEvent(t *testing.T) {
	state := Transition(NewRoundState(7), RoundStarted{RoundNumber: 1})

	next := Transition(state, ServerStateSynced{
		Status:          ServerRoundStatus("LIGHTNING_ROUND"),
		CurrentBuzzerID: int64p(3),
		LockedOut:       []int64{7},
	})

	if !next.Equal(state) {
		t.Error("an unrecognized status should leave the state untouched")
	}
}

// The reducer is deterministic and does not mutate its input.
func TestTransition_Purity(t *testing.T) {
	deadline := time.Date(2025, 1, 1, 0, 0, 30, 0, time.UTC)
	state := Transition(NewRoundState(7), RoundStarted{RoundNumber: 1})
	events := []Event{
		ServerStateSynced{Status: StatusWaitingForBuzz, LockedOut: []int64{2}},
		BuzzSucceeded{IsFirst: true, Deadline: timep(deadline)},
		AnswerSubmitted{IsCorrect: false},
		NextRoundRequested{},
		GameCompleted{},
	}

	for _, ev := range events {
		before := state
		first := Transition(state, ev)
		second := Transition(state, ev)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%T: two applications differ", ev)
		}
		if !reflect.DeepEqual(before, state) {
			t.Errorf("%T: input state was mutated", ev)
		}
	}
}

// CanBuzz and IsAnswering are never both true on any reachable state.
func TestTransition_FlagsMutuallyExclusive(t *testing.T) {
	deadline := time.Date(2025, 1, 1, 0, 0, 30, 0, time.UTC)
	scripts := [][]Event{
		{RoundStarted{RoundNumber: 1}},
		{RoundStarted{RoundNumber: 1}, BuzzSucceeded{IsFirst: true, Deadline: timep(deadline)}},
		{RoundStarted{RoundNumber: 1}, BuzzSucceeded{IsFirst: true}, AnswerSubmitted{IsCorrect: true}},
		{RoundStarted{RoundNumber: 1}, BuzzSucceeded{IsFirst: true}, AnswerSubmitted{RoundComplete: true}},
		{RoundStarted{RoundNumber: 1}, BuzzSucceeded{IsFirst: true}, AnswerSubmitted{}},
		{RoundStarted{RoundNumber: 1}, ServerStateSynced{Status: StatusPlayerAnswering, CurrentBuzzerID: int64p(7)}},
		{RoundStarted{RoundNumber: 1}, ServerStateSynced{Status: StatusPlayerAnswering, CurrentBuzzerID: int64p(3)}},
		{RoundStarted{RoundNumber: 1}, ServerStateSynced{Status: StatusAllLockedOut}},
		{RoundStarted{RoundNumber: 1}, NextRoundRequested{}},
		{RoundStarted{RoundNumber: 1}, GameCompleted{}},
		{ServerStateSynced{Status: StatusWaitingForBuzz, LockedOut: []int64{7}}},
	}

	for i, script := range scripts {
		state := NewRoundState(7)
		for j, ev := range script {
			state = Transition(state, ev)
			if state.CanBuzz && state.IsAnswering {
				t.Errorf("script %d step %d (%T): CanBuzz and IsAnswering both true", i, j, ev)
			}
		}
	}
}

// Lockouts only grow between round boundaries.
func TestTransition_LockoutMonotonicWithinRound(t *testing.T) {
	state := Transition(NewRoundState(7), RoundStarted{RoundNumber: 1})
	syncs := []ServerStateSynced{
		{Status: StatusWaitingForBuzz, LockedOut: []int64{2}},
		{Status: StatusWaitingForBuzz, LockedOut: []int64{2, 5}},
		{Status: StatusWaitingForBuzz, LockedOut: []int64{2, 5}},
		{Status: StatusAllLockedOut, LockedOut: []int64{2, 5, 7}},
	}

	prev := 0
	for i, sync := range syncs {
		state = Transition(state, sync)
		if len(state.LockedOut) < prev {
			t.Errorf("sync %d: lockout count shrank from %d to %d", i, prev, len(state.LockedOut))
		}
		prev = len(state.LockedOut)
	}

	state = Transition(state, NextRoundRequested{})
	if len(state.LockedOut) != 0 {
		t.Error("NextRoundRequested should reset lockouts")
	}
}

// Losing the buzz race any number of times changes nothing.
func TestTransition_BuzzLostIsNoOp(t *testing.T) {
	state := Transition(NewRoundState(7), RoundStarted{RoundNumber: 1})
	lost := BuzzSucceeded{IsFirst: false, Deadline: timep(time.Now())}

	for i := 0; i < 5; i++ {
		next := Transition(state, lost)
		if !next.Equal(state) {
			t.Fatalf("application %d of a lost buzz changed state", i+1)
		}
		state = next
	}
}

// GAME_COMPLETE absorbs every event.
func TestTransition_GameCompleteAbsorbing(t *testing.T) {
	state := Transition(NewRoundState(7), GameCompleted{})
	if state.Phase != PhaseGameComplete {
		t.Fatalf("phase %s, want %s", state.Phase, PhaseGameComplete)
	}

	events := []Event{
		RoundStarted{RoundNumber: 9},
		ServerStateSynced{Status: StatusWaitingForBuzz},
		BuzzSucceeded{IsFirst: true},
		AnswerSubmitted{IsCorrect: true},
		NextRoundRequested{},
		GameCompleted{},
	}
	for _, ev := range events {
		next := Transition(state, ev)
		if next.Phase != PhaseGameComplete {
			t.Errorf("%T moved phase to %s", ev, next.Phase)
		}
		if !next.Equal(state) {
			t.Errorf("%T changed a terminal state", ev)
		}
	}
}

func TestRoundState_TimeRemaining(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	state := NewRoundState(7)

	if got := state.TimeRemaining(now); got != 0 {
		t.Errorf("no deadline: got %d, want 0", got)
	}

	state.AnswerDeadline = timep(now.Add(10 * time.Second))
	if got := state.TimeRemaining(now); got != 10 {
		t.Errorf("got %d, want 10", got)
	}
	if got := state.TimeRemaining(now.Add(15 * time.Second)); got != 0 {
		t.Errorf("past deadline: got %d, want 0", got)
	}
}

func TestServerRoundStatus_Phase(t *testing.T) {
	cases := []struct {
		status ServerRoundStatus
		phase  GamePhase
		ok     bool
	}{
		{StatusWaitingForBuzz, PhaseQuestionDisplay, true},
		{StatusPlayerAnswering, PhasePlayerAnswering, true},
		{StatusCorrectAnswer, PhaseAnswerFeedback, true},
		{StatusAllLockedOut, PhaseRoundComplete, true},
		{ServerRoundStatus("BONUS_ROUND"), "", false},
	}

	for _, tc := range cases {
		phase, ok := tc.status.Phase()
		if phase != tc.phase || ok != tc.ok {
			t.Errorf("%s: got (%s, %v), want (%s, %v)", tc.status, phase, ok, tc.phase, tc.ok)
		}
	}
}
