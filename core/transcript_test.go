package session

import (
	"testing"
	"time"
)

func TestTranscriptAccumulatorMergesFragments(t *testing.T) {
	a := newTranscriptAccumulator()

	if got := a.AppendUser("Hel"); got != "Hel" {
		t.Errorf("expected snapshot %q, got %q", "Hel", got)
	}
	if got := a.AppendUser("lo"); got != "Hello" {
		t.Errorf("expected snapshot %q, got %q", "Hello", got)
	}
	if got := a.AppendModel("Sure, "); got != "Sure, " {
		t.Errorf("expected snapshot %q, got %q", "Sure, ", got)
	}
	if got := a.AppendModel("chop the onions."); got != "Sure, chop the onions." {
		t.Errorf("expected snapshot %q, got %q", "Sure, chop the onions.", got)
	}
}

func TestTranscriptAccumulatorFlushResetsBothSides(t *testing.T) {
	a := newTranscriptAccumulator()
	a.AppendUser("What's next?")
	a.AppendModel("Crack in the eggs.")

	now := time.Now()
	turn := a.FlushTurn(now)
	if turn.UserText != "What's next?" || turn.ModelText != "Crack in the eggs." {
		t.Errorf("unexpected turn content: %+v", turn)
	}
	if !turn.CompletedAt.Equal(now) {
		t.Errorf("expected completion time %v, got %v", now, turn.CompletedAt)
	}

	if got := a.AppendUser("And then?"); got != "And then?" {
		t.Errorf("expected a fresh accumulator after flush, got %q", got)
	}
}

func TestTranscriptAccumulatorEmptyTurnIsStillATurn(t *testing.T) {
	a := newTranscriptAccumulator()

	turn := a.FlushTurn(time.Now())
	if turn.UserText != "" || turn.ModelText != "" {
		t.Errorf("expected an empty turn, got %+v", turn)
	}
}
