package tray

import (
	"testing"

	"github.com/ayusman/handsign/internal/store"
)

func TestTray_PublishRound(t *testing.T) {
	tr := New()

	if got := tr.Last(); got != "Last: none" {
		t.Errorf("initial last = %q", got)
	}

	rounds := []*store.Round{
		{Player: "rock", Bot: "scissors", Outcome: "player"},
		{Player: "rock", Bot: "paper", Outcome: "bot"},
		{Player: "paper", Bot: "paper", Outcome: "draw"},
		{Player: "", Bot: "rock", Outcome: "undetermined"},
		{Player: "scissors", Bot: "paper", Outcome: "player"},
	}
	for _, r := range rounds {
		tr.PublishRound(r)
	}

	want := Score{Player: 2, Bot: 1, Draws: 1}
	if got := tr.Score(); got != want {
		t.Errorf("score = %+v, want %+v", got, want)
	}
	if got := tr.Last(); got != "Last: scissors vs paper, Player wins" {
		t.Errorf("last = %q", got)
	}
}

func TestTray_LastWithoutThrow(t *testing.T) {
	tr := New()
	tr.PublishRound(&store.Round{Bot: "rock", Outcome: "undetermined"})

	if got := tr.Last(); got != "Last: nothing vs rock, Undetermined" {
		t.Errorf("last = %q", got)
	}
}

func TestScore_String(t *testing.T) {
	s := Score{Player: 3, Bot: 1, Draws: 2}
	if got := s.String(); got != "You 3 : 1 Bot (2 draws)" {
		t.Errorf("String() = %q", got)
	}
}

func TestTray_Toggle(t *testing.T) {
	tr := New()

	var calls []bool
	tr.OnToggle(func(paused bool) {
		calls = append(calls, paused)
	})

	tr.handleToggle()
	if !tr.Paused() {
		t.Error("expected paused after first toggle")
	}
	tr.handleToggle()
	if tr.Paused() {
		t.Error("expected detecting after second toggle")
	}

	if len(calls) != 2 || calls[0] != true || calls[1] != false {
		t.Errorf("unexpected callbacks %v", calls)
	}
}

func TestTray_Open(t *testing.T) {
	tr := New()
	tr.handleOpen() // no callback set

	opened := false
	tr.OnOpen(func() { opened = true })
	tr.handleOpen()

	if !opened {
		t.Error("expected open callback")
	}
}

func TestToggleTitle(t *testing.T) {
	if toggleTitle(false) != "● Detecting" {
		t.Errorf("unexpected title %q", toggleTitle(false))
	}
	if toggleTitle(true) != "○ Paused" {
		t.Errorf("unexpected title %q", toggleTitle(true))
	}
}
