package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryLoggerAssignsSeq(t *testing.T) {
	l := NewMemoryLogger()
	l.Log(NewMatchStartEvent(1))
	l.Log(NewRoundStartEvent(1, 1))
	l.Log(NewRevealEvent(1, "First", 1, "scout", "Scout", 27))

	events := l.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, e := range events {
		if e.Seq != i+1 {
			t.Errorf("event %d: seq %d", i, e.Seq)
		}
	}
	if got := l.EventsOfType(EventReveal); len(got) != 1 || got[0].Card != "scout" {
		t.Errorf("EventsOfType(Reveal) = %+v", got)
	}
	if l.LastEvent().Type != EventReveal {
		t.Errorf("last event %v", l.LastEvent().Type)
	}
}

func TestEmptyMemoryLogger(t *testing.T) {
	l := NewMemoryLogger()
	if e := l.LastEvent(); e.Seq != 0 || e.Type != EventMatchStart {
		t.Errorf("expected zero event, got %+v", e)
	}
	if len(l.Events()) != 0 {
		t.Error("expected no events")
	}
}

func TestTextLoggerWritesLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.Log(NewKeepEvent(2, "Second", 0, "forester", "strong card"))
	l.Log(NewMatchCompleteEvent(4, "A wins", 150, 120))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if lines[0] != `R2  Second | A keeps forester: "strong card"` {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "A 150 pts / B 120 pts") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if len(l.Events()) != 2 || l.Events()[1].Seq != 2 {
		t.Error("text logger should also keep events")
	}
}

func TestFormatAll(t *testing.T) {
	events := []GameEvent{
		NewRoundCompleteEvent(1),
		NewRejectedEvent(2, "First", 1, "reveal", "not your turn"),
	}
	out := FormatAll(events)
	want := "R1         | Round 1 complete\nR2  First  | B reveal rejected: not your turn\n"
	if out != want {
		t.Errorf("FormatAll =\n%q\nwant\n%q", out, want)
	}
}

func TestPlayerName(t *testing.T) {
	for p, want := range map[int]string{0: "A", 1: "B", -1: "-"} {
		if got := PlayerName(p); got != want {
			t.Errorf("PlayerName(%d) = %q, want %q", p, got, want)
		}
	}
}
