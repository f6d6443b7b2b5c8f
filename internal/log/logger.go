package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger is the interface for logging match events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	mu     sync.Mutex
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.append(event)
}

func (l *MemoryLogger) append(event GameEvent) GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
	return event
}

func (l *MemoryLogger) Events() []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]GameEvent, len(l.events))
	copy(out, l.events)
	return out
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.Events() {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	event = l.MemoryLogger.append(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// PlayerName returns "A" or "B" for display.
func PlayerName(p int) string {
	switch p {
	case 0:
		return "A"
	case 1:
		return "B"
	default:
		return "-"
	}
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	half := e.Half
	// Pad half to 7 chars for alignment
	for len(half) < 7 {
		half += " "
	}
	return fmt.Sprintf("R%-2d %s| %s", e.Round, half, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewMatchStartEvent(starting int) GameEvent {
	return GameEvent{
		Player:  starting,
		Type:    EventMatchStart,
		Details: fmt.Sprintf("=== Match start: %s leads every round ===", PlayerName(starting)),
	}
}

func NewRoundStartEvent(round int, starting int) GameEvent {
	return GameEvent{
		Round:   round,
		Half:    "First",
		Player:  starting,
		Type:    EventRoundStart,
		Details: fmt.Sprintf("--- Round %d (%s to act) ---", round, PlayerName(starting)),
	}
}

func NewRevealEvent(round int, half string, player int, cardName, label string, points int) GameEvent {
	return GameEvent{
		Round:   round,
		Half:    half,
		Player:  player,
		Type:    EventReveal,
		Card:    cardName,
		Details: fmt.Sprintf("%s reveals %s (%d pts)", PlayerName(player), label, points),
	}
}

func NewSwapOfferedEvent(round int, half string, player int) GameEvent {
	return GameEvent{
		Round:   round,
		Half:    half,
		Player:  player,
		Type:    EventSwapOffered,
		Details: fmt.Sprintf("%s may keep or exchange (one swap per match)", PlayerName(player)),
	}
}

func NewDecisionPendingEvent(round int, half string, player int, provider string) GameEvent {
	return GameEvent{
		Round:   round,
		Half:    half,
		Player:  player,
		Type:    EventDecisionPending,
		Details: fmt.Sprintf("Waiting for %s's decision (%s)", PlayerName(player), provider),
	}
}

func NewKeepEvent(round int, half string, player int, cardName, rationale string) GameEvent {
	details := fmt.Sprintf("%s keeps %s", PlayerName(player), cardName)
	if rationale != "" {
		details += fmt.Sprintf(": %q", rationale)
	}
	return GameEvent{
		Round:   round,
		Half:    half,
		Player:  player,
		Type:    EventKeep,
		Card:    cardName,
		Details: details,
	}
}

func NewExchangeEvent(round int, half string, player int, oldLabel, newName, newLabel string, newPoints int) GameEvent {
	return GameEvent{
		Round:   round,
		Half:    half,
		Player:  player,
		Type:    EventExchange,
		Card:    newName,
		Details: fmt.Sprintf("%s exchanges %s → %s (%d pts)", PlayerName(player), oldLabel, newLabel, newPoints),
	}
}

// NewDecisionFallbackEvent reports a failed provider and who decided instead.
// An empty or "default" substitute means the revealed card was kept.
func NewDecisionFallbackEvent(round int, half string, player int, provider, reason, substitute string) GameEvent {
	using := "keeping the revealed card"
	if substitute != "" && substitute != "default" {
		using = "using " + substitute
	}
	return GameEvent{
		Round:   round,
		Half:    half,
		Player:  player,
		Type:    EventDecisionFallback,
		Details: fmt.Sprintf("%s unavailable for %s (%s); %s", provider, PlayerName(player), reason, using),
	}
}

func NewRejectedEvent(round int, half string, player int, action string, reason string) GameEvent {
	return GameEvent{
		Round:   round,
		Half:    half,
		Player:  player,
		Type:    EventRejected,
		Details: fmt.Sprintf("%s %s rejected: %s", PlayerName(player), action, reason),
	}
}

func NewRoundCompleteEvent(round int) GameEvent {
	return GameEvent{
		Round:   round,
		Player:  -1,
		Type:    EventRoundComplete,
		Details: fmt.Sprintf("Round %d complete", round),
	}
}

func NewMatchCompleteEvent(round int, outcome string, totalA, totalB int) GameEvent {
	return GameEvent{
		Round:   round,
		Player:  -1,
		Type:    EventMatchComplete,
		Details: fmt.Sprintf("%s (A %d pts / B %d pts)", outcome, totalA, totalB),
	}
}

func NewLootEvent(round int, player int, cardName, label string) GameEvent {
	return GameEvent{
		Round:   round,
		Player:  player,
		Type:    EventLoot,
		Card:    cardName,
		Details: fmt.Sprintf("%s claims %s as loot", PlayerName(player), label),
	}
}
