package log

// EventType enumerates all observable match events.
type EventType int

const (
	EventMatchStart EventType = iota
	EventRoundStart
	EventReveal
	EventSwapOffered
	EventDecisionPending
	EventKeep
	EventExchange
	EventDecisionFallback
	EventRejected
	EventRoundComplete
	EventMatchComplete
	EventLoot
)

func (e EventType) String() string {
	switch e {
	case EventMatchStart:
		return "MatchStart"
	case EventRoundStart:
		return "RoundStart"
	case EventReveal:
		return "Reveal"
	case EventSwapOffered:
		return "SwapOffered"
	case EventDecisionPending:
		return "DecisionPending"
	case EventKeep:
		return "Keep"
	case EventExchange:
		return "Exchange"
	case EventDecisionFallback:
		return "DecisionFallback"
	case EventRejected:
		return "Rejected"
	case EventRoundComplete:
		return "RoundComplete"
	case EventMatchComplete:
		return "MatchComplete"
	case EventLoot:
		return "Loot"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a match.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Round   int       // 1-based round, 0 before the match starts
	Half    string    // "First" or "Second" (empty outside a round)
	Player  int       // acting player (0 = A, 1 = B), -1 when none
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Details string    // human-readable detail string
}
