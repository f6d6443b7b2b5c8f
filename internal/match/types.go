package match

import (
	"fmt"
	"strings"

	"github.com/peterkuimelis/swapduel/internal/catalog"
)

const (
	Rounds   = 3
	HandSize = 3
)

// Player identifies a seat. Values double as indexes into per-player arrays
// and as the Player field of log events.
type Player int

const (
	PlayerA Player = iota
	PlayerB
)

func (p Player) Other() Player {
	return 1 - p
}

func (p Player) String() string {
	if p == PlayerB {
		return "B"
	}
	return "A"
}

// ParsePlayer accepts "a"/"b" in any case.
func ParsePlayer(s string) (Player, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return PlayerA, nil
	case "B":
		return PlayerB, nil
	default:
		return PlayerA, fmt.Errorf("unknown player %q", s)
	}
}

// Half says which of the two seats is acting within a round.
type Half int

const (
	HalfFirst Half = iota
	HalfSecond
)

func (h Half) String() string {
	if h == HalfSecond {
		return "Second"
	}
	return "First"
}

type Phase int

const (
	PhaseSetup Phase = iota
	PhaseRoundInProgress
	PhaseMatchComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "Setup"
	case PhaseRoundInProgress:
		return "RoundInProgress"
	case PhaseMatchComplete:
		return "MatchComplete"
	default:
		return "Unknown"
	}
}

type Outcome int

const (
	OutcomeInProgress Outcome = iota
	OutcomeAWins
	OutcomeBWins
	OutcomeDraw
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAWins:
		return "A wins"
	case OutcomeBWins:
		return "B wins"
	case OutcomeDraw:
		return "Draw"
	default:
		return "In progress"
	}
}

// Winner returns the winning player, or false for a draw or an unfinished match.
func (o Outcome) Winner() (Player, bool) {
	switch o {
	case OutcomeAWins:
		return PlayerA, true
	case OutcomeBWins:
		return PlayerB, true
	default:
		return PlayerA, false
	}
}

// Hand holds one card per round; index i is played in round i+1.
type Hand [HandSize]catalog.Card

// NewHand validates cards against c. The card back can never be dealt.
func NewHand(c *catalog.Catalog, cards []catalog.Card) (Hand, error) {
	var h Hand
	if len(cards) != HandSize {
		return h, fmt.Errorf("%w: got %d cards", ErrHandSize, len(cards))
	}
	for i, card := range cards {
		if c.IsCardBack(card) {
			return h, fmt.Errorf("%w: slot %d", ErrCardBackInHand, i)
		}
		if card.Points < 0 {
			card.Points = 0
		}
		h[i] = card
	}
	return h, nil
}

// Total is the sum of the hand's points.
func (h Hand) Total() int {
	total := 0
	for _, c := range h {
		total += c.Points
	}
	return total
}

// Score compares two final hands. Equal totals are a draw.
func Score(a, b Hand) (Outcome, int, int) {
	ta, tb := a.Total(), b.Total()
	switch {
	case ta > tb:
		return OutcomeAWins, ta, tb
	case tb > ta:
		return OutcomeBWins, ta, tb
	default:
		return OutcomeDraw, ta, tb
	}
}

type ActionKind int

const (
	ActionReveal ActionKind = iota
	ActionKeep
	ActionExchange
)

func (k ActionKind) String() string {
	switch k {
	case ActionKeep:
		return "keep"
	case ActionExchange:
		return "exchange"
	default:
		return "reveal"
	}
}

// ActionRecord is one applied action. For an exchange Card is the drawn card
// and Replaced the card it displaced.
type ActionRecord struct {
	Round    int
	Player   Player
	Kind     ActionKind
	Card     catalog.Card
	Replaced catalog.Card
}
