// Package decision defines how a seat chooses between keeping a revealed card
// and exchanging it, and provides the bot, remote AI and human implementations.
package decision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/peterkuimelis/swapduel/internal/catalog"
)

// ActionType is the outcome of a swap decision.
type ActionType int

const (
	ActionKeep ActionType = iota
	ActionExchange
)

func (a ActionType) String() string {
	if a == ActionExchange {
		return "exchange"
	}
	return "keep"
}

// ParseActionType accepts the decision names used by the fronts and by the AI
// service. "play_card" and "swap" mean exchange; "end_turn" means keep.
func ParseActionType(s string) (ActionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keep", "end_turn":
		return ActionKeep, nil
	case "exchange", "swap", "play_card":
		return ActionExchange, nil
	default:
		return ActionKeep, fmt.Errorf("unknown action type %q", s)
	}
}

// Action is one decision.
type Action struct {
	Type       ActionType
	Rationale  string
	Confidence float64 // in [0,1]

	// Source names the provider that actually produced the action.
	Source string
	// FallbackReason is set when the primary provider failed and Source is the
	// substitute.
	FallbackReason string
}

// Config tunes a provider.
type Config struct {
	Difficulty string
	Style      string

	// SwapBelowConfidence turns a keep whose confidence is below this value
	// into an exchange. Zero disables it.
	SwapBelowConfidence float64
}

// DefaultConfig matches the practice-mode defaults.
func DefaultConfig() Config {
	return Config{Difficulty: "normal", Style: "balanced", SwapBelowConfidence: 0.5}
}

// Resolve applies the confidence bias to a.
func (c Config) Resolve(a Action) ActionType {
	if a.Type == ActionKeep && c.SwapBelowConfidence > 0 && a.Confidence < c.SwapBelowConfidence {
		return ActionExchange
	}
	return a.Type
}

// Move is one entry of the action history shown to providers.
type Move struct {
	Round  int    `json:"round"`
	Player int    `json:"player"`
	Kind   string `json:"kind"`
	Card   string `json:"card,omitempty"`
}

// State is what a provider sees when asked to decide. Hand is the deciding
// seat's own hand; OpponentHand has unrevealed cards replaced by the card back
// unless the seat is allowed to see the whole opponent hand.
type State struct {
	Round            int
	Player           int
	Hand             []catalog.Card
	Revealed         []bool
	OpponentHand     []catalog.Card
	OpponentRevealed []bool
	Swapped          bool
	OpponentSwapped  bool
	History          []Move
}

// Current returns the card the seat just revealed.
func (s State) Current() catalog.Card {
	return s.Hand[s.Round-1]
}

// Provider decides whether a seat keeps or exchanges its revealed card.
type Provider interface {
	Name() string
	Decide(ctx context.Context, state State, cfg Config) (Action, error)
}

// ErrProviderTimeout is returned when a provider did not answer in time.
var ErrProviderTimeout = errors.New("decision provider timed out")

// ProviderError wraps a provider-side failure (network, status, parse).
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
