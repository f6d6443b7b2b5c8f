package decision

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/peterkuimelis/swapduel/internal/catalog"
)

// Bot is the local heuristic. It is synchronous and deterministic: the same
// state and config always produce the same action.
type Bot struct {
	catalog *catalog.Catalog
}

// NewBot creates a bot that values booster draws against c.
func NewBot(c *catalog.Catalog) *Bot {
	return &Bot{catalog: c}
}

func (b *Bot) Name() string {
	return "bot"
}

// caution scales the booster average the revealed card is compared with.
// An easy bot only gives up clearly weak cards.
func caution(difficulty string) float64 {
	switch strings.ToLower(difficulty) {
	case "easy":
		return 0.6
	default:
		return 1.0
	}
}

// Decide compares keeping the revealed card with the expected value of a
// booster draw and picks the higher one; ties keep. On hard difficulty the bot
// also reads the opponent's known cards and exchanges whenever keeping is a
// certain loss that a lucky draw could still turn around.
func (b *Bot) Decide(ctx context.Context, state State, cfg Config) (Action, error) {
	if err := ctx.Err(); err != nil {
		return Action{}, err
	}
	current := state.Current()
	expected := b.catalog.ExpectedBoosterPoints()
	threshold := expected * caution(cfg.Difficulty)

	style := cfg.Style
	if style == "" {
		style = "balanced"
	}

	action := Action{Type: ActionKeep, Source: b.Name()}
	if float64(current.Points) < threshold {
		action.Type = ActionExchange
		action.Rationale = fmt.Sprintf("I am exchanging %s because a booster draw averages %.0f points, more than its %d, in this %s strategy.",
			current.Label, expected, current.Points, style)
	} else {
		action.Rationale = fmt.Sprintf("I am keeping %s because its %d points hold up against a %.0f-point booster average in this %s strategy.",
			current.Label, current.Points, expected, style)
	}

	if strings.EqualFold(cfg.Difficulty, "hard") && action.Type == ActionKeep {
		if best, ok := b.rescue(state, current); ok {
			action.Type = ActionExchange
			action.Rationale = fmt.Sprintf("I am exchanging %s because keeping it cannot win, and a %s draw still could, in this %s strategy.",
				current.Label, best.Label, style)
		}
	}

	gap := math.Abs(expected - float64(current.Points))
	action.Confidence = clamp01(0.5 + 0.5*gap/math.Max(expected, 1))
	return action, nil
}

// rescue reports whether keeping current loses against the opponent's fully
// known hand while the strongest booster card would win.
func (b *Bot) rescue(state State, current catalog.Card) (catalog.Card, bool) {
	opp := 0
	for _, c := range state.OpponentHand {
		if b.catalog.IsCardBack(c) {
			return catalog.Card{}, false
		}
		opp += c.Points
	}
	own := 0
	for _, c := range state.Hand {
		own += c.Points
	}
	if own > opp {
		return catalog.Card{}, false
	}
	best, ok := b.catalog.Strongest(b.catalog.BoosterPool())
	if !ok {
		return catalog.Card{}, false
	}
	return best, own-current.Points+best.Points > opp
}
