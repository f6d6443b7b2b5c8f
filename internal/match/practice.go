package match

import (
	"fmt"
	"math/rand"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/log"
)

// DealHand takes the first three owned cards, or a booster of distinct
// cards when none are owned.
func DealHand(d *catalog.Drawer, owned []catalog.Card) ([]catalog.Card, error) {
	switch {
	case len(owned) == 0:
		return d.Booster(HandSize), nil
	case len(owned) < HandSize:
		return nil, fmt.Errorf("%w: only %d owned cards", ErrHandSize, len(owned))
	default:
		return append([]catalog.Card(nil), owned[:HandSize]...), nil
	}
}

// PracticeHands deals a practice match: the player's hand from DealHand
// against a bot booster.
func PracticeHands(d *catalog.Drawer, owned []catalog.Card) (player, bot []catalog.Card, err error) {
	player, err = DealHand(d, owned)
	if err != nil {
		return nil, nil, err
	}
	return player, d.Booster(HandSize), nil
}

// PracticeConfig describes a match between a player at seat A and a
// computer opponent at seat B.
type PracticeConfig struct {
	ID       string
	Catalog  *catalog.Catalog
	Owned    []catalog.Card // player's cards; a booster if empty
	Seed     int64
	Logger   log.EventLogger
	Player   Seat
	Opponent Seat
}

// NewPractice deals a practice match and returns its runner. The opponent
// always evaluates the player's full hand.
func NewPractice(cfg PracticeConfig) (*Runner, error) {
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	drawer := catalog.NewDrawer(cat, rng)
	player, bot, err := PracticeHands(drawer, cfg.Owned)
	if err != nil {
		return nil, fmt.Errorf("deal: %w", err)
	}
	m, err := New(Config{
		ID:      cfg.ID,
		Catalog: cat,
		HandA:   player,
		HandB:   bot,
		Drawer:  drawer,
		Logger:  cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	opponent := cfg.Opponent
	opponent.SeesOpponent = true
	return NewRunner(m, cfg.Player, opponent), nil
}
