package catalog

import (
	"errors"
	"fmt"
)

// CardBackName is the name of the presentation-only card-back entry.
const CardBackName = "dos"

var (
	ErrDuplicateCard = errors.New("duplicate card name")
	ErrEmptyPool     = errors.New("booster pool is empty")
)

// Catalog is a read-only, ordered set of card definitions. It is safe for
// concurrent use since nothing mutates it after New returns.
type Catalog struct {
	cards []Card
	index map[string]int
	pool  []Card
	back  Card
}

// New builds a catalog from cards in the given order. The card-back entry is
// forced to zero points and excluded from the booster pool; if cards has no
// entry named CardBackName a placeholder back is used.
func New(cards []Card) (*Catalog, error) {
	c := &Catalog{
		index: make(map[string]int, len(cards)),
		back:  Card{Name: CardBackName, Label: "Card Back"},
	}
	for _, card := range cards {
		if card.Name == "" {
			return nil, fmt.Errorf("card at position %d has no name", len(c.cards))
		}
		if _, dup := c.index[card.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCard, card.Name)
		}
		if card.Points < 0 {
			card.Points = 0
		}
		if card.Name == CardBackName {
			card.Points = 0
			card.BoosterEligible = false
			c.back = card
		}
		c.index[card.Name] = len(c.cards)
		c.cards = append(c.cards, card)
		if card.BoosterEligible {
			c.pool = append(c.pool, card)
		}
	}
	if len(c.pool) == 0 {
		return nil, ErrEmptyPool
	}
	return c, nil
}

// Cards returns every entry, card back included, in catalog order.
func (c *Catalog) Cards() []Card {
	out := make([]Card, len(c.cards))
	copy(out, c.cards)
	return out
}

// BoosterPool returns the booster-eligible entries in catalog order.
func (c *Catalog) BoosterPool() []Card {
	out := make([]Card, len(c.pool))
	copy(out, c.pool)
	return out
}

// Lookup finds a card by name.
func (c *Catalog) Lookup(name string) (Card, bool) {
	i, ok := c.index[name]
	if !ok {
		return Card{}, false
	}
	return c.cards[i], true
}

// CardBack returns the sentinel used to render unrevealed cards.
func (c *Catalog) CardBack() Card {
	return c.back
}

// IsCardBack reports whether card is the card-back sentinel.
func (c *Catalog) IsCardBack(card Card) bool {
	return card.Name == c.back.Name
}

// Position returns the catalog index of name, or len(Cards()) for cards the
// catalog does not know (owned assets), so they sort after catalog entries.
func (c *Catalog) Position(name string) int {
	if i, ok := c.index[name]; ok {
		return i
	}
	return len(c.cards)
}

// Strongest returns the highest-point card in cards. Ties go to the card that
// comes first in catalog order, then to the earlier slice position.
func (c *Catalog) Strongest(cards []Card) (Card, bool) {
	if len(cards) == 0 {
		return Card{}, false
	}
	best := cards[0]
	for _, card := range cards[1:] {
		if card.Points > best.Points ||
			(card.Points == best.Points && c.Position(card.Name) < c.Position(best.Name)) {
			best = card
		}
	}
	return best, true
}

// ExpectedBoosterPoints is the mean point value of a uniform booster draw.
func (c *Catalog) ExpectedBoosterPoints() float64 {
	total := 0
	for _, card := range c.pool {
		total += card.Points
	}
	return float64(total) / float64(len(c.pool))
}
