package catalog

import (
	"math/rand"
	"time"
)

// Drawer draws cards uniformly from a catalog's booster pool. Draws are
// independent: the same card can come up any number of times.
type Drawer struct {
	pool []Card
	rng  *rand.Rand
}

// NewDrawer creates a drawer over c's booster pool. A nil rng is seeded from
// the clock.
func NewDrawer(c *Catalog, rng *rand.Rand) *Drawer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Drawer{pool: c.BoosterPool(), rng: rng}
}

// Draw returns one uniformly random booster card.
func (d *Drawer) Draw() Card {
	return d.pool[d.rng.Intn(len(d.pool))]
}

// Booster returns n cards. Cards are distinct while the pool allows it;
// past that, further cards are independent draws.
func (d *Drawer) Booster(n int) []Card {
	shuffled := make([]Card, len(d.pool))
	copy(shuffled, d.pool)
	d.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n <= len(shuffled) {
		return shuffled[:n]
	}
	for len(shuffled) < n {
		shuffled = append(shuffled, d.Draw())
	}
	return shuffled
}

// Flip returns true with probability one half.
func (d *Drawer) Flip() bool {
	return d.rng.Intn(2) == 0
}
