package catalog

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	all := c.Cards()
	require.Len(t, all, 9)
	assert.Equal(t, "traveller", all[0].Name)

	pool := c.BoosterPool()
	require.Len(t, pool, 8)
	for _, card := range pool {
		assert.NotEqual(t, CardBackName, card.Name, "card back must not be in the booster pool")
	}

	back := c.CardBack()
	assert.Equal(t, CardBackName, back.Name)
	assert.Equal(t, 0, back.Points)
	assert.True(t, c.IsCardBack(back))

	forester, ok := c.Lookup("forester")
	require.True(t, ok)
	assert.Equal(t, 90, forester.Points)
	assert.Equal(t, RarityLegendary, forester.Rarity)

	_, ok = c.Lookup("nobody")
	assert.False(t, ok)
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]Card{
		{Name: "a", Points: 1, BoosterEligible: true},
		{Name: "a", Points: 2, BoosterEligible: true},
	})
	require.ErrorIs(t, err, ErrDuplicateCard)
}

func TestNewRequiresBoosterCards(t *testing.T) {
	_, err := New([]Card{{Name: CardBackName, BoosterEligible: true}})
	require.ErrorIs(t, err, ErrEmptyPool)
}

func TestCardBackIsForcedOutOfPool(t *testing.T) {
	c, err := New([]Card{
		{Name: "a", Points: 10, BoosterEligible: true},
		{Name: CardBackName, Points: 40, BoosterEligible: true},
	})
	require.NoError(t, err)
	assert.Len(t, c.BoosterPool(), 1)
	assert.Equal(t, 0, c.CardBack().Points)
}

func TestStrongestBreaksTiesByCatalogOrder(t *testing.T) {
	c, err := New([]Card{
		{Name: "first", Label: "First", Points: 40, BoosterEligible: true},
		{Name: "second", Label: "Second", Points: 40, BoosterEligible: true},
		{Name: "weak", Label: "Weak", Points: 5, BoosterEligible: true},
	})
	require.NoError(t, err)

	second, _ := c.Lookup("second")
	first, _ := c.Lookup("first")
	weak, _ := c.Lookup("weak")

	best, ok := c.Strongest([]Card{weak, second, first})
	require.True(t, ok)
	assert.Equal(t, "first", best.Name)

	_, ok = c.Strongest(nil)
	assert.False(t, ok)
}

func TestExpectedBoosterPoints(t *testing.T) {
	c, err := New([]Card{
		{Name: "a", Points: 10, BoosterEligible: true},
		{Name: "b", Points: 30, BoosterEligible: true},
		{Name: "c", Points: 1000, BoosterEligible: false},
	})
	require.NoError(t, err)
	assert.InDelta(t, 20.0, c.ExpectedBoosterPoints(), 1e-9)
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
cards:
  - name: knight
    label: Knight
    art: art/knight.png
    points: "42"
    rarity: rare
  - name: squire
    points: 7
  - name: dos
    label: Card Back
    booster: false
`)
	c, err := Parse(data)
	require.NoError(t, err)

	knight, ok := c.Lookup("knight")
	require.True(t, ok)
	assert.Equal(t, 42, knight.Points)
	assert.Equal(t, RarityRare, knight.Rarity)
	assert.True(t, knight.BoosterEligible)

	squire, _ := c.Lookup("squire")
	assert.Equal(t, "squire", squire.Label)
	assert.Equal(t, RarityCommon, squire.Rarity)

	assert.Len(t, c.BoosterPool(), 2)
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Len(t, c.Cards(), len(Default().Cards()))
}

func TestNormalizePoints(t *testing.T) {
	assert.Equal(t, 50, NormalizePoints("50"))
	assert.Equal(t, 50, NormalizePoints(50))
	assert.Equal(t, 50, NormalizePoints(50.0))
	assert.Equal(t, 0, NormalizePoints("lots"))
	assert.Equal(t, 0, NormalizePoints(nil))
	assert.Equal(t, 0, NormalizePoints(-3))
}

func TestAssetsCoercion(t *testing.T) {
	assets, err := ParseAssets([]byte(`[
		{"objectId": "0x1", "data": {"content": {"fields": {"name": "Forester", "image_url": "ipfs://f", "points": "90", "type": "legendary"}}}},
		{"objectId": "0x2", "data": {"content": {"fields": {"name": "Scout", "points": 27}}}},
		{"objectId": "0x3", "data": {}}
	]`))
	require.NoError(t, err)

	cards := FromAssets(assets)
	require.Len(t, cards, 3)

	assert.Equal(t, "Forester", cards[0].Name)
	assert.Equal(t, 90, cards[0].Points)
	assert.Equal(t, RarityLegendary, cards[0].Rarity)
	assert.Equal(t, "ipfs://f", cards[0].ArtworkRef)

	assert.Equal(t, 27, cards[1].Points)

	assert.Equal(t, "unknown", cards[2].Name)
	assert.Equal(t, "Unknown Card", cards[2].Label)
	assert.Equal(t, 0, cards[2].Points)
}

func TestDrawerStaysInPool(t *testing.T) {
	c := Default()
	d := NewDrawer(c, rand.New(rand.NewSource(7)))

	for i := 0; i < 200; i++ {
		card := d.Draw()
		assert.True(t, card.BoosterEligible)
		assert.False(t, c.IsCardBack(card))
	}
}

func TestBoosterIsDistinctWhilePoolAllows(t *testing.T) {
	c := Default()
	d := NewDrawer(c, rand.New(rand.NewSource(1)))

	hand := d.Booster(3)
	require.Len(t, hand, 3)
	seen := map[string]bool{}
	for _, card := range hand {
		assert.False(t, seen[card.Name], "duplicate %s in booster", card.Name)
		seen[card.Name] = true
	}

	big := d.Booster(20)
	assert.Len(t, big, 20)
}
