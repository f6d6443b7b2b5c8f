package catalog

// defaultCards is the built-in card set in catalog order.
var defaultCards = []Card{
	{Name: "traveller", Label: "Traveller", ArtworkRef: "card_art/traveller.webp", Points: 50, Rarity: RarityCommon, BoosterEligible: true},
	{Name: "blobby", Label: "Blobby", ArtworkRef: "card_art/blobby.webp", Points: 30, Rarity: RarityCommon, BoosterEligible: true},
	{Name: "bunnyfriend", Label: "Bunnyfriend", ArtworkRef: "card_art/bunnyfriend.webp", Points: 15, Rarity: RarityCommon, BoosterEligible: true},
	{Name: "flowermaiden", Label: "Flowermaiden", ArtworkRef: "card_art/flowermaiden.webp", Points: 38, Rarity: RarityCommon, BoosterEligible: true},
	{Name: "scout", Label: "Scout", ArtworkRef: "card_art/scout.webp", Points: 27, Rarity: RarityCommon, BoosterEligible: true},
	{Name: "forester", Label: "Forester", ArtworkRef: "card_art/forester.webp", Points: 90, Rarity: RarityLegendary, BoosterEligible: true},
	{Name: "necromancer", Label: "Necromancer", ArtworkRef: "card_art/necromancer.webp", Points: 68, Rarity: RarityRare, BoosterEligible: true},
	{Name: "archivist", Label: "Archivist", ArtworkRef: "card_art/archivist.webp", Points: 73, Rarity: RarityRare, BoosterEligible: true},
	{Name: CardBackName, Label: "Card Back", ArtworkRef: "card_art/dos.webp", Points: 0, Rarity: RarityCommon, BoosterEligible: false},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultCards)
	if err != nil {
		panic(err)
	}
	return c
}
