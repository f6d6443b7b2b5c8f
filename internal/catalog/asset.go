package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// Asset is an owned card object as returned by the chain indexer.
type Asset struct {
	ObjectID string    `json:"objectId"`
	Data     AssetData `json:"data"`
}

type AssetData struct {
	Content AssetContent `json:"content"`
}

type AssetContent struct {
	Fields AssetFields `json:"fields"`
}

// AssetFields holds the on-chain card fields. Points arrives as a string on
// some indexers and as a number on others.
type AssetFields struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Points   any    `json:"points"`
	Type     string `json:"type"`
}

// NormalizePoints coerces a raw point value into a non-negative int.
// Anything that cannot be read as an integer scores zero.
func NormalizePoints(v any) int {
	n, err := cast.ToIntE(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Card converts the asset into a Card, filling missing fields with
// placeholders.
func (a Asset) Card() Card {
	f := a.Data.Content.Fields
	name, label := f.Name, f.Name
	if name == "" {
		name, label = "unknown", "Unknown Card"
	}
	return Card{
		Name:            name,
		Label:           label,
		ArtworkRef:      f.ImageURL,
		Points:          NormalizePoints(f.Points),
		Rarity:          ParseRarity(f.Type),
		BoosterEligible: true,
	}
}

// FromAssets converts owned assets into cards, keeping their order.
func FromAssets(assets []Asset) []Card {
	cards := make([]Card, 0, len(assets))
	for _, a := range assets {
		cards = append(cards, a.Card())
	}
	return cards
}

// ParseAssets decodes a JSON array of owned assets.
func ParseAssets(data []byte) ([]Asset, error) {
	var assets []Asset
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, fmt.Errorf("parse assets JSON: %w", err)
	}
	return assets, nil
}
