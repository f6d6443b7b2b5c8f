package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CatalogFile represents the top-level YAML structure.
type CatalogFile struct {
	Cards []CardEntry `yaml:"cards"`
}

// CardEntry represents one card in the YAML file. Points may be written as a
// number or a string; Booster defaults to true when omitted.
type CardEntry struct {
	Name    string `yaml:"name"`
	Label   string `yaml:"label"`
	Art     string `yaml:"art"`
	Points  any    `yaml:"points"`
	Rarity  string `yaml:"rarity"`
	Booster *bool  `yaml:"booster"`
}

// Card converts the entry into a Card.
func (e CardEntry) Card() Card {
	label := e.Label
	if label == "" {
		label = e.Name
	}
	booster := true
	if e.Booster != nil {
		booster = *e.Booster
	}
	return Card{
		Name:            e.Name,
		Label:           label,
		ArtworkRef:      e.Art,
		Points:          NormalizePoints(e.Points),
		Rarity:          ParseRarity(e.Rarity),
		BoosterEligible: booster,
	}
}

// Parse builds a catalog from YAML data.
func Parse(data []byte) (*Catalog, error) {
	var cf CatalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	cards := make([]Card, 0, len(cf.Cards))
	for _, e := range cf.Cards {
		cards = append(cards, e.Card())
	}
	return New(cards)
}

// ParseFile reads and parses a YAML catalog file.
func ParseFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Load returns the catalog at path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return ParseFile(path)
}
