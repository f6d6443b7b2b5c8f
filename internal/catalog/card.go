package catalog

import (
	"fmt"
	"strings"
)

// Rarity is a card's rarity tier.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityRare
	RarityLegendary
)

func (r Rarity) String() string {
	switch r {
	case RarityRare:
		return "rare"
	case RarityLegendary:
		return "legendary"
	default:
		return "common"
	}
}

// ParseRarity maps a tier name to a Rarity. Unknown names are common.
func ParseRarity(s string) Rarity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rare":
		return RarityRare
	case "legendary":
		return RarityLegendary
	default:
		return RarityCommon
	}
}

// Card is an immutable card definition. Identity is by Name.
type Card struct {
	Name            string
	Label           string
	ArtworkRef      string
	Points          int
	Rarity          Rarity
	BoosterEligible bool
}

func (c Card) String() string {
	return c.Label
}

// DisplayString returns a human-readable description for the event log.
func (c Card) DisplayString() string {
	return fmt.Sprintf("%s (%d pts, %s)", c.Label, c.Points, c.Rarity)
}
