package net

import (
	"fmt"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/decision"
	"github.com/peterkuimelis/swapduel/internal/log"
	"github.com/peterkuimelis/swapduel/internal/match"
)

// Message types for the JSON protocol over TCP.

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "welcome"
	MatchID string `json:"match_id,omitempty"`
	Seat    string `json:"seat,omitempty"`

	// For "notify"
	Event *EventView `json:"event,omitempty"`

	// For "notify" and "choose_swap"
	State *StateView `json:"state,omitempty"`

	// For "choose_swap"
	Prompt string `json:"prompt,omitempty"`

	// For "game_over"
	Result string `json:"result,omitempty"`
	TotalA int    `json:"total_a,omitempty"`
	TotalB int    `json:"total_b,omitempty"`

	// For "game_over" and "loot": cards a winner may take
	Loot []CardView `json:"loot,omitempty"`
}

// EventView is a simplified match event for the client.
type EventView struct {
	Round   int    `json:"round"`
	Half    string `json:"half"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// CardView is one card slot as the client may see it.
type CardView struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Points int    `json:"points"`
	Hidden bool   `json:"hidden,omitempty"`
}

// StateView is the match state from one player's perspective.
type StateView struct {
	Round           int        `json:"round"`
	Half            string     `json:"half"`
	You             PlayerView `json:"you"`
	Opponent        PlayerView `json:"opponent"`
	IsYourTurn      bool       `json:"is_your_turn"`
	DecisionPending bool       `json:"decision_pending,omitempty"`
	Outcome         string     `json:"outcome"`
}

// PlayerView shows one side of the table.
type PlayerView struct {
	Seat     string      `json:"seat"`
	Cards    [3]CardView `json:"cards"`
	Revealed [3]bool     `json:"revealed"`
	Swapped  bool        `json:"swapped"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "join" (initial handshake): optional owned assets to play with
	Name  string          `json:"name,omitempty"`
	Owned []catalog.Asset `json:"owned,omitempty"`

	// For "decision"
	Exchange  bool   `json:"exchange,omitempty"`
	Rationale string `json:"rationale,omitempty"`
}

// SwapPrompt is the question put to a player who owes a swap decision.
func SwapPrompt(revealed catalog.Card) string {
	return fmt.Sprintf("You revealed %s (%d pts). Keep it or exchange it for a booster card?", revealed.Label, revealed.Points)
}

// CardViews converts cards for the wire.
func CardViews(cards []catalog.Card) []CardView {
	out := make([]CardView, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardView(c, catalog.Card{}))
	}
	return out
}

func cardView(c catalog.Card, back catalog.Card) CardView {
	return CardView{Name: c.Name, Label: c.Label, Points: c.Points, Hidden: c.Name == back.Name}
}

// BuildStateView creates a StateView of snap from the perspective of player.
func BuildStateView(snap match.Snapshot, player match.Player) *StateView {
	view := snap.VisibleTo(player)
	opp := player.Other()
	sv := &StateView{
		Round:           view.Round,
		Half:            view.Half.String(),
		IsYourTurn:      view.Phase == match.PhaseRoundInProgress && view.TurnHolder == player,
		DecisionPending: view.DecisionPending,
		Outcome:         view.Outcome.String(),
	}
	sv.You = PlayerView{Seat: player.String(), Revealed: view.Revealed[player], Swapped: view.Swapped[player]}
	sv.Opponent = PlayerView{Seat: opp.String(), Revealed: view.Revealed[opp], Swapped: view.Swapped[opp]}
	for i := 0; i < match.HandSize; i++ {
		sv.You.Cards[i] = cardView(view.Hands[player][i], catalog.Card{})
		sv.Opponent.Cards[i] = cardView(view.Hands[opp][i], view.CardBack)
	}
	return sv
}

// DecisionStateView renders the state a provider is asked to decide on.
func DecisionStateView(st decision.State) *StateView {
	sv := &StateView{Round: st.Round, IsYourTurn: true, Outcome: match.OutcomeInProgress.String()}
	me := match.Player(st.Player)
	sv.You = PlayerView{Seat: me.String(), Swapped: st.Swapped}
	sv.Opponent = PlayerView{Seat: me.Other().String(), Swapped: st.OpponentSwapped}
	for i := 0; i < match.HandSize && i < len(st.Hand); i++ {
		sv.You.Cards[i] = cardView(st.Hand[i], catalog.Card{})
		sv.You.Revealed[i] = st.Revealed[i]
	}
	for i := 0; i < match.HandSize && i < len(st.OpponentHand); i++ {
		sv.Opponent.Cards[i] = cardView(st.OpponentHand[i], catalog.Card{Name: catalog.CardBackName})
		sv.Opponent.Revealed[i] = st.OpponentRevealed[i]
	}
	return sv
}

// EventViewOf converts a log event for the wire.
func EventViewOf(e log.GameEvent) *EventView {
	return &EventView{
		Round:   e.Round,
		Half:    e.Half,
		Player:  e.Player,
		Type:    e.Type.String(),
		Card:    e.Card,
		Details: e.Details,
	}
}
