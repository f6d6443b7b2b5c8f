package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/decision"
	"github.com/peterkuimelis/swapduel/internal/log"
	"github.com/peterkuimelis/swapduel/internal/match"
)

// NetworkController seats a remote player over a TCP connection. It is the
// seat's decision.Provider and a match.Observer for its notifications.
type NetworkController struct {
	conn   net.Conn
	enc    *json.Encoder
	dec    *json.Decoder
	player match.Player
	name   string
	mu     sync.Mutex
}

// NewNetworkController creates a new controller for the given connection.
func NewNetworkController(conn net.Conn, player match.Player) *NetworkController {
	return &NetworkController{
		conn:   conn,
		enc:    json.NewEncoder(conn),
		dec:    json.NewDecoder(conn),
		player: player,
		name:   "net-" + player.String(),
	}
}

// send sends a server message to the client. Must be called with mu held.
func (nc *NetworkController) send(msg ServerMessage) error {
	return nc.enc.Encode(msg)
}

// recv reads a client message. Must be called with mu held.
func (nc *NetworkController) recv() (ClientMessage, error) {
	var msg ClientMessage
	err := nc.dec.Decode(&msg)
	return msg, err
}

// Handshake reads the client's join message.
func (nc *NetworkController) Handshake() (ClientMessage, error) {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	msg, err := nc.recv()
	if err != nil {
		return msg, fmt.Errorf("read join message: %w", err)
	}
	if msg.Type != "join" {
		return msg, fmt.Errorf("expected join, got %q", msg.Type)
	}
	if msg.Name != "" {
		nc.name = msg.Name
	}
	return msg, nil
}

// Name implements decision.Provider.
func (nc *NetworkController) Name() string {
	return nc.name
}

// Decide implements decision.Provider. The ctx deadline becomes the read
// deadline, so a player who does not answer in time gets ErrProviderTimeout.
func (nc *NetworkController) Decide(ctx context.Context, state decision.State, cfg decision.Config) (decision.Action, error) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	msg := ServerMessage{
		Type:   "choose_swap",
		Prompt: SwapPrompt(state.Current()),
		State:  DecisionStateView(state),
	}
	if err := nc.send(msg); err != nil {
		return decision.Action{}, &decision.ProviderError{Provider: nc.name, Err: fmt.Errorf("send choose_swap: %w", err)}
	}

	if deadline, ok := ctx.Deadline(); ok {
		nc.conn.SetReadDeadline(deadline)
		defer nc.conn.SetReadDeadline(time.Time{})
	}
	resp, err := nc.recv()
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return decision.Action{}, fmt.Errorf("%s: %w", nc.name, decision.ErrProviderTimeout)
		}
		return decision.Action{}, &decision.ProviderError{Provider: nc.name, Err: fmt.Errorf("recv decision: %w", err)}
	}
	if resp.Type != "decision" {
		return decision.Action{}, &decision.ProviderError{Provider: nc.name, Err: fmt.Errorf("expected decision, got %q", resp.Type)}
	}

	a := decision.Action{Type: decision.ActionKeep, Rationale: resp.Rationale, Confidence: 1, Source: nc.name}
	if resp.Exchange {
		a.Type = decision.ActionExchange
	}
	return a, nil
}

// Notify implements match.Observer.
func (nc *NetworkController) Notify(ctx context.Context, snap match.Snapshot, event log.GameEvent) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{
		Type:  "notify",
		Event: EventViewOf(event),
		State: BuildStateView(snap, nc.player),
	})
}

// SendWelcome tells the client which seat it holds.
func (nc *NetworkController) SendWelcome(matchID string) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{Type: "welcome", MatchID: matchID, Seat: nc.player.String()})
}

// SendGameOver sends a game_over message to the client. loot lists the
// cards a winner may take.
func (nc *NetworkController) SendGameOver(outcome match.Outcome, totalA, totalB int, loot []catalog.Card) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	result := outcome.String()
	if w, ok := outcome.Winner(); ok {
		if w == nc.player {
			result += " (you win)"
		} else {
			result += " (you lose)"
		}
	}
	msg := ServerMessage{Type: "game_over", Result: result, TotalA: totalA, TotalB: totalB}
	if len(loot) > 0 {
		msg.Loot = CardViews(loot)
	}
	return nc.send(msg)
}

// Finish sends the result and, if the player won loot, waits up to wait
// for their claim. An empty claim passes.
func (nc *NetworkController) Finish(m *match.Match, wait time.Duration) error {
	a, b, _ := m.Totals()
	loot := m.LootCandidates(nc.player)
	if err := nc.SendGameOver(m.Outcome(), a, b, loot); err != nil || len(loot) == 0 {
		return err
	}

	msg, err := nc.recvClaim(wait)
	if err != nil {
		return err
	}
	if msg.Type != "claim" || msg.Name == "" {
		return nil
	}
	// ClaimLoot notifies observers, this controller included, so mu must
	// not be held here.
	card, err := m.ClaimLoot(nc.player, msg.Name)

	nc.mu.Lock()
	defer nc.mu.Unlock()
	if err != nil {
		return nc.send(ServerMessage{Type: "error", Result: err.Error()})
	}
	return nc.send(ServerMessage{Type: "loot", Loot: CardViews([]catalog.Card{card})})
}

func (nc *NetworkController) recvClaim(wait time.Duration) (ClientMessage, error) {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	if wait > 0 {
		nc.conn.SetReadDeadline(time.Now().Add(wait))
		defer nc.conn.SetReadDeadline(time.Time{})
	}
	msg, err := nc.recv()
	if err != nil {
		return msg, fmt.Errorf("recv claim: %w", err)
	}
	return msg, nil
}
