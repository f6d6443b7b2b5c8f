package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/config"
	"github.com/peterkuimelis/swapduel/internal/decision"
	"github.com/peterkuimelis/swapduel/internal/log"
	"github.com/peterkuimelis/swapduel/internal/match"
	swapnet "github.com/peterkuimelis/swapduel/internal/net"
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	MatchID  string              `json:"match_id"`
	Events   []swapnet.EventView `json:"events"`
	State    *swapnet.StateView  `json:"state,omitempty"`
	Pending  *PendingView        `json:"pending,omitempty"`
	GameOver bool                `json:"game_over"`
	Result   string              `json:"result,omitempty"`
	TotalA   int                 `json:"total_a,omitempty"`
	TotalB   int                 `json:"total_b,omitempty"`
	Loot     []swapnet.CardView  `json:"loot,omitempty"`
}

// PendingView is the swap decision the agent owes.
type PendingView struct {
	Round   int              `json:"round"`
	Prompt  string           `json:"prompt"`
	Card    swapnet.CardView `json:"card"`
	Average float64          `json:"booster_average"`
}

// submitWait bounds how long an answer waits for the match to take it.
const submitWait = 5 * time.Second

// SessionConfig describes a practice match for the agent.
type SessionConfig struct {
	Catalog  *catalog.Catalog
	Settings config.Config
	Owned    []catalog.Card // agent's cards; a booster if empty
	Starting string         // "a", "b" or "" for a coin flip
}

// GameSession holds one practice match: the agent sits at A, the computer
// opponent at B.
type GameSession struct {
	match  *match.Match
	runner *match.Runner
	agent  *decision.Human

	done    chan struct{}
	runErr  error
	current *decision.State

	mu     sync.Mutex
	events []swapnet.EventView
}

// NewGameSession deals the hands and starts the match in the background.
func NewGameSession(ctx context.Context, cfg SessionConfig) (*GameSession, error) {
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	agent := decision.NewHuman("agent")
	runner, err := match.NewPractice(match.PracticeConfig{
		Catalog: cat,
		Owned:   cfg.Owned,
		Seed:    cfg.Settings.Match.Seed,
		Player:  match.Seat{Name: "agent", Provider: agent, Timeout: cfg.Settings.Match.HumanTimeout},
		Opponent: match.Seat{
			Name:     "opponent",
			Provider: cfg.Settings.Opponent(decision.NewBot(cat)),
			Config:   cfg.Settings.Decision(),
			Timeout:  cfg.Settings.Match.DecisionTimeout,
		},
	})
	if err != nil {
		return nil, err
	}

	sess := &GameSession{
		match:  runner.Match,
		runner: runner,
		agent:  agent,
		done:   make(chan struct{}),
	}
	runner.AddObserver(sess)
	if _, err := runner.Match.StartNamed(cfg.Starting); err != nil {
		return nil, err
	}

	go func() {
		defer close(sess.done)
		if _, err := sess.runner.Run(ctx); err != nil {
			sess.mu.Lock()
			sess.runErr = err
			sess.mu.Unlock()
		}
	}()
	return sess, nil
}

// Notify implements match.Observer.
func (s *GameSession) Notify(ctx context.Context, snap match.Snapshot, event log.GameEvent) error {
	s.appendEvent(*swapnet.EventViewOf(event))
	return nil
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *GameSession) appendEvent(ev swapnet.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *GameSession) drainEvents() []swapnet.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []swapnet.EventView{}
	}
	return events
}

// waitForPending blocks until the agent owes a decision or the match ends,
// then builds a ToolResponse with accumulated events.
func (s *GameSession) waitForPending(ctx context.Context) (*ToolResponse, error) {
	select {
	case st := <-s.agent.Prompts():
		s.current = &st
	case <-s.done:
		s.current = nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.response(), nil
}

// response describes the session without waiting.
func (s *GameSession) response() *ToolResponse {
	snap := s.match.Snapshot()
	resp := &ToolResponse{
		MatchID: snap.ID,
		Events:  s.drainEvents(),
		State:   swapnet.BuildStateView(snap, match.PlayerA),
	}

	if snap.Complete() {
		resp.GameOver = true
		resp.Result = snap.Outcome.String()
		resp.TotalA, resp.TotalB = snap.Totals[match.PlayerA], snap.Totals[match.PlayerB]
		if loot := s.match.LootCandidates(match.PlayerA); len(loot) > 0 {
			resp.Loot = swapnet.CardViews(loot)
		}
		return resp
	}
	s.mu.Lock()
	err := s.runErr
	s.mu.Unlock()
	if err != nil {
		resp.GameOver = true
		resp.Result = fmt.Sprintf("error: %v", err)
		return resp
	}

	if s.current != nil {
		card := s.current.Current()
		resp.Pending = &PendingView{
			Round:   s.current.Round,
			Prompt:  swapnet.SwapPrompt(card) + " You can swap once per match.",
			Card:    swapnet.CardViews([]catalog.Card{card})[0],
			Average: s.match.Catalog().ExpectedBoosterPoints(),
		}
	}
	return resp
}

// decide hands the agent's answer to the match and waits for the next
// decision.
func (s *GameSession) decide(ctx context.Context, a decision.Action) (*ToolResponse, error) {
	if s.current == nil {
		return nil, fmt.Errorf("no decision is pending")
	}
	sctx, cancel := context.WithTimeout(ctx, submitWait)
	defer cancel()
	if err := s.agent.Submit(sctx, a); err != nil {
		s.current = nil
		return nil, fmt.Errorf("the decision window has closed: %w", err)
	}
	s.current = nil
	return s.waitForPending(ctx)
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
