package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/decision"
	"github.com/peterkuimelis/swapduel/internal/log"
	"github.com/peterkuimelis/swapduel/internal/match"
	swapnet "github.com/peterkuimelis/swapduel/internal/net"
)

// answerWait bounds how long a browser answer waits for the match to take it.
const answerWait = 5 * time.Second

// startMessage opens a practice match from the browser.
type startMessage struct {
	Type       string          `json:"type"`
	Difficulty string          `json:"difficulty,omitempty"`
	Style      string          `json:"style,omitempty"`
	Starting   string          `json:"starting,omitempty"`
	Owned      []catalog.Asset `json:"owned,omitempty"`
}

// browserSeat connects seat A of a practice match to a websocket.
type browserSeat struct {
	conn  *websocket.Conn
	human *decision.Human
}

func (b *browserSeat) send(ctx context.Context, msg swapnet.ServerMessage) error {
	return wsjson.Write(ctx, b.conn, msg)
}

// Notify implements match.Observer.
func (b *browserSeat) Notify(ctx context.Context, snap match.Snapshot, event log.GameEvent) error {
	return b.send(ctx, swapnet.ServerMessage{
		Type:  "notify",
		Event: swapnet.EventViewOf(event),
		State: swapnet.BuildStateView(snap, match.PlayerA),
	})
}

// forwardPrompts turns every pending decision into a choose_swap message.
func (b *browserSeat) forwardPrompts(ctx context.Context) {
	for {
		select {
		case st := <-b.human.Prompts():
			err := b.send(ctx, swapnet.ServerMessage{
				Type:   "choose_swap",
				Prompt: swapnet.SwapPrompt(st.Current()),
				State:  swapnet.DecisionStateView(st),
			})
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// readLoop applies browser messages until the socket closes, then cancels
// the match.
func (b *browserSeat) readLoop(ctx context.Context, cancel context.CancelFunc, m *match.Match) {
	defer cancel()
	for {
		var msg swapnet.ClientMessage
		if err := wsjson.Read(ctx, b.conn, &msg); err != nil {
			return
		}
		switch msg.Type {
		case "decision":
			a := decision.Action{Type: decision.ActionKeep, Rationale: msg.Rationale}
			if msg.Exchange {
				a.Type = decision.ActionExchange
			}
			actx, acancel := context.WithTimeout(ctx, answerWait)
			err := b.human.Submit(actx, a)
			acancel()
			if err != nil {
				b.send(ctx, swapnet.ServerMessage{Type: "error", Result: decision.ErrNoPrompt.Error()})
			}
		case "claim":
			card, err := m.ClaimLoot(match.PlayerA, msg.Name)
			if err != nil {
				b.send(ctx, swapnet.ServerMessage{Type: "error", Result: err.Error()})
				continue
			}
			b.send(ctx, swapnet.ServerMessage{Type: "loot", Loot: swapnet.CardViews([]catalog.Card{card})})
			return
		default:
			b.send(ctx, swapnet.ServerMessage{Type: "error", Result: "unknown message " + msg.Type})
		}
	}
}

// handlePractice plays a practice match against the computer over a
// websocket. The browser sits at seat A.
func (s *Server) handlePractice(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.Printf("websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var start startMessage
	if err := wsjson.Read(ctx, conn, &start); err != nil || start.Type != "start" {
		conn.Close(websocket.StatusPolicyViolation, "expected start message")
		return
	}

	seat := &browserSeat{conn: conn, human: decision.NewHuman("browser")}
	fail := func(err error) {
		seat.send(ctx, swapnet.ServerMessage{Type: "error", Result: err.Error()})
		conn.Close(websocket.StatusPolicyViolation, "practice setup failed")
	}

	settings := s.settings
	if start.Difficulty != "" {
		settings.Match.Difficulty = start.Difficulty
	}
	if start.Style != "" {
		settings.Match.Style = start.Style
	}
	if err := settings.Validate(); err != nil {
		fail(err)
		return
	}

	runner, err := match.NewPractice(match.PracticeConfig{
		ID:      uuid.NewString(),
		Catalog: s.catalog,
		Owned:   catalog.FromAssets(start.Owned),
		Seed:    settings.Match.Seed,
		Player:  match.Seat{Name: "browser", Provider: seat.human, Timeout: settings.Match.HumanTimeout},
		Opponent: match.Seat{
			Name:     "opponent",
			Provider: settings.Opponent(decision.NewBot(s.catalog)),
			Config:   settings.Decision(),
			Timeout:  settings.Match.DecisionTimeout,
		},
	})
	if err != nil {
		fail(err)
		return
	}
	m := runner.Match
	s.track(m)
	defer s.forget(m)
	runner.AddObserver(seat)

	if err := seat.send(ctx, swapnet.ServerMessage{Type: "welcome", MatchID: m.ID(), Seat: match.PlayerA.String()}); err != nil {
		return
	}
	if _, err := m.StartNamed(start.Starting); err != nil {
		fail(err)
		return
	}
	s.logger.Printf("practice %s started (%s, %s)", m.ID(), settings.Match.Difficulty, settings.Match.Style)

	go seat.forwardPrompts(ctx)
	go seat.readLoop(ctx, cancel, m)

	outcome, err := runner.Run(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Printf("practice %s: %v", m.ID(), err)
		}
		return
	}
	a, b, _ := m.Totals()
	s.logger.Printf("practice %s: %s (%d-%d)", m.ID(), outcome, a, b)

	over := swapnet.ServerMessage{Type: "game_over", Result: outcome.String(), TotalA: a, TotalB: b}
	loot := m.LootCandidates(match.PlayerA)
	if len(loot) > 0 {
		over.Loot = swapnet.CardViews(loot)
	}
	if err := seat.send(ctx, over); err != nil {
		return
	}
	if len(loot) > 0 {
		// the read loop returns once the winner claims a card
		select {
		case <-ctx.Done():
		case <-time.After(settings.Match.HumanTimeout):
		}
	}
	conn.Close(websocket.StatusNormalClosure, "game ended")
}
