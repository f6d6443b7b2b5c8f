package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/peterkuimelis/swapduel/internal/decision"
	"github.com/peterkuimelis/swapduel/internal/log"
)

// Seat binds a provider to one side of the match.
type Seat struct {
	Name     string
	Provider decision.Provider
	Config   decision.Config

	// SeesOpponent lets the provider evaluate the opponent's unrevealed
	// cards, as the practice bot does.
	SeesOpponent bool

	// Timeout bounds a single decision. A provider that runs out of time
	// keeps its card. Zero means no bound beyond the run context.
	Timeout time.Duration
}

// Observer is notified of every event together with the snapshot after the
// action that caused it.
type Observer interface {
	Notify(ctx context.Context, snap Snapshot, event log.GameEvent) error
}

// Runner plays a match to completion, revealing for whichever seat holds the
// turn and asking that seat's provider for the swap decision.
type Runner struct {
	Match *Match
	Seats [2]Seat

	observers []Observer
	ctx       context.Context
}

// NewRunner creates a runner for m. Seats without a provider get the bot.
func NewRunner(m *Match, a, b Seat) *Runner {
	r := &Runner{Match: m, Seats: [2]Seat{a, b}, ctx: context.Background()}
	for i := range r.Seats {
		if r.Seats[i].Provider == nil {
			r.Seats[i].Provider = decision.NewBot(m.Catalog())
		}
		if r.Seats[i].Name == "" {
			r.Seats[i].Name = Player(i).String()
		}
	}
	m.Observe(r.notify)
	return r
}

// AddObserver registers o. Observers added after Run starts may miss events.
func (r *Runner) AddObserver(o Observer) {
	r.observers = append(r.observers, o)
}

func (r *Runner) notify(snap Snapshot, event log.GameEvent) {
	// notification errors are ignored
	for _, o := range r.observers {
		_ = o.Notify(r.ctx, snap, event)
	}
}

// Run starts the match if needed and drives it to MatchComplete.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	r.ctx = ctx
	m := r.Match

	if m.Snapshot().Phase == PhaseSetup {
		if _, err := m.StartRandom(); err != nil {
			return OutcomeInProgress, err
		}
	}

	for {
		p, running := m.TurnHolder()
		if !running {
			return m.Outcome(), nil
		}
		if err := ctx.Err(); err != nil {
			return OutcomeInProgress, err
		}
		if err := r.runHalf(ctx, p); err != nil {
			return OutcomeInProgress, err
		}
	}
}

// runHalf reveals p's card and settles the swap decision if one is owed.
func (r *Runner) runHalf(ctx context.Context, p Player) error {
	m := r.Match
	if !m.SwapOwed(p) {
		if _, err := m.Reveal(p); err != nil {
			return fmt.Errorf("reveal for %s: %w", p, err)
		}
	}
	if !m.SwapOwed(p) {
		return nil
	}

	seat := r.Seats[p]
	if err := m.BeginDecision(p, seat.Provider.Name()); err != nil {
		return err
	}
	action, err := r.decide(ctx, p, seat)
	if err != nil {
		return err
	}
	if action.FallbackReason != "" {
		m.NoteFallback(p, seat.Provider.Name(), action.FallbackReason, action.Source)
	}

	kind := ActionKeep
	if seat.Config.Resolve(action) == decision.ActionExchange {
		kind = ActionExchange
	}
	if _, err := m.Resolve(p, kind, action.Rationale); err != nil {
		return fmt.Errorf("%s for %s: %w", kind, p, err)
	}
	return nil
}

// decide asks the seat's provider. A failed or late answer keeps the card;
// only cancellation of ctx stops the match.
func (r *Runner) decide(ctx context.Context, p Player, seat Seat) (decision.Action, error) {
	state := r.Match.Snapshot().DecisionState(p, seat.SeesOpponent)

	dctx := ctx
	if seat.Timeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, seat.Timeout)
		defer cancel()
	}

	action, err := seat.Provider.Decide(dctx, state, seat.Config)
	if err == nil {
		return action, nil
	}
	if ctx.Err() != nil {
		return decision.Action{}, ctx.Err()
	}
	reason := err
	if errors.Is(err, context.DeadlineExceeded) {
		reason = decision.ErrProviderTimeout
	}
	return decision.Action{
		Type:           decision.ActionKeep,
		Confidence:     1,
		Rationale:      "no answer, keeping the revealed card",
		Source:         "default",
		FallbackReason: reason.Error(),
	}, nil
}
