// Package match implements the three-round reveal-and-swap engine: turn order,
// reveal state, the once-per-match swap, and scoring.
package match

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/log"
)

// Config holds configuration for creating a new match.
type Config struct {
	ID      string           // match ID (generated if empty)
	Catalog *catalog.Catalog // card definitions (built-in set if nil)
	HandA   []catalog.Card
	HandB   []catalog.Card
	Drawer  *catalog.Drawer // booster source for exchanges
	Seed    int64           // RNG seed for the default drawer (0 for random)
	Logger  log.EventLogger
}

type listener func(Snapshot, log.GameEvent)

// Match is one game between seats A and B. It is safe for concurrent use;
// the turn check keeps all mutations with the current turn holder.
type Match struct {
	mu        sync.Mutex
	id        string
	cat       *catalog.Catalog
	drawer    *catalog.Drawer
	logger    log.EventLogger
	listeners []listener
	pending   []log.GameEvent
	seq       int

	phase    Phase
	round    int
	half     Half
	starting Player
	turn     Player
	hands    [2]Hand
	revealed [2][HandSize]bool
	swapped  [2]bool
	offered  [2]bool
	owed     bool
	provider string
	outcome  Outcome
	totals   [2]int
	history  []ActionRecord
	looted   bool
}

// New creates a match in Setup. Both hands must be known.
func New(cfg Config) (*Match, error) {
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	a, err := NewHand(cat, cfg.HandA)
	if err != nil {
		return nil, fmt.Errorf("hand A: %w", err)
	}
	b, err := NewHand(cat, cfg.HandB)
	if err != nil {
		return nil, fmt.Errorf("hand B: %w", err)
	}

	drawer := cfg.Drawer
	if drawer == nil {
		var rng *rand.Rand
		if cfg.Seed != 0 {
			rng = rand.New(rand.NewSource(cfg.Seed))
		}
		drawer = catalog.NewDrawer(cat, rng)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}

	return &Match{
		id:     id,
		cat:    cat,
		drawer: drawer,
		logger: logger,
		hands:  [2]Hand{a, b},
	}, nil
}

func (m *Match) ID() string {
	return m.id
}

func (m *Match) Catalog() *catalog.Catalog {
	return m.cat
}

func (m *Match) Logger() log.EventLogger {
	return m.logger
}

// Observe registers fn to receive every event together with the snapshot
// taken after the action that produced it. fn runs without the match lock
// held and may call back into the match.
func (m *Match) Observe(fn func(Snapshot, log.GameEvent)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Start leaves Setup with the given player leading every round.
func (m *Match) Start(starting Player) error {
	m.mu.Lock()
	err := m.start(starting)
	m.unlockAndPublish()
	return err
}

// StartRandom picks the starting player with a fair coin.
func (m *Match) StartRandom() (Player, error) {
	m.mu.Lock()
	if m.phase != PhaseSetup {
		m.mu.Unlock()
		return PlayerA, ErrAlreadyStarted
	}
	starting := PlayerB
	if m.drawer.Flip() {
		starting = PlayerA
	}
	err := m.start(starting)
	m.unlockAndPublish()
	return starting, err
}

// StartNamed starts with "a" or "b" leading, or with a coin flip for "" or
// "random".
func (m *Match) StartNamed(who string) (Player, error) {
	if who == "" || strings.EqualFold(who, "random") {
		return m.StartRandom()
	}
	p, err := ParsePlayer(who)
	if err != nil {
		return p, err
	}
	return p, m.Start(p)
}

func (m *Match) start(starting Player) error {
	if m.phase != PhaseSetup {
		return ErrAlreadyStarted
	}
	m.phase = PhaseRoundInProgress
	m.starting = starting
	m.turn = starting
	m.round = 1
	m.half = HalfFirst
	m.emit(log.NewMatchStartEvent(int(starting)))
	m.emit(log.NewRoundStartEvent(1, int(starting)))
	return nil
}

// Reveal turns over p's card for the current round. On p's first reveal,
// unless p has already swapped, a keep/exchange decision becomes owed and the
// half-round stays open until it is made.
func (m *Match) Reveal(p Player) (catalog.Card, error) {
	m.mu.Lock()
	card, err := m.reveal(p)
	if err != nil {
		m.reject(p, "reveal", err)
	}
	m.unlockAndPublish()
	return card, err
}

func (m *Match) reveal(p Player) (catalog.Card, error) {
	if err := m.checkTurn(p); err != nil {
		return catalog.Card{}, err
	}
	idx := m.round - 1
	if m.revealed[p][idx] {
		return catalog.Card{}, ErrAlreadyRevealed
	}
	m.revealed[p][idx] = true
	card := m.hands[p][idx]
	m.history = append(m.history, ActionRecord{Round: m.round, Player: p, Kind: ActionReveal, Card: card})
	m.emit(log.NewRevealEvent(m.round, m.half.String(), int(p), card.Name, card.Label, card.Points))

	if !m.swapped[p] && !m.offered[p] {
		m.offered[p] = true
		m.owed = true
		m.emit(log.NewSwapOfferedEvent(m.round, m.half.String(), int(p)))
		return card, nil
	}
	m.closeHalf()
	return card, nil
}

// BeginDecision marks the owed decision as pending with the named provider,
// so snapshots can show a waiting indicator.
func (m *Match) BeginDecision(p Player, provider string) error {
	m.mu.Lock()
	err := m.checkOwed(p)
	if err == nil {
		m.provider = provider
		m.emit(log.NewDecisionPendingEvent(m.round, m.half.String(), int(p), provider))
	}
	m.unlockAndPublish()
	return err
}

// Keep declines the swap. The swap right is not consumed, but it is not
// offered again either.
func (m *Match) Keep(p Player) error {
	_, err := m.Resolve(p, ActionKeep, "")
	return err
}

// Exchange replaces p's card for the current round with a booster draw and
// uses up p's swap.
func (m *Match) Exchange(p Player) (catalog.Card, error) {
	return m.Resolve(p, ActionExchange, "")
}

// Resolve applies a keep or exchange decision with an optional rationale and
// closes the half-round. For an exchange it returns the drawn card, for a
// keep the kept one.
func (m *Match) Resolve(p Player, kind ActionKind, rationale string) (catalog.Card, error) {
	m.mu.Lock()
	var card catalog.Card
	var err error
	switch kind {
	case ActionKeep:
		card, err = m.keep(p, rationale)
	case ActionExchange:
		card, err = m.exchange(p)
	default:
		err = fmt.Errorf("cannot resolve a decision with %s", kind)
	}
	if err != nil {
		m.reject(p, kind.String(), err)
	}
	m.unlockAndPublish()
	return card, err
}

func (m *Match) keep(p Player, rationale string) (catalog.Card, error) {
	if err := m.checkOwed(p); err != nil {
		return catalog.Card{}, err
	}
	card := m.hands[p][m.round-1]
	m.owed = false
	m.provider = ""
	m.history = append(m.history, ActionRecord{Round: m.round, Player: p, Kind: ActionKeep, Card: card})
	m.emit(log.NewKeepEvent(m.round, m.half.String(), int(p), card.Name, rationale))
	m.closeHalf()
	return card, nil
}

func (m *Match) exchange(p Player) (catalog.Card, error) {
	if err := m.checkActive(); err != nil {
		return catalog.Card{}, err
	}
	// a spent swap is reported even when it is not p's turn
	if m.swapped[p] {
		return catalog.Card{}, ErrAlreadySwapped
	}
	if err := m.checkOwed(p); err != nil {
		return catalog.Card{}, err
	}
	idx := m.round - 1
	old := m.hands[p][idx]
	drawn := m.drawer.Draw()
	m.hands[p][idx] = drawn
	m.swapped[p] = true
	m.owed = false
	m.provider = ""
	m.history = append(m.history, ActionRecord{Round: m.round, Player: p, Kind: ActionExchange, Card: drawn, Replaced: old})
	m.emit(log.NewExchangeEvent(m.round, m.half.String(), int(p), old.Label, drawn.Name, drawn.Label, drawn.Points))
	m.closeHalf()
	return drawn, nil
}

// NoteFallback records that p's provider failed and substitute decided.
func (m *Match) NoteFallback(p Player, provider, reason, substitute string) {
	m.mu.Lock()
	m.emit(log.NewDecisionFallbackEvent(m.round, m.half.String(), int(p), provider, reason, substitute))
	m.unlockAndPublish()
}

func (m *Match) checkActive() error {
	switch m.phase {
	case PhaseSetup:
		return ErrNotStarted
	case PhaseMatchComplete:
		return ErrMatchComplete
	}
	return nil
}

func (m *Match) checkTurn(p Player) error {
	if err := m.checkActive(); err != nil {
		return err
	}
	if p != m.turn {
		return ErrOutOfTurn
	}
	return nil
}

func (m *Match) checkOwed(p Player) error {
	if err := m.checkTurn(p); err != nil {
		return err
	}
	if m.swapped[p] {
		return ErrAlreadySwapped
	}
	if !m.owed {
		return ErrNoSwapOffered
	}
	return nil
}

// closeHalf hands the turn to the other seat, or finishes the round.
func (m *Match) closeHalf() {
	if m.half == HalfFirst {
		m.half = HalfSecond
		m.turn = m.starting.Other()
		return
	}
	m.emit(log.NewRoundCompleteEvent(m.round))
	if m.round < Rounds {
		m.round++
		m.half = HalfFirst
		m.turn = m.starting
		m.emit(log.NewRoundStartEvent(m.round, int(m.starting)))
		return
	}
	m.round = Rounds + 1
	m.phase = PhaseMatchComplete
	m.outcome, m.totals[PlayerA], m.totals[PlayerB] = Score(m.hands[PlayerA], m.hands[PlayerB])
	m.emit(log.NewMatchCompleteEvent(Rounds, m.outcome.String(), m.totals[PlayerA], m.totals[PlayerB]))
}

func (m *Match) reject(p Player, action string, err error) {
	round := m.round
	if round > Rounds {
		round = Rounds
	}
	m.emit(log.NewRejectedEvent(round, m.half.String(), int(p), action, err.Error()))
}

// Outcome is OutcomeInProgress until the match completes.
func (m *Match) Outcome() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcome
}

// Totals are only known once the match is complete.
func (m *Match) Totals() (a, b int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseMatchComplete {
		return 0, 0, false
	}
	return m.totals[PlayerA], m.totals[PlayerB], true
}

// SwapOwed reports whether p must decide keep or exchange before play moves on.
func (m *Match) SwapOwed(p Player) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase == PhaseRoundInProgress && m.owed && m.turn == p
}

// TurnHolder returns who acts next and whether the match is still running.
func (m *Match) TurnHolder() (Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turn, m.phase == PhaseRoundInProgress
}

// LootCandidates lists the cards p may claim: the loser's final hand, when p
// won.
func (m *Match) LootCandidates(p Player) []catalog.Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.outcome.Winner(); !ok || w != p || m.looted {
		return nil
	}
	h := m.hands[p.Other()]
	return append([]catalog.Card(nil), h[:]...)
}

// ClaimLoot takes one card from the loser's final hand. Only one claim is
// allowed per match.
func (m *Match) ClaimLoot(p Player, name string) (catalog.Card, error) {
	m.mu.Lock()
	card, err := m.claimLoot(p, name)
	m.unlockAndPublish()
	return card, err
}

func (m *Match) claimLoot(p Player, name string) (catalog.Card, error) {
	if w, ok := m.outcome.Winner(); !ok || w != p || m.looted {
		return catalog.Card{}, ErrNoLoot
	}
	for _, c := range m.hands[p.Other()] {
		if c.Name == name {
			m.looted = true
			m.emit(log.NewLootEvent(Rounds, int(p), c.Name, c.Label))
			return c, nil
		}
	}
	return catalog.Card{}, fmt.Errorf("%w: %q is not in the loser's hand", ErrNoLoot, name)
}

// emit queues an event; it must be called with mu held.
func (m *Match) emit(e log.GameEvent) {
	m.seq++
	e.Seq = m.seq
	m.pending = append(m.pending, e)
}

// unlockAndPublish releases mu and delivers queued events to the logger and
// listeners with a snapshot of the resulting state.
func (m *Match) unlockAndPublish() {
	events := m.pending
	m.pending = nil
	if len(events) == 0 {
		m.mu.Unlock()
		return
	}
	snap := m.snapshot()
	listeners := append([]listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, e := range events {
		m.logger.Log(e)
		for _, fn := range listeners {
			fn(snap, e)
		}
	}
}
