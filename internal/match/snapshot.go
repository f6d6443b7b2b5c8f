package match

import (
	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/decision"
)

// Snapshot is a read-only copy of the match state.
type Snapshot struct {
	ID              string
	Phase           Phase
	Round           int // 1..3, Rounds+1 once complete
	Half            Half
	StartingPlayer  Player
	TurnHolder      Player
	Hands           [2]Hand
	Revealed        [2][HandSize]bool
	Swapped         [2]bool
	SwapOffered     [2]bool
	SwapOwed        bool // the turn holder owes a keep/exchange decision
	DecisionPending bool
	PendingProvider string
	Outcome         Outcome
	Totals          [2]int // zero until complete
	History         []ActionRecord
	CardBack        catalog.Card
}

// Snapshot returns the current state.
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Match) snapshot() Snapshot {
	return Snapshot{
		ID:              m.id,
		Phase:           m.phase,
		Round:           m.round,
		Half:            m.half,
		StartingPlayer:  m.starting,
		TurnHolder:      m.turn,
		Hands:           m.hands,
		Revealed:        m.revealed,
		Swapped:         m.swapped,
		SwapOffered:     m.offered,
		SwapOwed:        m.phase == PhaseRoundInProgress && m.owed,
		DecisionPending: m.phase == PhaseRoundInProgress && m.owed && m.provider != "",
		PendingProvider: m.provider,
		Outcome:         m.outcome,
		Totals:          m.totals,
		History:         append([]ActionRecord(nil), m.history...),
		CardBack:        m.cat.CardBack(),
	}
}

// VisibleTo hides the opponent's unrevealed cards behind the card back. The
// history only ever holds revealed or drawn cards, so it is left as is.
func (s Snapshot) VisibleTo(p Player) Snapshot {
	opp := p.Other()
	for i := range s.Hands[opp] {
		if !s.Revealed[opp][i] {
			s.Hands[opp][i] = s.CardBack
		}
	}
	return s
}

// CardAt returns p's card for round r (1-based).
func (s Snapshot) CardAt(p Player, r int) catalog.Card {
	if r < 1 || r > HandSize {
		return catalog.Card{}
	}
	return s.Hands[p][r-1]
}

// Complete reports whether the outcome is final.
func (s Snapshot) Complete() bool {
	return s.Phase == PhaseMatchComplete
}

// DecisionState builds what p's provider gets to see. Unless seesOpponent is
// set the opponent's unrevealed cards are masked.
func (s Snapshot) DecisionState(p Player, seesOpponent bool) decision.State {
	view := s
	if !seesOpponent {
		view = s.VisibleTo(p)
	}
	opp := p.Other()
	round := view.Round
	if round > Rounds {
		round = Rounds
	}
	st := decision.State{
		Round:            round,
		Player:           int(p),
		Hand:             append([]catalog.Card(nil), view.Hands[p][:]...),
		Revealed:         append([]bool(nil), view.Revealed[p][:]...),
		OpponentHand:     append([]catalog.Card(nil), view.Hands[opp][:]...),
		OpponentRevealed: append([]bool(nil), view.Revealed[opp][:]...),
		Swapped:          view.Swapped[p],
		OpponentSwapped:  view.Swapped[opp],
	}
	for _, rec := range view.History {
		mv := decision.Move{Round: rec.Round, Player: int(rec.Player), Kind: rec.Kind.String(), Card: rec.Card.Name}
		st.History = append(st.History, mv)
	}
	return st
}
