package match

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/decision"
	"github.com/peterkuimelis/swapduel/internal/log"
)

// ScriptedProvider is a decision.Provider that follows a predefined list of
// answers. Once the script runs out it keeps.
type ScriptedProvider struct {
	t       *testing.T
	name    string
	answers []decision.ActionType
	pos     int
	seen    []decision.State
}

func NewScriptedProvider(t *testing.T, name string) *ScriptedProvider {
	return &ScriptedProvider{t: t, name: name}
}

func (sp *ScriptedProvider) AddKeep() *ScriptedProvider {
	sp.answers = append(sp.answers, decision.ActionKeep)
	return sp
}

func (sp *ScriptedProvider) AddExchange() *ScriptedProvider {
	sp.answers = append(sp.answers, decision.ActionExchange)
	return sp
}

func (sp *ScriptedProvider) Name() string {
	return sp.name
}

func (sp *ScriptedProvider) Decide(ctx context.Context, state decision.State, cfg decision.Config) (decision.Action, error) {
	sp.seen = append(sp.seen, state)
	a := decision.Action{Type: decision.ActionKeep, Confidence: 1, Rationale: "scripted"}
	if sp.pos < len(sp.answers) {
		a.Type = sp.answers[sp.pos]
		sp.pos++
	}
	return a, nil
}

// testCatalog has fixed 10 and 5 point cards outside the booster pool, and a
// single booster card worth boost points so exchanges are predictable.
func testCatalog(t *testing.T, boost int) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Card{
		{Name: "ten", Label: "Ten", Points: 10},
		{Name: "five", Label: "Five", Points: 5},
		{Name: "boost", Label: "Boost", Points: boost, BoosterEligible: true},
		{Name: catalog.CardBackName, Label: "Card Back"},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func cards(t *testing.T, c *catalog.Catalog, names ...string) []catalog.Card {
	t.Helper()
	out := make([]catalog.Card, len(names))
	for i, n := range names {
		card, ok := c.Lookup(n)
		if !ok {
			t.Fatalf("unknown card %q", n)
		}
		out[i] = card
	}
	return out
}

// newTestMatch creates A=[10,10,10] vs B=[5,5,5].
func newTestMatch(t *testing.T, boost int) (*Match, *log.MemoryLogger) {
	t.Helper()
	c := testCatalog(t, boost)
	logger := log.NewMemoryLogger()
	m, err := New(Config{
		ID:      "test",
		Catalog: c,
		HandA:   cards(t, c, "ten", "ten", "ten"),
		HandB:   cards(t, c, "five", "five", "five"),
		Drawer:  catalog.NewDrawer(c, rand.New(rand.NewSource(1))),
		Logger:  logger,
	})
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	return m, logger
}

// recorder is an Observer that keeps every notification.
type recorder struct {
	mu     sync.Mutex
	snaps  []Snapshot
	events []log.GameEvent
}

func (r *recorder) Notify(_ context.Context, snap Snapshot, event log.GameEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) snapshotFor(t log.EventType) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.events {
		if e.Type == t {
			return r.snaps[i], true
		}
	}
	return Snapshot{}, false
}
