package match

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/decision"
	"github.com/peterkuimelis/swapduel/internal/log"
)

func runScripted(t *testing.T, m *Match, a, b *ScriptedProvider) Outcome {
	t.Helper()
	r := NewRunner(m, Seat{Provider: a}, Seat{Provider: b})
	outcome, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return outcome
}

func TestScenarioA_NoSwaps(t *testing.T) {
	m, logger := newTestMatch(t, 50)
	if err := m.Start(PlayerA); err != nil {
		t.Fatal(err)
	}
	outcome := runScripted(t, m, NewScriptedProvider(t, "a").AddKeep(), NewScriptedProvider(t, "b").AddKeep())

	if outcome != OutcomeAWins {
		t.Fatalf("expected A wins, got %s", outcome)
	}
	a, b, ok := m.Totals()
	if !ok || a != 30 || b != 15 {
		t.Fatalf("expected totals 30/15, got %d/%d (ok=%v)", a, b, ok)
	}
	if got := len(logger.EventsOfType(log.EventExchange)); got != 0 {
		t.Fatalf("expected no exchanges, got %d", got)
	}
	t.Log("\n" + log.FormatAll(logger.Events()))
}

func TestScenarioB_ExchangeForFifty(t *testing.T) {
	m, _ := newTestMatch(t, 50)
	if err := m.Start(PlayerA); err != nil {
		t.Fatal(err)
	}
	outcome := runScripted(t, m, NewScriptedProvider(t, "a").AddKeep(), NewScriptedProvider(t, "b").AddExchange())

	if outcome != OutcomeBWins {
		t.Fatalf("expected B wins, got %s", outcome)
	}
	a, b, _ := m.Totals()
	if a != 30 || b != 60 {
		t.Fatalf("expected totals 30/60, got %d/%d", a, b)
	}
	snap := m.Snapshot()
	if snap.Hands[PlayerB][0].Name != "boost" {
		t.Fatalf("expected round 1 slot replaced, got %s", snap.Hands[PlayerB][0].Name)
	}
	if snap.Hands[PlayerB][1].Name != "five" || snap.Hands[PlayerB][2].Name != "five" {
		t.Fatal("exchange touched a slot other than the current round's")
	}
}

func TestScenarioC_EqualTotalsDraw(t *testing.T) {
	m, _ := newTestMatch(t, 20)
	if err := m.Start(PlayerB); err != nil {
		t.Fatal(err)
	}
	outcome := runScripted(t, m, NewScriptedProvider(t, "a").AddKeep(), NewScriptedProvider(t, "b").AddExchange())

	if outcome != OutcomeDraw {
		t.Fatalf("expected draw, got %s", outcome)
	}
	a, b, _ := m.Totals()
	if a != 30 || b != 30 {
		t.Fatalf("expected totals 30/30, got %d/%d", a, b)
	}
}

// stallingProvider never answers before its context ends.
type stallingProvider struct{}

func (stallingProvider) Name() string { return "remote-ai" }

func (stallingProvider) Decide(ctx context.Context, _ decision.State, _ decision.Config) (decision.Action, error) {
	<-ctx.Done()
	return decision.Action{}, ctx.Err()
}

func TestScenarioD_RemoteTimeoutFallsBackToBot(t *testing.T) {
	m, logger := newTestMatch(t, 50)
	if err := m.Start(PlayerA); err != nil {
		t.Fatal(err)
	}
	remote := decision.WithFallback(stallingProvider{}, decision.NewBot(m.Catalog()), 20*time.Millisecond)
	r := NewRunner(m,
		Seat{Provider: NewScriptedProvider(t, "a")},
		Seat{Provider: remote, Config: decision.DefaultConfig(), SeesOpponent: true},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	outcome, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome == OutcomeInProgress {
		t.Fatal("match did not complete")
	}

	fallbacks := logger.EventsOfType(log.EventDecisionFallback)
	if len(fallbacks) != 1 || fallbacks[0].Player != int(PlayerB) {
		t.Fatalf("expected one fallback for B, got %v", fallbacks)
	}
	// the bot sees a 5 against a 50-point booster and exchanges
	if !m.Snapshot().Swapped[PlayerB] {
		t.Fatal("expected the bot fallback to exchange")
	}
}

func TestBotFallbackRunsWithinShortSeatTimeout(t *testing.T) {
	m, logger := newTestMatch(t, 50)
	if err := m.Start(PlayerA); err != nil {
		t.Fatal(err)
	}
	// the seat deadline is well below the fallback's own timeout
	remote := decision.WithFallback(stallingProvider{}, decision.NewBot(m.Catalog()), 2*time.Second)
	r := NewRunner(m,
		Seat{Provider: NewScriptedProvider(t, "a")},
		Seat{Provider: remote, Config: decision.DefaultConfig(), SeesOpponent: true, Timeout: 300 * time.Millisecond},
	)
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	fallbacks := logger.EventsOfType(log.EventDecisionFallback)
	if len(fallbacks) != 1 {
		t.Fatalf("expected one fallback, got %v", fallbacks)
	}
	if !strings.HasSuffix(fallbacks[0].Details, "using bot") {
		t.Errorf("fallback event %q should name the bot", fallbacks[0].Details)
	}
	if !m.Snapshot().Swapped[PlayerB] {
		t.Fatal("expected the bot to exchange the 5")
	}
}

func TestHumanTimeoutKeeps(t *testing.T) {
	m, logger := newTestMatch(t, 50)
	if err := m.Start(PlayerA); err != nil {
		t.Fatal(err)
	}
	r := NewRunner(m,
		Seat{Provider: decision.NewHuman("peer"), Timeout: 10 * time.Millisecond},
		Seat{Provider: NewScriptedProvider(t, "b")},
	)
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	snap := m.Snapshot()
	if snap.Swapped[PlayerA] {
		t.Fatal("a timed out human must not swap")
	}
	fallbacks := logger.EventsOfType(log.EventDecisionFallback)
	if len(fallbacks) != 1 {
		t.Fatal("expected the timeout to be logged")
	}
	if !strings.HasSuffix(fallbacks[0].Details, "keeping the revealed card") {
		t.Errorf("fallback event %q should say the card was kept", fallbacks[0].Details)
	}
}

func TestScenarioE_SecondExchangeRejected(t *testing.T) {
	m, logger := newTestMatch(t, 50)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(m.Start(PlayerA))

	// round 1: A exchanges, B keeps
	_, err := m.Reveal(PlayerA)
	must(err)
	_, err = m.Exchange(PlayerA)
	must(err)
	_, err = m.Reveal(PlayerB)
	must(err)
	must(m.Keep(PlayerB))

	// round 2: no more decisions are owed
	for _, p := range []Player{PlayerA, PlayerB} {
		_, err = m.Reveal(p)
		must(err)
		if m.SwapOwed(p) {
			t.Fatalf("%s was offered a second swap", p)
		}
	}

	// round 3
	_, err = m.Reveal(PlayerA)
	must(err)
	before := m.Snapshot()
	_, err = m.Exchange(PlayerA)
	if !errors.Is(err, ErrAlreadySwapped) {
		t.Fatalf("expected ErrAlreadySwapped, got %v", err)
	}
	after := m.Snapshot()
	if after.Hands[PlayerA][2] != before.Hands[PlayerA][2] {
		t.Fatal("round 3 card changed after a rejected exchange")
	}
	if !reflect.DeepEqual(before, after) {
		t.Fatal("rejected exchange changed match state")
	}
	if len(logger.EventsOfType(log.EventRejected)) != 1 {
		t.Fatal("expected the rejection to be logged")
	}
}

func TestAllCardsRevealedAtCompletion(t *testing.T) {
	m, logger := newTestMatch(t, 50)
	runScripted(t, m, NewScriptedProvider(t, "a").AddExchange(), NewScriptedProvider(t, "b"))

	snap := m.Snapshot()
	if !snap.Complete() || snap.Round != Rounds+1 {
		t.Fatalf("expected completion, got phase %s round %d", snap.Phase, snap.Round)
	}
	for p := 0; p < 2; p++ {
		for i := 0; i < HandSize; i++ {
			if !snap.Revealed[p][i] {
				t.Errorf("player %d card %d not revealed", p, i)
			}
		}
	}
	if got := len(logger.EventsOfType(log.EventReveal)); got != 6 {
		t.Fatalf("expected 6 reveals, got %d", got)
	}
	if got := len(logger.EventsOfType(log.EventRoundComplete)); got != Rounds {
		t.Fatalf("expected %d round completions, got %d", Rounds, got)
	}
}

func TestSwapHappensAtMostOncePerPlayer(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		c := catalog.Default()
		d := catalog.NewDrawer(c, rand.New(rand.NewSource(seed)))
		handA, handB, err := PracticeHands(d, nil)
		if err != nil {
			t.Fatal(err)
		}
		logger := log.NewMemoryLogger()
		m, err := New(Config{Catalog: c, HandA: handA, HandB: handB, Drawer: d, Logger: logger})
		if err != nil {
			t.Fatal(err)
		}
		a := NewScriptedProvider(t, "a").AddExchange().AddExchange().AddExchange()
		b := NewScriptedProvider(t, "b").AddExchange().AddExchange().AddExchange()
		runScripted(t, m, a, b)

		perPlayer := map[int]int{}
		for _, e := range logger.EventsOfType(log.EventExchange) {
			perPlayer[e.Player]++
		}
		if perPlayer[0] != 1 || perPlayer[1] != 1 {
			t.Fatalf("seed %d: expected one exchange each, got %v", seed, perPlayer)
		}
		if a.pos != 1 || b.pos != 1 {
			t.Fatalf("seed %d: providers asked more than once", seed)
		}
	}
}

func TestStartingPlayerLeadsEveryRound(t *testing.T) {
	m, logger := newTestMatch(t, 50)
	if err := m.Start(PlayerB); err != nil {
		t.Fatal(err)
	}
	runScripted(t, m, NewScriptedProvider(t, "a"), NewScriptedProvider(t, "b"))

	starts := logger.EventsOfType(log.EventRoundStart)
	if len(starts) != Rounds {
		t.Fatalf("expected %d round starts, got %d", Rounds, len(starts))
	}
	for _, e := range starts {
		if e.Player != int(PlayerB) {
			t.Errorf("round %d led by %s", e.Round, log.PlayerName(e.Player))
		}
	}
	reveals := logger.EventsOfType(log.EventReveal)
	for i, e := range reveals {
		want := PlayerB
		if i%2 == 1 {
			want = PlayerA
		}
		if e.Player != int(want) {
			t.Errorf("reveal %d by %s, want %s", i, log.PlayerName(e.Player), want)
		}
	}
}

func TestStartRandomOnStartedMatchKeepsRNG(t *testing.T) {
	c := testCatalog(t, 50)
	d1 := catalog.NewDrawer(c, rand.New(rand.NewSource(21)))
	d2 := catalog.NewDrawer(c, rand.New(rand.NewSource(21)))
	a := cards(t, c, "ten", "ten", "ten")
	b := cards(t, c, "five", "five", "five")
	m1, err := New(Config{Catalog: c, HandA: a, HandB: b, Drawer: d1})
	if err != nil {
		t.Fatal(err)
	}
	m2, err := New(Config{Catalog: c, HandA: a, HandB: b, Drawer: d2})
	if err != nil {
		t.Fatal(err)
	}

	if err := m1.Start(PlayerA); err != nil {
		t.Fatal(err)
	}
	if err := m2.Start(PlayerA); err != nil {
		t.Fatal(err)
	}
	if _, err := m1.StartRandom(); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
	for i := 0; i < 16; i++ {
		if d1.Flip() != d2.Flip() {
			t.Fatalf("flip %d diverged: a failed StartRandom consumed randomness", i)
		}
	}
}

func TestRevealIsIdempotent(t *testing.T) {
	m, _ := newTestMatch(t, 50)
	if err := m.Start(PlayerA); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Reveal(PlayerA); err != nil {
		t.Fatal(err)
	}
	first := m.Snapshot()
	_, err := m.Reveal(PlayerA)
	if !errors.Is(err, ErrAlreadyRevealed) {
		t.Fatalf("expected ErrAlreadyRevealed, got %v", err)
	}
	if !reflect.DeepEqual(first, m.Snapshot()) {
		t.Fatal("second reveal changed state")
	}
}

func TestOutOfTurnRejected(t *testing.T) {
	m, _ := newTestMatch(t, 50)
	if err := m.Start(PlayerA); err != nil {
		t.Fatal(err)
	}
	before := m.Snapshot()
	if _, err := m.Reveal(PlayerB); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("expected ErrOutOfTurn, got %v", err)
	}
	if err := m.Keep(PlayerB); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("expected ErrOutOfTurn for keep, got %v", err)
	}
	if !reflect.DeepEqual(before, m.Snapshot()) {
		t.Fatal("out-of-turn action changed state")
	}

	// a decision owed by A does not let B act
	if _, err := m.Reveal(PlayerA); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Reveal(PlayerB); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("expected ErrOutOfTurn while A decides, got %v", err)
	}
}

func TestLifecycleRejections(t *testing.T) {
	m, _ := newTestMatch(t, 50)
	if _, err := m.Reveal(PlayerA); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
	if err := m.Start(PlayerA); err != nil {
		t.Fatal(err)
	}
	if err := m.Start(PlayerB); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
	runScripted(t, m, NewScriptedProvider(t, "a"), NewScriptedProvider(t, "b"))

	if _, err := m.Reveal(PlayerA); !errors.Is(err, ErrMatchComplete) {
		t.Fatalf("expected ErrMatchComplete, got %v", err)
	}
	if _, err := m.Exchange(PlayerB); !errors.Is(err, ErrMatchComplete) {
		t.Fatalf("expected ErrMatchComplete for exchange, got %v", err)
	}
}

func TestKeepIsNotReoffered(t *testing.T) {
	m, _ := newTestMatch(t, 50)
	if err := m.Start(PlayerA); err != nil {
		t.Fatal(err)
	}
	if err := m.Keep(PlayerA); !errors.Is(err, ErrNoSwapOffered) {
		t.Fatalf("expected ErrNoSwapOffered before reveal, got %v", err)
	}
	m.Reveal(PlayerA)
	if err := m.Keep(PlayerA); err != nil {
		t.Fatal(err)
	}
	m.Reveal(PlayerB)
	if err := m.Keep(PlayerB); err != nil {
		t.Fatal(err)
	}

	// round 2: A still holds the swap but is not offered it again
	if _, err := m.Exchange(PlayerA); !errors.Is(err, ErrNoSwapOffered) {
		t.Fatalf("expected ErrNoSwapOffered, got %v", err)
	}
	m.Reveal(PlayerA)
	snap := m.Snapshot()
	if snap.Swapped[PlayerA] || snap.TurnHolder != PlayerB {
		t.Fatalf("expected the half-round to close without a swap, turn=%s", snap.TurnHolder)
	}
}

func TestScoreIsPure(t *testing.T) {
	c := testCatalog(t, 50)
	a, _ := NewHand(c, cards(t, c, "ten", "five", "boost"))
	b, _ := NewHand(c, cards(t, c, "boost", "ten", "five"))
	outcome, ta, tb := Score(a, b)
	if outcome != OutcomeDraw || ta != 65 || tb != 65 {
		t.Fatalf("got %s %d/%d", outcome, ta, tb)
	}
	if o, _, _ := Score(a, b); o != outcome {
		t.Fatal("score not deterministic")
	}
}

func TestNewRejectsBadHands(t *testing.T) {
	c := testCatalog(t, 50)
	_, err := New(Config{Catalog: c, HandA: cards(t, c, "ten", "ten"), HandB: cards(t, c, "five", "five", "five")})
	if !errors.Is(err, ErrHandSize) {
		t.Fatalf("expected ErrHandSize, got %v", err)
	}
	_, err = New(Config{Catalog: c, HandA: cards(t, c, "ten", "ten", "ten"), HandB: cards(t, c, "five", catalog.CardBackName, "five")})
	if !errors.Is(err, ErrCardBackInHand) {
		t.Fatalf("expected ErrCardBackInHand, got %v", err)
	}
}

func TestVisibleToMasksUnrevealedOpponentCards(t *testing.T) {
	m, _ := newTestMatch(t, 50)
	m.Start(PlayerA)
	m.Reveal(PlayerA)

	view := m.Snapshot().VisibleTo(PlayerB)
	if view.Hands[PlayerA][0].Name != "ten" {
		t.Fatal("revealed card should stay visible")
	}
	for i := 1; i < HandSize; i++ {
		if view.Hands[PlayerA][i].Name != catalog.CardBackName {
			t.Errorf("card %d should be masked, got %s", i, view.Hands[PlayerA][i].Name)
		}
	}
	if view.Hands[PlayerB][2].Name != "five" {
		t.Fatal("own cards should not be masked")
	}

	st := m.Snapshot().DecisionState(PlayerB, false)
	if st.OpponentHand[1].Name != catalog.CardBackName {
		t.Fatal("decision state leaked an unrevealed card")
	}
	st = m.Snapshot().DecisionState(PlayerB, true)
	if st.OpponentHand[1].Name != "ten" {
		t.Fatal("seat allowed to see the opponent got a masked card")
	}
}

func TestDecisionPendingIsObservable(t *testing.T) {
	m, _ := newTestMatch(t, 50)
	m.Start(PlayerA)
	rec := &recorder{}
	r := NewRunner(m, Seat{Provider: NewScriptedProvider(t, "script-a")}, Seat{Provider: NewScriptedProvider(t, "script-b")})
	r.AddObserver(rec)
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	snap, ok := rec.snapshotFor(log.EventDecisionPending)
	if !ok {
		t.Fatal("no decision pending event")
	}
	if !snap.DecisionPending || !snap.SwapOwed || snap.PendingProvider != "script-a" {
		t.Fatalf("pending flags not set: %+v", snap)
	}
	final, _ := rec.snapshotFor(log.EventMatchComplete)
	if final.DecisionPending || !final.Complete() {
		t.Fatal("final snapshot should be complete with nothing pending")
	}
}

func TestHistoryReachesProviders(t *testing.T) {
	m, _ := newTestMatch(t, 50)
	m.Start(PlayerA)
	a := NewScriptedProvider(t, "a")
	b := NewScriptedProvider(t, "b")
	runScripted(t, m, a, b)

	if len(b.seen) != 1 {
		t.Fatalf("expected one decision from B, got %d", len(b.seen))
	}
	// B decides after A's reveal, A's keep and B's own reveal
	h := b.seen[0].History
	if len(h) != 3 || h[0].Kind != "reveal" || h[1].Kind != "keep" || h[2].Player != int(PlayerB) {
		t.Fatalf("unexpected history %+v", h)
	}
	if got := len(m.Snapshot().History); got != 8 {
		t.Fatalf("expected 8 recorded actions, got %d", got)
	}
}

func TestLoot(t *testing.T) {
	m, logger := newTestMatch(t, 50)
	if got := m.LootCandidates(PlayerA); got != nil {
		t.Fatal("no loot before the match ends")
	}
	m.Start(PlayerA)
	runScripted(t, m, NewScriptedProvider(t, "a"), NewScriptedProvider(t, "b"))

	if got := m.LootCandidates(PlayerB); got != nil {
		t.Fatal("the loser gets no loot")
	}
	candidates := m.LootCandidates(PlayerA)
	if len(candidates) != HandSize || candidates[0].Name != "five" {
		t.Fatalf("unexpected candidates %v", candidates)
	}
	if _, err := m.ClaimLoot(PlayerA, "ten"); !errors.Is(err, ErrNoLoot) {
		t.Fatalf("expected ErrNoLoot for a card not in the loser's hand, got %v", err)
	}
	card, err := m.ClaimLoot(PlayerA, "five")
	if err != nil || card.Name != "five" {
		t.Fatalf("claim: %v %v", card, err)
	}
	if _, err := m.ClaimLoot(PlayerA, "five"); !errors.Is(err, ErrNoLoot) {
		t.Fatal("loot can only be claimed once")
	}
	if len(logger.EventsOfType(log.EventLoot)) != 1 {
		t.Fatal("expected one loot event")
	}
}

func TestPracticeHands(t *testing.T) {
	c := catalog.Default()
	d := catalog.NewDrawer(c, rand.New(rand.NewSource(7)))

	player, bot, err := PracticeHands(d, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(player) != HandSize || len(bot) != HandSize {
		t.Fatal("wrong hand sizes")
	}
	seen := map[string]bool{}
	for _, card := range bot {
		if seen[card.Name] {
			t.Fatalf("bot hand repeats %s", card.Name)
		}
		seen[card.Name] = true
	}

	owned := catalog.FromAssets([]catalog.Asset{{}, {}, {}, {}})
	player, _, err = PracticeHands(d, owned)
	if err != nil || len(player) != HandSize {
		t.Fatalf("owned hand: %v", err)
	}
	if _, _, err := PracticeHands(d, owned[:2]); !errors.Is(err, ErrHandSize) {
		t.Fatalf("expected ErrHandSize, got %v", err)
	}
}
