package net

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/decision"
	"github.com/peterkuimelis/swapduel/internal/log"
	"github.com/peterkuimelis/swapduel/internal/match"
)

// Server hosts a match between the local player and one TCP client.
type Server struct {
	Catalog      *catalog.Catalog
	Port         string
	HostName     string
	HostOwned    []catalog.Card // host plays these if set, else a booster
	Seed         int64
	HumanTimeout time.Duration // per decision; a silent player keeps
}

// Run starts the server, waits for a client to join, then runs the match.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()

	fmt.Printf("Waiting for opponent on port %s...\n", s.Port)

	// Accept exactly one connection (the joiner)
	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	fmt.Printf("Opponent connected from %s\n", conn.RemoteAddr())

	// Player A = host, Player B = joiner
	joinerCtrl := NewNetworkController(conn, match.PlayerB)
	joinMsg, err := joinerCtrl.Handshake()
	if err != nil {
		return err
	}

	cat := s.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	var rng *rand.Rand
	if s.Seed != 0 {
		rng = rand.New(rand.NewSource(s.Seed))
	}
	drawer := catalog.NewDrawer(cat, rng)

	hostHand, err := match.DealHand(drawer, s.HostOwned)
	if err != nil {
		return fmt.Errorf("host hand: %w", err)
	}
	joinerHand, err := match.DealHand(drawer, catalog.FromAssets(joinMsg.Owned))
	if err != nil {
		return fmt.Errorf("joiner hand: %w", err)
	}

	fmt.Printf("Opponent %s joined with %d owned cards\n", joinerCtrl.Name(), len(joinMsg.Owned))

	m, err := match.New(match.Config{
		ID:      uuid.NewString(),
		Catalog: cat,
		HandA:   hostHand,
		HandB:   joinerHand,
		Drawer:  drawer,
		Logger:  log.NewTextLogger(os.Stdout),
	})
	if err != nil {
		return err
	}

	// Create a pipe for the host's local connection
	hostConn, hostServerConn := net.Pipe()
	defer hostServerConn.Close()
	hostCtrl := NewNetworkController(hostServerConn, match.PlayerA)
	if s.HostName != "" {
		hostCtrl.name = s.HostName
	}

	runner := match.NewRunner(m,
		match.Seat{Name: hostCtrl.Name(), Provider: hostCtrl, Config: decision.DefaultConfig(), Timeout: s.HumanTimeout},
		match.Seat{Name: joinerCtrl.Name(), Provider: joinerCtrl, Config: decision.DefaultConfig(), Timeout: s.HumanTimeout},
	)
	runner.AddObserver(hostCtrl)
	runner.AddObserver(joinerCtrl)

	// Run the host's local REPL in a goroutine
	replErr := make(chan error, 1)
	go func() {
		client := &Client{conn: hostConn, seat: match.PlayerA}
		replErr <- client.RunREPL(ctx)
	}()

	matchErr := make(chan error, 1)
	go func() {
		_ = hostCtrl.SendWelcome(m.ID())
		_ = joinerCtrl.SendWelcome(m.ID())

		outcome, err := runner.Run(ctx)
		if err != nil {
			matchErr <- fmt.Errorf("match error: %w", err)
			return
		}
		a, b, _ := m.Totals()
		fmt.Printf("Match over: %s (%d-%d)\n", outcome, a, b)
		if err := joinerCtrl.Finish(m, s.HumanTimeout); err != nil {
			fmt.Printf("Opponent left before the loot was settled: %v\n", err)
		}
		_ = hostCtrl.Finish(m, s.HumanTimeout)
		matchErr <- nil
	}()

	select {
	case err := <-replErr:
		if err != nil {
			return err
		}
		return <-matchErr
	case err := <-matchErr:
		return err
	}
}
