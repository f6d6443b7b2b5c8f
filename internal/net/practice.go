package net

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/peterkuimelis/swapduel/internal/match"
)

// Practice plays a practice match from a terminal. The player at seat A
// talks to the runner through an in-process pipe, so the REPL is the same
// one a joining client sees. cfg.Player.Provider is replaced.
func Practice(ctx context.Context, cfg match.PracticeConfig, starting string, in io.Reader, out io.Writer) (match.Outcome, error) {
	srvConn, cliConn := net.Pipe()
	defer srvConn.Close()
	defer cliConn.Close()

	ctrl := NewNetworkController(srvConn, match.PlayerA)
	if cfg.Player.Name != "" {
		ctrl.name = cfg.Player.Name
	}
	cfg.Player.Provider = ctrl
	runner, err := match.NewPractice(cfg)
	if err != nil {
		return match.OutcomeInProgress, err
	}
	runner.AddObserver(ctrl)
	m := runner.Match

	replErr := make(chan error, 1)
	go func() {
		client := &Client{conn: cliConn, seat: match.PlayerA, in: in, out: out}
		replErr <- client.RunREPL(ctx)
	}()

	if err := ctrl.SendWelcome(m.ID()); err != nil {
		return match.OutcomeInProgress, err
	}
	if _, err := m.StartNamed(starting); err != nil {
		return match.OutcomeInProgress, err
	}
	outcome, err := runner.Run(ctx)
	if err != nil {
		return outcome, fmt.Errorf("match error: %w", err)
	}
	if err := ctrl.Finish(m, cfg.Player.Timeout); err != nil {
		return outcome, err
	}
	if err := <-replErr; err != nil {
		return outcome, err
	}
	return outcome, nil
}
