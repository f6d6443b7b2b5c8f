package net

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/match"
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn net.Conn
	seat match.Player
	in   io.Reader // defaults to stdin
	out  io.Writer // defaults to stdout
}

// Connect connects to a server, sends the join message, and runs the REPL.
func Connect(ctx context.Context, addr, name string, owned []catalog.Asset) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	enc := json.NewEncoder(conn)
	if err := enc.Encode(ClientMessage{Type: "join", Name: name, Owned: owned}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Println("Connected! Waiting for the match to start...")

	client := &Client{conn: conn, seat: match.PlayerB}
	return client.RunREPL(ctx)
}

// RunREPL reads server messages and handles them interactively.
func (c *Client) RunREPL(ctx context.Context) error {
	if c.in == nil {
		c.in = os.Stdin
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)
	reader := bufio.NewReader(c.in)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case "welcome":
			fmt.Fprintf(c.out, "Match %s: you are seat %s\n", msg.MatchID, msg.Seat)

		case "notify":
			c.renderEvent(msg.Event)

		case "choose_swap":
			c.renderState(msg.State)
			fmt.Fprintf(c.out, "\n%s\n", msg.Prompt)
			exchange := c.readKeepOrExchange(reader)
			if err := enc.Encode(ClientMessage{Type: "decision", Exchange: exchange}); err != nil {
				return fmt.Errorf("send decision: %w", err)
			}

		case "game_over":
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, "          GAME OVER")
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintf(c.out, "%s  (A %d pts / B %d pts)\n", msg.Result, msg.TotalA, msg.TotalB)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			if len(msg.Loot) == 0 {
				return nil
			}
			name := c.readLootChoice(reader, msg.Loot)
			if err := enc.Encode(ClientMessage{Type: "claim", Name: name}); err != nil {
				return fmt.Errorf("send claim: %w", err)
			}
			if name == "" {
				return nil
			}

		case "loot":
			if len(msg.Loot) > 0 {
				fmt.Fprintf(c.out, "You took %s (%d pts)\n", msg.Loot[0].Label, msg.Loot[0].Points)
			}
			return nil

		case "error":
			fmt.Fprintf(c.out, "Error: %s\n", msg.Result)
			return nil
		}
	}
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	// Format like the TextLogger
	half := ev.Half
	for len(half) < 7 {
		half += " "
	}
	fmt.Fprintf(c.out, "R%-2d %s| %s\n", ev.Round, half, ev.Details)
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "╔══════════════════════════════════════════════════════╗")
	fmt.Fprintf(c.out, "║  OPPONENT (%s)%s\n", sv.Opponent.Seat, swappedTag(sv.Opponent.Swapped))
	fmt.Fprintf(c.out, "║  %s\n", formatCards(sv.Opponent))
	fmt.Fprintln(c.out, "║──────────────────────────────────────────────────────")
	fmt.Fprintf(c.out, "║  %s\n", formatCards(sv.You))
	fmt.Fprintf(c.out, "║  YOU (%s)%s\n", sv.You.Seat, swappedTag(sv.You.Swapped))
	fmt.Fprintln(c.out, "╚══════════════════════════════════════════════════════╝")
	fmt.Fprintf(c.out, "Round %d of %d\n", sv.Round, match.Rounds)
}

func swappedTag(swapped bool) string {
	if swapped {
		return "  [swap used]"
	}
	return ""
}

func formatCards(pv PlayerView) string {
	var parts []string
	for i, cv := range pv.Cards {
		switch {
		case cv.Hidden || cv.Name == "":
			parts = append(parts, "[ ? ]")
		case pv.Revealed[i]:
			parts = append(parts, fmt.Sprintf("[%s %d]", cv.Label, cv.Points))
		default:
			parts = append(parts, fmt.Sprintf("(%s %d)", cv.Label, cv.Points))
		}
	}
	return strings.Join(parts, " ")
}

func (c *Client) readKeepOrExchange(reader *bufio.Reader) bool {
	for {
		fmt.Fprint(c.out, "(k)eep or (e)xchange > ")
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(strings.ToLower(line))
		switch line {
		case "k", "keep":
			return false
		case "e", "exchange", "swap":
			return true
		}
		if err != nil {
			// no more input: keep
			return false
		}
		fmt.Fprintln(c.out, "Enter k or e")
	}
}

// readLootChoice asks the winner which opponent card to take. Empty input
// passes.
func (c *Client) readLootChoice(reader *bufio.Reader, loot []CardView) string {
	fmt.Fprintln(c.out, "You won! Take one of your opponent's cards:")
	for i, cv := range loot {
		fmt.Fprintf(c.out, "  %d) %s (%d pts)\n", i+1, cv.Label, cv.Points)
	}
	for {
		fmt.Fprintf(c.out, "card [1-%d, enter to pass] > ", len(loot))
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			return ""
		}
		if n, convErr := strconv.Atoi(line); convErr == nil && n >= 1 && n <= len(loot) {
			return loot[n-1].Name
		}
		if err != nil {
			return ""
		}
		fmt.Fprintf(c.out, "Enter a number from 1 to %d\n", len(loot))
	}
}
