package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/config"
	"github.com/peterkuimelis/swapduel/internal/decision"
	"github.com/peterkuimelis/swapduel/internal/match"
	swapnet "github.com/peterkuimelis/swapduel/internal/net"
)

var (
	// sessionMu guards activeSession, the single match per stdio process.
	sessionMu     sync.Mutex
	activeSession *GameSession

	// settings and cards are set by main.
	settings = config.Default()
	cards    = catalog.Default()
)

// Configure sets the settings and catalog used for new sessions.
func Configure(cfg config.Config, c *catalog.Catalog) {
	settings = cfg
	if c != nil {
		cards = c
	}
}

// RegisterTools adds all match tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(startPracticeTool(), handleStartPractice)
	s.AddTool(decideSwapTool(), handleDecideSwap)
	s.AddTool(getMatchStateTool(), handleGetMatchState)
	s.AddTool(claimLootTool(), handleClaimLoot)
	s.AddTool(listCardsTool(), handleListCards)
}

// --- Tool definitions ---

func startPracticeTool() mcp.Tool {
	return mcp.NewTool("start_practice",
		mcp.WithDescription("Start a three-round swapduel practice match against the computer opponent. "+
			"Each round both players reveal one card; the first time you reveal you may keep the card or exchange it "+
			"for a random booster card, once per match. Highest total after three rounds wins. "+
			"Returns the state and your first pending decision."),
		mcp.WithString("difficulty", mcp.Description("Opponent difficulty"), mcp.Enum("easy", "normal", "hard")),
		mcp.WithString("style", mcp.Description("Opponent play style, e.g. balanced, aggressive, defensive")),
		mcp.WithString("starting", mcp.Description("Who leads every round: 'a' (you), 'b' (opponent) or empty for a coin flip")),
		mcp.WithString("owned_json", mcp.Description("Optional JSON array of owned card objects ({data:{content:{fields:{name,image_url,points,type}}}}) to play with")),
	)
}

func decideSwapTool() mcp.Tool {
	return mcp.NewTool("decide_swap",
		mcp.WithDescription("Answer the pending swap decision: keep the revealed card or exchange it for a booster card."),
		mcp.WithString("action", mcp.Required(), mcp.Enum("keep", "exchange"), mcp.Description("keep or exchange")),
		mcp.WithString("rationale", mcp.Description("Optional one-line reason, recorded in the match log")),
	)
}

func getMatchStateTool() mcp.Tool {
	return mcp.NewTool("get_match_state",
		mcp.WithDescription("Get the current match state, accumulated events, and pending decision without submitting a response. Read-only."),
	)
}

func claimLootTool() mcp.Tool {
	return mcp.NewTool("claim_loot",
		mcp.WithDescription("After winning, claim one card from the opponent's final hand."),
		mcp.WithString("card", mcp.Required(), mcp.Description("Name of the card to claim")),
	)
}

func listCardsTool() mcp.Tool {
	return mcp.NewTool("list_cards",
		mcp.WithDescription("List the card catalog with point values and the booster average."),
	)
}

// --- Tool handlers ---

func handleStartPractice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if activeSession != nil {
		select {
		case <-activeSession.done:
		default:
			return mcp.NewToolResultError("A match is already running. Only one match at a time is supported."), nil
		}
	}

	cfg := settings
	if d := request.GetString("difficulty", ""); d != "" {
		cfg.Match.Difficulty = d
	}
	if st := request.GetString("style", ""); st != "" {
		cfg.Match.Style = st
	}
	if err := cfg.Validate(); err != nil {
		return mcp.NewToolResultErrorf("Invalid settings: %v", err), nil
	}

	var owned []catalog.Card
	if raw := strings.TrimSpace(request.GetString("owned_json", "")); raw != "" {
		assets, err := catalog.ParseAssets([]byte(raw))
		if err != nil {
			return mcp.NewToolResultErrorf("Invalid owned_json: %v", err), nil
		}
		owned = catalog.FromAssets(assets)
	}

	// the match outlives this tool call
	sess, err := NewGameSession(context.Background(), SessionConfig{
		Catalog:  cards,
		Settings: cfg,
		Owned:    owned,
		Starting: request.GetString("starting", ""),
	})
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start match: %v", err), nil
	}
	activeSession = sess

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for first decision: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleDecideSwap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if activeSession == nil {
		return mcp.NewToolResultError("No match is running. Use start_practice first."), nil
	}

	typ, err := decision.ParseActionType(request.GetString("action", ""))
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid action: %v", err), nil
	}
	resp, err := activeSession.decide(ctx, decision.Action{
		Type:      typ,
		Rationale: request.GetString("rationale", ""),
	})
	if err != nil {
		return mcp.NewToolResultErrorf("%v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleGetMatchState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if activeSession == nil {
		return mcp.NewToolResultError("No match is running. Use start_practice first."), nil
	}
	return mcp.NewToolResultText(respondJSON(activeSession.response())), nil
}

func handleClaimLoot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if activeSession == nil {
		return mcp.NewToolResultError("No match is running. Use start_practice first."), nil
	}
	card, err := activeSession.match.ClaimLoot(match.PlayerA, request.GetString("card", ""))
	if err != nil {
		return mcp.NewToolResultErrorf("Cannot claim loot: %v", err), nil
	}
	resp := activeSession.response()
	resp.Loot = swapnet.CardViews([]catalog.Card{card})
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleListCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for _, c := range cards.Cards() {
		if cards.IsCardBack(c) {
			continue
		}
		b.WriteString(c.DisplayString())
		if !c.BoosterEligible {
			b.WriteString(" (not in boosters)")
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Booster average: %.1f pts\n", cards.ExpectedBoosterPoints())
	return mcp.NewToolResultText(b.String()), nil
}
