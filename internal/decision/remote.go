package decision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/peterkuimelis/swapduel/internal/catalog"
)

// RemoteConfig holds configuration for the AI agent service client.
type RemoteConfig struct {
	// BaseURL is the agents endpoint. The agent is called at
	// {BaseURL}/{AgentID}/run.
	BaseURL string

	// AgentID selects the agent. Defaults to "training-agent-v1".
	AgentID string

	// APIKey is sent as a bearer token.
	APIKey string

	// MaxRetries bounds retries on network errors and 5xx responses.
	// Defaults to 2 if zero; negative disables retries.
	MaxRetries int

	// RetryDelay is the constant wait between attempts. Defaults to 200ms.
	RetryDelay time.Duration

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	// Defaults to a client with a 10s timeout.
	HTTPClient *http.Client
}

// Remote asks an external AI agent service for the swap decision. It is
// never used on its own by the runner; wrap it with WithFallback.
type Remote struct {
	config RemoteConfig
	http   *http.Client
}

// NewRemote creates a remote AI provider with defaults applied.
func NewRemote(cfg RemoteConfig) *Remote {
	if cfg.AgentID == "" {
		cfg.AgentID = "training-agent-v1"
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Remote{config: cfg, http: httpClient}
}

func (r *Remote) Name() string {
	return "remote-ai"
}

// HTTPError represents a non-2xx response from the agent service.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("agent service: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for rate limits (429) and server errors (5xx).
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// wireCard is a card as the agent service sees it.
type wireCard struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	URL    string `json:"url"`
	Points int    `json:"points"`
	Type   string `json:"type"`
}

type wireState struct {
	Turn           int        `json:"turn"`
	AIHand         []wireCard `json:"ai_hand"`
	PlayerHand     []wireCard `json:"player_hand"`
	AIRevealed     []bool     `json:"ai_revealed"`
	PlayerRevealed []bool     `json:"player_revealed"`
	AISwapped      bool       `json:"ai_swapped"`
	PlayerSwapped  bool       `json:"player_swapped"`
	History        []Move     `json:"history"`
}

type runRequest struct {
	State      wireState `json:"state"`
	Difficulty string    `json:"difficulty"`
	Style      string    `json:"style"`
}

type wireAction struct {
	ActionType  string   `json:"action_type"`
	CardID      string   `json:"card_id,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

type runResponse struct {
	Action *wireAction `json:"action"`
}

func toWire(cards []catalog.Card) []wireCard {
	out := make([]wireCard, len(cards))
	for i, c := range cards {
		out[i] = wireCard{Name: c.Name, Label: c.Label, URL: c.ArtworkRef, Points: c.Points, Type: c.Rarity.String()}
	}
	return out
}

// Decide posts the visible state to the agent and maps its answer onto an
// Action. Failures come back as *ProviderError.
func (r *Remote) Decide(ctx context.Context, state State, cfg Config) (Action, error) {
	body := runRequest{
		State: wireState{
			Turn:           state.Round,
			AIHand:         toWire(state.Hand),
			PlayerHand:     toWire(state.OpponentHand),
			AIRevealed:     state.Revealed,
			PlayerRevealed: state.OpponentRevealed,
			AISwapped:      state.Swapped,
			PlayerSwapped:  state.OpponentSwapped,
			History:        state.History,
		},
		Difficulty: cfg.Difficulty,
		Style:      cfg.Style,
	}

	var resp *runResponse
	err := retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		var err error
		resp, err = r.doRequest(ctx, body)
		if err == nil {
			return nil
		}
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.IsRetryable() {
				return retry.RetryableError(err)
			}
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return Action{}, ctx.Err()
		}
		return Action{}, &ProviderError{Provider: r.Name(), Err: err}
	}

	action, err := r.toAction(resp)
	if err != nil {
		return Action{}, &ProviderError{Provider: r.Name(), Err: err}
	}
	return action, nil
}

func (r *Remote) backoff() retry.Backoff {
	retries := r.config.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return retry.WithMaxRetries(uint64(retries), retry.NewConstant(r.config.RetryDelay))
}

func (r *Remote) toAction(resp *runResponse) (Action, error) {
	if resp == nil || resp.Action == nil {
		return Action{}, errors.New("response has no action")
	}
	typ, err := ParseActionType(resp.Action.ActionType)
	if err != nil {
		return Action{}, err
	}
	confidence := 1.0
	if resp.Action.Confidence != nil {
		confidence = clamp01(*resp.Action.Confidence)
	}
	return Action{
		Type:       typ,
		Rationale:  resp.Action.Explanation,
		Confidence: confidence,
		Source:     r.Name(),
	}, nil
}

// doRequest sends a single run request and decodes the response.
func (r *Remote) doRequest(ctx context.Context, body runRequest) (*runResponse, error) {
	url := fmt.Sprintf("%s/%s/run", strings.TrimRight(r.config.BaseURL, "/"), r.config.AgentID)

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.config.APIKey)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var out runResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("invalid response JSON: %w", err)
	}
	return &out, nil
}
