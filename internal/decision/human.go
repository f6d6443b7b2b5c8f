package decision

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoPrompt is returned by Submit when nobody is waiting for an answer.
var ErrNoPrompt = errors.New("no decision is pending")

// Human forwards the decision to an external seat: a network peer, an MCP
// agent or a browser. Decide publishes the state on Prompts and blocks until
// Submit delivers the answer or ctx ends.
type Human struct {
	name    string
	prompts chan State
	answers chan Action
}

// NewHuman creates a human provider. name shows up in logs.
func NewHuman(name string) *Human {
	if name == "" {
		name = "human"
	}
	return &Human{
		name:    name,
		prompts: make(chan State, 1),
		answers: make(chan Action),
	}
}

func (h *Human) Name() string {
	return h.name
}

// Prompts delivers one State per pending decision.
func (h *Human) Prompts() <-chan State {
	return h.prompts
}

// Decide waits for the external answer. A deadline on ctx is reported as
// ErrProviderTimeout.
func (h *Human) Decide(ctx context.Context, state State, cfg Config) (Action, error) {
	select {
	case h.prompts <- state:
	case <-ctx.Done():
		return Action{}, h.ctxErr(ctx)
	}
	select {
	case a := <-h.answers:
		a.Confidence = 1
		a.Source = h.name
		return a, nil
	case <-ctx.Done():
		// drop a prompt nobody picked up
		select {
		case <-h.prompts:
		default:
		}
		return Action{}, h.ctxErr(ctx)
	}
}

func (h *Human) ctxErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", h.name, ErrProviderTimeout)
	}
	return ctx.Err()
}

// Submit hands an answer to the waiting Decide call. It blocks until the
// answer is taken or ctx ends.
func (h *Human) Submit(ctx context.Context, a Action) error {
	select {
	case h.answers <- a:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit delivers an answer only if a Decide call is waiting right now.
func (h *Human) TrySubmit(a Action) error {
	select {
	case h.answers <- a:
		return nil
	default:
		return ErrNoPrompt
	}
}
