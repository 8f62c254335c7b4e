package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/medmesh/core"
)

// Guard wraps a TaskAgent into a core.Node that never fails outward: prompt,
// generation, repair and parse failures (including panics) become a terminal
// error state. The payload is passed through untouched and nothing is retried.
func Guard(a TaskAgent) core.Node {
	return &guarded{agent: a}
}

type guarded struct {
	agent TaskAgent
}

// Name implements core.Node.
func (g *guarded) Name() string { return g.agent.Task().String() }

// Run implements core.Node.
func (g *guarded) Run(ctx context.Context, state core.State) (out core.State) {
	task := g.agent.Task()

	defer func() {
		if r := recover(); r != nil {
			out = state.WithError(task, fmt.Errorf("%s agent panicked: %v", task, r))
		}
	}()

	prompt, err := g.agent.BuildPrompt(state)
	if err != nil {
		return state.WithError(task, err)
	}

	raw, err := g.agent.InvokeGeneration(ctx, prompt)
	if err != nil {
		return state.WithError(task, err)
	}

	result, err := g.agent.RepairAndParse(raw)
	if err != nil {
		return state.WithError(task, err)
	}
	if result == nil {
		return state.WithError(task, fmt.Errorf("%w: empty result", core.ErrUnexpectedResult))
	}

	return state.WithResult(task, result)
}
