package agent

import (
	"context"

	"github.com/hupe1980/medmesh/core"
)

// TaskAgent is a specialist that turns a routed state into a structured result.
// Implementations never catch their own failures; wrap them with Guard.
type TaskAgent interface {
	// Task returns the task identifier the agent serves.
	Task() core.Task
	// BuildPrompt renders the task prompt from the payload.
	BuildPrompt(state core.State) (Prompt, error)
	// InvokeGeneration runs one model generation and returns the raw completion.
	InvokeGeneration(ctx context.Context, p Prompt) (string, error)
	// RepairAndParse turns the raw completion into a generic JSON value.
	RepairAndParse(raw string) (any, error)
}
