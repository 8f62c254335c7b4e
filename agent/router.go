package agent

import (
	"context"
	"fmt"
	"image"

	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/model"
)

// Router classifies the inbound note/image into a task and shapes the payload
// for that task's agent. It implements core.Node.
type Router struct {
	BaseAgent
}

// NewRouter creates the classification node.
func NewRouter(models model.Provider, optFns ...func(o *Options)) *Router {
	return &Router{BaseAgent: NewBaseAgent("router", models, RouterPrompt, optFns...)}
}

// Run invokes the classifier once. On success Task is set, the payload is
// reshaped and Result carries the cleaned label; otherwise Error is set.
func (r *Router) Run(ctx context.Context, state core.State) core.State {
	in := state.Input()

	text, err := r.render(state, map[string]any{
		"Note":  in.NoteText(),
		"Image": core.DescribeImage(in.Image),
	})
	if err != nil {
		return state.WithError(core.TaskUnclassified, err)
	}

	raw, err := r.generate(ctx, Prompt{
		Text:   text,
		Images: []image.Image{core.ImageOrPlaceholder(in.Image)},
	})
	if err != nil {
		r.logger.Error("router.generate.error", "request_id", core.RequestIDFrom(ctx), "error", err.Error())
		return state.WithError(core.TaskUnclassified, fmt.Errorf("router: %w", err))
	}

	label := core.NormalizeLabel(raw)

	task, ok := core.ParseTask(label)
	if !ok {
		r.logger.Error("router.unclassified", "request_id", core.RequestIDFrom(ctx), "label", label)
		return state.WithError(core.TaskUnclassified, fmt.Errorf("%w: %q", core.ErrUnclassified, label))
	}

	r.logger.Info("router.classified", "request_id", core.RequestIDFrom(ctx), "task", task.String())

	state.Payload = core.ShapePayload(task, state.Payload)

	return state.WithResult(task, label)
}
