package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/logging"
	"github.com/hupe1980/medmesh/metrics"
	"github.com/hupe1980/medmesh/model"
	"github.com/hupe1980/medmesh/repair"
	"github.com/hupe1980/medmesh/tracing"
)

// Prompt is a rendered task prompt plus the images it refers to. It is turned
// into a model.Request by the handle's ChatTemplate at generation time.
type Prompt struct {
	Text   string
	Images []image.Image
}

// Options configures the router and task agents.
type Options struct {
	// Instruction overrides the default prompt template.
	Instruction Instruction
	// LenientRepair enables the jsonrepair tier of response repair.
	LenientRepair bool
	Logger        logging.Logger
	Metrics       *metrics.Metrics
}

// BaseAgent bundles what every agent shares: identity, the model handle
// capability, the prompt template and observability hooks. Embed it in
// concrete agents.
type BaseAgent struct {
	name        string
	models      model.Provider
	instruction Instruction
	repairOpts  []func(o *repair.Options)
	logger      logging.Logger
	metrics     *metrics.Metrics
}

// NewBaseAgent constructs a BaseAgent with defaultPrompt used unless overridden.
func NewBaseAgent(name string, models model.Provider, defaultPrompt string, optFns ...func(o *Options)) BaseAgent {
	opts := Options{
		Instruction: NewInstructionFromText(defaultPrompt),
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Instruction.IsZero() {
		opts.Instruction = NewInstructionFromText(defaultPrompt)
	}

	logger := logging.ForComponent(opts.Logger, name)

	repairOpts := []func(o *repair.Options){repair.WithLogger(logger)}
	if opts.LenientRepair {
		repairOpts = append(repairOpts, repair.WithLenient())
	}

	return BaseAgent{
		name:        name,
		models:      models,
		instruction: opts.Instruction,
		repairOpts:  repairOpts,
		logger:      logger,
		metrics:     opts.Metrics,
	}
}

// Name returns the agent name used in logs, metrics and spans.
func (b *BaseAgent) Name() string { return b.name }

// render executes the agent's prompt template.
func (b *BaseAgent) render(state core.State, data map[string]any) (string, error) {
	text, err := b.instruction.Render(state, data)
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", b.name, err)
	}
	return text, nil
}

// generate formats p with the shared handle's template and runs one generation.
func (b *BaseAgent) generate(ctx context.Context, p Prompt) (string, error) {
	if l := core.LimiterFrom(ctx); l != nil {
		if err := l.Increment(); err != nil {
			return "", err
		}
	}

	h, err := b.models.Handle(ctx)
	if err != nil {
		return "", err
	}

	req, err := h.Template.Apply(p.Text, p.Images...)
	if err != nil {
		return "", fmt.Errorf("apply chat template: %w", err)
	}

	info := h.Model.Info()

	ctx, span := tracing.Start(ctx, tracing.SpanGenerate,
		attribute.String(tracing.AttrNode, b.name),
		attribute.String(tracing.AttrModel, info.Name),
		attribute.Int(tracing.AttrImages, req.ImageCount()),
	)

	start := time.Now()
	text, err := model.GenerateText(ctx, h.Model, req)
	dur := time.Since(start)

	tracing.End(span, err)
	b.metrics.ObserveGeneration(b.name, err != nil, dur)
	logging.LLMCall(b.logger, info.Name, len(text), dur, err)

	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	b.logger.Debug("agent.generate.done", "request_id", core.RequestIDFrom(ctx), "raw", text)

	return text, nil
}

// repairAndParse repairs raw model output and decodes it as a generic JSON value.
func (b *BaseAgent) repairAndParse(raw string) (any, error) {
	out := repair.Run(raw, b.repairOpts...)
	b.metrics.ObserveRepair(b.name, string(out.Tier), out.Dropped)

	if out.Tier != repair.TierStrict {
		b.logger.Warn("agent.repair.fallback", "tier", string(out.Tier), "dropped", out.Dropped)
	}

	var v any
	if err := json.Unmarshal([]byte(out.Text), &v); err != nil {
		return nil, fmt.Errorf("parse repaired output: %w", err)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: model returned null", core.ErrUnexpectedResult)
	}

	return v, nil
}
