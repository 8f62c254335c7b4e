package agent

import (
	"context"
	"image"

	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/model"
)

// SOAPAgent turns a clinical transcript into a SOAP note.
type SOAPAgent struct {
	BaseAgent
}

// NewSOAPAgent creates the SOAP note generator.
func NewSOAPAgent(models model.Provider, optFns ...func(o *Options)) *SOAPAgent {
	return &SOAPAgent{BaseAgent: NewBaseAgent(core.TaskSOAP.String(), models, SOAPPrompt, optFns...)}
}

// Task implements TaskAgent.
func (a *SOAPAgent) Task() core.Task { return core.TaskSOAP }

// BuildPrompt implements TaskAgent. A missing transcript renders as empty.
func (a *SOAPAgent) BuildPrompt(state core.State) (Prompt, error) {
	var transcript string
	if p, ok := state.Payload.(core.SOAPPayload); ok {
		transcript = p.Transcript
	}

	img := core.ImageOrPlaceholder(state.Input().Image)

	text, err := a.render(state, map[string]any{
		"Transcript": transcript,
		"Image":      core.DescribeImage(state.Input().Image),
	})
	if err != nil {
		return Prompt{}, err
	}

	return Prompt{Text: text, Images: []image.Image{img}}, nil
}

// InvokeGeneration implements TaskAgent.
func (a *SOAPAgent) InvokeGeneration(ctx context.Context, p Prompt) (string, error) {
	return a.generate(ctx, p)
}

// RepairAndParse implements TaskAgent.
func (a *SOAPAgent) RepairAndParse(raw string) (any, error) {
	return a.repairAndParse(raw)
}
