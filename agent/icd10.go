package agent

import (
	"context"
	"image"

	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/model"
)

// ICD10Agent extracts ICD-10 codes from a clinical note.
type ICD10Agent struct {
	BaseAgent
}

// NewICD10Agent creates the ICD-10 coder.
func NewICD10Agent(models model.Provider, optFns ...func(o *Options)) *ICD10Agent {
	return &ICD10Agent{BaseAgent: NewBaseAgent(core.TaskICD10.String(), models, ICD10Prompt, optFns...)}
}

// Task implements TaskAgent.
func (a *ICD10Agent) Task() core.Task { return core.TaskICD10 }

// BuildPrompt implements TaskAgent. A missing clinical note renders as empty.
func (a *ICD10Agent) BuildPrompt(state core.State) (Prompt, error) {
	var note string
	if p, ok := state.Payload.(core.ICD10Payload); ok {
		note = p.ClinicalNote
	}

	img := core.ImageOrPlaceholder(state.Input().Image)

	text, err := a.render(state, map[string]any{
		"ClinicalNote": note,
		"Image":        core.DescribeImage(state.Input().Image),
	})
	if err != nil {
		return Prompt{}, err
	}

	return Prompt{Text: text, Images: []image.Image{img}}, nil
}

// InvokeGeneration implements TaskAgent.
func (a *ICD10Agent) InvokeGeneration(ctx context.Context, p Prompt) (string, error) {
	return a.generate(ctx, p)
}

// RepairAndParse implements TaskAgent.
func (a *ICD10Agent) RepairAndParse(raw string) (any, error) {
	return a.repairAndParse(raw)
}
