package agent

import (
	"context"
	"image"

	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/model"
)

// ImageAnalyzerAgent writes a radiology report for a medical image and
// answers the optional question carried by the note.
type ImageAnalyzerAgent struct {
	BaseAgent
}

// NewImageAnalyzerAgent creates the image analyzer.
func NewImageAnalyzerAgent(models model.Provider, optFns ...func(o *Options)) *ImageAnalyzerAgent {
	return &ImageAnalyzerAgent{BaseAgent: NewBaseAgent(core.TaskImageAnalysis.String(), models, ImageAnalysisPrompt, optFns...)}
}

// Task implements TaskAgent.
func (a *ImageAnalyzerAgent) Task() core.Task { return core.TaskImageAnalysis }

// BuildPrompt implements TaskAgent. A missing image is replaced by the placeholder.
func (a *ImageAnalyzerAgent) BuildPrompt(state core.State) (Prompt, error) {
	in := state.Input()
	img := core.ImageOrPlaceholder(in.Image)

	text, err := a.render(state, map[string]any{
		"Image":    core.DescribeImage(in.Image),
		"Question": in.NoteText(),
	})
	if err != nil {
		return Prompt{}, err
	}

	return Prompt{Text: text, Images: []image.Image{img}}, nil
}

// InvokeGeneration implements TaskAgent.
func (a *ImageAnalyzerAgent) InvokeGeneration(ctx context.Context, p Prompt) (string, error) {
	return a.generate(ctx, p)
}

// RepairAndParse implements TaskAgent.
func (a *ImageAnalyzerAgent) RepairAndParse(raw string) (any, error) {
	return a.repairAndParse(raw)
}
