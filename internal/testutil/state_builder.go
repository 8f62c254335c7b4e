package testutil

import (
	"image"
	"image/color"

	"github.com/hupe1980/medmesh/core"
)

// StateBuilder provides a fluent helper for constructing states in tests.
// Example:
//
//	s := testutil.NewStateBuilder().Note("cough").Routed(core.TaskSOAP).Build()
//
// Chain only the parts you need.
type StateBuilder struct {
	note   *string
	img    image.Image
	task   core.Task
	routed bool
	result any
	err    string
}

// NewStateBuilder creates an empty builder.
func NewStateBuilder() *StateBuilder { return &StateBuilder{} }

// Note sets the inbound note (chainable).
func (b *StateBuilder) Note(n string) *StateBuilder { b.note = &n; return b }

// Image sets the inbound image (chainable).
func (b *StateBuilder) Image(img image.Image) *StateBuilder { b.img = img; return b }

// Routed marks the state as classified for task t and shapes the payload (chainable).
func (b *StateBuilder) Routed(t core.Task) *StateBuilder {
	b.task = t
	b.routed = true
	b.result = string(t)
	return b
}

// Result sets the result (chainable).
func (b *StateBuilder) Result(r any) *StateBuilder { b.result = r; return b }

// Error sets the error message (chainable).
func (b *StateBuilder) Error(msg string) *StateBuilder { b.err = msg; return b }

// Build assembles the state.
func (b *StateBuilder) Build() core.State {
	var p core.Payload = core.InputPayload{Note: b.note, Image: b.img}
	if b.routed {
		p = core.ShapePayload(b.task, p)
	}
	return core.State{Task: b.task, Payload: p, Result: b.result, Error: b.err}
}

// SolidImage returns a w×h RGBA image filled with c.
func SolidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}
