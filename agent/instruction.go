package agent

import (
	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/internal/util"
)

// Provider supplies prompt template text at runtime.
// Implementations can derive the template from the state being processed.
type Provider interface {
	Instruction(core.State) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(core.State) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(s core.State) (string, error) { return f(s) }

// Instruction represents either a static prompt template or a dynamic provider.
// This mirrors a union of string | provider in a Go-idiomatic way.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(core.State) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// IsZero reports whether neither text nor provider is set.
func (i Instruction) IsZero() bool { return i.provider == nil && i.text == "" }

// Resolve returns the template text, invoking the provider if needed.
func (i Instruction) Resolve(s core.State) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(s)
	}
	return i.text, nil
}

// Render resolves the template and executes it with data.
func (i Instruction) Render(s core.State, data map[string]any) (string, error) {
	text, err := i.Resolve(s)
	if err != nil {
		return "", err
	}
	return util.RenderTemplate(text, data)
}
