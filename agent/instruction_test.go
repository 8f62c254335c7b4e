package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/internal/testutil"
)

type mockProvider struct {
	text string
	err  error
}

func (m mockProvider) Instruction(core.State) (string, error) { return m.text, m.err }

func TestInstruction_Static(t *testing.T) {
	inst := NewInstructionFromText("static instruction")
	require.True(t, inst.IsStatic())

	got, err := inst.Resolve(core.State{})
	require.NoError(t, err)
	assert.Equal(t, "static instruction", got)
}

func TestInstruction_NewInstructionFromFunc(t *testing.T) {
	inst := NewInstructionFromFunc(func(s core.State) (string, error) {
		return "task " + s.Task.String(), nil
	})
	require.False(t, inst.IsStatic())

	got, err := inst.Resolve(testutil.NewStateBuilder().Routed(core.TaskSOAP).Build())
	require.NoError(t, err)
	assert.Equal(t, "task soap", got)
}

func TestInstruction_NewInstructionFromProvider(t *testing.T) {
	inst := NewInstructionFromProvider(mockProvider{text: "provider text"})
	require.False(t, inst.IsStatic())

	got, err := inst.Resolve(core.State{})
	require.NoError(t, err)
	assert.Equal(t, "provider text", got)
}

func TestInstruction_ErrorPropagation(t *testing.T) {
	expectedErr := errors.New("boom")
	inst := NewInstructionFromProvider(mockProvider{err: expectedErr})

	_, err := inst.Resolve(core.State{})
	assert.ErrorIs(t, err, expectedErr)

	_, err = inst.Render(core.State{}, nil)
	assert.ErrorIs(t, err, expectedErr)
}

func TestInstruction_Render(t *testing.T) {
	inst := NewInstructionFromText(`note: {{.Note}} / {{default "none" .Question}}`)

	got, err := inst.Render(core.State{}, map[string]any{"Note": `"quoted" & <raw>`, "Question": ""})
	require.NoError(t, err)
	assert.Equal(t, `note: "quoted" & <raw> / none`, got)
	assert.True(t, NewInstructionFromText("").IsZero())
}
