package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/medmesh/model"
)

func TestBuildMessages(t *testing.T) {
	contents := []model.Content{
		{Role: model.RoleSystem, Parts: []model.Part{model.TextPart{Text: "extra rules"}}},
		{Role: model.RoleUser, Parts: []model.Part{
			model.ImagePart{Data: []byte{1, 2, 3}, MIMEType: "image/png"},
			model.TextPart{Text: "describe"},
		}},
	}

	messages := buildMessages(contents)
	require.Len(t, messages, 1)
	require.Len(t, messages[0].Content, 2)
	require.NotNil(t, messages[0].Content[0].OfImage)
	require.NotNil(t, messages[0].Content[1].OfText)
	assert.Equal(t, "describe", messages[0].Content[1].OfText.Text)

	system := extractSystem(model.Request{Instructions: "be terse", Contents: contents})
	require.Len(t, system, 2)
	assert.Equal(t, "be terse", system[0].Text)
	assert.Equal(t, "extra rules", system[1].Text)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test" })

	info := m.Info()
	assert.Equal(t, "anthropic", info.Provider)
	assert.True(t, info.SupportsVision)
}
