package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name string
		text string
		data map[string]any
		want string
	}{
		{"no markers", "plain text", nil, "plain text"},
		{"substitution", "text: {{.Note}}", map[string]any{"Note": `said "ouch" & <left>`}, `text: said "ouch" & <left>`},
		{"default on empty", `{{default "none" .Q}}`, map[string]any{"Q": ""}, "none"},
		{"default on missing", `{{default "none" .Q}}`, map[string]any{}, "none"},
		{"default keeps value", `{{default "none" .Q}}`, map[string]any{"Q": "why?"}, "why?"},
		{"trim", `[{{trim .S}}]`, map[string]any{"S": "  x \n"}, "[x]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderTemplate(tt.text, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderTemplate_ParseError(t *testing.T) {
	_, err := RenderTemplate("{{.Broken", nil)
	assert.Error(t, err)
}
