package repair

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_FencedSingleQuoted(t *testing.T) {
	raw := "```json\n[{'code': 'K35.80', 'description': 'Acute appendicitis'}]\n```"

	out := Run(raw)

	assert.Equal(t, `[{"code":"K35.80","description":"Acute appendicitis"}]`, out.Text)
	assert.Equal(t, TierStrict, out.Tier)
	assert.Zero(t, out.Dropped)
}

func TestRun_EmptyDescriptionDropped(t *testing.T) {
	out := Run(`[{"code":"Z00.0","description":""}]`)

	assert.Equal(t, "[]", out.Text)
	assert.Equal(t, TierStrict, out.Tier)
	assert.Equal(t, 1, out.Dropped)
}

func TestRun_TruncatedRecovered(t *testing.T) {
	out := Run(`{"code": "R10.9", "description": "Abdominal pain"} garbage {"code"`)

	assert.Equal(t, `[{"code":"R10.9","description":"Abdominal pain"}]`, out.Text)
	assert.Equal(t, TierRecovered, out.Tier)
}

func TestRun_PreservesOrderOfKeptEntries(t *testing.T) {
	raw := `[
		{"code":"A","description":"first"},
		{"code":"B"},
		"free text",
		{"code":"C","description":"third"},
		{"code":"D","description":null},
		{"code":"E","description":"fifth"}
	]`

	out := Run(raw)

	var got []any
	require.NoError(t, json.Unmarshal([]byte(out.Text), &got))
	require.Len(t, got, 4)
	assert.Equal(t, "A", got[0].(map[string]any)["code"])
	assert.Equal(t, "free text", got[1])
	assert.Equal(t, "C", got[2].(map[string]any)["code"])
	assert.Equal(t, "E", got[3].(map[string]any)["code"])
	assert.Equal(t, 2, out.Dropped)
}

func TestRun_FiltersNestedListsOfObject(t *testing.T) {
	raw := `{"results":[{"code":"A","description":""},{"code":"B","description":"kept"}],"Plan":"rest"}`

	out := Run(raw)

	assert.JSONEq(t, `{"results":[{"code":"B","description":"kept"}],"Plan":"rest"}`, out.Text)
	assert.Equal(t, 1, out.Dropped)
}

func TestRun_ObjectPassesThrough(t *testing.T) {
	raw := "```\n{\"Subjective\": \"cough <3 days>\", \"Objective\": \"T 38.1\", \"Assessment\": \"URI\", \"Plan\": \"fluids & rest\"}\n```"

	out := Run(raw)

	assert.Equal(t, `{"Assessment":"URI","Objective":"T 38.1","Plan":"fluids & rest","Subjective":"cough <3 days>"}`, out.Text)
}

func TestRun_NumbersKeepPrecision(t *testing.T) {
	out := Run(`{"score": 12345678901234567890, "items": []}`)
	assert.Equal(t, `{"items":[],"score":12345678901234567890}`, out.Text)
}

func TestRun_AlwaysValidJSON(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not json at all",
		"```json\n```",
		`[{"code":"A","description":"x"`,
		`{"code":"R10.9","description":""}`,
		`{"code": "A1", "description": "one"}{"code": "A2", "description": "two"}`,
		"null",
		"42",
		`"it's"`,
		`[1, 2, {"description": 0}]`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			out := Run(in)
			assert.True(t, json.Valid([]byte(out.Text)), "invalid JSON %q", out.Text)
		})
	}
}

func TestRun_ConcatenatedObjectsRecovered(t *testing.T) {
	out := Run(`{"code": "A1", "description": "one"}{"code": "A2", "description": "two"}{"code": "A3", "description": ""}`)

	assert.Equal(t, `[{"code":"A1","description":"one"},{"code":"A2","description":"two"}]`, out.Text)
	assert.Equal(t, TierRecovered, out.Tier)
	assert.Equal(t, 1, out.Dropped)
}

func TestRun_Lenient(t *testing.T) {
	raw := `[{"code":"K35.80","description":"Acute appendicitis"},{"code":"R11.0","description":"Nausea"},]`

	strict := Run(raw)
	assert.Equal(t, TierRecovered, strict.Tier)

	lenient := Run(raw, WithLenient())
	assert.Equal(t, TierLenient, lenient.Tier)
	assert.JSONEq(t,
		`[{"code":"K35.80","description":"Acute appendicitis"},{"code":"R11.0","description":"Nausea"}]`,
		lenient.Text,
	)
}

func TestJSON(t *testing.T) {
	assert.Equal(t, "[]", JSON("nothing to see"))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", ` {"a":1} `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"untagged fence", "```\n[]\n```", `[]`},
		{"other tag", "```javascript\n[1]\n```", `[1]`},
		{"quotes", `{'a':'b'}`, `{"a":"b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
