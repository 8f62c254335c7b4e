package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/medmesh/model"
)

func TestBuildMessages(t *testing.T) {
	req := model.Request{
		Instructions: "be terse",
		Contents: []model.Content{{
			Role: model.RoleUser,
			Parts: []model.Part{
				model.ImagePart{Data: []byte{1, 2, 3}, MIMEType: "image/png"},
				model.TextPart{Text: "classify"},
			},
		}},
	}

	messages := buildMessages(req)
	require.Len(t, messages, 2)
	require.NotNil(t, messages[0].OfSystem)
	require.NotNil(t, messages[1].OfUser)

	parts := messages[1].OfUser.Content.OfArrayOfContentParts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].OfImageURL)
	assert.Equal(t, "data:image/png;base64,AQID", parts[0].OfImageURL.ImageURL.URL)
	require.NotNil(t, parts[1].OfText)
	assert.Equal(t, "classify", parts[1].OfText.Text)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.Model = "gpt-4o"
		o.APIKey = "test"
	})

	info := m.Info()
	assert.Equal(t, "gpt-4o", info.Name)
	assert.Equal(t, "openai", info.Provider)
	assert.True(t, info.SupportsVision)
}

func TestGenerate_StreamServedAsSingleResponse(t *testing.T) {
	var gotStream any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotStream = body["stream"]

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "ICD10"}
			}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 1, "total_tokens": 6}
		}`))
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) {
		o.APIKey = "test"
		o.BaseURL = srv.URL
	})

	req := model.Request{
		Stream:   true,
		Contents: []model.Content{{Role: model.RoleUser, Parts: []model.Part{model.TextPart{Text: "route"}}}},
	}

	respCh, errCh := m.Generate(context.Background(), req)

	var responses []model.Response
	for r := range respCh {
		responses = append(responses, r)
	}
	require.NoError(t, <-errCh)

	require.Len(t, responses, 1)
	assert.False(t, responses[0].Partial)
	assert.Equal(t, "ICD10", responses[0].Content.Text())
	require.NotNil(t, responses[0].Usage)
	assert.Equal(t, 6, responses[0].Usage.TotalTokens)
	assert.Nil(t, gotStream)
}

func TestGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad request", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) {
		o.APIKey = "test"
		o.BaseURL = srv.URL
	})

	text, err := model.GenerateText(context.Background(), m, model.Request{
		Contents: []model.Content{{Role: model.RoleUser, Parts: []model.Part{model.TextPart{Text: "route"}}}},
	})
	require.Error(t, err)
	assert.Empty(t, text)
	assert.Contains(t, err.Error(), "openai api error")
}
