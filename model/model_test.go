package model

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textRequest(prompt string) Request {
	return Request{Contents: []Content{{Role: RoleUser, Parts: []Part{TextPart{Text: prompt}}}}}
}

func TestMockModel_ReplyOrder(t *testing.T) {
	m := NewMockModel("mock", "test").
		AddResponse("classify", "icd10").
		Enqueue("first")

	out, err := GenerateText(context.Background(), m, textRequest("classify this"))
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	out, err = GenerateText(context.Background(), m, textRequest("classify this"))
	require.NoError(t, err)
	assert.Equal(t, "icd10", out)

	out, err = GenerateText(context.Background(), m, textRequest("other"))
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: other", out)

	assert.Equal(t, 3, m.CallCount())
	assert.Equal(t, "other", m.Calls()[2].Prompt())
}

func TestMockModel_Errors(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockModel("mock", "test").EnqueueError(boom).AddError("fail", boom)

	_, err := GenerateText(context.Background(), m, textRequest("x"))
	assert.ErrorIs(t, err, boom)

	_, err = GenerateText(context.Background(), m, textRequest("please fail"))
	assert.ErrorIs(t, err, boom)

	_, err = GenerateText(context.Background(), m, Request{})
	assert.Error(t, err)
}

func TestGenerateText_Streaming(t *testing.T) {
	m := NewMockModel("mock", "test").Enqueue("soap")
	req := textRequest("route")
	req.Stream = true

	out, err := GenerateText(context.Background(), m, req)
	require.NoError(t, err)
	assert.Equal(t, "soap", out)
}

func TestGenerateText_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GenerateText(ctx, NewMockModel("mock", "test"), textRequest("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChatTemplate_Apply(t *testing.T) {
	tmpl := ChatTemplate{Instructions: "be precise", NumImages: 1}
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))

	req, err := tmpl.Apply("hello", img)
	require.NoError(t, err)

	assert.Equal(t, "be precise", req.Instructions)
	require.Len(t, req.Contents, 1)
	assert.Equal(t, RoleUser, req.Contents[0].Role)
	assert.Equal(t, "hello", req.Prompt())
	assert.Equal(t, 1, req.ImageCount())
	assert.Equal(t, "image/png", req.Contents[0].Images()[0].MIMEType)

	again, err := tmpl.Apply("hello", img)
	require.NoError(t, err)
	assert.Equal(t, req, again)

	_, err = tmpl.Apply("hello")
	assert.Error(t, err)

	_, err = ChatTemplate{}.Apply("hello", nil)
	assert.Error(t, err)
}

func TestLoader_LoadsOnce(t *testing.T) {
	var loads atomic.Int32
	l := NewLoader("medgemma", func(ctx context.Context, id string) (Model, error) {
		loads.Add(1)
		return NewMockModel(id, "mock"), nil
	})

	assert.False(t, l.Loaded())

	var wg sync.WaitGroup
	handles := make([]*Handle, 16)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := l.Handle(context.Background())
			assert.NoError(t, err)
			handles[i] = h
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
	assert.True(t, l.Loaded())
	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}
	assert.Equal(t, "medgemma", handles[0].Model.Info().Name)
	assert.Equal(t, 1, handles[0].Template.NumImages)
}

func TestLoader_DoesNotCacheFailures(t *testing.T) {
	calls := 0
	l := NewLoader("flaky", func(ctx context.Context, id string) (Model, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("weights missing")
		}
		return NewMockModel(id, "mock"), nil
	})

	_, err := l.Handle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `load model "flaky"`)
	assert.False(t, l.Loaded())

	h, err := l.Handle(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, h.Model)
	assert.Equal(t, 2, calls)
}

func TestStatic(t *testing.T) {
	m := NewMockModel("mock", "test")
	p := NewStatic(m, func(t *ChatTemplate) { t.Instructions = "sys" })

	h, err := p.Handle(context.Background())
	require.NoError(t, err)
	assert.Same(t, m, h.Model)
	assert.Equal(t, "sys", h.Template.Instructions)
}
