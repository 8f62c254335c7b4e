package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type mockReply struct {
	text string
	err  error
}

type mockRule struct {
	match string
	reply mockReply
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
//
// Replies are chosen in this order: queued replies (FIFO), then the first
// rule whose match string is contained in the prompt, then an echo.
type MockModel struct {
	mu    sync.Mutex
	info  Info
	queue []mockReply
	rules []mockRule
	calls []Request
}

// NewMockModel constructs a vision-capable MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:           name,
			Provider:       provider,
			SupportsVision: true,
		},
	}
}

// AddResponse registers a canned completion returned whenever the prompt contains match.
func (m *MockModel) AddResponse(match, response string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rules = append(m.rules, mockRule{match: match, reply: mockReply{text: response}})

	return m
}

// AddError registers an error returned whenever the prompt contains match.
func (m *MockModel) AddError(match string, err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rules = append(m.rules, mockRule{match: match, reply: mockReply{err: err}})

	return m
}

// Enqueue appends a one-shot completion.
func (m *MockModel) Enqueue(responses ...string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range responses {
		m.queue = append(m.queue, mockReply{text: r})
	}

	return m
}

// EnqueueError appends a one-shot failure.
func (m *MockModel) EnqueueError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queue = append(m.queue, mockReply{err: err})

	return m
}

// Calls returns a copy of every request received so far.
func (m *MockModel) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Request(nil), m.calls...)
}

// CallCount returns how many requests were received.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.calls)
}

func (m *MockModel) next(req Request) mockReply {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if len(m.queue) > 0 {
		r := m.queue[0]
		m.queue = m.queue[1:]
		return r
	}

	prompt := req.Prompt()
	for _, rule := range m.rules {
		if strings.Contains(prompt, rule.match) {
			return rule.reply
		}
	}

	return mockReply{text: fmt.Sprintf("Mock response to: %s", prompt)}
}

// Generate implements Model; emits optional streaming char chunks then final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if len(req.Contents) == 0 {
			errCh <- fmt.Errorf("no contents provided")
			return
		}

		reply := m.next(req)
		if reply.err != nil {
			errCh <- reply.err
			return
		}

		if req.Stream {
			for _, r := range reply.text {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					Partial: true,
					Content: Content{Role: RoleAssistant, Parts: []Part{TextPart{Text: string(r)}}},
				}:
				}
			}
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{
			Content:      Content{Role: RoleAssistant, Parts: []Part{TextPart{Text: reply.text}}},
			FinishReason: "stop",
		}:
		}
	}()

	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
