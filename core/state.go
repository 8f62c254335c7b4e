package core

import (
	"image"
	"strings"
)

// Input is the inbound request accepted by the pipeline boundary.
type Input struct {
	Note  string
	Image image.Image
}

// Validate rejects requests carrying neither a note nor an image.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Note) == "" && in.Image == nil {
		return ErrEmptyInput
	}
	return nil
}

// State is the record threaded through the Router and exactly one Task Agent.
//
// Contract:
//   - Result and Error are never both set
//   - Payload only ever accumulates keys
//   - a non-empty Error marks the state as terminal
type State struct {
	Task    Task    `json:"task"`
	Payload Payload `json:"-"`
	Result  any     `json:"result,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// NewState creates the initial state for an inbound request.
func NewState(in Input) State {
	p := InputPayload{Image: in.Image}
	if in.Note != "" {
		note := in.Note
		p.Note = &note
	}
	return State{Payload: p}
}

// Failed reports whether the state terminated abnormally.
func (s State) Failed() bool { return s.Error != "" }

// Input returns the original payload, tolerating a nil Payload.
func (s State) Input() InputPayload {
	if s.Payload == nil {
		return InputPayload{}
	}
	return s.Payload.Input()
}

// WithResult returns a copy carrying task and result and no error.
func (s State) WithResult(t Task, result any) State {
	s.Task = t
	s.Result = result
	s.Error = ""
	return s
}

// WithError returns a copy carrying task and the error message and no result.
func (s State) WithError(t Task, err error) State {
	s.Task = t
	s.Result = nil
	if err == nil {
		s.Error = "unknown error"
		return s
	}
	s.Error = err.Error()
	return s
}
