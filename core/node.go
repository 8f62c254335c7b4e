package core

import "context"

// Node is a single pipeline step. It receives the full State and returns the
// next one; it never returns an error, failures are carried in State.Error.
type Node interface {
	Name() string
	Run(ctx context.Context, state State) State
}

// NodeFunc adapts an ordinary function into a Node.
type NodeFunc struct {
	NodeName string
	Fn       func(ctx context.Context, state State) State
}

// Name implements Node.
func (f NodeFunc) Name() string { return f.NodeName }

// Run implements Node.
func (f NodeFunc) Run(ctx context.Context, state State) State { return f.Fn(ctx, state) }
