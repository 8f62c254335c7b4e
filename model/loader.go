package model

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/medmesh/logging"
)

// Handle is the process-wide model state shared by every request: the
// generation model and the template that formats prompts for it.
type Handle struct {
	Model    Model
	Template ChatTemplate
}

// Provider hands out the shared model handle.
type Provider interface {
	Handle(ctx context.Context) (*Handle, error)
}

// LoadFunc builds a Model for an identifier.
type LoadFunc func(ctx context.Context, id string) (Model, error)

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	Template ChatTemplate
	Logger   logging.Logger
}

// Loader memoizes a model handle for the process lifetime. Concurrent first
// calls share a single load; failed loads are not cached.
type Loader struct {
	id     string
	load   LoadFunc
	opts   LoaderOptions
	group  singleflight.Group
	handle atomic.Pointer[Handle]
}

// NewLoader creates a Loader for model id.
func NewLoader(id string, load LoadFunc, optFns ...func(o *LoaderOptions)) *Loader {
	opts := LoaderOptions{
		Template: ChatTemplate{NumImages: 1},
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Loader{id: id, load: load, opts: opts}
}

// Handle returns the shared handle, loading it on first use.
func (l *Loader) Handle(ctx context.Context) (*Handle, error) {
	if h := l.handle.Load(); h != nil {
		return h, nil
	}

	v, err, _ := l.group.Do(l.id, func() (any, error) {
		if h := l.handle.Load(); h != nil {
			return h, nil
		}

		l.opts.Logger.Info("model.load.start", "model", l.id)

		m, err := l.load(ctx, l.id)
		if err != nil {
			l.opts.Logger.Error("model.load.error", "model", l.id, "error", err.Error())
			return nil, fmt.Errorf("load model %q: %w", l.id, err)
		}

		h := &Handle{Model: m, Template: l.opts.Template}
		l.handle.Store(h)

		l.opts.Logger.Info("model.load.done", "model", l.id, "provider", m.Info().Provider)

		return h, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Handle), nil
}

// Loaded reports whether the handle has been initialized.
func (l *Loader) Loaded() bool { return l.handle.Load() != nil }

// ID returns the model identifier.
func (l *Loader) ID() string { return l.id }

// Static is a Provider serving a pre-built handle.
type Static struct {
	handle *Handle
}

// NewStatic wraps m with a single-image template.
func NewStatic(m Model, optFns ...func(t *ChatTemplate)) *Static {
	t := ChatTemplate{NumImages: 1}
	for _, fn := range optFns {
		fn(&t)
	}
	return &Static{handle: &Handle{Model: m, Template: t}}
}

// Handle implements Provider.
func (s *Static) Handle(context.Context) (*Handle, error) { return s.handle, nil }
