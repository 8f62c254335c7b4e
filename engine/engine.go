package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/logging"
	"github.com/hupe1980/medmesh/metrics"
	"github.com/hupe1980/medmesh/tracing"
)

// ErrNoRouter is returned by Validate when the engine has no entry node.
var ErrNoRouter = errors.New("engine: router node is required")

// Config defines tuning parameters for the Engine's operational behavior.
//
// Example:
//
//	cfg := Config{
//	    MaxConcurrentInvocations: 50,
//	    GenerationTimeout:        90 * time.Second,
//	    MaxModelCalls:            2,
//	}
type Config struct {
	// MaxConcurrentInvocations limits the number of requests that can run
	// through the pipeline simultaneously. Waiting requests honor context
	// cancellation. Set to 0 for unlimited.
	MaxConcurrentInvocations int

	// GenerationTimeout bounds every node call. Zero disables the bound.
	GenerationTimeout time.Duration

	// MaxModelCalls caps the model calls a single request may issue. The
	// pipeline needs exactly two: one classification and one task call.
	// Zero means unlimited.
	MaxModelCalls int
}

// DefaultConfig provides production-ready default configuration values.
var DefaultConfig = Config{
	MaxConcurrentInvocations: 10,
	GenerationTimeout:        0,
	MaxModelCalls:            2,
}

// Options configures an Engine instance using the functional options pattern.
type Options struct {
	// Config contains operational parameters for the engine behavior.
	// Defaults to DefaultConfig if not specified.
	Config Config

	// Store receives one audit record per completed request. Nil disables
	// auditing.
	Store core.AnalysisStore

	// Metrics receives request and node observations. Nil disables metrics.
	Metrics *metrics.Metrics

	// Logger provides structured logging for debugging and monitoring.
	// Defaults to NoOp logger if nil.
	Logger logging.Logger
}

// Engine is the orchestrator: a fixed state machine
//
//	start -> router -> {icd10 | soap | image_analysis} -> end
//
// The router always runs first. A router error ends the request; a task
// without a registered handler surfaces the router state unchanged; otherwise
// exactly one handler runs and its state is terminal. Each transition is one
// synchronous node call.
//
// Engine is safe for concurrent use. Every request owns its own core.State,
// model-call limiter and request ID.
type Engine struct {
	router core.Node

	mu       sync.RWMutex
	handlers map[core.Task]core.Node

	config  Config
	sem     chan struct{}
	store   core.AnalysisStore
	metrics *metrics.Metrics
	logger  logging.Logger
}

// New creates an Engine whose entry node is router. handlers are registered
// under their Name(), which must be a task label.
func New(router core.Node, handlers []core.Node, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	e := &Engine{
		router:   router,
		handlers: make(map[core.Task]core.Node, len(handlers)),
		config:   opts.Config,
		store:    opts.Store,
		metrics:  opts.Metrics,
		logger:   logging.ForComponent(opts.Logger, "engine"),
	}

	if opts.Config.MaxConcurrentInvocations > 0 {
		e.sem = make(chan struct{}, opts.Config.MaxConcurrentInvocations)
	}

	for _, h := range handlers {
		e.Register(core.Task(h.Name()), h)
	}

	return e
}

// Register adds or replaces the handler for task.
func (e *Engine) Register(task core.Task, n core.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[task] = n
}

// Handler returns the node registered for task.
func (e *Engine) Handler(task core.Task) (core.Node, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n, ok := e.handlers[task]
	return n, ok
}

// Validate checks that the engine can serve requests.
func (e *Engine) Validate() error {
	if e.router == nil {
		return ErrNoRouter
	}
	for _, t := range core.Tasks {
		if _, ok := e.Handler(t); !ok {
			return fmt.Errorf("engine: no handler registered for task %q", t)
		}
	}
	return nil
}

// Analyze validates in, runs the pipeline and translates the terminal state
// into the outbound response.
func (e *Engine) Analyze(ctx context.Context, in core.Input) core.Response {
	if err := in.Validate(); err != nil {
		return core.ErrorResponse(err.Error())
	}
	return core.NewResponse(e.Run(ctx, in))
}

// Run drives one request through the state machine and returns the terminal
// state. Failures never escape as errors; they are carried in State.Error.
//
// A request ID already attached to ctx with core.WithRequestID is reused,
// otherwise a new one is generated.
func (e *Engine) Run(ctx context.Context, in core.Input) core.State {
	start := time.Now()

	id := core.RequestIDFrom(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = core.WithRequestID(ctx, id)
	}

	ctx = core.WithLimiter(ctx, core.NewModelLimiter(e.config.MaxModelCalls))
	logger := logging.ForRequest(e.logger, id)

	done := e.metrics.RequestStarted()
	defer done()

	ctx, span := tracing.Start(ctx, tracing.SpanAnalyze,
		attribute.Bool(tracing.AttrImages, in.Image != nil),
	)

	state := core.NewState(in)
	label := ""

	if err := e.acquire(ctx); err != nil {
		state = state.WithError(core.TaskUnclassified, fmt.Errorf("waiting for invocation slot: %w", err))
	} else {
		state, label = e.run(ctx, logger, state)
		e.release()
	}

	tracing.EndState(span, state)
	e.metrics.ObserveRequest(state.Task.String(), state.Failed())

	elapsed := time.Since(start)

	logger.Info("engine.request.done",
		"task", state.Task.String(),
		"failed", state.Failed(),
		"duration", elapsed,
	)

	e.persist(ctx, logger, id, in, label, state, elapsed)

	return state
}

func (e *Engine) run(ctx context.Context, logger logging.Logger, state core.State) (core.State, string) {
	if e.router == nil {
		return state.WithError(core.TaskUnclassified, ErrNoRouter), ""
	}

	state = e.runNode(ctx, logger, e.router, state)
	if state.Failed() {
		return state, ""
	}

	label, _ := state.Result.(string)

	handler, ok := e.Handler(state.Task)
	if !ok {
		logger.Warn("engine.dispatch.unhandled", "task", state.Task.String())
		return state, label
	}

	return e.runNode(ctx, logger, handler, state), label
}

// runNode performs one transition. Panics that escape a node are converted
// into a terminal error state.
func (e *Engine) runNode(ctx context.Context, logger logging.Logger, n core.Node, in core.State) (out core.State) {
	start := time.Now()

	if e.config.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.GenerationTimeout)
		defer cancel()
	}

	ctx, span := tracing.Start(ctx, tracing.SpanNode, attribute.String(tracing.AttrNode, n.Name()))

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("node %s panicked: %v", n.Name(), r)
			logging.ErrorWithStack(logger, err, "engine.node.panic", "node", n.Name())
			out = in.WithError(in.Task, err)
		}

		elapsed := time.Since(start)
		tracing.EndState(span, out)
		e.metrics.ObserveNode(n.Name(), out.Failed(), elapsed)
		logging.NodeExecution(logger, n.Name(), elapsed, out.Error)
	}()

	return n.Run(ctx, in)
}

func (e *Engine) acquire(ctx context.Context) error {
	if e.sem == nil {
		return ctx.Err()
	}

	start := time.Now()
	defer func() { e.metrics.ObserveWait(time.Since(start)) }()

	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) release() {
	if e.sem != nil {
		<-e.sem
	}
}

func (e *Engine) persist(ctx context.Context, logger logging.Logger, id string, in core.Input, label string, state core.State, elapsed time.Duration) {
	if e.store == nil {
		return
	}

	rec := core.AnalysisRecord{
		ID:        uuid.NewString(),
		RequestID: id,
		CreatedAt: time.Now().UTC(),
		Task:      state.Task,
		Label:     label,
		Note:      in.Note,
		HasImage:  in.Image != nil,
		Error:     state.Error,
		Duration:  elapsed,
	}

	if state.Result != nil && !state.Failed() {
		raw, err := json.Marshal(state.Result)
		if err != nil {
			logger.Warn("engine.audit.encode_error", "error", err.Error())
		} else {
			rec.Result = raw
		}
	}

	// The audit write must not be cut short by a caller that already gave up.
	if err := e.store.Save(context.WithoutCancel(ctx), rec); err != nil {
		logger.Error("engine.audit.save_error", "record_id", rec.ID, "error", err.Error())
	}
}
