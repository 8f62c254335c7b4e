// Package medmesh provides a high-level façade over the routing pipeline:
// one Router that classifies clinical input and three task agents (ICD-10
// coding, SOAP notes, radiology reports) driven by engine.Engine.
//
// Most applications interact with this package by:
//  1. Creating a model.Provider (model.NewLoader with a registry.LoadFunc, or
//     model.NewStatic around any model.Model)
//  2. Creating a MedMesh via New(), optionally overriding the audit store,
//     metrics and logger
//  3. Calling Analyze for every inbound note and/or image
//
// All defaults are safe for local development and testing; production
// deployments typically supply a durable audit store and a structured logger.
package medmesh

import (
	"context"

	"github.com/hupe1980/medmesh/agent"
	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/engine"
	"github.com/hupe1980/medmesh/history"
	"github.com/hupe1980/medmesh/logging"
	"github.com/hupe1980/medmesh/metrics"
	"github.com/hupe1980/medmesh/model"
)

// Options configures the MedMesh instance.
type Options struct {
	// Engine configuration (concurrency, generation timeout, model-call cap)
	EngineConfig engine.Config

	// LenientRepair enables the jsonrepair tier of response repair.
	LenientRepair bool

	// Store receives one audit record per request (defaults to an in-memory
	// store; set to nil explicitly via DisableAudit to skip auditing)
	Store        core.AnalysisStore
	DisableAudit bool

	// Metrics (nil records nothing)
	Metrics *metrics.Metrics

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// MedMesh is the high-level façade aggregating the pipeline nodes and engine.
type MedMesh struct {
	opts   Options
	engine *engine.Engine
}

// New wires the Router and the three guarded task agents around models.
func New(models model.Provider, optFns ...func(o *Options)) *MedMesh {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Store == nil && !opts.DisableAudit {
		opts.Store = history.NewInMemoryStore(history.DefaultCapacity)
	}
	if opts.DisableAudit {
		opts.Store = nil
	}

	agentOpts := func(o *agent.Options) {
		o.LenientRepair = opts.LenientRepair
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
	}

	e := engine.New(agent.NewRouter(models, agentOpts), []core.Node{
		agent.Guard(agent.NewICD10Agent(models, agentOpts)),
		agent.Guard(agent.NewSOAPAgent(models, agentOpts)),
		agent.Guard(agent.NewImageAnalyzerAgent(models, agentOpts)),
	}, func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Store = opts.Store
		o.Metrics = opts.Metrics
		o.Logger = opts.Logger
	})

	return &MedMesh{opts: opts, engine: e}
}

// Analyze validates in, runs the pipeline and returns the typed response.
func (m *MedMesh) Analyze(ctx context.Context, in core.Input) core.Response {
	return m.engine.Analyze(ctx, in)
}

// Run returns the raw terminal state for in.
func (m *MedMesh) Run(ctx context.Context, in core.Input) core.State {
	return m.engine.Run(ctx, in)
}

// Store returns the audit store, or nil when auditing is disabled.
func (m *MedMesh) Store() core.AnalysisStore { return m.opts.Store }

// Engine exposes the underlying orchestrator.
func (m *MedMesh) Engine() *engine.Engine { return m.engine }
