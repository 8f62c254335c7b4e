// Package engine implements the orchestrator of the medmesh pipeline.
//
// An Engine owns the router node and a handler table keyed by task. Every
// request is driven through exactly one router call and at most one handler
// call:
//
//	eng := engine.New(router, []core.Node{
//	    agent.Guard(agent.NewICD10Agent(models)),
//	    agent.Guard(agent.NewSOAPAgent(models)),
//	    agent.Guard(agent.NewImageAnalyzerAgent(models)),
//	}, func(o *engine.Options) {
//	    o.Store = history.NewInMemoryStore()
//	    o.Logger = logger
//	})
//
//	resp := eng.Analyze(ctx, core.Input{Note: "Patient presents with ..."})
//
// The engine attaches a request ID and a per-request model-call limiter to the
// context, bounds concurrency with a semaphore, optionally bounds each node
// call with a timeout, and records metrics, spans and one audit record per
// request.
package engine
