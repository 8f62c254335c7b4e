// Package history houses concrete implementations of core.AnalysisStore, the
// audit trail of completed analyses. The interface itself lives in core so
// the engine never depends on a concrete backend.
//
// Additional backends live in sub-packages (see history/postgres); only the
// wiring layer decides which implementation to instantiate.
package history
