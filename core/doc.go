// Package core provides the foundational domain types and contracts used by
// MedMesh. It defines:
//
//   - Task identifiers (icd10, soap, image_analysis) and label parsing
//   - State, the record threaded through Router and exactly one Task Agent
//   - Payload variants, a closed tagged union that only ever accumulates keys
//   - Result records (ICD10Code, SOAPNote, RadiologyReport) and the outbound Response
//   - The placeholder image substituted whenever no image is supplied
//   - Node, AnalysisStore and ModelLimiter contracts shared by engine and agents
//
// Implementation concerns (model providers, repair, persistence, transport)
// live in sibling packages and depend on core, never the other way around.
package core
