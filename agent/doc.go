// Package agent contains the pipeline's model-driven nodes:
//
//  1. Router, which classifies an input into a task and shapes the payload
//  2. Three task agents (ICD10Agent, SOAPAgent, ImageAnalyzerAgent) sharing
//     the TaskAgent contract: BuildPrompt, InvokeGeneration, RepairAndParse
//  3. Guard, the single wrapper that turns a TaskAgent into a core.Node whose
//     failures always end in a terminal error state
//
// Agents never hold a model directly. They receive a model.Provider and ask
// it for the process-wide handle on every call, so the first request loads
// the model and every later one reuses it.
//
// Prompts are text/template strings (RouterPrompt, ICD10Prompt, ...) that can
// be replaced per agent through Options.Instruction.
package agent
