// Package model defines the provider-agnostic abstractions for driving
// vision-language models inside MedMesh.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Carry images next to prompt text (TextPart, ImagePart)
//   - Format prompts deterministically (ChatTemplate)
//   - Load a model handle once per process and share it (Loader)
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic, Gemini) implement the Model interface from
// this package so agents remain decoupled from vendor SDKs.
package model
