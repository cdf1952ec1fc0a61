// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Normaliser / NormaliserRegistry: turns submission files into raw text
//   - Tokenizer: counts model tokens for window sizing
//   - Chunker: splits a section into offset-tracked windows
//   - QueryCache / ContentCache: persistent result and page caches
//   - EmbeddingService: vectors for similarity scoring
//   - ConfigStore / PromptStore: application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: without it, AI scores and verdicts come from the AIScorer heuristic.
//   - WebSearcher / PageFetcher: without them, no candidates are retrieved.
//   - ReportWriter: without it, results are only printed.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
