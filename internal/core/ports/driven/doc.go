// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - ProblemRepository: Candidate retrieval via full-text search
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - OCRService: Image recognition. Without it, only text-level
//     processing is available.
//   - LLMService: Language model operations. Without it, AI segmentation
//     and AI ranking are disabled and the deterministic strategies run.
//   - PromptStore: Custom prompt templates. Without it, embedded defaults
//     are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
