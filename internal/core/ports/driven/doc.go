// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for scoring to work:
//
//   - EmbeddingService: Generates vector embeddings for chunks and checklist variants
//   - ChecklistStore: Framework checklists, loaded once at startup
//   - TextSplitter: Splits document text into scoring chunks
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Advice, drafts, summaries and chat. Without it reports carry no advice.
//   - CorpusStore: Pre-indexed chat corpus. Without it chat retrieval is disabled.
//   - PromptStore: User-editable prompt templates. Without it built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or postprocessor package
package driven
