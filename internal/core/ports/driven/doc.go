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
//   - Normaliser: Decodes one document format into canonical text
//   - Extractor: Resolves the format and dispatches to a Normaliser
//   - Chunker: Splits canonical text into bounded segments
//   - EmbeddingService: Generates vector embeddings
//   - VectorStore: Persists chunks and answers nearest-chunk queries
//   - DedupLedger: Content hash to document identity mapping
//   - LLMService: Answer synthesis
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ImageDescriber: Without it, images cannot be extracted and pptx images are skipped.
//   - ClaimLock: Without it, single-flight ingestion is per process only.
//   - Fetcher: Without it, only local files can be ingested.
//   - PromptStore: Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
