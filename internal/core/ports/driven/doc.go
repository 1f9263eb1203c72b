// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Answer Path
//
//   - EmbeddingService: Turns chunks and questions into vectors
//   - LLMService: Produces the single completion per question
//   - VectorIndex: Exact nearest-neighbour search over chunk vectors
//   - CorpusStore: Persists and loads the chunk store and index together
//   - Tokenizer: Measures token counts for chunking
//
// # Corpus Preparation
//
//   - Normaliser: Converts source files (txt, docx, pdf) to plain text
//   - PostProcessor: Splits documents into chunks
//
// # Conversation
//
//   - ProfileStore, ChatLog, SessionStore, Transcriber
//
// # Configuration
//
//   - ConfigStore, PromptStore
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
